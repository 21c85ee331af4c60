// Package backend is the HTTP client for the item service: paginated and
// full listings, single-item CRUD and bulk import.
//
// Every non-2xx response becomes a *core.StatusError. Nothing is retried.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/InventoryUI/internal/core"
	"github.com/JonMunkholm/InventoryUI/internal/logging"
	"github.com/JonMunkholm/InventoryUI/internal/metrics"
)

// DefaultTimeout bounds one request when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of a failed response is kept for logs.
const maxErrorBody = 4 << 10

// Client talks to the item service at a base URL.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for baseURL, which must be absolute.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}
	c := &Client{
		base:    u,
		http:    &http.Client{},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

var _ core.ItemBackend = (*Client)(nil)

// List fetches every item.
func (c *Client) List(ctx context.Context) ([]core.Item, error) {
	var items []core.Item
	if err := c.do(ctx, "list", http.MethodGet, "/allItems", nil, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []core.Item{}
	}
	return items, nil
}

// ListPage fetches one page (1-based), newest first.
func (c *Client) ListPage(ctx context.Context, page, size int) (*core.ItemPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var p core.ItemPage
	if err := c.do(ctx, "list_page", http.MethodGet, "/items", q, nil, &p); err != nil {
		return nil, err
	}
	if p.Items == nil {
		p.Items = []core.Item{}
	}
	return &p, nil
}

// Get fetches one item. A 404 satisfies errors.Is(err, core.ErrNotFound).
func (c *Client) Get(ctx context.Context, id int64) (*core.Item, error) {
	var it core.Item
	if err := c.do(ctx, "get", http.MethodGet, itemPath(id), nil, nil, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// Create posts a new item and returns it with its assigned ID.
func (c *Client) Create(ctx context.Context, it core.Item) (*core.Item, error) {
	it.ID = nil
	var created core.Item
	if err := c.do(ctx, "create", http.MethodPost, "/items", nil, it, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces the fields of item id and returns the stored item.
func (c *Client) Update(ctx context.Context, id int64, it core.Item) (*core.Item, error) {
	var updated core.Item
	if err := c.do(ctx, "update", http.MethodPut, itemPath(id), nil, it, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes item id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, itemPath(id), nil, nil, nil)
}

// BulkImport posts all rows in one request. Per-row rejections are part of
// the response, not an error.
func (c *Client) BulkImport(ctx context.Context, rows []core.ImportRow) (*core.BulkImportResponse, error) {
	if rows == nil {
		rows = []core.ImportRow{}
	}
	var resp core.BulkImportResponse
	if err := c.do(ctx, "bulk_import", http.MethodPost, "/items/bulk-import", nil, rows, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func itemPath(id int64) string {
	return "/items/" + strconv.FormatInt(id, 10)
}

// do sends one request and decodes a 2xx JSON body into out when out is
// non-nil. op labels metrics and logs.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := c.base.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := logging.FromContext(ctx)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveBackend(op, 0)
		log.Warn("backend unreachable",
			slog.String("op", op),
			slog.String("url", u.String()),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	metrics.ObserveBackend(op, resp.StatusCode)
	log.Debug("backend call",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &core.StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(b)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s %s: empty response body", method, path)
		}
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}
