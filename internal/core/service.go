package core

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/InventoryUI/internal/logging"
)

// ItemBackend is the item storage collaborator.
type ItemBackend interface {
	List(ctx context.Context) ([]Item, error)
	ListPage(ctx context.Context, page, size int) (*ItemPage, error)
	Get(ctx context.Context, id int64) (*Item, error)
	Create(ctx context.Context, it Item) (*Item, error)
	Update(ctx context.Context, id int64, it Item) (*Item, error)
	Delete(ctx context.Context, id int64) error
}

// SpreadsheetImporter parses a workbook and submits its rows.
type SpreadsheetImporter interface {
	Run(ctx context.Context, name string, r io.Reader) (*ImportResult, error)
	Preview(ctx context.Context, name string, r io.Reader, n int) (*ImportPreview, error)
}

// ServiceConfig tunes the Service.
type ServiceConfig struct {
	ImportTimeout        time.Duration
	MaxConcurrentImports int
	MaxImportWait        time.Duration
}

// DefaultImportTimeout bounds one import when no timeout is configured.
const DefaultImportTimeout = 2 * time.Minute

// Service holds the page-level operations of the inventory UI. It keeps no
// item state of its own: every call goes to the backend, and local state
// only ever reflects what the backend returned.
type Service struct {
	backend       ItemBackend
	importer      SpreadsheetImporter
	limiter       *ImportLimiter
	importTimeout time.Duration
}

// NewService wires a Service.
func NewService(backend ItemBackend, importer SpreadsheetImporter, cfg ServiceConfig) *Service {
	if cfg.ImportTimeout <= 0 {
		cfg.ImportTimeout = DefaultImportTimeout
	}
	return &Service{
		backend:       backend,
		importer:      importer,
		limiter:       NewImportLimiter(cfg.MaxConcurrentImports, cfg.MaxImportWait),
		importTimeout: cfg.ImportTimeout,
	}
}

// ImportLimiter exposes the limiter for shutdown and health checks.
func (s *Service) ImportLimiter() *ImportLimiter { return s.limiter }

// ParseID converts a path segment to an item ID. Missing, non-numeric and
// non-positive values are ErrInvalidID.
func ParseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

// ListItems fetches every item.
func (s *Service) ListItems(ctx context.Context) ([]Item, error) {
	items, err := s.backend.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// ListPage fetches one page of items, newest first. Page and size are
// clamped to at least 1.
func (s *Service) ListPage(ctx context.Context, page, size int) (*ItemPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	p, err := s.backend.ListPage(ctx, page, size)
	if err != nil {
		return nil, fmt.Errorf("list page %d: %w", page, err)
	}
	return p, nil
}

// GetItem loads one item by its raw path identifier.
func (s *Service) GetItem(ctx context.Context, rawID string) (*Item, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}
	it, err := s.backend.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	return it, nil
}

// CreateForm returns a form handle that creates a new item on submit and
// resets to blank fields.
func (s *Service) CreateForm(values ItemForm) *ItemFormHandle {
	return newFormHandle(values, ItemForm{}, func(ctx context.Context, it Item) (*Item, error) {
		created, err := s.backend.Create(ctx, it)
		if err != nil {
			return nil, fmt.Errorf("create item: %w", err)
		}
		logging.FromContext(ctx).Info("item created", "id", created.IDString())
		return created, nil
	})
}

// EditForm returns a form handle that updates item id on submit and resets
// to the values it was opened with.
func (s *Service) EditForm(id int64, values ItemForm) *ItemFormHandle {
	return newFormHandle(values, values, func(ctx context.Context, it Item) (*Item, error) {
		updated, err := s.backend.Update(ctx, id, it)
		if err != nil {
			return nil, fmt.Errorf("update item %d: %w", id, err)
		}
		logging.FromContext(ctx).Info("item updated", "id", id)
		return updated, nil
	})
}

// CreateItem validates and creates an item in one step.
func (s *Service) CreateItem(ctx context.Context, form ItemForm) (*Item, error) {
	return s.CreateForm(form).Submit(ctx)
}

// UpdateItem validates and updates an item in one step.
func (s *Service) UpdateItem(ctx context.Context, rawID string, form ItemForm) (*Item, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.EditForm(id, form).Submit(ctx)
}

// DeleteItem deletes one item. Callers confirm with the user first.
func (s *Service) DeleteItem(ctx context.Context, rawID string) error {
	id, err := ParseID(rawID)
	if err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	logging.FromContext(ctx).Info("item deleted", "id", id)
	return nil
}

// DeleteFailure records one failed delete in a bulk delete.
type DeleteFailure struct {
	ID  string
	Err error
}

// DeleteSummary is the outcome of DeleteItems.
type DeleteSummary struct {
	Deleted []string
	Failed  []DeleteFailure
}

// DeleteItems deletes each selected ID in turn. Failures do not stop the
// remaining deletes and nothing is retried.
func (s *Service) DeleteItems(ctx context.Context, rawIDs []string) DeleteSummary {
	var sum DeleteSummary
	for _, raw := range rawIDs {
		if err := s.DeleteItem(ctx, raw); err != nil {
			sum.Failed = append(sum.Failed, DeleteFailure{ID: raw, Err: err})
			continue
		}
		sum.Deleted = append(sum.Deleted, raw)
	}
	return sum
}

// ImportSpreadsheet parses the workbook in r and bulk-creates its rows.
// The whole operation fails on read, parse or network errors; rows the
// backend rejects are reported in the result.
func (s *Service) ImportSpreadsheet(ctx context.Context, name string, r io.Reader) (*ImportResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	return s.importer.Run(ctx, name, r)
}

// PreviewSpreadsheet parses the workbook and returns its first n rows
// without submitting anything.
func (s *Service) PreviewSpreadsheet(ctx context.Context, name string, r io.Reader, n int) (*ImportPreview, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	return s.importer.Preview(ctx, name, r, n)
}
