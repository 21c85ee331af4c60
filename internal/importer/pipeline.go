// Package importer reads xlsx (and CSV) files and submits their rows to the
// item backend's bulk import endpoint.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/InventoryUI/internal/core"
	"github.com/JonMunkholm/InventoryUI/internal/logging"
	"github.com/JonMunkholm/InventoryUI/internal/metrics"
)

// DefaultMaxFileSize bounds uploads when no limit is configured (20MB).
const DefaultMaxFileSize int64 = 20 << 20

// BulkSubmitter posts every row of one import in a single request.
type BulkSubmitter interface {
	BulkImport(ctx context.Context, rows []core.ImportRow) (*core.BulkImportResponse, error)
}

// Pipeline implements core.SpreadsheetImporter.
type Pipeline struct {
	submitter   BulkSubmitter
	maxFileSize int64
	now         func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMaxFileSize sets the largest accepted upload in bytes.
func WithMaxFileSize(n int64) Option {
	return func(p *Pipeline) { p.maxFileSize = n }
}

// New creates a pipeline that submits through sub.
func New(sub BulkSubmitter, opts ...Option) *Pipeline {
	p := &Pipeline{
		submitter:   sub,
		maxFileSize: DefaultMaxFileSize,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ core.SpreadsheetImporter = (*Pipeline)(nil)

// Run decodes the first sheet and submits all of its rows in one batch, even
// when the header has no rows below it. Row-level rejections come back in the
// result; only a failed request or an unreadable file is an error.
func (p *Pipeline) Run(ctx context.Context, name string, r io.Reader) (*core.ImportResult, error) {
	start := p.now()
	importID := uuid.New().String()
	log := logging.FromContext(ctx).With(
		slog.String("import_id", importID),
		slog.String("file", name),
	)

	sheet, err := p.read(name, r)
	if err != nil {
		metrics.Imports.WithLabelValues("rejected").Inc()
		log.Warn("import rejected", slog.String("error", err.Error()))
		return nil, err
	}
	if len(sheet.Headers) == 0 {
		metrics.Imports.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: sheet %q has no header row", core.ErrNoRows, sheet.Name)
	}

	log.Info("submitting import",
		slog.String("sheet", sheet.Name),
		slog.Int("rows", len(sheet.Rows)),
	)
	metrics.ImportRows.WithLabelValues("submitted").Add(float64(len(sheet.Rows)))

	resp, err := p.submitter.BulkImport(ctx, sheet.Rows)
	if err != nil {
		metrics.Imports.WithLabelValues("failed").Inc()
		log.Error("bulk import failed", slog.String("error", err.Error()))
		return nil, err
	}

	result := &core.ImportResult{
		ImportID:  importID,
		FileName:  name,
		Sheet:     sheet.Name,
		Submitted: len(sheet.Rows),
		Created:   len(resp.CreatedItems),
		Errors:    resp.Errors,
		Duration:  p.now().Sub(start),
	}
	if result.Errors == nil {
		result.Errors = []core.RowError{}
	}

	metrics.Imports.WithLabelValues("success").Inc()
	metrics.ImportRows.WithLabelValues("created").Add(float64(result.Created))
	metrics.ImportRows.WithLabelValues("errored").Add(float64(len(result.Errors)))
	log.Info("import complete",
		slog.Int("created", result.Created),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}

// Preview decodes the file and returns up to n rows without submitting.
func (p *Pipeline) Preview(ctx context.Context, name string, r io.Reader, n int) (*core.ImportPreview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sheet, err := p.read(name, r)
	if err != nil {
		return nil, err
	}

	preview := &core.ImportPreview{
		FileName:  name,
		Sheet:     sheet.Name,
		Headers:   sheet.Headers,
		TotalRows: len(sheet.Rows),
	}
	if n < 0 || n > len(sheet.Rows) {
		n = len(sheet.Rows)
	}
	preview.Rows = make([]map[string]any, 0, n)
	for _, row := range sheet.Rows[:n] {
		preview.Rows = append(preview.Rows, row.Values)
	}
	return preview, nil
}

func (p *Pipeline) read(name string, r io.Reader) (*Sheet, error) {
	data, err := readLimited(r, p.maxFileSize)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", core.ErrUnreadableFile)
	}
	return ReadWorkbook(name, data)
}
