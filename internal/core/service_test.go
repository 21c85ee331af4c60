package core

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory ItemBackend.
type fakeBackend struct {
	mu      sync.Mutex
	items   map[int64]Item
	nextID  int64
	failOn  map[int64]error
	created []Item
	updated map[int64]Item
}

func newFakeBackend(items ...Item) *fakeBackend {
	b := &fakeBackend{items: map[int64]Item{}, failOn: map[int64]error{}, updated: map[int64]Item{}}
	for _, it := range items {
		b.nextID++
		id := b.nextID
		it.ID = &id
		b.items[id] = it
	}
	return b
}

func (b *fakeBackend) List(context.Context) ([]Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Item, 0, len(b.items))
	for id := int64(1); id <= b.nextID; id++ {
		if it, ok := b.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (b *fakeBackend) ListPage(ctx context.Context, page, size int) (*ItemPage, error) {
	all, _ := b.List(ctx)
	start := (page - 1) * size
	if start > len(all) {
		start = len(all)
	}
	end := min(start+size, len(all))
	return &ItemPage{Items: all[start:end], TotalItems: len(all), TotalPages: TotalPages(len(all), size)}, nil
}

func (b *fakeBackend) Get(_ context.Context, id int64) (*Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	it, ok := b.items[id]
	if !ok {
		return nil, &StatusError{Method: "GET", Path: "/items", Code: 404}
	}
	return &it, nil
}

func (b *fakeBackend) Create(_ context.Context, it Item) (*Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	it.ID = &id
	b.items[id] = it
	b.created = append(b.created, it)
	return &it, nil
}

func (b *fakeBackend) Update(_ context.Context, id int64, it Item) (*Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.items[id]; !ok {
		return nil, &StatusError{Method: "PUT", Path: "/items", Code: 404}
	}
	it.ID = &id
	b.items[id] = it
	b.updated[id] = it
	return &it, nil
}

func (b *fakeBackend) Delete(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err, ok := b.failOn[id]; ok {
		return err
	}
	if _, ok := b.items[id]; !ok {
		return &StatusError{Method: "DELETE", Path: "/items", Code: 404}
	}
	delete(b.items, id)
	return nil
}

type fakeImporter struct {
	block chan struct{}
	calls int
	mu    sync.Mutex
}

func (f *fakeImporter) Run(ctx context.Context, name string, r io.Reader) (*ImportResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	data, _ := io.ReadAll(r)
	return &ImportResult{FileName: name, Submitted: strings.Count(string(data), "\n"), Created: 1}, nil
}

func (f *fakeImporter) Preview(_ context.Context, name string, _ io.Reader, n int) (*ImportPreview, error) {
	return &ImportPreview{FileName: name, TotalRows: n}, nil
}

func strp(s string) *string { return &s }
func i64p(n int64) *int64   { return &n }

func TestParseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{" 42 ", 42, false},
		{"", 0, true},
		{"abc", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
		{"4.5", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseID(tt.raw)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidID, "ParseID(%q)", tt.raw)
		} else {
			assert.NoError(t, err, "ParseID(%q)", tt.raw)
		}
		assert.Equal(t, tt.want, got, "ParseID(%q)", tt.raw)
	}
}

func TestGetItem(t *testing.T) {
	svc := NewService(newFakeBackend(Item{IntName: strp("Bolt")}), &fakeImporter{}, ServiceConfig{})
	ctx := context.Background()

	it, err := svc.GetItem(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Bolt", *it.IntName)

	_, err = svc.GetItem(ctx, "nope")
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = svc.GetItem(ctx, "99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPageClampsArguments(t *testing.T) {
	b := newFakeBackend()
	for i := 0; i < 23; i++ {
		b.Create(context.Background(), Item{IntName: strp("x")})
	}
	svc := NewService(b, &fakeImporter{}, ServiceConfig{})

	p, err := svc.ListPage(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, p.Items, 10)
	assert.Equal(t, 23, p.TotalItems)
	assert.Equal(t, 3, p.TotalPages)
}

func TestCreateFormSubmitAndReset(t *testing.T) {
	b := newFakeBackend()
	svc := NewService(b, &fakeImporter{}, ServiceConfig{})

	h := svc.CreateForm(ItemForm{IntPartNum: "P-1", IntName: "Hex bolt", Quantity: "5", ReOrder: "2", Sloc: "A1"})
	it, err := h.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, it.ID)
	assert.Equal(t, int64(5), *it.Quantity)
	assert.Equal(t, int64(2), *it.ReOrder)
	assert.Equal(t, "A1", *it.Sloc)
	assert.Nil(t, it.Vendor, "empty vendor is absent")

	h.Reset()
	assert.Equal(t, ItemForm{}, h.Values())
}

func TestCreateFormRejectsMissingRequired(t *testing.T) {
	tests := []struct {
		name      string
		form      ItemForm
		wantField string
	}{
		{"no part number", ItemForm{IntName: "Bolt", Quantity: "3"}, FieldIntPartNum},
		{"no name", ItemForm{IntPartNum: "P", Quantity: "3"}, FieldIntName},
		{"zero quantity", ItemForm{IntPartNum: "P", IntName: "Bolt", Quantity: "0"}, FieldQuantity},
		{"missing quantity", ItemForm{IntPartNum: "P", IntName: "Bolt"}, FieldQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend()
			h := NewService(b, &fakeImporter{}, ServiceConfig{}).CreateForm(tt.form)

			_, err := h.Submit(context.Background())
			require.ErrorIs(t, err, ErrInvalidForm)
			assert.Contains(t, h.Errors(), tt.wantField)
			assert.Empty(t, b.created, "backend is not called")
		})
	}
}

func TestFormFieldValidation(t *testing.T) {
	tests := []struct {
		name    string
		form    ItemForm
		field   string
		message string
	}{
		{"short name", ItemForm{IntPartNum: "P", IntName: "B", Quantity: "1"}, FieldIntName, "Item name must be at least 2 characters."},
		{"long name", ItemForm{IntPartNum: "P", IntName: strings.Repeat("n", 51), Quantity: "1"}, FieldIntName, "Item name must not exceed 50 characters."},
		{"negative reorder", ItemForm{IntPartNum: "P", IntName: "Bolt", Quantity: "1", ReOrder: "-1"}, FieldReOrder, "Reorder quantity must be 0 or higher."},
		{"non-numeric quantity", ItemForm{IntPartNum: "P", IntName: "Bolt", Quantity: "lots"}, FieldQuantity, "Quantity must be a whole number."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewService(newFakeBackend(), &fakeImporter{}, ServiceConfig{}).CreateForm(tt.form)

			_, err := h.Submit(context.Background())
			var ve ValidationErrors
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.message, h.Errors()[tt.field])
		})
	}
}

func TestValidateItem(t *testing.T) {
	assert.NoError(t, ValidateItem(Item{IntName: strp("Washer"), Quantity: i64p(0)}))

	err := ValidateItem(Item{IntName: strp("W"), ReOrder: i64p(-2)})
	var ve ValidationErrors
	require.ErrorAs(t, err, &ve)
	for _, field := range []string{FieldIntName, FieldReOrder, FieldQuantity} {
		assert.Contains(t, ve, field)
	}
}

func TestEditFormResetRestoresLoadedValues(t *testing.T) {
	b := newFakeBackend(Item{IntPartNum: strp("P-9"), IntName: strp("Nut"), Quantity: i64p(4)})
	svc := NewService(b, &fakeImporter{}, ServiceConfig{})

	loaded, err := svc.GetItem(context.Background(), "1")
	require.NoError(t, err)
	h := svc.EditForm(1, FormFromItem(*loaded))
	h.values.Quantity = "12"
	h.Reset()
	assert.Equal(t, "4", h.Values().Quantity)

	h.values.Quantity = "12"
	updated, err := h.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), *updated.Quantity)
}

func TestDeleteItemsReportsEachFailure(t *testing.T) {
	b := newFakeBackend(Item{}, Item{}, Item{})
	b.failOn[2] = &StatusError{Method: "DELETE", Path: "/items/2", Code: 500}
	svc := NewService(b, &fakeImporter{}, ServiceConfig{})

	sum := svc.DeleteItems(context.Background(), []string{"1", "2", "x", "3"})

	assert.Equal(t, []string{"1", "3"}, sum.Deleted)
	require.Len(t, sum.Failed, 2)
	assert.Equal(t, "500", StatusOf(sum.Failed[0].Err))
	assert.ErrorIs(t, sum.Failed[1].Err, ErrInvalidID)
}

func TestImportSpreadsheetHonoursLimiter(t *testing.T) {
	imp := &fakeImporter{block: make(chan struct{})}
	svc := NewService(newFakeBackend(), imp, ServiceConfig{MaxConcurrentImports: 1, MaxImportWait: 30 * time.Millisecond})

	done := make(chan error, 1)
	go func() {
		_, err := svc.ImportSpreadsheet(context.Background(), "a.csv", strings.NewReader("h\n1\n"))
		done <- err
	}()

	require.Eventually(t, func() bool {
		return svc.ImportLimiter().ActiveCount() == 1
	}, time.Second, time.Millisecond)

	_, err := svc.ImportSpreadsheet(context.Background(), "b.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrTooManyImports)

	close(imp.block)
	assert.NoError(t, <-done)
	assert.Equal(t, 0, svc.ImportLimiter().ActiveCount())
}

func TestImportSpreadsheetTimeout(t *testing.T) {
	imp := &fakeImporter{block: make(chan struct{})}
	svc := NewService(newFakeBackend(), imp, ServiceConfig{ImportTimeout: 20 * time.Millisecond})

	_, err := svc.ImportSpreadsheet(context.Background(), "slow.xlsx", strings.NewReader(""))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
