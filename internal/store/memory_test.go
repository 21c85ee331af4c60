package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/InventoryUI/internal/core"
)

func strp(s string) *string { return &s }
func i64p(i int64) *int64   { return &i }

func newSteppedMemory() *Memory {
	m := NewMemory()
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		t = t.Add(time.Second)
		return t
	}
	return m
}

func TestMemoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := newSteppedMemory()
	for _, name := range []string{"first", "second", "third"} {
		_, err := m.Create(ctx, core.Item{IntName: strp(name)})
		require.NoError(t, err)
	}

	items, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "third", *items[0].IntName)
	assert.Equal(t, "first", *items[2].IntName)

	page, err := m.Page(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "first", *page[0].IntName)

	empty, err := m.Page(ctx, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	n, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMemoryCreateAssignsID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	created, err := m.Create(ctx, core.Item{ID: i64p(99), IntName: strp("Bolt")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), *created.ID)
	assert.NotNil(t, created.CreatedAt)

	// Returned items are copies.
	*created.IntName = "changed"
	got, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Bolt", *got.IntName)
}

func TestMemoryUpdateIsPartial(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	created, err := m.Create(ctx, core.Item{IntName: strp("Bolt"), Quantity: i64p(4), Sloc: strp("A1")})
	require.NoError(t, err)

	updated, err := m.Update(ctx, *created.ID, core.Item{Quantity: i64p(9)})
	require.NoError(t, err)
	assert.Equal(t, int64(9), *updated.Quantity)
	assert.Equal(t, "Bolt", *updated.IntName)
	assert.Equal(t, "A1", *updated.Sloc)
	assert.Equal(t, *created.CreatedAt, *updated.CreatedAt)
}

func TestMemoryNotFound(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, 7)
	assert.True(t, errors.Is(err, core.ErrNotFound))
	_, err = m.Update(ctx, 7, core.Item{})
	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.True(t, errors.Is(m.Delete(ctx, 7), core.ErrNotFound))
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	created, err := m.Create(ctx, core.Item{IntName: strp("Bolt")})
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, *created.ID))
	_, err = m.Get(ctx, *created.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"postgres://u:p@db:5432/items?sslmode=disable", "pgx5://u:p@db:5432/items?sslmode=disable", false},
		{"postgresql://db/items", "pgx5://db/items", false},
		{"pgx5://db/items", "pgx5://db/items", false},
		{"host=db dbname=items", "", true},
	}
	for _, tt := range tests {
		got, err := migrateURL(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestConvertRoundTripsNil(t *testing.T) {
	assert.Nil(t, fromPgText(toPgText(nil)))
	assert.Nil(t, fromPgInt8(toPgInt8(nil)))
	assert.Equal(t, "A1", *fromPgText(toPgText(strp(" A1 "))))
}
