package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/InventoryUI/internal/core"
)

// openTestPostgres connects to TEST_DATABASE_URL, migrates, and empties the
// items table. Tests skip when the variable is unset.
func openTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, Migrate(url))

	ctx := context.Background()
	p, err := OpenPostgres(ctx, url, PoolConfig{MaxConns: 2})
	require.NoError(t, err)
	t.Cleanup(p.Close)

	_, err = p.pool.Exec(ctx, `TRUNCATE items RESTART IDENTITY`)
	require.NoError(t, err)
	return p
}

func TestPostgresCRUD(t *testing.T) {
	p := openTestPostgres(t)
	ctx := context.Background()

	created, err := p.Create(ctx, core.Item{IntPartNum: strp("P-1"), IntName: strp("Bolt"), Quantity: i64p(3)})
	require.NoError(t, err)
	require.NotNil(t, created.ID)
	assert.Nil(t, created.Sloc)

	_, err = p.Create(ctx, core.Item{IntName: strp("Nut")})
	require.NoError(t, err)

	items, err := p.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Nut", *items[0].IntName)

	updated, err := p.Update(ctx, *created.ID, core.Item{Sloc: strp("B2")})
	require.NoError(t, err)
	assert.Equal(t, "B2", *updated.Sloc)
	assert.Equal(t, "Bolt", *updated.IntName)

	n, err := p.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, p.Delete(ctx, *created.ID))
	_, err = p.Get(ctx, *created.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.True(t, errors.Is(p.Delete(ctx, *created.ID), core.ErrNotFound))
}
