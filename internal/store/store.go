// Package store persists items for the reference item service.
//
// Two implementations exist: Memory for development and tests, and Postgres
// backed by a pgx pool. Both list newest first.
package store

import (
	"context"

	"github.com/JonMunkholm/InventoryUI/internal/core"
)

// Store is the item repository behind itemapi.
type Store interface {
	// List returns every item, newest first.
	List(ctx context.Context) ([]core.Item, error)
	// Page returns up to limit items starting at offset, newest first.
	Page(ctx context.Context, offset, limit int) ([]core.Item, error)
	Count(ctx context.Context) (int, error)
	// Get returns core.ErrNotFound for unknown IDs.
	Get(ctx context.Context, id int64) (*core.Item, error)
	// Create assigns the ID and creation time. Any ID on it is ignored.
	Create(ctx context.Context, it core.Item) (*core.Item, error)
	// Update changes the non-nil fields of it and returns the stored item.
	Update(ctx context.Context, id int64, it core.Item) (*core.Item, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
	Close()
}
