package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/InventoryUI/internal/core"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	items  map[int64]core.Item
	nextID int64
	now    func() time.Time
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{
		items:  make(map[int64]core.Item),
		nextID: 1,
		now:    time.Now,
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) List(ctx context.Context) ([]core.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(), nil
}

func (m *Memory) Page(ctx context.Context, offset, limit int) ([]core.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.sorted()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) || limit <= 0 {
		return []core.Item{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *Memory) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items), nil
}

func (m *Memory) Get(ctx context.Context, id int64) (*core.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, core.ErrNotFound)
	}
	out := clone(it)
	return &out, nil
}

func (m *Memory) Create(ctx context.Context, it core.Item) (*core.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	created := m.now().UTC()
	it = clone(it)
	it.ID = &id
	it.CreatedAt = &created
	m.items[id] = it
	out := clone(it)
	return &out, nil
}

func (m *Memory) Update(ctx context.Context, id int64, patch core.Item) (*core.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, core.ErrNotFound)
	}
	cur = Merge(cur, clone(patch))
	m.items[id] = cur
	out := clone(cur)
	return &out, nil
}

func (m *Memory) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("item %d: %w", id, core.ErrNotFound)
	}
	delete(m.items, id)
	return nil
}

func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Memory) Close() {}

// sorted must be called with mu held.
func (m *Memory) sorted() []core.Item {
	out := make([]core.Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, clone(it))
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := *out[i].CreatedAt, *out[j].CreatedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return *out[i].ID > *out[j].ID
	})
	return out
}

// Merge copies the non-nil fields of patch onto cur. ID and CreatedAt are
// never changed.
func Merge(cur, patch core.Item) core.Item {
	if patch.IntPartNum != nil {
		cur.IntPartNum = patch.IntPartNum
	}
	if patch.IntName != nil {
		cur.IntName = patch.IntName
	}
	if patch.ReOrder != nil {
		cur.ReOrder = patch.ReOrder
	}
	if patch.Vendor != nil {
		cur.Vendor = patch.Vendor
	}
	if patch.Quantity != nil {
		cur.Quantity = patch.Quantity
	}
	if patch.Sloc != nil {
		cur.Sloc = patch.Sloc
	}
	if patch.QrCode != nil {
		cur.QrCode = patch.QrCode
	}
	if patch.Label != nil {
		cur.Label = patch.Label
	}
	if patch.Active != nil {
		cur.Active = patch.Active
	}
	return cur
}

// clone copies every pointer field so callers cannot mutate stored items.
func clone(it core.Item) core.Item {
	return core.Item{
		ID:         ptrCopy(it.ID),
		IntPartNum: ptrCopy(it.IntPartNum),
		IntName:    ptrCopy(it.IntName),
		ReOrder:    ptrCopy(it.ReOrder),
		Vendor:     ptrCopy(it.Vendor),
		Quantity:   ptrCopy(it.Quantity),
		Sloc:       ptrCopy(it.Sloc),
		QrCode:     ptrCopy(it.QrCode),
		Label:      ptrCopy(it.Label),
		Active:     ptrCopy(it.Active),
		CreatedAt:  ptrCopy(it.CreatedAt),
	}
}

func ptrCopy[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
