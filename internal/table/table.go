// Package table implements a sortable, paginated, column-filterable view over
// in-memory records.
//
// A Table owns its View State (page, page size, sort, filter, selection) and
// derives the visible rows from the full record set on demand: filter first,
// then sort, then paginate. It never fetches or mutates records and does not
// know what row actions do; it only forwards row identity.
package table

import (
	"math"
	"slices"
	"sort"
	"strings"
)

// DefaultIDField is the record key used as row identity.
const DefaultIDField = "id"

// DefaultPageSize applies when a state has no usable page size.
const DefaultPageSize = 10

// Record maps field keys to scalar values (string, integer, float, bool or nil).
type Record map[string]any

// ID returns the record's identity and whether it has one. Records without an
// identity are transient.
func (r Record) ID(field string) (string, bool) {
	v, ok := r[field]
	if !ok || IsNil(v) {
		return "", false
	}
	return FormatValue(v), true
}

// State is the table's View State.
type State struct {
	Page      int
	PageSize  int
	Sort      SortState
	Filter    string
	FilterKey string
	Selected  []string
}

// Table is a view over records and columns. Not safe for concurrent use; a
// table lives for a single render.
type Table struct {
	columns  []Column
	rows     []Record
	idField  string
	state    State
	selected map[string]struct{}
}

// Option configures a Table.
type Option func(*Table)

// WithState seeds the view state, typically decoded from a request URL.
func WithState(s State) Option {
	return func(t *Table) { t.state = s }
}

// WithIDField changes the identity field.
func WithIDField(field string) Option {
	return func(t *Table) { t.idField = field }
}

// New builds a table. The filter column defaults to the first filterable
// column; a sort on an unknown or unsortable column is dropped.
func New(rows []Record, columns []Column, opts ...Option) *Table {
	t := &Table{
		columns:  columns,
		rows:     rows,
		idField:  DefaultIDField,
		selected: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.state.PageSize < 1 {
		t.state.PageSize = DefaultPageSize
	}
	if c := t.column(t.state.FilterKey); c == nil || !c.Filterable() {
		t.state.FilterKey = ""
		for _, c := range columns {
			if c.Filterable() {
				t.state.FilterKey = c.Key()
				break
			}
		}
	}
	if t.state.Sort.Dir == None {
		t.state.Sort = SortState{}
	} else if c := t.column(t.state.Sort.Key); c == nil || !c.Sortable() {
		t.state.Sort = SortState{}
	}
	for _, id := range t.state.Selected {
		t.selected[id] = struct{}{}
	}
	t.state.Selected = nil
	t.state.Page = t.clamp(t.state.Page)
	return t
}

func (t *Table) column(key string) Column {
	if key == "" {
		return nil
	}
	for _, c := range t.columns {
		if c.Key() == key {
			return c
		}
	}
	return nil
}

// Columns returns the column definitions in display order.
func (t *Table) Columns() []Column { return t.columns }

// IDField returns the identity field.
func (t *Table) IDField() string { return t.idField }

// State returns a copy of the current view state.
func (t *Table) State() State {
	s := t.state
	s.Selected = t.Selected()
	return s
}

// ToggleSort advances the sort on key: unsorted becomes ascending,
// ascending becomes descending, descending clears the sort. Sorting one
// column clears any other. Returns false for unknown or unsortable columns.
func (t *Table) ToggleSort(key string) bool {
	c := t.column(key)
	if c == nil || !c.Sortable() {
		return false
	}
	switch t.state.Sort.For(key) {
	case None:
		t.state.Sort = SortState{Key: key, Dir: Asc}
	case Asc:
		t.state.Sort = SortState{Key: key, Dir: Desc}
	default:
		t.state.Sort = SortState{}
	}
	return true
}

// SortIndicator returns the current direction for key.
func (t *Table) SortIndicator(key string) Direction {
	return t.state.Sort.For(key)
}

// SetFilter sets the filter value on the designated column and resets the
// page to 1. An empty value disables filtering.
func (t *Table) SetFilter(v string) {
	t.state.Filter = v
	t.state.Page = 1
}

// FilterKey returns the designated filter column, or "" if none is filterable.
func (t *Table) FilterKey() string { return t.state.FilterKey }

// SetPage moves to page p, clamped to [1, PageCount].
func (t *Table) SetPage(p int) {
	t.state.Page = t.clamp(p)
}

// Page returns the current page (1-based).
func (t *Table) Page() int { return t.clamp(t.state.Page) }

// PageSize returns rows per page.
func (t *Table) PageSize() int { return t.state.PageSize }

// SetPageSize changes the page size and keeps the page in bounds.
func (t *Table) SetPageSize(size int) {
	if size < 1 {
		size = DefaultPageSize
	}
	t.state.PageSize = size
	t.state.Page = t.clamp(t.state.Page)
}

// PageCount is ceil(filtered rows / page size), never less than 1.
func (t *Table) PageCount() int {
	return pageCount(len(t.filtered()), t.state.PageSize)
}

func pageCount(n, size int) int {
	if n == 0 {
		return 1
	}
	return int(math.Ceil(float64(n) / float64(size)))
}

func (t *Table) clamp(p int) int {
	if p < 1 {
		return 1
	}
	if total := t.PageCount(); p > total {
		return total
	}
	return p
}

// Total is the number of records before filtering.
func (t *Table) Total() int { return len(t.rows) }

// Matched is the number of records that pass the filter.
func (t *Table) Matched() int { return len(t.filtered()) }

// Rows returns the visible rows for the current page.
func (t *Table) Rows() []Record {
	rows := t.sorted(t.filtered())
	size := t.state.PageSize
	start := (t.Page() - 1) * size
	if start >= len(rows) {
		return nil
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func (t *Table) filtered() []Record {
	needle := strings.ToLower(t.state.Filter)
	if needle == "" || t.state.FilterKey == "" {
		return t.rows
	}
	out := make([]Record, 0, len(t.rows))
	for _, r := range t.rows {
		if strings.Contains(strings.ToLower(FormatValue(r[t.state.FilterKey])), needle) {
			out = append(out, r)
		}
	}
	return out
}

func (t *Table) sorted(rows []Record) []Record {
	s := t.state.Sort
	if s.Dir == None || s.Key == "" {
		return rows
	}
	out := slices.Clone(rows)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i][s.Key], out[j][s.Key]
		an, bn := IsNil(a), IsNil(b)
		if an || bn {
			return !an && bn
		}
		c := Compare(a, b)
		if s.Dir == Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// RowID returns the identity of r.
func (t *Table) RowID(r Record) (string, bool) {
	return r.ID(t.idField)
}

// Select adds a row ID to the selection set.
func (t *Table) Select(id string) {
	if id != "" {
		t.selected[id] = struct{}{}
	}
}

// Deselect removes a row ID from the selection set.
func (t *Table) Deselect(id string) {
	delete(t.selected, id)
}

// IsSelected reports whether id is selected.
func (t *Table) IsSelected(id string) bool {
	_, ok := t.selected[id]
	return ok
}

// Selected returns the selected IDs in sorted order.
func (t *Table) Selected() []string {
	ids := make([]string, 0, len(t.selected))
	for id := range t.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ClearSelection empties the selection set.
func (t *Table) ClearSelection() {
	clear(t.selected)
}
