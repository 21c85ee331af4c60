package table

import (
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names used to carry View State across requests.
const (
	ParamPage   = "page"
	ParamSize   = "size"
	ParamSort   = "sort"
	ParamDir    = "dir"
	ParamFilter = "q"
	ParamSelect = "sel"
)

// ParseState decodes View State from query values, using defaults for
// anything missing or malformed. Page size is capped at maxSize when
// maxSize is positive.
func ParseState(q url.Values, defaults State, maxSize int) State {
	s := defaults

	if v, err := strconv.Atoi(q.Get(ParamPage)); err == nil {
		s.Page = v
	}
	if v, err := strconv.Atoi(q.Get(ParamSize)); err == nil && v > 0 {
		s.PageSize = v
	}
	if maxSize > 0 && s.PageSize > maxSize {
		s.PageSize = maxSize
	}

	if key := strings.TrimSpace(q.Get(ParamSort)); key != "" {
		dir := ParseDirection(q.Get(ParamDir))
		if dir == None {
			dir = Asc
		}
		s.Sort = SortState{Key: key, Dir: dir}
	}

	if q.Has(ParamFilter) {
		s.Filter = strings.TrimSpace(q.Get(ParamFilter))
	}

	for _, raw := range q[ParamSelect] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				s.Selected = append(s.Selected, id)
			}
		}
	}
	return s
}

// Values encodes the state as query values. Defaults are omitted so links
// stay short.
func (s State) Values() url.Values {
	q := url.Values{}
	if s.Page > 1 {
		q.Set(ParamPage, strconv.Itoa(s.Page))
	}
	if s.PageSize > 0 && s.PageSize != DefaultPageSize {
		q.Set(ParamSize, strconv.Itoa(s.PageSize))
	}
	if s.Sort.Dir != None && s.Sort.Key != "" {
		q.Set(ParamSort, s.Sort.Key)
		q.Set(ParamDir, s.Sort.Dir.String())
	}
	if s.Filter != "" {
		q.Set(ParamFilter, s.Filter)
	}
	if len(s.Selected) > 0 {
		q.Set(ParamSelect, strings.Join(s.Selected, ","))
	}
	return q
}

// Query returns the encoded state, prefixed with "?" when non-empty.
func (s State) Query() string {
	enc := s.Values().Encode()
	if enc == "" {
		return ""
	}
	return "?" + enc
}

func (t *Table) derive(mutate func(*Table)) State {
	cp := &Table{
		columns:  t.columns,
		rows:     t.rows,
		idField:  t.idField,
		state:    t.state,
		selected: make(map[string]struct{}, len(t.selected)),
	}
	for id := range t.selected {
		cp.selected[id] = struct{}{}
	}
	mutate(cp)
	return cp.State()
}

// SortQuery is the query string for the state after toggling sort on key.
// Toggling the sort keeps the current page.
func (t *Table) SortQuery(key string) string {
	return t.derive(func(c *Table) { c.ToggleSort(key) }).Query()
}

// PageQuery is the query string for page p.
func (t *Table) PageQuery(p int) string {
	return t.derive(func(c *Table) { c.SetPage(p) }).Query()
}

// Query is the query string for the current state.
func (t *Table) Query() string {
	return t.State().Query()
}

// SizeQuery is the query string for page size n.
func (t *Table) SizeQuery(n int) string {
	return t.derive(func(c *Table) { c.SetPageSize(n) }).Query()
}
