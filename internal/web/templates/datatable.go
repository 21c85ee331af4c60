package templates

import (
	"strconv"

	"github.com/JonMunkholm/InventoryUI/internal/table"
)

// TableOptions controls how a table is wired into a page.
type TableOptions struct {
	// ID is the element id the fragment replaces on HTMX navigation.
	ID string
	// BasePath prefixes every sort and page link.
	BasePath string
	// SelectAction, when set, adds row checkboxes and a bulk delete button
	// posting the selection there.
	SelectAction string
	PageSizes    []int
	EmptyText    string
}

func (o TableOptions) target() string { return "#" + o.ID }

func (o TableOptions) selectable() bool { return o.SelectAction != "" }

func (o TableOptions) emptyText() string {
	if o.EmptyText == "" {
		return "No records."
	}
	return o.EmptyText
}

// colspan covers the data columns plus the selection column.
func (o TableOptions) colspan(t *table.Table) string {
	n := len(t.Columns())
	if o.selectable() {
		n++
	}
	return strconv.Itoa(n)
}

func ariaSort(dir table.Direction) string {
	switch dir {
	case table.Asc:
		return "ascending"
	case table.Desc:
		return "descending"
	}
	return ""
}

// rangeText is the "Showing a–b of n" footer for the current page.
func rangeText(t *table.Table) string {
	matched := t.Matched()
	from, to := 0, 0
	if matched > 0 {
		from = (t.Page()-1)*t.PageSize() + 1
		to = from + len(t.Rows()) - 1
	}
	s := "Showing " + strconv.Itoa(from) + "–" + strconv.Itoa(to) + " of " + strconv.Itoa(matched)
	if matched != t.Total() {
		s += " (filtered from " + strconv.Itoa(t.Total()) + ")"
	}
	return s
}

func rowSelected(t *table.Table, row table.Record) bool {
	id, ok := t.RowID(row)
	return ok && t.IsSelected(id)
}
