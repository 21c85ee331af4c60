package table

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columns() []Column {
	return []Column{
		Def{Field: "name", Label: "Name", CanSort: true, CanFilter: true},
		Def{Field: "qty", Label: "Quantity", CanSort: true},
		Def{Field: "sloc", Label: "Location"},
	}
}

func names(rows []Record) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r["name"]
	}
	return out
}

func qtys(rows []Record) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r["qty"]
	}
	return out
}

func numbered(n int) []Record {
	rows := make([]Record, n)
	for i := range rows {
		rows[i] = Record{"id": int64(i + 1), "name": fmt.Sprintf("item-%02d", i+1), "qty": int64(i)}
	}
	return rows
}

func TestSortAscendingNullsLast(t *testing.T) {
	rows := []Record{
		{"name": "B", "qty": int64(5)},
		{"name": "A", "qty": int64(10)},
		{"name": "C", "qty": nil},
	}
	tbl := New(rows, columns())

	require.True(t, tbl.ToggleSort("qty"))
	assert.Equal(t, []any{int64(5), int64(10), nil}, qtys(tbl.Rows()))
}

func TestSortDescendingReversesExceptNulls(t *testing.T) {
	rows := []Record{
		{"name": "B", "qty": int64(5)},
		{"name": "N1"},
		{"name": "A", "qty": int64(10)},
		{"name": "C", "qty": nil},
		{"name": "D", "qty": int64(7)},
	}
	tbl := New(rows, columns())

	tbl.ToggleSort("qty")
	asc := names(tbl.Rows())
	tbl.ToggleSort("qty")
	desc := names(tbl.Rows())

	assert.Equal(t, []any{"B", "D", "A", "N1", "C"}, asc)
	assert.Equal(t, []any{"A", "D", "B", "N1", "C"}, desc)
}

func TestSortIsStableForTies(t *testing.T) {
	rows := []Record{
		{"name": "first", "qty": int64(1)},
		{"name": "second", "qty": int64(1)},
		{"name": "third", "qty": int64(0)},
	}
	tbl := New(rows, columns())

	tbl.ToggleSort("qty")
	assert.Equal(t, []any{"third", "first", "second"}, names(tbl.Rows()))

	tbl.ToggleSort("qty")
	assert.Equal(t, []any{"first", "second", "third"}, names(tbl.Rows()))
}

func TestToggleSortCycle(t *testing.T) {
	rows := []Record{{"name": "b"}, {"name": "c"}, {"name": "a"}}
	tbl := New(rows, columns())

	tbl.ToggleSort("name")
	assert.Equal(t, Asc, tbl.SortIndicator("name"))
	assert.Equal(t, []any{"a", "b", "c"}, names(tbl.Rows()))

	tbl.ToggleSort("name")
	assert.Equal(t, Desc, tbl.SortIndicator("name"))
	assert.Equal(t, []any{"c", "b", "a"}, names(tbl.Rows()))

	tbl.ToggleSort("name")
	assert.Equal(t, None, tbl.SortIndicator("name"))
	assert.Equal(t, []any{"b", "c", "a"}, names(tbl.Rows()), "cleared sort restores insertion order")
}

func TestToggleSortClearsOtherColumn(t *testing.T) {
	tbl := New(numbered(3), columns())

	tbl.ToggleSort("name")
	tbl.ToggleSort("name")
	tbl.ToggleSort("qty")

	assert.Equal(t, None, tbl.SortIndicator("name"))
	assert.Equal(t, Asc, tbl.SortIndicator("qty"))
}

func TestToggleSortRejectsUnsortable(t *testing.T) {
	tbl := New(numbered(3), columns())

	assert.False(t, tbl.ToggleSort("sloc"))
	assert.False(t, tbl.ToggleSort("missing"))
	assert.Equal(t, SortState{}, tbl.State().Sort)
}

func TestStringSortIsLexicographic(t *testing.T) {
	rows := []Record{{"name": "b"}, {"name": "B"}, {"name": "a10"}, {"name": "a9"}}
	tbl := New(rows, columns())

	tbl.ToggleSort("name")
	assert.Equal(t, []any{"B", "a10", "a9", "b"}, names(tbl.Rows()))
}

func TestNumericSortAcrossTypes(t *testing.T) {
	rows := []Record{{"name": "x", "qty": 9}, {"name": "y", "qty": float64(10.5)}, {"name": "z", "qty": int64(2)}}
	tbl := New(rows, columns())

	tbl.ToggleSort("qty")
	assert.Equal(t, []any{"z", "x", "y"}, names(tbl.Rows()))
}

func TestPagination(t *testing.T) {
	tests := []struct {
		n, size, page int
		wantRows      int
		wantPages     int
	}{
		{23, 10, 3, 3, 3},
		{23, 10, 1, 10, 3},
		{20, 10, 2, 10, 2},
		{1, 10, 1, 1, 1},
		{0, 10, 1, 0, 1},
		{7, 1, 7, 1, 7},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d size=%d page=%d", tt.n, tt.size, tt.page), func(t *testing.T) {
			tbl := New(numbered(tt.n), columns(), WithState(State{PageSize: tt.size}))
			tbl.SetPage(tt.page)

			assert.Equal(t, tt.wantPages, tbl.PageCount())
			assert.Len(t, tbl.Rows(), tt.wantRows)
		})
	}
}

func TestPageRowsFollowOrder(t *testing.T) {
	tbl := New(numbered(23), columns(), WithState(State{PageSize: 10}))
	tbl.SetPage(3)

	assert.Equal(t, []any{"item-21", "item-22", "item-23"}, names(tbl.Rows()))
}

func TestSetPageClamps(t *testing.T) {
	tbl := New(numbered(23), columns(), WithState(State{PageSize: 10}))

	tbl.SetPage(0)
	assert.Equal(t, 1, tbl.Page())

	tbl.SetPage(-4)
	assert.Equal(t, 1, tbl.Page())

	tbl.SetPage(99)
	assert.Equal(t, 3, tbl.Page())
	assert.Len(t, tbl.Rows(), 3)
}

func TestInitialStateIsClamped(t *testing.T) {
	tbl := New(numbered(5), columns(), WithState(State{Page: 40, PageSize: 2}))
	assert.Equal(t, 3, tbl.Page())
}

func TestFilterCaseInsensitiveSubstring(t *testing.T) {
	rows := []Record{{"name": "Hex Bolt"}, {"name": "washer"}, {"name": "BOLT cutter"}, {"name": nil}}
	tbl := New(rows, columns())

	tbl.SetFilter("bolt")
	assert.Equal(t, []any{"Hex Bolt", "BOLT cutter"}, names(tbl.Rows()))
	assert.Equal(t, 2, tbl.Matched())
	assert.Equal(t, 4, tbl.Total())
}

func TestFilterNoMatchYieldsOnePage(t *testing.T) {
	tbl := New(numbered(15), columns())

	tbl.SetFilter("zzz")
	assert.Empty(t, tbl.Rows())
	assert.Equal(t, 1, tbl.PageCount())
	assert.Equal(t, 1, tbl.Page())
}

func TestSetFilterResetsPage(t *testing.T) {
	tbl := New(numbered(30), columns(), WithState(State{PageSize: 10}))
	tbl.SetPage(3)

	tbl.SetFilter("item")
	assert.Equal(t, 1, tbl.Page())

	tbl.SetPage(2)
	tbl.SetFilter("")
	assert.Equal(t, 1, tbl.Page())
	assert.Len(t, tbl.Rows(), 10)
}

func TestFilterAppliesBeforeSortAndPage(t *testing.T) {
	rows := []Record{
		{"name": "bolt-c", "qty": int64(3)},
		{"name": "nut", "qty": int64(1)},
		{"name": "bolt-a", "qty": int64(9)},
		{"name": "bolt-b", "qty": int64(5)},
	}
	tbl := New(rows, columns(), WithState(State{PageSize: 2}))
	tbl.SetFilter("bolt")
	tbl.ToggleSort("qty")
	tbl.SetPage(2)

	assert.Equal(t, 2, tbl.PageCount())
	assert.Equal(t, []any{"bolt-a"}, names(tbl.Rows()))
}

func TestFilterKeyDefaultsToFirstFilterable(t *testing.T) {
	tbl := New(nil, columns(), WithState(State{FilterKey: "sloc"}))
	assert.Equal(t, "name", tbl.FilterKey())
}

func TestSelection(t *testing.T) {
	tbl := New(numbered(3), columns(), WithState(State{Selected: []string{"2"}}))

	tbl.Select("3")
	tbl.Select("1")
	tbl.Deselect("2")
	assert.Equal(t, []string{"1", "3"}, tbl.Selected())
	assert.True(t, tbl.IsSelected("3"))

	id, ok := tbl.RowID(tbl.Rows()[0])
	require.True(t, ok)
	assert.Equal(t, "1", id)

	tbl.ClearSelection()
	assert.Empty(t, tbl.Selected())
}

func TestTransientRecordHasNoID(t *testing.T) {
	_, ok := Record{"name": "draft"}.ID(DefaultIDField)
	assert.False(t, ok)
}

func TestParseStateAndQueryRoundTrip(t *testing.T) {
	q := url.Values{}
	q.Set("page", "2")
	q.Set("size", "500")
	q.Set("sort", "qty")
	q.Set("dir", "desc")
	q.Set("q", " bolt ")
	q.Add("sel", "4,7")

	s := ParseState(q, State{PageSize: 10}, 100)
	assert.Equal(t, 2, s.Page)
	assert.Equal(t, 100, s.PageSize)
	assert.Equal(t, SortState{Key: "qty", Dir: Desc}, s.Sort)
	assert.Equal(t, "bolt", s.Filter)
	assert.Equal(t, []string{"4", "7"}, s.Selected)

	again := ParseState(s.Values(), State{PageSize: 10}, 100)
	assert.Equal(t, s, again)
}

func TestParseStateIgnoresGarbage(t *testing.T) {
	q := url.Values{"page": {"abc"}, "size": {"-3"}, "dir": {"sideways"}}
	s := ParseState(q, State{Page: 1, PageSize: 10}, 0)

	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 10, s.PageSize)
	assert.Equal(t, SortState{}, s.Sort)
}

func TestSortAndPageQueries(t *testing.T) {
	tbl := New(numbered(30), columns(), WithState(State{PageSize: 10, Page: 2}))

	assert.Equal(t, "?dir=asc&page=2&sort=name", tbl.SortQuery("name"))
	assert.Equal(t, "?page=3", tbl.PageQuery(3))
	assert.Equal(t, "", tbl.PageQuery(0))
	assert.Equal(t, "?page=2", tbl.Query(), "derived queries must not mutate the table")
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestDefRendering(t *testing.T) {
	col := Def{Field: "sloc", Label: "Location", CanSort: true}

	assert.Equal(t, "Location", render(t, col.Header(SortState{})))
	assert.Equal(t, "Location ▲", render(t, col.Header(SortState{Key: "sloc", Dir: Asc})))
	assert.Equal(t, "Location", render(t, col.Header(SortState{Key: "qty", Dir: Desc})))
	assert.Equal(t, "N/A", render(t, col.Render(nil)))
	assert.Equal(t, "&lt;b&gt;", render(t, col.Render("<b>")))
}

func TestSafeCellRecoversFromPanic(t *testing.T) {
	panicky := Def{Field: "qty", Cell: func(v any) templ.Component {
		n := v.(string)
		return Text(n)
	}}
	assert.Equal(t, "N/A", render(t, SafeCell(panicky, int64(3))))
	assert.Equal(t, "N/A", render(t, SafeCell(panicky, nil)))
	assert.Equal(t, "ok", render(t, SafeCell(panicky, "ok")))
}

func TestActionsColumnForwardsRowID(t *testing.T) {
	col := ActionsColumn{Actions: []Action{
		{Label: "View", Href: func(id string) string { return "/inventory/" + id }},
		{Label: "Delete", Href: func(id string) string { return "/inventory/" + id + "/delete" }, Variant: "danger"},
	}}

	out := render(t, col.Render(int64(42)))
	assert.Contains(t, out, `href="/inventory/42"`)
	assert.Contains(t, out, `href="/inventory/42/delete"`)
	assert.Contains(t, out, "row-action-danger")
	assert.Equal(t, "N/A", render(t, col.Render(nil)))
}

func TestPageWindow(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, PageWindow(1, 3, 5))
	assert.Equal(t, []int{3, 4, 5, 6, 7}, PageWindow(5, 10, 5))
	assert.Equal(t, []int{6, 7, 8, 9, 10}, PageWindow(10, 10, 5))
	assert.Equal(t, []int{1}, PageWindow(1, 0, 5))
}
