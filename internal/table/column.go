package table

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Direction is the sort direction of a column.
type Direction int

const (
	None Direction = iota
	Asc
	Desc
)

func (d Direction) String() string {
	switch d {
	case Asc:
		return "asc"
	case Desc:
		return "desc"
	default:
		return ""
	}
}

// ParseDirection reads "asc" or "desc"; anything else is None.
func ParseDirection(s string) Direction {
	switch s {
	case "asc":
		return Asc
	case "desc":
		return Desc
	default:
		return None
	}
}

// SortState names the single sorted column, if any.
type SortState struct {
	Key string
	Dir Direction
}

// For returns the direction applied to key.
func (s SortState) For(key string) Direction {
	if s.Key != key {
		return None
	}
	return s.Dir
}

// Column describes how one record field is displayed and whether it takes
// part in sorting and filtering. Each column renders its own header and
// cells.
type Column interface {
	Key() string
	Header(sort SortState) templ.Component
	Render(value any) templ.Component
	Sortable() bool
	Filterable() bool
}

// Def is a Column assembled from a label and optional render callbacks.
//
//	table.Def{Field: "quantity", Label: "Quantity", CanSort: true}
type Def struct {
	Field     string
	Label     string
	CanSort   bool
	CanFilter bool

	// HeaderFunc overrides the default label plus sort indicator.
	HeaderFunc func(sort SortState) templ.Component
	// Cell overrides the default text rendering. It is never called with nil.
	Cell func(value any) templ.Component
}

func (d Def) Key() string      { return d.Field }
func (d Def) Sortable() bool   { return d.CanSort }
func (d Def) Filterable() bool { return d.CanFilter }

func (d Def) Header(sort SortState) templ.Component {
	if d.HeaderFunc != nil {
		return d.HeaderFunc(sort)
	}
	label := d.Label
	if label == "" {
		label = d.Field
	}
	if d.CanSort {
		label += Indicator(sort.For(d.Field))
	}
	return Text(label)
}

func (d Def) Render(value any) templ.Component {
	if IsNil(value) {
		return Text(Placeholder)
	}
	if d.Cell != nil {
		return d.Cell(value)
	}
	return Text(FormatValue(value))
}

// Indicator returns the glyph appended to a sorted header.
func Indicator(d Direction) string {
	switch d {
	case Asc:
		return " ▲"
	case Desc:
		return " ▼"
	default:
		return ""
	}
}

// Text renders s as escaped HTML text.
func Text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(s))
		return err
	})
}

// Action is a per-row affordance. The table only supplies the row ID;
// what the target does is up to the caller.
type Action struct {
	Label   string
	Href    func(id string) string
	Variant string
}

// ActionsColumn renders row actions. Its key is the identity field so
// Render receives the row ID.
type ActionsColumn struct {
	IDField string
	Actions []Action
}

func (c ActionsColumn) Key() string {
	if c.IDField == "" {
		return DefaultIDField
	}
	return c.IDField
}

func (c ActionsColumn) Header(SortState) templ.Component { return Text("") }
func (c ActionsColumn) Sortable() bool                   { return false }
func (c ActionsColumn) Filterable() bool                 { return false }

func (c ActionsColumn) Render(value any) templ.Component {
	if IsNil(value) {
		return Text(Placeholder)
	}
	id := FormatValue(value)
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		for _, a := range c.Actions {
			class := "row-action"
			if a.Variant != "" {
				class += " row-action-" + a.Variant
			}
			href := templ.URL(a.Href(id))
			if _, err := io.WriteString(w, `<a class="`+templ.EscapeString(class)+`" href="`+
				templ.EscapeString(string(href))+`">`+templ.EscapeString(a.Label)+`</a>`); err != nil {
				return err
			}
		}
		return nil
	})
}
