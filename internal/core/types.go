package core

// types.go defines the item record and the request/response shapes shared
// by the UI, the backend client, the import pipeline and the reference
// backend.

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/InventoryUI/internal/table"
)

// Item is one inventory record. Every field is optional: the UI must cope
// with records that omit any of them. ID is nil for transient items.
type Item struct {
	ID         *int64     `json:"id,omitempty"`
	IntPartNum *string    `json:"intPartNum"`
	IntName    *string    `json:"intName"`
	ReOrder    *int64     `json:"reOrder"`
	Vendor     *string    `json:"vendor"`
	Quantity   *int64     `json:"quantity"`
	Sloc       *string    `json:"sloc"`
	QrCode     *string    `json:"QrCode"`
	Label      *string    `json:"Label"`
	Active     *bool      `json:"active"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

// Field keys of Item as they appear on the wire and in table records.
const (
	FieldID         = "id"
	FieldIntPartNum = "intPartNum"
	FieldIntName    = "intName"
	FieldReOrder    = "reOrder"
	FieldVendor     = "vendor"
	FieldQuantity   = "quantity"
	FieldSloc       = "sloc"
	FieldQrCode     = "QrCode"
	FieldLabel      = "Label"
	FieldActive     = "active"
)

// Transient reports whether the item has not been persisted yet.
func (it Item) Transient() bool { return it.ID == nil }

// IDString returns the identifier as text, or "" for transient items.
func (it Item) IDString() string {
	if it.ID == nil {
		return ""
	}
	return strconv.FormatInt(*it.ID, 10)
}

// Record flattens the item into a table record. Absent fields map to nil.
func (it Item) Record() table.Record {
	return table.Record{
		FieldID:         deref(it.ID),
		FieldIntPartNum: deref(it.IntPartNum),
		FieldIntName:    deref(it.IntName),
		FieldReOrder:    deref(it.ReOrder),
		FieldVendor:     deref(it.Vendor),
		FieldQuantity:   deref(it.Quantity),
		FieldSloc:       deref(it.Sloc),
		FieldQrCode:     deref(it.QrCode),
		FieldLabel:      deref(it.Label),
		FieldActive:     deref(it.Active),
	}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// Records converts items for display in a table, keeping order.
func Records(items []Item) []table.Record {
	out := make([]table.Record, len(items))
	for i, it := range items {
		out[i] = it.Record()
	}
	return out
}

// ItemPage is one page of the paginated listing, newest first.
type ItemPage struct {
	Items      []Item `json:"items"`
	TotalItems int    `json:"totalItems"`
	TotalPages int    `json:"totalPages"`
}

// TotalPages is ceil(total/size), never less than 1.
func TotalPages(total, size int) int {
	if size < 1 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// RowError describes one rejected row of a bulk import.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// UnmarshalJSON accepts the shapes backends use for row errors: an object
// with row/index and error/message/reason, or a bare string.
func (e *RowError) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = RowError{Error: s}
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = RowError{}
	for _, key := range []string{"row", "index", "rowIndex"} {
		if v, ok := raw[key]; ok {
			var n json.Number
			if err := json.Unmarshal(v, &n); err == nil {
				if i, err := n.Int64(); err == nil {
					e.Row = int(i)
					break
				}
			}
		}
	}
	for _, key := range []string{"error", "message", "reason"} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			e.Error = s
		} else {
			e.Error = strings.TrimSpace(string(v))
		}
		break
	}
	return nil
}

// BulkImportResponse is the backend's reply to a bulk import.
type BulkImportResponse struct {
	CreatedItems []json.RawMessage `json:"createdItems"`
	Errors       []RowError        `json:"errors"`
}

// ImportResult summarises one spreadsheet import. It is not persisted.
type ImportResult struct {
	ImportID  string        `json:"importId"`
	FileName  string        `json:"fileName"`
	Sheet     string        `json:"sheet"`
	Submitted int           `json:"submitted"`
	Created   int           `json:"created"`
	Errors    []RowError    `json:"errors"`
	Duration  time.Duration `json:"duration"`
}

// Summary is the one-line outcome shown to the user.
func (r *ImportResult) Summary() string {
	return "Created: " + strconv.Itoa(r.Created) + ", Errors: " + strconv.Itoa(len(r.Errors))
}

// ImportPreview shows what an import would submit without submitting it.
type ImportPreview struct {
	FileName  string           `json:"fileName"`
	Sheet     string           `json:"sheet"`
	Headers   []string         `json:"headers"`
	Rows      []map[string]any `json:"rows"`
	TotalRows int              `json:"totalRows"`
}

// ImportRow is one spreadsheet row keyed by header. Keys keep sheet column
// order and absent cells have no key.
type ImportRow struct {
	Keys   []string
	Values map[string]any
}

// Set adds or replaces a field.
func (r *ImportRow) Set(key string, v any) {
	if r.Values == nil {
		r.Values = make(map[string]any)
	}
	if _, ok := r.Values[key]; !ok {
		r.Keys = append(r.Keys, key)
	}
	r.Values[key] = v
}

// Get returns a field and whether it is present.
func (r ImportRow) Get(key string) (any, bool) {
	v, ok := r.Values[key]
	return v, ok
}

// Len is the number of present fields.
func (r ImportRow) Len() int { return len(r.Keys) }

// MarshalJSON writes the row as an object in column order.
func (r ImportRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.Values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
