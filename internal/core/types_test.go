package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemRecordKeepsAbsentFieldsNil(t *testing.T) {
	id := int64(7)
	it := Item{ID: &id, IntName: strp("Washer"), Quantity: i64p(3)}

	rec := it.Record()
	assert.Equal(t, int64(7), rec[FieldID])
	assert.Equal(t, "Washer", rec[FieldIntName])
	assert.Equal(t, int64(3), rec[FieldQuantity])
	for _, key := range []string{FieldIntPartNum, FieldSloc, FieldReOrder, FieldActive} {
		v, ok := rec[key]
		assert.True(t, ok, "Record() has key %s", key)
		assert.Nil(t, v, "Record()[%s]", key)
	}
	assert.False(t, it.Transient(), "item with ID is stored")
	assert.True(t, Item{}.Transient(), "item without ID is transient")
}

func TestItemDecodesWireNames(t *testing.T) {
	var it Item
	body := `{"id":3,"intPartNum":"P-3","intName":"Nut","reOrder":null,"quantity":12,"QrCode":"qr","Label":"L","active":true}`
	require.NoError(t, json.Unmarshal([]byte(body), &it))

	assert.Equal(t, "3", it.IDString())
	require.NotNil(t, it.IntPartNum)
	assert.Equal(t, "P-3", *it.IntPartNum)
	assert.Nil(t, it.ReOrder)
	require.NotNil(t, it.QrCode)
	assert.Equal(t, "qr", *it.QrCode)
	require.NotNil(t, it.Active)
	assert.True(t, *it.Active)
}

func TestRowErrorUnmarshalShapes(t *testing.T) {
	tests := []struct {
		body string
		want RowError
	}{
		{`{"row":2,"error":"intName required"}`, RowError{Row: 2, Error: "intName required"}},
		{`{"index":5,"message":"bad quantity"}`, RowError{Row: 5, Error: "bad quantity"}},
		{`{"rowIndex":"7","reason":"dup"}`, RowError{Row: 7, Error: "dup"}},
		{`"just text"`, RowError{Error: "just text"}},
		{`{"row":1,"error":{"field":"quantity"}}`, RowError{Row: 1, Error: `{"field":"quantity"}`}},
	}
	for _, tt := range tests {
		var got RowError
		if assert.NoError(t, json.Unmarshal([]byte(tt.body), &got), tt.body) {
			assert.Equal(t, tt.want, got, tt.body)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct{ total, size, want int }{
		{23, 10, 3},
		{20, 10, 2},
		{0, 10, 1},
		{5, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.size), "TotalPages(%d, %d)", tt.total, tt.size)
	}
}

func TestImportResultSummary(t *testing.T) {
	r := &ImportResult{Created: 4, Errors: []RowError{{Row: 2}, {Row: 5}}}
	assert.Equal(t, "Created: 4, Errors: 2", r.Summary())
}

func TestImportRowMarshalKeepsColumnOrder(t *testing.T) {
	var row ImportRow
	row.Set("quantity", int64(4))
	row.Set("intName", "Bolt")
	row.Set("active", true)
	row.Set("quantity", int64(5))

	b, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"quantity":5,"intName":"Bolt","active":true}`, string(b), "column order is kept")

	_, ok := row.Get("vendor")
	assert.False(t, ok, "absent field is not present")
}
