package itemapi

// bulk.go implements POST /items/bulk-import. Each row is decoded and
// validated on its own; a bad row is reported and the rest still load.

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/JonMunkholm/InventoryUI/internal/core"
	"github.com/JonMunkholm/InventoryUI/internal/logging"
)

// BulkResponse is the reply to a bulk import.
type BulkResponse struct {
	CreatedItems []core.Item     `json:"createdItems"`
	Errors       []core.RowError `json:"errors"`
}

// normalizeKey folds case and drops spaces, underscores and dashes, so a
// "Part Num" or "INT_NAME" header still matches its field.
func normalizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '_', '-', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DecodeRow converts one spreadsheet row into an item. Values are weakly
// typed: "5", 5 and 5.0 all decode to a quantity of 5. Keys that name no
// field are ignored.
func DecodeRow(row map[string]any) (core.Item, error) {
	var it core.Item
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &it,
		MatchName: func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		},
		DecodeHook: mapstructure.DecodeHookFuncType(cellHook),
	})
	if err != nil {
		return core.Item{}, err
	}
	if err := dec.Decode(row); err != nil {
		return core.Item{}, err
	}
	it.ID, it.CreatedAt = nil, nil
	return it, nil
}

// cellHook trims text cells, turns blank ones into absent values and reads
// yes/no style flags as booleans.
func cellHook(from, to reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok || from.Kind() != reflect.String {
		return data, nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if to.Kind() == reflect.Bool {
		switch strings.ToLower(s) {
		case "yes", "y", "active":
			return true, nil
		case "no", "n", "inactive":
			return false, nil
		}
	}
	return s, nil
}

// rowMessage renders validation failures as one line, fields in order.
func rowMessage(err error) string {
	var decodeErr *mapstructure.Error
	if errors.As(err, &decodeErr) {
		return strings.Join(decodeErr.Errors, "; ")
	}
	verrs, ok := err.(core.ValidationErrors)
	if !ok {
		return err.Error()
	}
	keys := make([]string, 0, len(verrs))
	for k := range verrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + verrs[k]
	}
	return strings.Join(parts, " ")
}

func (h *Handler) bulkImport(w http.ResponseWriter, r *http.Request) {
	var rows []map[string]any
	if err := decodeBody(w, r, &rows); err != nil {
		writeError(w, r, err)
		return
	}
	if len(rows) > MaxBulkRows {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{
			Error: fmt.Sprintf("bulk import is limited to %d rows", MaxBulkRows),
		})
		return
	}

	resp := BulkResponse{CreatedItems: []core.Item{}, Errors: []core.RowError{}}
	for i, row := range rows {
		rowNum := i + 1
		it, err := DecodeRow(row)
		if err == nil {
			err = core.ValidateItem(it)
		}
		if err != nil {
			resp.Errors = append(resp.Errors, core.RowError{Row: rowNum, Error: rowMessage(err)})
			continue
		}
		created, err := h.store.Create(r.Context(), it)
		if err != nil {
			resp.Errors = append(resp.Errors, core.RowError{Row: rowNum, Error: "could not save row"})
			logging.FromContext(r.Context()).Error("bulk import row failed", "row", rowNum, "error", err)
			continue
		}
		resp.CreatedItems = append(resp.CreatedItems, *created)
	}

	logging.FromContext(r.Context()).Info("bulk import complete",
		"rows", len(rows),
		"created", len(resp.CreatedItems),
		"errors", len(resp.Errors),
	)
	writeJSON(w, http.StatusOK, resp)
}
