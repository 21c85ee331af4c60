// Package templates renders the inventory UI's pages and fragments. The
// markup lives in the .templ files; run `templ generate` after editing them
// to refresh the *_templ.go files.
package templates

import (
	"strconv"

	"github.com/JonMunkholm/InventoryUI/internal/table"
)

func itoa(n int) string { return strconv.Itoa(n) }

// orNA returns the value or the table placeholder for absent fields.
func orNA[T any](p *T, format func(T) string) string {
	if p == nil {
		return table.Placeholder
	}
	return format(*p)
}

func str(s string) string { return s }

func i64(n int64) string { return strconv.FormatInt(n, 10) }

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
