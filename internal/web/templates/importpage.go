package templates

import (
	"strconv"

	"github.com/JonMunkholm/InventoryUI/internal/core"
	"github.com/JonMunkholm/InventoryUI/internal/table"
)

// ImportView is the data behind the import page.
type ImportView struct {
	MaxFileSize int64
	Result      *core.ImportResult
	Preview     *core.ImportPreview
	Alert       *core.UserMessage
}

func maxSizeHint(n int64) string {
	return "Maximum size " + strconv.FormatInt(n>>20, 10) + " MB"
}

// rowLabel is the spreadsheet row number, or the placeholder when the
// backend did not say which row failed.
func rowLabel(row int) string {
	if row > 0 {
		return strconv.Itoa(row)
	}
	return table.Placeholder
}

func previewCaption(p core.ImportPreview) string {
	return p.FileName + " · sheet " + p.Sheet + " · " + strconv.Itoa(p.TotalRows) + " rows"
}

func previewCell(row map[string]any, header string) string {
	v, ok := row[header]
	if !ok || table.IsNil(v) {
		return table.Placeholder
	}
	return table.FormatValue(v)
}
