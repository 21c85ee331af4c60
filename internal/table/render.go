package table

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/a-h/templ"
)

// Placeholder is shown for missing values and failed cell renders.
const Placeholder = "N/A"

// IsNil reports whether v is absent.
func IsNil(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *string:
		return t == nil
	case *int64:
		return t == nil
	case *int:
		return t == nil
	case *bool:
		return t == nil
	case *float64:
		return t == nil
	}
	return false
}

// FormatValue is the string representation used for display and filtering.
// Nil values format as the empty string.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case *int64:
		if t == nil {
			return ""
		}
		return strconv.FormatInt(*t, 10)
	case *int:
		if t == nil {
			return ""
		}
		return strconv.Itoa(*t)
	case *bool:
		if t == nil {
			return ""
		}
		return strconv.FormatBool(*t)
	case *float64:
		if t == nil {
			return ""
		}
		return strconv.FormatFloat(*t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

// SafeCell renders the column's cell for value, falling back to the
// placeholder when the renderer panics or fails. Output is buffered so a
// failing renderer never leaves half a cell behind.
func SafeCell(col Column, value any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) (err error) {
		var buf bytes.Buffer
		if renderErr := renderRecovered(ctx, &buf, col, value); renderErr != nil {
			slog.Default().Warn("cell render failed", "column", col.Key(), "error", renderErr)
			_, err = io.WriteString(w, Placeholder)
			return err
		}
		_, err = w.Write(buf.Bytes())
		return err
	})
}

func renderRecovered(ctx context.Context, w io.Writer, col Column, value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	c := col.Render(value)
	if c == nil {
		return fmt.Errorf("nil component")
	}
	return c.Render(ctx, w)
}

// PageWindow returns up to width page numbers centred on current.
func PageWindow(current, total, width int) []int {
	if total < 1 {
		total = 1
	}
	if width < 1 {
		width = 1
	}
	if width > total {
		width = total
	}
	start := current - width/2
	if start < 1 {
		start = 1
	}
	if start+width-1 > total {
		start = total - width + 1
	}
	pages := make([]int, width)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}
