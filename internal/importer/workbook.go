package importer

// workbook.go turns an uploaded spreadsheet into header-keyed rows.
//
// The first non-blank row is the header. Every later row becomes one
// core.ImportRow: blank cells are omitted, blank rows are skipped, and cell
// values keep their spreadsheet type (numbers, booleans, text).

import (
	"bytes"
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/InventoryUI/internal/core"
)

// Format identifies how a file is decoded.
type Format int

const (
	FormatUnknown Format = iota
	FormatXLSX
	FormatCSV
	FormatXLS
)

func (f Format) String() string {
	switch f {
	case FormatXLSX:
		return "xlsx"
	case FormatCSV:
		return "csv"
	case FormatXLS:
		return "xls"
	default:
		return "unknown"
	}
}

// EmptyHeader is the key used for columns without a header.
const EmptyHeader = "__EMPTY"

var (
	zipMagic = []byte("PK\x03\x04")
	cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// Sheet is the decoded first worksheet of a workbook.
type Sheet struct {
	Name    string
	Headers []string
	Rows    []core.ImportRow
}

// DetectFormat picks a decoder from the file content, falling back to the
// extension for text files.
func DetectFormat(name string, data []byte) Format {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(data, cfbMagic):
		return FormatXLS
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV
	case ".xls":
		return FormatXLS
	}
	return FormatUnknown
}

// ReadWorkbook decodes the first sheet of an xlsx or legacy xls workbook,
// or a CSV file.
func ReadWorkbook(name string, data []byte) (*Sheet, error) {
	switch DetectFormat(name, data) {
	case FormatXLSX:
		return readXLSX(data)
	case FormatXLS:
		return readXLS(data)
	case FormatCSV:
		return readCSV(name, data)
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, filepath.Ext(name))
	}
}

func readXLSX(data []byte) (*Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnreadableFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", core.ErrUnreadableFile)
	}
	name := sheets[0]

	// Headers use the displayed text, data cells the stored value.
	formatted, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnreadableFile, err)
	}
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnreadableFile, err)
	}

	headerAt := firstNonBlank(formatted)
	if headerAt < 0 {
		return &Sheet{Name: name}, nil
	}

	sheet := &Sheet{Name: name, Headers: headerKeys(formatted[headerAt], maxWidth(raw[headerAt:]))}
	for r := headerAt + 1; r < len(raw); r++ {
		var row core.ImportRow
		for c, v := range raw[r] {
			if strings.TrimSpace(v) == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			typ, err := f.GetCellType(name, cell)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", core.ErrUnreadableFile, err)
			}
			row.Set(sheet.Headers[c], xlsxValue(typ, v))
		}
		if row.Len() > 0 {
			sheet.Rows = append(sheet.Rows, row)
		}
	}
	return sheet, nil
}

// xlsxValue converts a raw cell value to the Go type it is stored as.
func xlsxValue(typ excelize.CellType, v string) any {
	switch typ {
	case excelize.CellTypeBool:
		return v == "1" || strings.EqualFold(v, "true")
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return v
	case excelize.CellTypeNumber, excelize.CellTypeDate, excelize.CellTypeUnset, excelize.CellTypeFormula:
		if n, ok := parseNumber(v); ok {
			return n
		}
	}
	return v
}

func readCSV(name string, data []byte) (*Sheet, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnreadableFile, err)
	}

	sheetName := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return sheetFromGrid(sheetName, records, csvValue), nil
}

// readXLS decodes a BIFF8 workbook. The reader only exposes display text, so
// cells are typed the same way as CSV values.
func readXLS(data []byte) (sheet *Sheet, err error) {
	if err := checkCFB(data); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			sheet, err = nil, fmt.Errorf("%w: malformed .xls workbook: %v", core.ErrUnreadableFile, r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnreadableFile, err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", core.ErrUnreadableFile)
	}
	ws := wb.GetSheet(0)

	grid := make([][]string, 0, int(ws.MaxRow)+1)
	width := 0
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := xlsRow(ws, i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		n := row.LastCol()
		if n < width {
			n = width
		}
		cells := make([]string, n)
		for c := range cells {
			cells[c] = row.Col(c)
		}
		if width == 0 && !isEmptyRow(cells) {
			width = len(cells)
		}
		grid = append(grid, cells)
	}
	return sheetFromGrid(ws.Name, grid, csvValue), nil
}

// xlsRow returns row i, or nil when the sheet has no record for it.
func xlsRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil // Row dereferences absent rows
		}
	}()
	return ws.Row(i)
}

const (
	cfbSector     = 512
	cfbEndOfChain = 0xFFFFFFFE
)

// checkCFB rejects compound files the xls reader cannot walk safely. It
// assumes 512-byte sectors and exits the process when a sector chain leaves
// the allocation table, so every chain it will follow is walked here first.
func checkCFB(data []byte) error {
	bad := func(msg string) error {
		return fmt.Errorf("%w: malformed .xls workbook: %s", core.ErrUnreadableFile, msg)
	}
	le := binary.LittleEndian
	if len(data) < 2*cfbSector {
		return bad("file too short")
	}
	if le.Uint16(data[28:]) != 0xFFFE || le.Uint16(data[30:]) != 9 {
		return bad("unsupported sector size")
	}
	fatSectors := le.Uint32(data[44:])
	if fatSectors == 0 || fatSectors > 109 || le.Uint32(data[68:]) != cfbEndOfChain {
		return bad("unsupported allocation table")
	}

	sectorAt := func(sid uint32) []byte {
		off := (int64(sid) + 1) * cfbSector
		if off+cfbSector > int64(len(data)) {
			return nil
		}
		return data[off : off+cfbSector]
	}

	fat := make([]uint32, 0, fatSectors*cfbSector/4)
	for i := uint32(0); i < fatSectors; i++ {
		sec := sectorAt(le.Uint32(data[76+4*i:]))
		if sec == nil {
			return bad("allocation table outside file")
		}
		for j := 0; j < cfbSector; j += 4 {
			fat = append(fat, le.Uint32(sec[j:]))
		}
	}
	chain := func(start uint32) ([]uint32, bool) {
		var sids []uint32
		for sid := start; sid != cfbEndOfChain; sid = fat[sid] {
			if int(sid) >= len(fat) || len(sids) > len(fat) {
				return nil, false
			}
			sids = append(sids, sid)
		}
		return sids, true
	}

	if _, ok := chain(le.Uint32(data[60:])); !ok {
		return bad("broken short allocation table")
	}
	dir, ok := chain(le.Uint32(data[48:]))
	if !ok {
		return bad("broken directory chain")
	}
	cutoff := le.Uint32(data[56:])
	for _, sid := range dir {
		sec := sectorAt(sid)
		if sec == nil {
			return bad("directory outside file")
		}
		for e := 0; e < cfbSector; e += 128 {
			entry := sec[e : e+128]
			typ, start, size := entry[66], le.Uint32(entry[116:]), le.Uint32(entry[120:])
			if typ == 5 || (typ == 2 && size >= cutoff) {
				if _, ok := chain(start); !ok {
					return bad("broken stream chain")
				}
			}
		}
	}
	return nil
}

// sheetFromGrid keys every row after the header by column. Blank cells are
// omitted and blank rows skipped.
func sheetFromGrid(name string, grid [][]string, value func(string) any) *Sheet {
	headerAt := firstNonBlank(grid)
	if headerAt < 0 {
		return &Sheet{Name: name}
	}

	sheet := &Sheet{Name: name, Headers: headerKeys(grid[headerAt], maxWidth(grid[headerAt:]))}
	for _, rec := range grid[headerAt+1:] {
		var row core.ImportRow
		for c, v := range rec {
			if strings.TrimSpace(v) == "" {
				continue
			}
			row.Set(sheet.Headers[c], value(v))
		}
		if row.Len() > 0 {
			sheet.Rows = append(sheet.Rows, row)
		}
	}
	return sheet
}

// csvValue infers numbers and TRUE/FALSE the way spreadsheet apps do when
// opening a CSV.
func csvValue(v string) any {
	s := strings.TrimSpace(v)
	switch strings.ToUpper(s) {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	if len(s) > 1 && s[0] == '0' && s[1] >= '0' && s[1] <= '9' {
		return v // zero-padded codes stay text
	}
	if n, ok := parseNumber(s); ok {
		return n
	}
	return v
}

// parseNumber returns an int64 for integral values and a float64 otherwise.
func parseNumber(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f), true
	}
	return f, true
}

// headerKeys names width columns from the header row. Blank headers become
// __EMPTY, __EMPTY_1, ... and repeated names get _1, _2 suffixes.
func headerKeys(header []string, width int) []string {
	if len(header) > width {
		width = len(header)
	}
	seen := make(map[string]int, width)
	keys := make([]string, width)
	for i := 0; i < width; i++ {
		base := ""
		if i < len(header) {
			base = header[i]
		}
		if strings.TrimSpace(base) == "" {
			base = EmptyHeader
		}
		key := base
		if n, ok := seen[base]; ok {
			for {
				key = base + "_" + strconv.Itoa(n)
				n++
				if _, taken := seen[key]; !taken {
					break
				}
			}
			seen[base] = n
			seen[key] = 1
		} else {
			seen[base] = 1
		}
		keys[i] = key
	}
	return keys
}

func firstNonBlank(rows [][]string) int {
	for i, row := range rows {
		if !isEmptyRow(row) {
			return i
		}
	}
	return -1
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func maxWidth(rows [][]string) int {
	w := 0
	for _, row := range rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune(utf8.RuneError)
		} else {
			buf.WriteRune(r)
		}
		data = data[size:]
	}
	return buf.Bytes()
}

// readLimited reads at most limit bytes, failing with core.ErrFileTooLarge
// when the reader holds more.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnreadableFile, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, limit)
	}
	return data, nil
}
