package workbook

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is an in-memory, read-only grid of tagged cells.
type Sheet struct {
	Name string
	rows [][]Cell
}

// NewSheet wraps an already tagged grid.
func NewSheet(name string, rows [][]Cell) *Sheet {
	return &Sheet{Name: name, rows: rows}
}

// RowCount returns the number of rows including blank ones.
func (s *Sheet) RowCount() int {
	return len(s.rows)
}

// Row returns row i, or nil when out of range.
func (s *Sheet) Row(i int) []Cell {
	if i < 0 || i >= len(s.rows) {
		return nil
	}
	return s.rows[i]
}

// Cell returns the cell at (row, col), zero-based. Missing cells are empty.
func (s *Sheet) Cell(row, col int) Cell {
	r := s.Row(row)
	if col < 0 || col >= len(r) {
		return Empty()
	}
	return r[col]
}

// HeaderIndex returns the index of the first row holding any data, or -1.
func (s *Sheet) HeaderIndex() int {
	for i, row := range s.rows {
		if !rowIsBlank(row) {
			return i
		}
	}
	return -1
}

// HeaderRow returns the display text of the header row.
func (s *Sheet) HeaderRow() []string {
	idx := s.HeaderIndex()
	if idx < 0 {
		return nil
	}
	row := s.rows[idx]
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = c.Text()
	}
	return out
}

// DataRowIndexes returns the indexes of non-blank rows after the header.
func (s *Sheet) DataRowIndexes() []int {
	header := s.HeaderIndex()
	if header < 0 {
		return nil
	}
	var out []int
	for i := header + 1; i < len(s.rows); i++ {
		if !rowIsBlank(s.rows[i]) {
			out = append(out, i)
		}
	}
	return out
}

// HasData reports whether any cell in the sheet is non-empty.
func (s *Sheet) HasData() bool {
	return s.HeaderIndex() >= 0
}

func rowIsBlank(row []Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Workbook is an opened spreadsheet reduced to tagged cell grids.
type Workbook struct {
	sheets []*Sheet
}

// New assembles a workbook from sheets, in order.
func New(sheets ...*Sheet) *Workbook {
	return &Workbook{sheets: sheets}
}

// Sheets returns the worksheets in file order.
func (w *Workbook) Sheets() []*Sheet {
	return w.sheets
}

// SheetNames returns worksheet names in file order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns the worksheet with the given name, or nil.
func (w *Workbook) Sheet(name string) *Sheet {
	for _, s := range w.sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Load opens an xlsx payload and tags every cell. Formula cells keep their
// cached result; when the file carries none the formula is evaluated.
func Load(payload []byte) (*Workbook, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("workbook payload is empty")
	}

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	names := f.GetSheetList()
	wb := &Workbook{sheets: make([]*Sheet, 0, len(names))}
	for _, name := range names {
		sheet, err := loadSheet(f, name)
		if err != nil {
			return nil, err
		}
		wb.sheets = append(wb.sheets, sheet)
	}
	return wb, nil
}

func loadSheet(f *excelize.File, name string) (*Sheet, error) {
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %q: %w", name, err)
	}

	height, width := len(raw), 0
	for _, row := range raw {
		if len(row) > width {
			width = len(row)
		}
	}
	if h, w, ok := sheetDimension(f, name); ok {
		height = max(height, min(h, height+dimensionSlack))
		width = max(width, min(w, width+dimensionSlack))
	}

	rows := make([][]Cell, height)
	for r := 0; r < height; r++ {
		var values []string
		if r < len(raw) {
			values = raw[r]
		}
		cells := make([]Cell, width)
		for c := 0; c < width; c++ {
			value := ""
			if c < len(values) {
				value = values[c]
			}
			cells[c] = readCell(f, name, r, c, value)
		}
		rows[r] = trimTrailingEmpty(cells)
	}

	return NewSheet(name, rows), nil
}

func readCell(f *excelize.File, sheet string, row, col int, value string) Cell {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return TextCell(value)
	}

	if formula, err := f.GetCellFormula(sheet, axis); err == nil && formula != "" {
		cached := value
		if strings.TrimSpace(cached) == "" {
			if result, calcErr := f.CalcCellValue(sheet, axis, excelize.Options{RawCellValue: true}); calcErr == nil {
				cached = result
			}
		}
		return FormulaCell(formula, cached)
	}

	if strings.TrimSpace(value) == "" {
		return Empty()
	}

	cellType, err := f.GetCellType(sheet, axis)
	if err != nil {
		return TextCell(value)
	}
	switch cellType {
	case excelize.CellTypeBool:
		return Cell{Kind: CellBool, Raw: value}
	case excelize.CellTypeError:
		return Cell{Kind: CellError, Raw: value}
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return TextCell(value)
	default:
		if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return NumberCell(value)
		}
		return TextCell(value)
	}
}

// dimensionSlack bounds how far a declared used range may extend the grid
// beyond the stored values.
const dimensionSlack = 64

// sheetDimension reads the declared used range so formula-only cells past
// the last stored value are still visited.
func sheetDimension(f *excelize.File, sheet string) (int, int, bool) {
	ref, err := f.GetSheetDimension(sheet)
	if err != nil || ref == "" {
		return 0, 0, false
	}
	parts := strings.Split(ref, ":")
	last := parts[len(parts)-1]
	col, row, err := excelize.CellNameToCoordinates(last)
	if err != nil {
		return 0, 0, false
	}
	return row, col, true
}

func trimTrailingEmpty(cells []Cell) []Cell {
	end := len(cells)
	for end > 0 && cells[end-1].Kind == CellEmpty {
		end--
	}
	return cells[:end]
}
