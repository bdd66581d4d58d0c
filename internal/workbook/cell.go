package workbook

import (
	"math"
	"strconv"
	"strings"
)

// CellKind tags the raw content of a worksheet cell.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
	CellBool
	CellError
	CellFormula
)

func (k CellKind) String() string {
	switch k {
	case CellNumber:
		return "number"
	case CellText:
		return "text"
	case CellBool:
		return "bool"
	case CellError:
		return "error"
	case CellFormula:
		return "formula"
	default:
		return "empty"
	}
}

// Cell is the tagged form of a worksheet cell. Raw holds the unformatted
// text as stored in the file; for formulas it holds the cached (or
// evaluated) result and Formula holds the expression.
type Cell struct {
	Kind    CellKind
	Raw     string
	Formula string
}

// Empty returns the blank cell.
func Empty() Cell { return Cell{} }

// NumberCell builds a numeric cell from its stored text.
func NumberCell(raw string) Cell { return Cell{Kind: CellNumber, Raw: raw} }

// TextCell builds a string cell.
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Empty()
	}
	return Cell{Kind: CellText, Raw: s}
}

// FormulaCell builds a formula cell with its cached result.
func FormulaCell(expr, cached string) Cell {
	return Cell{Kind: CellFormula, Raw: cached, Formula: expr}
}

// IsEmpty reports whether the cell holds nothing.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty || (c.Kind != CellFormula && strings.TrimSpace(c.Raw) == "")
}

// Text returns the trimmed display text of the cell.
func (c Cell) Text() string {
	return strings.TrimSpace(c.Raw)
}

// Resolution is what a cell means once its tag has been interpreted.
type Resolution uint8

const (
	ResolvedBlank Resolution = iota
	ResolvedNumber
	ResolvedNotApplicable
	ResolvedUnusable
)

// Resolve interprets the cell as a numeric period value. Stored numbers and
// formula results are read as written; text is coerced with ParseNumber;
// booleans and error cells are unusable.
func (c Cell) Resolve() (float64, Resolution) {
	switch c.Kind {
	case CellEmpty:
		return 0, ResolvedBlank
	case CellBool, CellError:
		return 0, ResolvedUnusable
	}

	text := c.Text()
	if text == "" {
		return 0, ResolvedBlank
	}
	if c.Kind == CellNumber || c.Kind == CellFormula {
		// Stored numbers are machine formatted: the dot is always decimal.
		if n, err := strconv.ParseFloat(text, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
			return n, ResolvedNumber
		}
	}
	if IsNotApplicable(text) {
		return 0, ResolvedNotApplicable
	}
	if n, ok := ParseNumber(text); ok {
		return n, ResolvedNumber
	}
	return 0, ResolvedUnusable
}

// IsNumeric reports whether the cell resolves to a number.
func (c Cell) IsNumeric() bool {
	_, res := c.Resolve()
	return res == ResolvedNumber
}
