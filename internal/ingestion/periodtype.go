package ingestion

import (
	"strings"

	"github.com/rpattn/finsheet/internal/domain"
	"github.com/rpattn/finsheet/internal/fieldschema"
	"github.com/rpattn/finsheet/internal/workbook"
)

// Canonical period type labels.
const (
	PeriodTypeMonthly    = "monthly"
	PeriodTypeQuarterly  = "quarterly"
	PeriodTypeSemiannual = "semiannual"
	PeriodTypeYearly     = "yearly"
)

var periodTypeWords = []struct {
	label string
	words []string
}{
	{PeriodTypeMonthly, []string{"mensal", "monthly", "mes", "meses", "month", "months"}},
	{PeriodTypeQuarterly, []string{"trimestral", "quarterly", "trimestre", "trimestres", "quarter", "quarters"}},
	{PeriodTypeSemiannual, []string{"semestral", "semiannual", "semestre", "semestres", "semester", "half year"}},
	{PeriodTypeYearly, []string{"anual", "yearly", "annual", "ano", "anos", "year", "years"}},
}

var periodTypeCaptions = []string{"tipo de periodo", "periodicidade", "period type", "periodicity", "frequencia", "frequency"}

// classifyPeriodType maps free text to a canonical label by whole words.
func classifyPeriodType(text string) (string, bool) {
	folded := " " + fieldschema.Fold(text) + " "
	for _, entry := range periodTypeWords {
		for _, w := range entry.words {
			if strings.Contains(folded, " "+w+" ") {
				return entry.label, true
			}
		}
	}
	return "", false
}

// ResolvePeriodType picks the period type label: a captioned value on the
// instructions sheet, then the caller's hint, then the wording of the
// period headers on the drivers sheet. It returns "" when nothing applies.
func ResolvePeriodType(wb *workbook.Workbook, structure domain.WorkbookStructure, hint string) string {
	if name, ok := structure.Sheet(domain.RoleInstructions); ok {
		if sheet := wb.Sheet(name); sheet != nil {
			if label, ok := periodTypeFromInstructions(sheet); ok {
				return label
			}
		}
	}

	if hint = strings.TrimSpace(hint); hint != "" {
		if label, ok := classifyPeriodType(hint); ok {
			return label
		}
		return strings.ToLower(hint)
	}

	if name, ok := structure.Sheet(domain.RoleDrivers); ok {
		if sheet := wb.Sheet(name); sheet != nil {
			for _, h := range sheet.HeaderRow() {
				folded := fieldschema.Fold(h)
				if !strictPeriodPattern.MatchString(folded) && !fuzzyPeriodPattern.MatchString(folded) {
					continue
				}
				if label, ok := classifyPeriodType(folded); ok {
					return label
				}
			}
		}
	}
	return ""
}

// periodTypeFromInstructions looks for a caption cell such as
// "Tipo de período: Mensal" or a caption followed by its value in the next
// non-empty cell of the same row.
func periodTypeFromInstructions(sheet *workbook.Sheet) (string, bool) {
	for r := 0; r < sheet.RowCount(); r++ {
		row := sheet.Row(r)
		for c, cell := range row {
			folded := fieldschema.Fold(cell.Text())
			caption := ""
			for _, candidate := range periodTypeCaptions {
				if strings.Contains(folded, candidate) {
					caption = candidate
					break
				}
			}
			if caption == "" {
				continue
			}

			rest := folded[strings.Index(folded, caption)+len(caption):]
			if label, ok := classifyPeriodType(rest); ok {
				return label, true
			}
			for _, next := range row[c+1:] {
				if next.IsEmpty() {
					continue
				}
				if label, ok := classifyPeriodType(next.Text()); ok {
					return label, true
				}
				break
			}
		}
	}
	return "", false
}
