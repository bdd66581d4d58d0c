package ingestion

import (
	"fmt"
	"strings"

	"github.com/rpattn/finsheet/internal/domain"
	"github.com/rpattn/finsheet/internal/fieldschema"
	"github.com/rpattn/finsheet/internal/workbook"
)

// Sheet name markers are matched against the folded (lowercase, accent-free)
// sheet name.
var (
	instructionsMarkers = []string{"instruc", "instruct", "leia me", "leiame", "readme", "como usar"}
	driversMarkers      = []string{"driver", "premissa"}
	overrideHints       = []string{"override", "ajuste", "realizado"}

	overrideMarkers = map[domain.SheetRole][]string{
		domain.RoleOverrideProfit:   {"dre", "p&l", "pnl", "resultado", "income"},
		domain.RoleOverrideBalance:  {"balanc", "patrimonial"},
		domain.RoleOverrideCashFlow: {"fluxo", "cash", "dfc"},
	}

	// basicHeaderMarkers identify the legacy single-sheet template by its
	// first header row.
	basicHeaderMarkers = []string{"periodo", "period", "campo", "field", "chave", "premissa", "driver"}
)

// DetectStructure classifies the workbook and assigns sheets to roles. It
// only fails when no worksheet holds any data.
func DetectStructure(wb *workbook.Workbook) (domain.WorkbookStructure, []string, error) {
	var warnings []string

	firstWithData := firstNonEmptySheet(wb)
	if firstWithData == nil {
		return domain.WorkbookStructure{}, nil, newIngestError("structure detection", ErrNoUsableWorksheet, nil)
	}

	instructions := findSheet(wb, instructionsMarkers, nil)
	drivers := findSheet(wb, driversMarkers, instructions)

	if instructions != nil && drivers != nil {
		structure := domain.WorkbookStructure{
			Variant: domain.VariantSmart,
			SheetRoles: map[domain.SheetRole]string{
				domain.RoleDrivers:      drivers.Name,
				domain.RoleInstructions: instructions.Name,
			},
		}
		warnings = append(warnings, assignOverrideSheets(wb, structure.SheetRoles, drivers, instructions)...)
		if !drivers.HasData() {
			warnings = append(warnings, fmt.Sprintf("drivers sheet %q has no rows; driver fields are left not provided", drivers.Name))
		}
		return structure, warnings, nil
	}

	sheets := wb.Sheets()
	if first := sheets[0]; first.HasData() && headerHasMarker(first.HeaderRow(), basicHeaderMarkers) {
		return domain.WorkbookStructure{
			Variant:    domain.VariantBasic,
			SheetRoles: map[domain.SheetRole]string{domain.RoleDrivers: first.Name},
		}, warnings, nil
	}

	warnings = append(warnings, fmt.Sprintf("workbook layout not recognized; reading sheet %q best-effort", firstWithData.Name))
	return domain.WorkbookStructure{
		Variant:    domain.VariantGeneric,
		SheetRoles: map[domain.SheetRole]string{domain.RoleDrivers: firstWithData.Name},
	}, warnings, nil
}

func assignOverrideSheets(wb *workbook.Workbook, roles map[domain.SheetRole]string, exclude ...*workbook.Sheet) []string {
	var warnings []string
	for _, sheet := range wb.Sheets() {
		if isOneOf(sheet, exclude) {
			continue
		}
		folded := fieldschema.Fold(sheet.Name)
		matched := false
		for _, role := range domain.OverrideRoles {
			if !containsAny(folded, overrideMarkers[role]) {
				continue
			}
			matched = true
			if _, taken := roles[role]; !taken {
				roles[role] = sheet.Name
			} else {
				warnings = append(warnings, fmt.Sprintf("sheet %q also matches %s; keeping %q", sheet.Name, role, roles[role]))
			}
			break
		}
		if !matched && containsAny(folded, overrideHints) {
			warnings = append(warnings, fmt.Sprintf("sheet %q looks like an override sheet but matches no statement section", sheet.Name))
		}
	}
	return warnings
}

func findSheet(wb *workbook.Workbook, markers []string, exclude *workbook.Sheet) *workbook.Sheet {
	for _, sheet := range wb.Sheets() {
		if sheet == exclude {
			continue
		}
		if containsAny(fieldschema.Fold(sheet.Name), markers) {
			return sheet
		}
	}
	return nil
}

func firstNonEmptySheet(wb *workbook.Workbook) *workbook.Sheet {
	if wb == nil {
		return nil
	}
	for _, sheet := range wb.Sheets() {
		if sheet.HasData() {
			return sheet
		}
	}
	return nil
}

func headerHasMarker(header []string, markers []string) bool {
	for _, h := range header {
		if containsAny(fieldschema.Fold(h), markers) {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func isOneOf(sheet *workbook.Sheet, set []*workbook.Sheet) bool {
	for _, s := range set {
		if s == sheet {
			return true
		}
	}
	return false
}
