package ingestion

import (
	"fmt"

	"github.com/rpattn/finsheet/internal/domain"
	"github.com/rpattn/finsheet/internal/fieldschema"
	"github.com/rpattn/finsheet/internal/workbook"
)

// SheetValues is the sparse output of one extraction pass: only keys that
// appeared on the sheet are present in each record.
type SheetValues struct {
	Sheet      string
	Role       domain.SheetRole
	Records    []domain.PeriodRecord
	Recognized int
	Foreign    int
}

// FieldExtractor reads period values for a fixed set of fields from one
// sheet. It holds no state between calls.
type FieldExtractor struct {
	registry *fieldschema.Registry
}

// NewFieldExtractor binds an extractor to the registry used to resolve the
// leading cell of each row.
func NewFieldExtractor(registry *fieldschema.Registry) *FieldExtractor {
	return &FieldExtractor{registry: registry}
}

// Extract walks the data rows of sheet. A row is read when its leading cell
// resolves to one of the allowed keys; period p is read from column
// startColumn+p for p < periods.
func (x *FieldExtractor) Extract(sheet *workbook.Sheet, role domain.SheetRole, allowed []string, periods, startColumn int) SheetValues {
	out := SheetValues{Sheet: sheet.Name, Role: role, Records: make([]domain.PeriodRecord, periods)}
	for p := range out.Records {
		out.Records[p] = make(domain.PeriodRecord)
	}

	permitted := make(map[string]struct{}, len(allowed))
	for _, key := range allowed {
		permitted[key] = struct{}{}
	}

	for _, r := range sheet.DataRowIndexes() {
		def, ok := x.rowField(sheet, r, startColumn)
		if !ok {
			continue
		}
		if _, ok := permitted[def.Key]; !ok {
			out.Foreign++
			continue
		}
		out.Recognized++

		for p := 0; p < periods; p++ {
			if def.FirstPeriodOnly && p > 0 {
				out.Records[p][def.Key] = domain.NA()
				continue
			}
			v := cellValue(sheet.Cell(r, startColumn+p))
			if prev, seen := out.Records[p][def.Key]; seen && v.IsMissing() {
				v = prev
			}
			out.Records[p][def.Key] = v
		}
	}
	return out
}

// rowField resolves the leading cell to a field. Templates put the key in
// column A; files keyed by display label are accepted through the second
// column when period data starts after it.
func (x *FieldExtractor) rowField(sheet *workbook.Sheet, row, startColumn int) (fieldschema.FieldDefinition, bool) {
	if def, ok := x.registry.Resolve(sheet.Cell(row, 0).Text()); ok {
		return def, true
	}
	if startColumn > 1 && sheet.Cell(row, 0).IsEmpty() {
		return x.registry.Resolve(sheet.Cell(row, 1).Text())
	}
	return fieldschema.FieldDefinition{}, false
}

func cellValue(c workbook.Cell) domain.Value {
	n, res := c.Resolve()
	switch res {
	case workbook.ResolvedNumber:
		return domain.Number(n)
	case workbook.ResolvedNotApplicable:
		return domain.NA()
	default:
		return domain.Missing()
	}
}

// Merge folds a sheet pass into the dataset. A value other than NotProvided
// replaces whatever the cell held; NotProvided never overwrites. It returns
// the number of cells written.
func Merge(dataset domain.PeriodDataset, values SheetValues) int {
	written := 0
	for p, rec := range values.Records {
		if p >= len(dataset) {
			break
		}
		for key, v := range rec {
			if v.IsMissing() {
				continue
			}
			// unknown keys are never added to a record
			if _, present := dataset[p][key]; !present {
				continue
			}
			dataset[p][key] = v
			written++
		}
	}
	return written
}

// extractionPlan pairs a role with the keys its sheet may contribute.
type extractionPlan struct {
	role domain.SheetRole
	keys []string
}

// extractionPlans returns the passes in merge order: drivers first, then
// each override section. The drivers sheet may also carry override rows.
func extractionPlans(registry *fieldschema.Registry) []extractionPlan {
	return []extractionPlan{
		{role: domain.RoleDrivers, keys: registry.Keys()},
		{role: domain.RoleOverrideProfit, keys: registry.KeysInGroups(fieldschema.GroupOverrideProfitLoss)},
		{role: domain.RoleOverrideBalance, keys: registry.KeysInGroups(fieldschema.GroupOverrideBalance)},
		{role: domain.RoleOverrideCashFlow, keys: registry.KeysInGroups(fieldschema.GroupOverrideCashFlow)},
	}
}

// ExtractAndMerge runs every extraction pass the structure allows and
// returns the dense merged dataset with its sheet-level warnings.
func ExtractAndMerge(wb *workbook.Workbook, structure domain.WorkbookStructure, periods PeriodResolution, registry *fieldschema.Registry) (domain.PeriodDataset, []string) {
	var warnings []string

	firstOnly := make(map[string]bool)
	for _, def := range registry.Fields() {
		if def.FirstPeriodOnly {
			firstOnly[def.Key] = true
		}
	}
	dataset := domain.NewPeriodDataset(periods.Actual, registry.Keys(), firstOnly)
	extractor := NewFieldExtractor(registry)

	for _, plan := range extractionPlans(registry) {
		name, ok := structure.Sheet(plan.role)
		if !ok {
			if plan.role == domain.RoleDrivers {
				warnings = append(warnings, "drivers sheet not found; driver fields are left not provided")
			}
			continue
		}
		sheet := wb.Sheet(name)
		if sheet == nil {
			warnings = append(warnings, fmt.Sprintf("expected sheet %q not found", name))
			continue
		}

		values := extractor.Extract(sheet, plan.role, plan.keys, periods.Actual, periods.StartColumns[plan.role])
		Merge(dataset, values)

		if values.Recognized == 0 && sheet.HasData() {
			warnings = append(warnings, fmt.Sprintf("sheet %q has no rows with recognized field keys", sheet.Name))
		}
		if values.Foreign > 0 {
			warnings = append(warnings, fmt.Sprintf("%d rows on sheet %q belong to another section and were ignored", values.Foreign, sheet.Name))
		}
	}
	return dataset, warnings
}
