package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/finsheet/internal/domain"
	"github.com/rpattn/finsheet/internal/fieldschema"
)

func smallRegistry(t *testing.T) *fieldschema.Registry {
	t.Helper()
	reg, err := fieldschema.NewRegistry([]fieldschema.FieldDefinition{
		{Key: "revenue", Label: "Receita", ValueType: fieldschema.ValueTypeMonetary, Group: fieldschema.GroupDriverRequired, Required: true},
		{Key: "taxRate", Label: "Impostos", ValueType: fieldschema.ValueTypePercentage, Group: fieldschema.GroupDriverRequired, Required: true},
		{Key: "capex", Label: "Capex", ValueType: fieldschema.ValueTypeMonetary, Group: fieldschema.GroupDriverOptional},
		{Key: "openingCash", Label: "Caixa Inicial", ValueType: fieldschema.ValueTypeMonetary, Group: fieldschema.GroupDriverOptional, FirstPeriodOnly: true},
		{Key: "override_netProfit", Label: "Lucro Real", ValueType: fieldschema.ValueTypeMonetary, Group: fieldschema.GroupOverrideProfitLoss, IsOverride: true},
	})
	require.NoError(t, err)
	return reg
}

func smallDataset(reg *fieldschema.Registry, periods int) domain.PeriodDataset {
	return domain.NewPeriodDataset(periods, reg.Keys(), map[string]bool{"openingCash": true})
}

func TestAnalyzeQualityHalfOfRequiredCells(t *testing.T) {
	reg := smallRegistry(t)
	ds := smallDataset(reg, 2)
	ds.Set(0, "revenue", domain.Number(100))
	ds.Set(1, "revenue", domain.Number(110))
	// taxRate blank in both periods: 2 of 4 applicable required cells

	report := AnalyzeQuality(ds, reg)
	assert.Equal(t, 4, report.RequiredApplicable)
	assert.Equal(t, 2, report.RequiredFilled)
	assert.Equal(t, 50.0, report.RequiredCompleteness)
	assert.Equal(t, 0.0, report.OptionalCompleteness)
	assert.Equal(t, 30, report.QualityScore)
}

func TestAnalyzeQualityFirstPeriodOnlyApplicableOnce(t *testing.T) {
	reg := smallRegistry(t)
	ds := smallDataset(reg, 3)
	ds.Set(0, "openingCash", domain.Number(1))

	report := AnalyzeQuality(ds, reg)
	// capex in 3 periods plus openingCash in period 1
	assert.Equal(t, 4, report.OptionalApplicable)
	assert.Equal(t, 1, report.OptionalFilled)
	assert.Equal(t, 25.0, report.OptionalCompleteness)
}

func TestAnalyzeQualityNotApplicableIsNotFilled(t *testing.T) {
	reg := smallRegistry(t)
	ds := smallDataset(reg, 1)
	ds.Set(0, "revenue", domain.NA())
	ds.Set(0, "taxRate", domain.Number(0.3))

	report := AnalyzeQuality(ds, reg)
	assert.Equal(t, 50.0, report.RequiredCompleteness)
}

func TestAnalyzeQualityOverrideBonusIsCapped(t *testing.T) {
	reg := smallRegistry(t)
	ds := smallDataset(reg, 20)
	for p := range ds {
		ds.Set(p, "revenue", domain.Number(1))
		ds.Set(p, "taxRate", domain.Number(0.3))
		ds.Set(p, "capex", domain.Number(1))
		ds.Set(p, "override_netProfit", domain.NA())
	}
	ds.Set(0, "openingCash", domain.Number(1))

	report := AnalyzeQuality(ds, reg)
	assert.Equal(t, 20, report.OverrideCount)
	assert.Equal(t, 100, report.QualityScore)
}

func TestAnalyzeQualityEmptyDataset(t *testing.T) {
	report := AnalyzeQuality(domain.PeriodDataset{}, smallRegistry(t))
	assert.Equal(t, domain.QualityReport{}, report)
}

func TestRequiredCompletenessIsMonotonic(t *testing.T) {
	reg := smallRegistry(t)
	ds := smallDataset(reg, 3)
	ds.Set(1, "revenue", domain.Number(5))

	before := AnalyzeQuality(ds, reg).RequiredCompleteness
	for p := range ds {
		for _, key := range reg.KeysInGroups(fieldschema.GroupDriverRequired) {
			if ds.Get(p, key).IsNumber() {
				continue
			}
			next := ds.Clone()
			next.Set(p, key, domain.Number(1))
			after := AnalyzeQuality(next, reg).RequiredCompleteness
			assert.GreaterOrEqual(t, after, before, "filling %s in period %d", key, p+1)
		}
	}
}
