package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/google/uuid"
	"github.com/rpattn/finsheet/internal/domain"
	"github.com/rpattn/finsheet/internal/fieldschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testRegistry(t *testing.T) *fieldschema.Registry {
	t.Helper()
	registry, err := fieldschema.NewRegistry([]fieldschema.FieldDefinition{
		{Key: "revenue", Label: "Receita", ValueType: fieldschema.ValueTypeMonetary, Group: fieldschema.GroupDriverRequired, Required: true},
		{Key: "openingCash", Label: "Caixa Inicial", ValueType: fieldschema.ValueTypeMonetary, Group: fieldschema.GroupDriverOptional, FirstPeriodOnly: true},
	})
	require.NoError(t, err)
	return registry
}

func testRun(registry *fieldschema.Registry) domain.IngestionRun {
	ds := domain.NewPeriodDataset(2, registry.Keys(), map[string]bool{"openingCash": true})
	ds.Set(0, "revenue", domain.Number(1000.5))
	ds.Set(0, "openingCash", domain.Number(200))
	return domain.IngestionRun{
		ID:        uuid.MustParse("6f1c2a7e-0000-4000-8000-000000000001"),
		FileName:  "Plano Financeiro 2025.xlsx",
		Structure: domain.WorkbookStructure{Variant: domain.VariantSmart},
		Dataset:   ds,
		Quality:   domain.QualityReport{QualityScore: 42},
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatCSV, "CSV": FormatCSV, " xlsx ": FormatXLSX}
	for raw, want := range cases {
		got, err := ParseFormat(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	registry := testRegistry(t)
	assert.Equal(t, "plano-financeiro-2025-6f1c2a7e.csv", FileName(testRun(registry), FormatCSV))
}

func TestWriteCSV(t *testing.T) {
	registry := testRegistry(t)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testRun(registry), registry))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"key", "label", "period_1", "period_2"}, records[0])
	assert.Equal(t, []string{"revenue", "Receita", "1000.5", ""}, records[1])
	assert.Equal(t, []string{"openingCash", "Caixa Inicial", "200", "N/A"}, records[2])
}

func TestWriteXLSX(t *testing.T) {
	registry := testRegistry(t)
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testRun(registry), registry))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{datasetSheet, qualitySheet}, f.GetSheetList())

	rows, err := f.GetRows(datasetSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"key", "label", "period_1", "period_2"}, rows[0])
	assert.Equal(t, "1000.5", rows[1][2])
	assert.Equal(t, "N/A", rows[2][3])

	score, err := f.GetCellValue(qualitySheet, "B8")
	require.NoError(t, err)
	assert.Equal(t, "42", score)
}
