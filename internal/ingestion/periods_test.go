package ingestion

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/finsheet/internal/domain"
	"github.com/rpattn/finsheet/internal/workbook"
)

func input(sheet *workbook.Sheet, start int) PeriodInput {
	return PeriodInput{Sheet: sheet, StartColumn: start, Settings: DefaultPeriodSettings()}
}

func TestStrictHeaderStrategy(t *testing.T) {
	sheet := gridSheet("Premissas",
		[]string{"Campo", "Descrição", "Período 1", "Periodo 2", "PERÍODO3", "Período 4 (estimado)"},
	)
	n, ok := StrictHeaderStrategy{}.Detect(input(sheet, 2))
	require.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = StrictHeaderStrategy{}.Detect(input(gridSheet("x", []string{"Campo", "Jan", "Fev"}), 1))
	assert.False(t, ok)
}

func TestFuzzyHeaderStrategy(t *testing.T) {
	sheet := gridSheet("Dados",
		[]string{"Campo", "Valor P1", "P2", "Q3 2024", "Notas"},
	)
	_, strict := StrictHeaderStrategy{}.Detect(input(sheet, 1))
	assert.False(t, strict)

	n, ok := FuzzyHeaderStrategy{}.Detect(input(sheet, 1))
	require.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestDescriptionColumnStrategyWithNotes(t *testing.T) {
	sheet := gridSheet("Dados",
		[]string{"Chave", "Descrição", "Jan", "Fev", "Mar", "Notas"},
		[]string{"revenue", "Receita", "1", "2", "3", "ok"},
	)
	n, ok := DescriptionColumnStrategy{}.Detect(input(sheet, 2))
	require.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestDescriptionColumnStrategyWithoutNotes(t *testing.T) {
	sheet := gridSheet("Dados",
		[]string{"", "Descrição"},
		[]string{"revenue", "Receita", "100", "200"},
		[]string{"taxRate", "Impostos", "0.3"},
	)
	n, ok := DescriptionColumnStrategy{}.Detect(input(sheet, 2))
	require.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = DescriptionColumnStrategy{}.Detect(input(gridSheet("x", []string{"Campo", "Valor"}), 1))
	assert.False(t, ok)
}

func TestNumericSamplingStrategy(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want int
		ok   bool
	}{
		{
			name: "mode wins",
			rows: [][]string{{"a", "", "1", "2"}, {"b", "", "1", "2"}, {"c", "", "1", "2", "3"}},
			want: 2,
			ok:   true,
		},
		{
			name: "ties go to the larger count",
			rows: [][]string{{"a", "", "1", "2", "3"}, {"b", "", "1", "2", "3"}, {"c", "", "1", "2"}, {"d", "", "1", "2"}},
			want: 3,
			ok:   true,
		},
		{
			name: "rows without numbers are ignored",
			rows: [][]string{{"a", "", "x"}, {"b", "", "x"}, {"c", "", "1"}},
			want: 1,
			ok:   true,
		},
		{
			name: "no numeric rows",
			rows: [][]string{{"a", "", "x"}},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := append([][]string{{"k", "d"}}, tt.rows...)
			n, ok := NumericSamplingStrategy{}.Detect(input(gridSheet("s", rows...), 2))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, n)
			}
		})
	}
}

func smartStructure() domain.WorkbookStructure {
	return domain.WorkbookStructure{
		Variant:    domain.VariantSmart,
		SheetRoles: map[domain.SheetRole]string{domain.RoleDrivers: "Premissas"},
	}
}

func TestResolverFallsBackToDefault(t *testing.T) {
	wb := workbook.New(gridSheet("Premissas",
		[]string{"Campo", "Valor"},
		[]string{"revenue", "muito"},
	))

	res, warnings := NewPeriodResolver(DefaultPeriodSettings()).Resolve(wb, smartStructure())
	assert.Equal(t, 12, res.Declared)
	assert.Equal(t, 1, res.Actual)
	assert.Equal(t, "default", res.Strategy)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "assuming 12 periods")
}

func TestResolverSkipsTiersAboveMaximum(t *testing.T) {
	header := []string{"Campo", "Descrição"}
	for i := 1; i <= 70; i++ {
		header = append(header, fmt.Sprintf("Período %d", i))
	}
	wb := workbook.New(gridSheet("Premissas", header, []string{"revenue", "Receita", "1", "2", "3"}))

	res, warnings := NewPeriodResolver(DefaultPeriodSettings()).Resolve(wb, smartStructure())
	assert.Equal(t, "numeric_sampling", res.Strategy)
	assert.Equal(t, 3, res.Declared)
	assert.Equal(t, 3, res.Actual)
	assert.NotEmpty(t, warnings)
}

func TestResolverActualTracksLastFilledPeriod(t *testing.T) {
	wb := workbook.New(gridSheet("Premissas",
		[]string{"Campo", "Descrição", "Período 1", "Período 2", "Período 3", "Período 4", "Período 5"},
		[]string{"revenue", "Receita", "1", "", "3"},
		[]string{"capex", "Capex", "N/A", "N/A", "N/A", "N/A", "N/A"},
	))

	res, _ := NewPeriodResolver(DefaultPeriodSettings()).Resolve(wb, smartStructure())
	assert.Equal(t, 5, res.Declared)
	assert.Equal(t, 3, res.Actual)
}

func TestResolverActualNeverExceedsDeclared(t *testing.T) {
	wb := workbook.New(gridSheet("Premissas",
		[]string{"Campo", "Descrição", "Período 1", "Período 2"},
		[]string{"revenue", "Receita", "1", "2", "3", "4", "5"},
	))

	res, _ := NewPeriodResolver(DefaultPeriodSettings()).Resolve(wb, smartStructure())
	assert.Equal(t, 2, res.Declared)
	assert.Equal(t, 2, res.Actual)
}

func TestResolverBoundsHoldForOddInputs(t *testing.T) {
	settings := DefaultPeriodSettings()
	sheets := []*workbook.Sheet{
		gridSheet("Premissas", []string{"only header"}),
		gridSheet("Premissas", []string{"Campo", "Descrição", "Notas"}, []string{"revenue", "x", "y"}),
		gridSheet("Premissas", []string{"Período 1"}, []string{"1", "2", "3"}),
		gridSheet("Premissas", []string{"", "", "", "Ano 2024"}),
	}

	for i, sheet := range sheets {
		res, _ := NewPeriodResolver(settings).Resolve(workbook.New(sheet), smartStructure())
		assert.GreaterOrEqual(t, res.Actual, 1, "case %d", i)
		assert.LessOrEqual(t, res.Actual, res.Declared, "case %d", i)
		assert.LessOrEqual(t, res.Declared, settings.MaxPeriods, "case %d", i)
	}
}

func TestOverrideSheetStartColumn(t *testing.T) {
	wb := workbook.New(
		gridSheet("Premissas", []string{"Campo", "Descrição", "Período 1"}, []string{"revenue", "Receita", "1"}),
		gridSheet("Override DRE", []string{"Campo"}, []string{"override_netProfit", "1", "2"}),
	)
	structure := smartStructure()
	structure.SheetRoles[domain.RoleOverrideProfit] = "Override DRE"

	res, _ := NewPeriodResolver(DefaultPeriodSettings()).Resolve(wb, structure)
	assert.Equal(t, 2, res.StartColumns[domain.RoleDrivers])
	assert.Equal(t, 1, res.StartColumns[domain.RoleOverrideProfit])
	assert.Equal(t, 1, res.Declared)
	assert.Equal(t, 1, res.Actual)
}
