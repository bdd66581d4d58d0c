package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rpattn/finsheet/internal/domain"
	"github.com/rpattn/finsheet/internal/workbook"
)

func TestResolvePeriodType(t *testing.T) {
	smart := domain.WorkbookStructure{
		Variant: domain.VariantSmart,
		SheetRoles: map[domain.SheetRole]string{
			domain.RoleInstructions: "Instruções",
			domain.RoleDrivers:      "Premissas",
		},
	}

	tests := []struct {
		name     string
		wb       *workbook.Workbook
		hint     string
		expected string
	}{
		{
			name: "caption and value in one cell",
			wb: workbook.New(
				gridSheet("Instruções", []string{"Tipo de período: Trimestral"}),
				gridSheet("Premissas", []string{"Campo", "Mês 1"}),
			),
			hint:     "monthly",
			expected: PeriodTypeQuarterly,
		},
		{
			name: "caption followed by value cell",
			wb: workbook.New(
				gridSheet("Instruções", []string{"Leia antes"}, []string{"Periodicidade", "", "Anual"}),
				gridSheet("Premissas", []string{"Campo"}),
			),
			expected: PeriodTypeYearly,
		},
		{
			name: "hint when instructions are silent",
			wb: workbook.New(
				gridSheet("Instruções", []string{"Preencha os campos"}),
				gridSheet("Premissas", []string{"Campo", "Período 1"}),
			),
			hint:     "Semestral",
			expected: PeriodTypeSemiannual,
		},
		{
			name: "unknown hint is kept as given",
			wb: workbook.New(
				gridSheet("Instruções", []string{"x"}),
				gridSheet("Premissas", []string{"Campo"}),
			),
			hint:     "Weekly",
			expected: "weekly",
		},
		{
			name: "inferred from headers",
			wb: workbook.New(
				gridSheet("Instruções", []string{"x"}),
				gridSheet("Premissas", []string{"Campo", "Descrição", "Mês 1", "Mês 2"}),
			),
			expected: PeriodTypeMonthly,
		},
		{
			name: "nothing to go on",
			wb: workbook.New(
				gridSheet("Instruções", []string{"x"}),
				gridSheet("Premissas", []string{"Campo", "Período 1"}),
			),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolvePeriodType(tt.wb, smart, tt.hint))
		})
	}
}
