package ingestion

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rpattn/finsheet/internal/workbook"
)

type fixtureSheet struct {
	name string
	rows [][]interface{}
}

// buildXLSX writes the sheets, in order, into a real xlsx payload.
func buildXLSX(t *testing.T, sheets ...fixtureSheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for _, s := range sheets {
		_, err := f.NewSheet(s.name)
		require.NoError(t, err)
		for i, row := range s.rows {
			row := row
			require.NoError(t, f.SetSheetRow(s.name, fmt.Sprintf("A%d", i+1), &row))
		}
	}
	if len(sheets) > 0 {
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// gridSheet builds an in-memory sheet: "" is empty, numeric text is a
// number cell, anything else is text.
func gridSheet(name string, rows ...[]string) *workbook.Sheet {
	grid := make([][]workbook.Cell, len(rows))
	for r, row := range rows {
		cells := make([]workbook.Cell, len(row))
		for c, v := range row {
			switch {
			case strings.TrimSpace(v) == "":
				cells[c] = workbook.Empty()
			case isFloat(v):
				cells[c] = workbook.NumberCell(v)
			default:
				cells[c] = workbook.TextCell(v)
			}
		}
		grid[r] = cells
	}
	return workbook.NewSheet(name, grid)
}

func isFloat(v string) bool {
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}

func periodHeader(lead []interface{}, label string, n int) []interface{} {
	row := append([]interface{}{}, lead...)
	for i := 1; i <= n; i++ {
		row = append(row, fmt.Sprintf("%s %d", label, i))
	}
	return row
}

var instructionsSheet = fixtureSheet{
	name: "Instruções",
	rows: [][]interface{}{
		{"Como preencher este modelo"},
		{"Tipo de período:", "Mensal"},
	},
}

// smartDrivers declares four periods and fills the first three.
func smartDrivers() fixtureSheet {
	return fixtureSheet{
		name: "Premissas",
		rows: [][]interface{}{
			periodHeader([]interface{}{"Campo", "Descrição"}, "Período", 4),
			{"revenue", "Receita Bruta", 100000, 110000, 121000},
			{"costOfGoodsSoldPercent", "CMV (% da Receita)", "40%", "40%", "40%"},
			{"operatingExpenses", "Despesas Operacionais", "R$ 20.000,00", 21000, 22000},
			{"taxRate", "Alíquota de Impostos", 0.34, 0.34, 0.34},
			{"accountsReceivableDays", "Prazo Médio de Recebimento", 30, 30, 30},
			{"inventoryDays", "Prazo Médio de Estoque", 45, 45, 45},
			{"accountsPayableDays", "Prazo Médio de Pagamento", 60, 60, 60},
			{"openingCash", "Caixa Inicial", 5000, 7000, 9000},
			{"capex", "Investimentos (Capex)", "N/A", 1000, ""},
			{"unknownKey", "Não existe", 1, 2, 3},
		},
	}
}
