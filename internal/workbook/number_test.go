package workbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"100000", 100000, true},
		{"  42.5 ", 42.5, true},
		{"1,234,567", 1234567, true},
		{"1,234.56", 1234.56, true},
		{"1.234,56", 1234.56, true},
		{"1.234.567", 1234567, true},
		{"12,5", 12.5, true},
		{"R$ 1.500,00", 1500, true},
		{"$2,000", 2000, true},
		{"(1,250)", -1250, true},
		{"-300", -300, true},
		{"15%", 0.15, true},
		{"1e3", 1000, true},
		{"1 000", 1000, true},
		{"", 0, false},
		{"-", 0, false},
		{"abc", 0, false},
		{"12abc", 0, false},
		{"1,2,3", 0, false},
		{"2024-01-31", 0, false},
		{"R$ 20.000", 20000, true},
		{"20.000", 20000, true},
		{"R$ 20.000,00", 20000, true},
		{"-1.500", -1500, true},
		{"0.250", 0.25, true},
		{"1.5", 1.5, true},
		{"1.2345", 1.2345, true},
		{"1.500e3", 1500, true},
		{"1e400", 0, false},
		{"-1e400", 0, false},
		{"(1e400)", 0, false},
	}

	for _, tc := range cases {
		got, ok := ParseNumber(tc.in)
		assert.Equal(t, tc.ok, ok, "ParseNumber(%q) ok", tc.in)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, "ParseNumber(%q)", tc.in)
		}
	}
}

func TestCellResolveStoredNumbersKeepDecimalDot(t *testing.T) {
	n, res := NumberCell("20.125").Resolve()
	assert.Equal(t, ResolvedNumber, res)
	assert.InDelta(t, 20.125, n, 1e-9)

	n, res = FormulaCell("B2*2", "40.250").Resolve()
	assert.Equal(t, ResolvedNumber, res)
	assert.InDelta(t, 40.25, n, 1e-9)

	n, res = TextCell("20.125").Resolve()
	assert.Equal(t, ResolvedNumber, res)
	assert.InDelta(t, 20125, n, 1e-9)
}

func TestCellResolveRejectsOverflow(t *testing.T) {
	for _, c := range []Cell{TextCell("1e400"), TextCell("-1e400"), NumberCell("1e400")} {
		_, res := c.Resolve()
		assert.Equal(t, ResolvedUnusable, res, "%v %q", c.Kind, c.Raw)
	}
}

func TestIsNotApplicable(t *testing.T) {
	for _, text := range []string{"N/A", "n/a", "NA", "n.a.", "Não se aplica", "NAO APLICAVEL", "not applicable"} {
		assert.True(t, IsNotApplicable(text), text)
	}
	for _, text := range []string{"", "0", "nada", "-"} {
		assert.False(t, IsNotApplicable(text), text)
	}
}

func TestCellResolve(t *testing.T) {
	n, res := NumberCell("12.5").Resolve()
	assert.Equal(t, ResolvedNumber, res)
	assert.Equal(t, 12.5, n)

	n, res = FormulaCell("B2*2", "25").Resolve()
	assert.Equal(t, ResolvedNumber, res)
	assert.Equal(t, 25.0, n)

	_, res = FormulaCell("B2*2", "").Resolve()
	assert.Equal(t, ResolvedBlank, res)

	_, res = TextCell("N/A").Resolve()
	assert.Equal(t, ResolvedNotApplicable, res)

	_, res = TextCell("pending").Resolve()
	assert.Equal(t, ResolvedUnusable, res)

	_, res = Cell{Kind: CellBool, Raw: "1"}.Resolve()
	assert.Equal(t, ResolvedUnusable, res)

	_, res = Empty().Resolve()
	assert.Equal(t, ResolvedBlank, res)
}
