package workbook

import (
	"math"
	"strings"
	"unicode"

	"github.com/rpattn/finsheet/internal/fieldschema"
	"github.com/shopspring/decimal"
)

var notApplicableTokens = map[string]struct{}{
	"n/a":            {},
	"na":             {},
	"n a":            {},
	"n.a.":           {},
	"nao se aplica":  {},
	"nao aplicavel":  {},
	"nao aplica":     {},
	"not applicable": {},
	"sem aplicacao":  {},
}

// IsNotApplicable reports whether text is an explicit "not applicable" marker.
func IsNotApplicable(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return false
	}
	if _, ok := notApplicableTokens[text]; ok {
		return true
	}
	_, ok := notApplicableTokens[fieldschema.Fold(text)]
	return ok
}

// ParseNumber coerces spreadsheet text to a number. It accepts currency
// prefixes, thousands separators in either the 1,234.56 or 1.234,56
// convention, accounting negatives "(1,234)", and a trailing percent sign,
// which divides by 100 so "15%" matches a percent-formatted cell's raw 0.15.
func ParseNumber(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	percent := false
	if strings.HasSuffix(s, "%") {
		percent = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	}

	s = stripCurrency(s)
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = strings.TrimSpace(s[1:])
	} else if strings.HasPrefix(s, "+") {
		s = strings.TrimSpace(s[1:])
	}

	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\'' || r == '_' {
			return -1
		}
		return r
	}, s)

	normalized, ok := normalizeSeparators(s)
	if !ok {
		return 0, false
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return 0, false
	}
	if negative {
		d = d.Neg()
	}
	if percent {
		d = d.Div(decimal.NewFromInt(100))
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func stripCurrency(s string) string {
	for _, prefix := range []string{"R$", "US$", "$", "€", "£"} {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(s, prefix))
		}
		if strings.HasPrefix(s, "-"+prefix) {
			return "-" + strings.TrimSpace(strings.TrimPrefix(s, "-"+prefix))
		}
	}
	return s
}

// normalizeSeparators rewrites s into the plain "1234.56" form. When both
// separators appear the rightmost one is the decimal mark. A lone comma is
// a thousands separator only when every group after it has three digits.
// A lone dot follows the same rule unless the integer part is zero.
func normalizeSeparators(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, r := range s {
		if !(unicode.IsDigit(r) || r == '.' || r == ',' || r == 'e' || r == 'E' || r == '-' || r == '+') {
			return "", false
		}
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		groups := strings.Split(s, ",")
		if groupedByThousands(groups) {
			s = strings.Join(groups, "")
		} else if len(groups) == 2 {
			s = groups[0] + "." + groups[1]
		} else {
			return "", false
		}
	case strings.Count(s, ".") > 1:
		groups := strings.Split(s, ".")
		if !groupedByThousands(groups) {
			return "", false
		}
		s = strings.Join(groups, "")
	case lastDot >= 0:
		// "20.000" is pt-BR for twenty thousand; "0.250" stays a fraction.
		groups := strings.Split(s, ".")
		if groupedByThousands(groups) && allDigits(s[:lastDot]+s[lastDot+1:]) && strings.TrimLeft(groups[0], "0") != "" {
			s = strings.Join(groups, "")
		}
	}

	if strings.Count(s, ".") > 1 {
		return "", false
	}
	return s, true
}

func groupedByThousands(groups []string) bool {
	if len(groups) < 2 || len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
