package ingestion

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/rpattn/finsheet/internal/domain"
	"github.com/rpattn/finsheet/internal/fieldschema"
	"github.com/rpattn/finsheet/internal/workbook"
)

// PeriodSettings bounds every scan the period resolver performs.
type PeriodSettings struct {
	MaxPeriods     int
	DefaultPeriods int
	ProbeRows      int
	SampleRows     int
}

// DefaultPeriodSettings returns the limits used by the generated templates.
func DefaultPeriodSettings() PeriodSettings {
	return PeriodSettings{
		MaxPeriods:     60,
		DefaultPeriods: 12,
		ProbeRows:      20,
		SampleRows:     10,
	}
}

func (s PeriodSettings) normalized() PeriodSettings {
	def := DefaultPeriodSettings()
	if s.MaxPeriods <= 0 {
		s.MaxPeriods = def.MaxPeriods
	}
	if s.DefaultPeriods <= 0 {
		s.DefaultPeriods = def.DefaultPeriods
	}
	s.DefaultPeriods = clamp(s.DefaultPeriods, 1, s.MaxPeriods)
	if s.ProbeRows <= 0 {
		s.ProbeRows = def.ProbeRows
	}
	if s.SampleRows <= 0 {
		s.SampleRows = def.SampleRows
	}
	return s
}

// Header patterns run against folded header text ("Período 1" -> "periodo 1").
var (
	strictPeriodPattern = regexp.MustCompile(`^(periodo|period|mes|month|trimestre|quarter|semestre|semester|ano|year) ?\d+$`)
	fuzzyPeriodPattern  = regexp.MustCompile(`(periodo|period|\bper\b|\bmes\b|month|\btrim|quarter|semestre|\bsem\b|\bano\b|year|\b[pmqt]\d{1,2}\b|\b(19|20)\d{2}\b)`)
	descriptionPattern  = regexp.MustCompile(`(descri|\blabel\b|\brotulo\b)`)
	notesPattern        = regexp.MustCompile(`(\bnota|\bnote|observ|coment)`)
)

// PeriodInput is what a strategy sees: one sheet and where period data
// conventionally starts on it.
type PeriodInput struct {
	Sheet       *workbook.Sheet
	StartColumn int
	Settings    PeriodSettings
}

func (in PeriodInput) header() []string {
	var folded []string
	for _, h := range in.Sheet.HeaderRow() {
		folded = append(folded, fieldschema.Fold(h))
	}
	return folded
}

// PeriodStrategy is one tier of period-count detection. Detect returns the
// count it is confident about, or false.
type PeriodStrategy interface {
	Name() string
	Detect(in PeriodInput) (int, bool)
}

// StrictHeaderStrategy counts header cells that are exactly a period word
// followed by a number.
type StrictHeaderStrategy struct{}

func (StrictHeaderStrategy) Name() string { return "strict_header" }

func (StrictHeaderStrategy) Detect(in PeriodInput) (int, bool) {
	n := 0
	for _, h := range in.header() {
		if strictPeriodPattern.MatchString(h) {
			n++
		}
	}
	return n, n > 0
}

// FuzzyHeaderStrategy counts header cells containing any period fragment,
// including abbreviations such as "P1", "Q2" or a bare year.
type FuzzyHeaderStrategy struct{}

func (FuzzyHeaderStrategy) Name() string { return "fuzzy_header" }

func (FuzzyHeaderStrategy) Detect(in PeriodInput) (int, bool) {
	n := 0
	for _, h := range in.header() {
		if h != "" && fuzzyPeriodPattern.MatchString(h) {
			n++
		}
	}
	return n, n > 0
}

// DescriptionColumnStrategy infers the count from the columns between the
// description column and the notes column. Without a notes column it counts
// contiguous occupied columns after the description, where a column is
// occupied when its header or any data row below it is non-empty.
type DescriptionColumnStrategy struct{}

func (DescriptionColumnStrategy) Name() string { return "description_column" }

func (DescriptionColumnStrategy) Detect(in PeriodInput) (int, bool) {
	header := in.header()
	desc := indexMatching(header, descriptionPattern, 0)
	if desc < 0 {
		return 0, false
	}
	if notes := indexMatching(header, notesPattern, desc+1); notes >= 0 {
		n := notes - desc - 1
		return n, n > 0
	}

	rows := in.Sheet.DataRowIndexes()
	n := 0
	for col := desc + 1; ; col++ {
		if col >= len(header) && !columnHasData(in.Sheet, rows, col) {
			break
		}
		if col < len(header) && header[col] == "" && !columnHasData(in.Sheet, rows, col) {
			break
		}
		n++
		if n > in.Settings.MaxPeriods {
			break
		}
	}
	return n, n > 0
}

// NumericSamplingStrategy samples data rows and counts contiguous numeric
// cells from the start column. The most frequent non-zero count wins; ties
// go to the larger count.
type NumericSamplingStrategy struct{}

func (NumericSamplingStrategy) Name() string { return "numeric_sampling" }

func (NumericSamplingStrategy) Detect(in PeriodInput) (int, bool) {
	rows := in.Sheet.DataRowIndexes()
	if len(rows) > in.Settings.SampleRows {
		rows = rows[:in.Settings.SampleRows]
	}

	freq := make(map[int]int)
	for _, r := range rows {
		n := 0
		for col := in.StartColumn; n <= in.Settings.MaxPeriods; col++ {
			if !in.Sheet.Cell(r, col).IsNumeric() {
				break
			}
			n++
		}
		if n > 0 {
			freq[n]++
		}
	}
	if len(freq) == 0 {
		return 0, false
	}

	counts := make([]int, 0, len(freq))
	for n := range freq {
		counts = append(counts, n)
	}
	sort.Ints(counts)
	best := counts[0]
	for _, n := range counts {
		if freq[n] >= freq[best] {
			best = n
		}
	}
	return best, true
}

// DefaultPeriodStrategies is the tier order used by the engine.
func DefaultPeriodStrategies() []PeriodStrategy {
	return []PeriodStrategy{
		StrictHeaderStrategy{},
		FuzzyHeaderStrategy{},
		DescriptionColumnStrategy{},
		NumericSamplingStrategy{},
	}
}

// PeriodResolution carries declared and actual counts and the column each
// role's period data starts at.
type PeriodResolution struct {
	Declared     int                      `json:"declared"`
	Actual       int                      `json:"actual"`
	Strategy     string                   `json:"strategy"`
	StartColumns map[domain.SheetRole]int `json:"startColumns"`
}

// PeriodResolver runs the strategy tiers in order.
type PeriodResolver struct {
	Strategies []PeriodStrategy
	Settings   PeriodSettings
}

// NewPeriodResolver builds a resolver with the default tiers.
func NewPeriodResolver(settings PeriodSettings) *PeriodResolver {
	return &PeriodResolver{Strategies: DefaultPeriodStrategies(), Settings: settings.normalized()}
}

// Resolve determines the declared period count from the drivers sheet and
// the actual count from every role sheet.
func (r *PeriodResolver) Resolve(wb *workbook.Workbook, structure domain.WorkbookStructure) (PeriodResolution, []string) {
	settings := r.Settings.normalized()
	var warnings []string

	res := PeriodResolution{StartColumns: make(map[domain.SheetRole]int)}
	for role, name := range structure.SheetRoles {
		if role == domain.RoleInstructions {
			continue
		}
		if sheet := wb.Sheet(name); sheet != nil {
			res.StartColumns[role] = periodStartColumn(sheet, defaultStartColumn(structure.Variant, role))
		}
	}

	var dataSheet *workbook.Sheet
	if name, ok := structure.Sheet(domain.RoleDrivers); ok {
		dataSheet = wb.Sheet(name)
	}

	if dataSheet != nil && dataSheet.HasData() {
		in := PeriodInput{Sheet: dataSheet, StartColumn: res.StartColumns[domain.RoleDrivers], Settings: settings}
		for _, strategy := range r.Strategies {
			n, ok := strategy.Detect(in)
			if !ok || n <= 0 {
				continue
			}
			if n > settings.MaxPeriods {
				warnings = append(warnings, fmt.Sprintf("%s detected %d periods, above the supported maximum of %d", strategy.Name(), n, settings.MaxPeriods))
				continue
			}
			res.Declared = n
			res.Strategy = strategy.Name()
			break
		}
	}

	if res.Declared == 0 {
		res.Declared = settings.DefaultPeriods
		res.Strategy = "default"
		warnings = append(warnings, fmt.Sprintf("period count could not be detected; assuming %d periods", res.Declared))
	}
	res.Declared = clamp(res.Declared, 1, settings.MaxPeriods)

	actual := 0
	for role, name := range structure.SheetRoles {
		if role == domain.RoleInstructions {
			continue
		}
		sheet := wb.Sheet(name)
		if sheet == nil {
			continue
		}
		if n := lastPeriodWithData(sheet, res.StartColumns[role], res.Declared, settings.ProbeRows); n > actual {
			actual = n
		}
	}
	res.Actual = clamp(actual, 1, res.Declared)

	return res, warnings
}

// lastPeriodWithData returns the 1-based index of the rightmost period
// column holding numeric content within the first probeRows data rows. A
// blank period followed by a filled one still counts.
func lastPeriodWithData(sheet *workbook.Sheet, start, declared, probeRows int) int {
	rows := sheet.DataRowIndexes()
	if len(rows) > probeRows {
		rows = rows[:probeRows]
	}
	last := 0
	for p := 0; p < declared; p++ {
		for _, r := range rows {
			if _, res := sheet.Cell(r, start+p).Resolve(); res == workbook.ResolvedNumber {
				last = p + 1
				break
			}
		}
	}
	return last
}

// defaultStartColumn is the conventional first period column when the header
// carries no usable hint: key, description, then periods on drivers and
// legacy sheets; key then periods on smart override sheets and on
// unrecognized layouts.
func defaultStartColumn(variant domain.Variant, role domain.SheetRole) int {
	switch {
	case variant == domain.VariantGeneric:
		return 1
	case variant == domain.VariantSmart && role != domain.RoleDrivers:
		return 1
	default:
		return 2
	}
}

// periodStartColumn refines the conventional start column with the first
// period-labelled header cell, or the column after the description.
func periodStartColumn(sheet *workbook.Sheet, fallback int) int {
	header := make([]string, 0)
	for _, h := range sheet.HeaderRow() {
		header = append(header, fieldschema.Fold(h))
	}
	for i, h := range header {
		if i == 0 || h == "" {
			continue
		}
		if strictPeriodPattern.MatchString(h) || fuzzyPeriodPattern.MatchString(h) {
			return i
		}
	}
	if desc := indexMatching(header, descriptionPattern, 0); desc >= 0 {
		return desc + 1
	}
	return fallback
}

func indexMatching(header []string, pattern *regexp.Regexp, from int) int {
	for i := from; i < len(header); i++ {
		if header[i] != "" && pattern.MatchString(header[i]) {
			return i
		}
	}
	return -1
}

func columnHasData(sheet *workbook.Sheet, rows []int, col int) bool {
	for _, r := range rows {
		if !sheet.Cell(r, col).IsEmpty() {
			return true
		}
	}
	return false
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
