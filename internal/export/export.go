package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rpattn/finsheet/internal/domain"
	"github.com/rpattn/finsheet/internal/fieldschema"
	"github.com/xuri/excelize/v2"
)

// Format selects the download encoding of a dataset.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	datasetSheet = "Dataset"
	qualitySheet = "Quality"
)

// ParseFormat accepts "csv" or "xlsx" in any case. Empty means csv.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// FileName derives a download name from the uploaded workbook name.
func FileName(run domain.IngestionRun, f Format) string {
	base := run.FileName
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	base = sanitizeFileComponent(base)
	return fmt.Sprintf("%s-%s.%s", base, run.ID.String()[:8], f)
}

// Write encodes the run's dataset in the requested format.
func Write(w io.Writer, run domain.IngestionRun, registry *fieldschema.Registry, f Format) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, run, registry)
	default:
		return WriteCSV(w, run, registry)
	}
}

// WriteCSV writes one row per field with a column per period.
func WriteCSV(w io.Writer, run domain.IngestionRun, registry *fieldschema.Registry) error {
	buffered := bufio.NewWriter(w)
	csvWriter := csv.NewWriter(buffered)

	if err := csvWriter.Write(headerRow(len(run.Dataset))); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, def := range registry.Fields() {
		if err := csvWriter.Write(fieldRow(def, run.Dataset)); err != nil {
			return fmt.Errorf("write %s: %w", def.Key, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return buffered.Flush()
}

// WriteXLSX writes the dataset sheet plus a quality summary sheet. Numbers
// stay numeric so the download can be re-ingested.
func WriteXLSX(w io.Writer, run domain.IngestionRun, registry *fieldschema.Registry) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(datasetSheet); err != nil {
		return fmt.Errorf("create dataset sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	header := headerRow(len(run.Dataset))
	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(datasetSheet, "A1", &headerCells); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, def := range registry.Fields() {
		cells := []any{def.Key, def.Label}
		for p := range run.Dataset {
			cells = append(cells, cellValue(run.Dataset.Get(p, def.Key)))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(datasetSheet, cell, &cells); err != nil {
			return fmt.Errorf("write %s: %w", def.Key, err)
		}
	}

	if _, err := f.NewSheet(qualitySheet); err != nil {
		return fmt.Errorf("create quality sheet: %w", err)
	}
	summary := [][]any{
		{"fileName", run.FileName},
		{"variant", string(run.Structure.Variant)},
		{"periodType", run.PeriodType},
		{"actualDataPeriodCount", run.ActualDataPeriodCount},
		{"requiredCompleteness", run.Quality.RequiredCompleteness},
		{"optionalCompleteness", run.Quality.OptionalCompleteness},
		{"overrideCount", run.Quality.OverrideCount},
		{"qualityScore", run.Quality.QualityScore},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(qualitySheet, cell, &row); err != nil {
			return fmt.Errorf("write quality summary: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func headerRow(periods int) []string {
	header := make([]string, 0, periods+2)
	header = append(header, "key", "label")
	for p := 1; p <= periods; p++ {
		header = append(header, "period_"+strconv.Itoa(p))
	}
	return header
}

func fieldRow(def fieldschema.FieldDefinition, dataset domain.PeriodDataset) []string {
	row := make([]string, 0, len(dataset)+2)
	row = append(row, def.Key, def.Label)
	for p := range dataset {
		row = append(row, formatValue(dataset.Get(p, def.Key)))
	}
	return row
}

func formatValue(v domain.Value) string {
	switch {
	case v.IsNumber():
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case v.IsNA():
		return domain.NotApplicableToken
	default:
		return ""
	}
}

func cellValue(v domain.Value) any {
	switch {
	case v.IsNumber():
		return v.Number
	case v.IsNA():
		return domain.NotApplicableToken
	default:
		return nil
	}
}

func sanitizeFileComponent(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	builder := strings.Builder{}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-' || r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('-')
		}
	}
	result := strings.Trim(builder.String(), "-")
	if result == "" {
		return "dataset"
	}
	return result
}
