package ingestion

import (
	"github.com/rpattn/finsheet/internal/domain"
	"github.com/rpattn/finsheet/internal/fieldschema"
	"github.com/rpattn/finsheet/internal/workbook"
	"github.com/rpattn/finsheet/pkg/validator"
)

// Result is everything a downstream consumer needs from one ingestion.
type Result struct {
	Dataset               domain.PeriodDataset     `json:"dataset"`
	ActualDataPeriodCount int                      `json:"actualDataPeriodCount"`
	DeclaredPeriodCount   int                      `json:"declaredPeriodCount"`
	PeriodCountStrategy   string                   `json:"periodCountStrategy"`
	PeriodType            string                   `json:"periodType"`
	Variant               domain.Variant           `json:"variant"`
	Structure             domain.WorkbookStructure `json:"structure"`
	Quality               domain.QualityReport     `json:"quality"`
	Recommendations       []string                 `json:"recommendations"`
	Warnings              []string                 `json:"warnings"`
}

// Engine runs the ingestion pipeline. It keeps no per-run state, so one
// Engine may serve concurrent requests.
type Engine struct {
	registry  *fieldschema.Registry
	periods   *PeriodResolver
	validator *validator.DatasetValidator
}

// NewEngine wires an engine to a registry and period limits. A nil registry
// selects the default catalog.
func NewEngine(registry *fieldschema.Registry, settings PeriodSettings) *Engine {
	if registry == nil {
		registry = fieldschema.Default
	}
	return &Engine{
		registry:  registry,
		periods:   NewPeriodResolver(settings),
		validator: validator.NewDatasetValidator(registry),
	}
}

// Registry returns the catalog the engine extracts against.
func (e *Engine) Registry() *fieldschema.Registry {
	return e.registry
}

// Run opens payload as an xlsx workbook and ingests it. periodTypeHint is
// only used as a label when the workbook does not state its period type.
func (e *Engine) Run(payload []byte, periodTypeHint string) (*Result, error) {
	wb, err := workbook.Load(payload)
	if err != nil {
		return nil, newIngestError("workbook load", ErrWorkbookUnreadable, err)
	}
	return e.RunWorkbook(wb, periodTypeHint)
}

// RunWorkbook ingests an already opened workbook.
func (e *Engine) RunWorkbook(wb *workbook.Workbook, periodTypeHint string) (*Result, error) {
	warnings := []string{}

	structure, structureWarnings, err := DetectStructure(wb)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, structureWarnings...)

	periods, periodWarnings := e.periods.Resolve(wb, structure)
	warnings = append(warnings, periodWarnings...)
	structure.DeclaredPeriodCount = periods.Declared

	dataset, extractWarnings := ExtractAndMerge(wb, structure, periods, e.registry)
	warnings = append(warnings, extractWarnings...)

	if validation := e.validator.Validate(dataset); !validation.IsValid || len(validation.Warnings) > 0 {
		warnings = append(warnings, validation.Messages()...)
	}

	quality := AnalyzeQuality(dataset, e.registry)

	return &Result{
		Dataset:               dataset,
		ActualDataPeriodCount: periods.Actual,
		DeclaredPeriodCount:   periods.Declared,
		PeriodCountStrategy:   periods.Strategy,
		PeriodType:            ResolvePeriodType(wb, structure, periodTypeHint),
		Variant:               structure.Variant,
		Structure:             structure,
		Quality:               quality,
		Recommendations:       Recommend(quality),
		Warnings:              warnings,
	}, nil
}
