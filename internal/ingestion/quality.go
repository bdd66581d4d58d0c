package ingestion

import (
	"math"

	"github.com/rpattn/finsheet/internal/domain"
	"github.com/rpattn/finsheet/internal/fieldschema"
)

const (
	requiredWeight   = 0.6
	optionalWeight   = 0.2
	overrideWeight   = 1.5
	overrideBonusCap = 20.0
)

// AnalyzeQuality computes fill rates for driver fields and counts override
// values. A first-period-only field is applicable in period 1 only; any other
// driver cell is applicable and counts as filled when it holds a number.
func AnalyzeQuality(dataset domain.PeriodDataset, registry *fieldschema.Registry) domain.QualityReport {
	var report domain.QualityReport

	for p, rec := range dataset {
		for _, def := range registry.Fields() {
			v := rec[def.Key]
			switch {
			case def.IsOverride:
				if !v.IsMissing() {
					report.OverrideCount++
				}
			case def.IsDriver():
				if def.FirstPeriodOnly && p > 0 {
					continue
				}
				if def.Required {
					report.RequiredApplicable++
					if v.IsNumber() {
						report.RequiredFilled++
					}
				} else {
					report.OptionalApplicable++
					if v.IsNumber() {
						report.OptionalFilled++
					}
				}
			}
		}
	}

	report.RequiredCompleteness = percentage(report.RequiredFilled, report.RequiredApplicable)
	report.OptionalCompleteness = percentage(report.OptionalFilled, report.OptionalApplicable)
	report.QualityScore = qualityScore(report)
	return report
}

func qualityScore(r domain.QualityReport) int {
	bonus := math.Min(float64(r.OverrideCount)*overrideWeight, overrideBonusCap)
	score := math.Round(requiredWeight*r.RequiredCompleteness + optionalWeight*r.OptionalCompleteness + bonus)
	return int(math.Min(100, score))
}

func percentage(filled, applicable int) float64 {
	if applicable == 0 {
		return 0
	}
	return float64(filled) * 100 / float64(applicable)
}
