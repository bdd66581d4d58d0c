package validator

import (
	"fmt"
	"math"

	"github.com/rpattn/finsheet/internal/domain"
	"github.com/rpattn/finsheet/internal/fieldschema"
)

// DatasetValidator checks a merged period dataset against the field registry
type DatasetValidator struct {
	registry *fieldschema.Registry
	rules    map[fieldschema.ValueType]Range
}

// Range bounds plausible values for a value type. Nil ends are open.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Period  int    `json:"period"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	IsValid  bool              `json:"is_valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
}

func bound(v float64) *float64 { return &v }

// DefaultRanges are the plausibility bounds applied per value type.
// Percentages are stored as fractions, so 10 means 1000%.
func DefaultRanges() map[fieldschema.ValueType]Range {
	return map[fieldschema.ValueType]Range{
		fieldschema.ValueTypePercentage: {Min: bound(-1), Max: bound(10)},
		fieldschema.ValueTypeDays:       {Min: bound(0), Max: bound(3650)},
	}
}

// NewDatasetValidator creates a validator with the default ranges
func NewDatasetValidator(registry *fieldschema.Registry) *DatasetValidator {
	return &DatasetValidator{registry: registry, rules: DefaultRanges()}
}

// WithRange overrides the plausibility range for one value type
func (dv *DatasetValidator) WithRange(vt fieldschema.ValueType, r Range) *DatasetValidator {
	rules := make(map[fieldschema.ValueType]Range, len(dv.rules)+1)
	for k, v := range dv.rules {
		rules[k] = v
	}
	rules[vt] = r
	return &DatasetValidator{registry: dv.registry, rules: rules}
}

// Validate checks structural invariants (errors) and value plausibility
// (warnings). Periods in messages are 1-based.
func (dv *DatasetValidator) Validate(dataset domain.PeriodDataset) ValidationResult {
	result := ValidationResult{
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	for p, rec := range dataset {
		period := p + 1

		// Every record carries every key
		for _, def := range dv.registry.Fields() {
			v, exists := rec[def.Key]
			if !exists {
				result.IsValid = false
				result.Errors = append(result.Errors, ValidationError{
					Field:   def.Key,
					Period:  period,
					Message: fmt.Sprintf("field '%s' is missing from period %d", def.Key, period),
				})
				continue
			}

			if def.FirstPeriodOnly && p > 0 && !v.IsNA() {
				result.IsValid = false
				result.Errors = append(result.Errors, ValidationError{
					Field:   def.Key,
					Period:  period,
					Message: fmt.Sprintf("field '%s' only applies to the first period but period %d holds %s", def.Key, period, v),
				})
				continue
			}

			n, ok := v.Float()
			if !ok {
				continue
			}
			if math.IsNaN(n) || math.IsInf(n, 0) {
				result.IsValid = false
				result.Errors = append(result.Errors, ValidationError{
					Field:   def.Key,
					Period:  period,
					Message: fmt.Sprintf("field '%s' holds a non-finite value in period %d", def.Key, period),
				})
				continue
			}
			if err := dv.validateRange(def, n); err != nil {
				result.Warnings = append(result.Warnings, ValidationError{
					Field:   def.Key,
					Period:  period,
					Message: fmt.Sprintf("%v in period %d", err, period),
					Value:   n,
				})
			}
		}

		// Keys the registry does not know
		for key := range rec {
			if _, known := dv.registry.Lookup(key); !known {
				result.IsValid = false
				result.Errors = append(result.Errors, ValidationError{
					Field:   key,
					Period:  period,
					Message: fmt.Sprintf("field '%s' is not defined in the registry", key),
				})
			}
		}
	}

	return result
}

func (dv *DatasetValidator) validateRange(def fieldschema.FieldDefinition, value float64) error {
	r, ok := dv.rules[def.ValueType]
	if !ok {
		return nil
	}
	if r.Min != nil && value < *r.Min {
		return fmt.Errorf("field '%s' value %v is less than minimum %v", def.Key, value, *r.Min)
	}
	if r.Max != nil && value > *r.Max {
		return fmt.Errorf("field '%s' value %v is greater than maximum %v", def.Key, value, *r.Max)
	}
	return nil
}

// Messages flattens warnings to plain strings.
func (r ValidationResult) Messages() []string {
	out := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		out = append(out, e.Message)
	}
	for _, w := range r.Warnings {
		out = append(out, w.Message)
	}
	return out
}
