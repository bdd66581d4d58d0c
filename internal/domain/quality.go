package domain

// QualityReport summarizes how complete a dataset is.
type QualityReport struct {
	RequiredCompleteness float64 `json:"requiredCompleteness"`
	OptionalCompleteness float64 `json:"optionalCompleteness"`
	OverrideCount        int     `json:"overrideCount"`
	QualityScore         int     `json:"qualityScore"`

	RequiredApplicable int `json:"requiredApplicable"`
	RequiredFilled     int `json:"requiredFilled"`
	OptionalApplicable int `json:"optionalApplicable"`
	OptionalFilled     int `json:"optionalFilled"`
}
