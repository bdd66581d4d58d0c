package ingestion

import (
	"fmt"

	"github.com/rpattn/finsheet/internal/domain"
)

// Recommend turns a quality report into short advisory messages. Rules are
// evaluated in a fixed order.
func Recommend(r domain.QualityReport) []string {
	out := []string{}

	switch {
	case r.RequiredCompleteness < 50:
		out = append(out, fmt.Sprintf("Required driver fields are only %.0f%% complete; fill in revenue, costs, tax rate and working capital days before running projections.", r.RequiredCompleteness))
	case r.RequiredCompleteness < 100:
		out = append(out, fmt.Sprintf("Required driver fields are %.0f%% complete; review the periods with blank required values.", r.RequiredCompleteness))
	}

	if r.OptionalApplicable > 0 && r.OptionalCompleteness < 30 {
		out = append(out, "Few optional drivers were provided; adding growth, capex and financing inputs improves projection accuracy.")
	}

	if r.OverrideCount == 0 && r.RequiredCompleteness < 80 {
		out = append(out, "No override values found; if you have actual results for any period, enter them in the override sheets.")
	}

	if r.OverrideCount > 0 {
		out = append(out, fmt.Sprintf("%d override values were found and take priority over driver-based estimates.", r.OverrideCount))
	}

	if r.QualityScore >= 90 {
		out = append(out, "Data quality is excellent; the workbook is ready for projection.")
	}
	return out
}
