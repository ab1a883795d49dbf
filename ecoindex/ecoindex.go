// Package ecoindex implements the EcoIndex scoring engine: a pure mapping
// from raw page metrics to a composite 0-100 score, a letter grade and
// environmental impact figures. It performs no I/O and is safe for
// concurrent use.
package ecoindex

// PageMetrics are the raw metrics collected from a web page.
type PageMetrics struct {
	// DOMElements is the number of DOM elements, counting every SVG as a
	// single node.
	DOMElements int `json:"domElements"`
	// Requests is the number of captured network requests, excluding
	// data: and blob: URIs.
	Requests int `json:"requests"`
	// SizeKB is the total transfer size in 1000-byte kilobytes.
	SizeKB float64 `json:"sizeKb"`
}

// Grade is an EcoIndex letter grade from A (best) to G (worst).
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
	GradeF Grade = "F"
	GradeG Grade = "G"
)

// Color returns the conventional EcoIndex display color for the grade.
func (g Grade) Color() string {
	switch g {
	case GradeA:
		return "#349a47"
	case GradeB:
		return "#51b84b"
	case GradeC:
		return "#cadb2a"
	case GradeD:
		return "#f6eb15"
	case GradeE:
		return "#fecd06"
	case GradeF:
		return "#f99839"
	default:
		return "#ed2124"
	}
}

// Label returns a human-readable label for the grade.
func (g Grade) Label() string {
	switch g {
	case GradeA:
		return "Excellent"
	case GradeB:
		return "Very Good"
	case GradeC:
		return "Good"
	case GradeD:
		return "Average"
	case GradeE:
		return "Below Average"
	case GradeF:
		return "Poor"
	default:
		return "Very Poor"
	}
}

// Score is a complete EcoIndex scoring result.
type Score struct {
	// Value is the composite score, clamped to [0, 100].
	Value float64 `json:"score"`
	// Grade derives deterministically from Value.
	Grade Grade `json:"grade"`
	// GHG is the estimated greenhouse gas emission in gCO2e per view.
	GHG float64 `json:"ghg"`
	// Water is the estimated water consumption in cl per view.
	Water float64 `json:"water"`
}

// QuantilePosition returns the interpolated position of value within the
// ascending quantiles table, clamped to [0, len(quantiles)-1].
func QuantilePosition(value float64, quantiles []float64) float64 {
	last := len(quantiles) - 1
	if value <= quantiles[0] {
		return 0
	}
	if value >= quantiles[last] {
		return float64(last)
	}

	for i := 1; i <= last; i++ {
		if value < quantiles[i] {
			lower, upper := quantiles[i-1], quantiles[i]
			return float64(i-1) + (value-lower)/(upper-lower)
		}
	}
	return float64(last)
}

// ComputeScore computes the composite EcoIndex score for the metrics:
//
//	score = 100 - 5*(3*Qdom + 2*Qreq + Qsize)/6
//
// clamped to [0, 100]. The metric weights (3, 2, 1) are fixed published
// constants.
func ComputeScore(m PageMetrics) float64 {
	qDOM := QuantilePosition(float64(m.DOMElements), DOMQuantiles[:])
	qReq := QuantilePosition(float64(m.Requests), RequestQuantiles[:])
	qSize := QuantilePosition(m.SizeKB, SizeQuantiles[:])

	score := 100 - 5*(3*qDOM+2*qReq+qSize)/6
	return clamp(score, 0, 100)
}

// GradeFor returns the grade for a score. Total: every score maps to
// exactly one of A-G.
func GradeFor(score float64) Grade {
	for _, t := range gradeThresholds {
		if score >= t.min {
			return t.grade
		}
	}
	return GradeG
}

// GHG estimates greenhouse gas emissions in gCO2e per page view. Affine and
// strictly decreasing in score.
func GHG(score float64) float64 {
	return 2 + 2*(100-score)/100
}

// Water estimates water consumption in centiliters per page view. Affine
// and strictly decreasing in score.
func Water(score float64) float64 {
	return 3 + 3*(100-score)/100
}

// Compute performs a complete EcoIndex calculation for the metrics.
func Compute(m PageMetrics) Score {
	score := ComputeScore(m)
	return Score{
		Value: score,
		Grade: GradeFor(score),
		GHG:   GHG(score),
		Water: Water(score),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
