package ecoindex

// Quantile reference tables derived from the HTTP Archive dataset (500,000
// URLs), 21 points each at percentiles 0, 5, ..., 100. Together with the
// metric weights and grade thresholds below they are the comparability
// baseline across implementations: changing any value breaks historical
// score comparability.

// DOMQuantiles is the distribution of DOM element counts. Weight 3.
var DOMQuantiles = [21]float64{
	0, 47, 75, 159, 233, 298, 358, 417, 476, 537, 603, 674, 753, 843,
	949, 1076, 1237, 1459, 1801, 2479, 594601,
}

// RequestQuantiles is the distribution of HTTP request counts. Weight 2.
var RequestQuantiles = [21]float64{
	0, 2, 15, 25, 34, 42, 49, 56, 63, 70, 78, 86, 95, 105, 117,
	130, 147, 170, 205, 281, 3920,
}

// SizeQuantiles is the distribution of transfer sizes in KB. Weight 1.
var SizeQuantiles = [21]float64{
	0, 1.37, 144.7, 319.53, 479.46, 631.97, 783.38, 937.91, 1098.62,
	1265.47, 1448.32, 1648.27, 1876.08, 2142.06, 2465.37, 2866.31,
	3401.59, 4155.73, 5400.08, 8037.54, 223212.26,
}

// gradeThreshold maps a minimum score to a grade letter. Checked
// highest-first; the first match wins, and 0 always hits G.
type gradeThreshold struct {
	min   float64
	grade Grade
}

var gradeThresholds = [7]gradeThreshold{
	{81, GradeA},
	{71, GradeB},
	{61, GradeC},
	{51, GradeD},
	{41, GradeE},
	{31, GradeF},
	{0, GradeG},
}
