package portfolio

import (
	"math"
	"sort"
)

// Shared numeric helpers for the aggregators. All are defined for empty
// input (returning 0) so aggregation never divides by zero.

func sumFloat(vals []float64) float64 {
	s := 0.0
	for _, v := range vals {
		s += v
	}
	return s
}

func meanFloat(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return sumFloat(vals) / float64(len(vals))
}

func minFloat(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxFloat(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// stdDev computes the population standard deviation,
// sqrt(sum((x-mean)^2) / n). Zero for empty input.
func stdDev(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	mean := meanFloat(vals)
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)))
}

// percentile computes a nearest-rank percentile: the value at index
// floor(n*p), 0-indexed, of the ascending-sorted input. This is the exact
// formula the scoring platform has always used for peer comparison; it is
// deliberately NOT linear interpolation, and must stay index-compatible with
// historical reports. p is a fraction in [0,1); out-of-range indexes clamp
// to the last element. Zero for empty input.
func percentile(sortedAsc []float64, p float64) float64 {
	n := len(sortedAsc)
	if n == 0 {
		return 0
	}
	idx := int(math.Floor(float64(n) * p))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sortedAsc[idx]
}

// sortedCopy returns an ascending-sorted copy of vals.
func sortedCopy(vals []float64) []float64 {
	out := make([]float64, len(vals))
	copy(out, vals)
	sort.Float64s(out)
	return out
}

// percentOf returns part/total as a 0-100 percentage, 0 when total is 0.
func percentOf(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

// hhi computes the Herfindahl-Hirschman concentration index over the given
// bucket weights: sum of squared shares times 10000. Bounds: 0 for empty
// input, 10000/n for n equal buckets, 10000 for a single bucket holding
// everything.
func hhi(weights []float64) float64 {
	total := sumFloat(weights)
	if total == 0 {
		return 0
	}
	var idx float64
	for _, w := range weights {
		share := w / total
		idx += share * share * 10000
	}
	return idx
}

// concentrationLabel maps an HHI value to its descriptive label.
func concentrationLabel(index float64) string {
	switch {
	case index < 1500:
		return "Low Concentration"
	case index < 2500:
		return "Moderate Concentration"
	default:
		return "High Concentration"
	}
}

// benchmarkCategory classifies an average risk score.
func benchmarkCategory(avgScore float64) string {
	switch {
	case avgScore >= 80:
		return "Excellent"
	case avgScore >= 70:
		return "Good"
	case avgScore >= 60:
		return "Average"
	case avgScore >= 40:
		return "Below Average"
	default:
		return "Poor"
	}
}

// riskProfile classifies an average risk score into a risk-profile band.
func riskProfile(avgScore float64) string {
	switch {
	case avgScore >= 75:
		return "Low Risk"
	case avgScore >= 60:
		return "Medium Risk"
	case avgScore >= 45:
		return "High Risk"
	default:
		return "Very High Risk"
	}
}

// round2 rounds to two decimal places for presentation-stable percentages.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
