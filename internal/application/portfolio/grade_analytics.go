package portfolio

import (
	"sort"

	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
)

// IndustryCount is one industry with its company count, used by top-N lists.
type IndustryCount struct {
	Industry string `json:"industry"`
	Count    int    `json:"count"`
}

// GradeBucket holds the statistics of one risk-grade band.
type GradeBucket struct {
	Grade           company.RiskGrade `json:"grade"`
	Count           int               `json:"count"`
	Percentage      float64           `json:"percentage"`
	AverageScore    float64           `json:"average_score"`
	MinScore        float64           `json:"min_score"`
	MaxScore        float64           `json:"max_score"`
	TotalExposure   float64           `json:"total_exposure"`
	AverageExposure float64           `json:"average_exposure"`
	// TopIndustries lists the five most frequent industries within the
	// grade, by company count, descending.
	TopIndustries []IndustryCount `json:"top_industries"`
}

// GradeDistribution is the per-grade breakdown of a portfolio. Buckets are
// always present for CM1..CM5 plus UNGRADED, in that order, even when empty,
// so chart axes stay stable.
type GradeDistribution struct {
	TotalCompanies int           `json:"total_companies"`
	Buckets        []GradeBucket `json:"buckets"`
}

// topIndustries returns the top n industries by count, descending; ties
// break alphabetically for determinism.
func topIndustries(counts map[string]int, n int) []IndustryCount {
	out := make([]IndustryCount, 0, len(counts))
	for ind, cnt := range counts {
		out = append(out, IndustryCount{Industry: ind, Count: cnt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Industry < out[j].Industry
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ComputeGradeDistribution counts companies per grade bucket and computes
// each bucket's score range, exposure totals, and top-5 industries.
// Companies with no grade or an unrecognised grade fall into the UNGRADED
// bucket. Defined for empty input: every bucket reports zero counts.
func ComputeGradeDistribution(companies []*company.Company) GradeDistribution {
	order := append(company.AllGrades(), company.GradeUngraded)

	scores := map[company.RiskGrade][]float64{}
	exposures := map[company.RiskGrade][]float64{}
	counts := map[company.RiskGrade]int{}
	industries := map[company.RiskGrade]map[string]int{}

	for _, c := range companies {
		g := c.RiskGrade
		if !g.IsGraded() {
			g = company.GradeUngraded
		}
		counts[g]++
		if v, ok := c.Score(); ok {
			scores[g] = append(scores[g], v)
		}
		if v, ok := c.Exposure(); ok {
			exposures[g] = append(exposures[g], v)
		}
		if c.Industry != "" {
			if industries[g] == nil {
				industries[g] = map[string]int{}
			}
			industries[g][c.Industry]++
		}
	}

	total := len(companies)
	buckets := make([]GradeBucket, 0, len(order))
	for _, g := range order {
		b := GradeBucket{
			Grade:         g,
			Count:         counts[g],
			Percentage:    round2(percentOf(float64(counts[g]), float64(total))),
			AverageScore:  round2(meanFloat(scores[g])),
			MinScore:      minFloat(scores[g]),
			MaxScore:      maxFloat(scores[g]),
			TotalExposure: sumFloat(exposures[g]),
			TopIndustries: topIndustries(industries[g], 5),
		}
		if len(exposures[g]) > 0 {
			b.AverageExposure = round2(b.TotalExposure / float64(len(exposures[g])))
		}
		buckets = append(buckets, b)
	}

	return GradeDistribution{TotalCompanies: total, Buckets: buckets}
}

// RiskConcentration reports the share of the portfolio in each risk band:
// high = CM4+CM5, medium = CM3, low = CM1+CM2, ungraded = everything else.
// For any non-empty input the four percentages sum to 100 (within floating
// rounding of the raw, un-rounded values).
type RiskConcentration struct {
	TotalCompanies  int     `json:"total_companies"`
	HighCount       int     `json:"high_count"`
	MediumCount     int     `json:"medium_count"`
	LowCount        int     `json:"low_count"`
	UngradedCount   int     `json:"ungraded_count"`
	HighPercent     float64 `json:"high_percent"`
	MediumPercent   float64 `json:"medium_percent"`
	LowPercent      float64 `json:"low_percent"`
	UngradedPercent float64 `json:"ungraded_percent"`
}

// ComputeRiskConcentration buckets companies into the three risk bands plus
// ungraded and reports each band's percentage of the total. All zeros for
// empty input.
func ComputeRiskConcentration(companies []*company.Company) RiskConcentration {
	rc := RiskConcentration{TotalCompanies: len(companies)}
	for _, c := range companies {
		switch c.RiskGrade.Band() {
		case company.BandHigh:
			rc.HighCount++
		case company.BandMedium:
			rc.MediumCount++
		case company.BandLow:
			rc.LowCount++
		default:
			rc.UngradedCount++
		}
	}
	total := float64(rc.TotalCompanies)
	rc.HighPercent = percentOf(float64(rc.HighCount), total)
	rc.MediumPercent = percentOf(float64(rc.MediumCount), total)
	rc.LowPercent = percentOf(float64(rc.LowCount), total)
	rc.UngradedPercent = percentOf(float64(rc.UngradedCount), total)
	return rc
}
