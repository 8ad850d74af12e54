package portfolio

import (
	"sort"

	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
)

// IndustryStats holds the aggregate statistics of one industry.
type IndustryStats struct {
	Industry      string  `json:"industry"`
	Count         int     `json:"count"`
	Percentage    float64 `json:"percentage"`
	AverageScore  float64 `json:"average_score"`
	TotalExposure float64 `json:"total_exposure"`
}

// IndustryBreakdown is the per-industry view of a portfolio with
// concentration indices on both company count and exposure.
type IndustryBreakdown struct {
	TotalCompanies int             `json:"total_companies"`
	Industries     []IndustryStats `json:"industries"`
	// HHI values range 0..10000; the labels bucket them as Low below
	// 1500, Moderate below 2500, High Concentration otherwise.
	CountHHI          float64 `json:"count_hhi"`
	CountHHILabel     string  `json:"count_hhi_label"`
	ExposureHHI       float64 `json:"exposure_hhi"`
	ExposureHHILabel  string  `json:"exposure_hhi_label"`
	Top5Concentration float64 `json:"top5_concentration"`
}

// ComputeIndustryBreakdown aggregates companies per industry, sorted by
// count descending (ties alphabetical). Companies with an empty industry
// are grouped under "Unclassified". Top5Concentration is the percentage of
// companies in the five largest industries.
func ComputeIndustryBreakdown(companies []*company.Company) IndustryBreakdown {
	type acc struct {
		count    int
		scores   []float64
		exposure float64
	}
	byIndustry := map[string]*acc{}
	for _, c := range companies {
		ind := c.Industry
		if ind == "" {
			ind = "Unclassified"
		}
		a := byIndustry[ind]
		if a == nil {
			a = &acc{}
			byIndustry[ind] = a
		}
		a.count++
		if v, ok := c.Score(); ok {
			a.scores = append(a.scores, v)
		}
		if v, ok := c.Exposure(); ok {
			a.exposure += v
		}
	}

	total := len(companies)
	out := IndustryBreakdown{TotalCompanies: total}

	var countShares, exposureShares []float64
	var totalExposure float64
	for _, a := range byIndustry {
		totalExposure += a.exposure
	}
	for ind, a := range byIndustry {
		out.Industries = append(out.Industries, IndustryStats{
			Industry:      ind,
			Count:         a.count,
			Percentage:    round2(percentOf(float64(a.count), float64(total))),
			AverageScore:  round2(meanFloat(a.scores)),
			TotalExposure: a.exposure,
		})
		countShares = append(countShares, float64(a.count)/float64(total))
		if totalExposure > 0 {
			exposureShares = append(exposureShares, a.exposure/totalExposure)
		}
	}
	sort.Slice(out.Industries, func(i, j int) bool {
		if out.Industries[i].Count != out.Industries[j].Count {
			return out.Industries[i].Count > out.Industries[j].Count
		}
		return out.Industries[i].Industry < out.Industries[j].Industry
	})

	out.CountHHI = round2(hhi(countShares))
	out.CountHHILabel = concentrationLabel(out.CountHHI)
	out.ExposureHHI = round2(hhi(exposureShares))
	out.ExposureHHILabel = concentrationLabel(out.ExposureHHI)

	topN := out.Industries
	if len(topN) > 5 {
		topN = topN[:5]
	}
	topCount := 0
	for _, s := range topN {
		topCount += s.Count
	}
	out.Top5Concentration = round2(percentOf(float64(topCount), float64(total)))

	return out
}

// IndustryRiskOverlay attaches risk composition to one industry.
type IndustryRiskOverlay struct {
	Industry             string                    `json:"industry"`
	Count                int                       `json:"count"`
	GradeCounts          map[company.RiskGrade]int `json:"grade_counts"`
	ExposureWeightedRisk float64                   `json:"exposure_weighted_risk"`
	ScoreStdDev          float64                   `json:"score_std_dev"`
	HighRiskPercent      float64                   `json:"high_risk_percent"`
}

// ComputeIndustryRiskOverlay computes per-industry grade mixes. The
// exposure-weighted risk is Σ(score×exposure)/Σ(exposure) over companies
// that carry both values; when no company carries an exposure it falls
// back to the plain average score. High risk means the CM4/CM5 band.
func ComputeIndustryRiskOverlay(companies []*company.Company) []IndustryRiskOverlay {
	type acc struct {
		count         int
		high          int
		grades        map[company.RiskGrade]int
		scores        []float64
		weightedScore float64
		weight        float64
	}
	byIndustry := map[string]*acc{}
	for _, c := range companies {
		ind := c.Industry
		if ind == "" {
			ind = "Unclassified"
		}
		a := byIndustry[ind]
		if a == nil {
			a = &acc{grades: map[company.RiskGrade]int{}}
			byIndustry[ind] = a
		}
		a.count++
		g := c.RiskGrade
		if !g.IsGraded() {
			g = company.GradeUngraded
		}
		a.grades[g]++
		if g.Band() == company.BandHigh {
			a.high++
		}
		score, hasScore := c.Score()
		if hasScore {
			a.scores = append(a.scores, score)
			if exp, ok := c.Exposure(); ok && exp > 0 {
				a.weightedScore += score * exp
				a.weight += exp
			}
		}
	}

	out := make([]IndustryRiskOverlay, 0, len(byIndustry))
	for ind, a := range byIndustry {
		o := IndustryRiskOverlay{
			Industry:        ind,
			Count:           a.count,
			GradeCounts:     a.grades,
			ScoreStdDev:     round2(stdDev(a.scores)),
			HighRiskPercent: round2(percentOf(float64(a.high), float64(a.count))),
		}
		if a.weight > 0 {
			o.ExposureWeightedRisk = round2(a.weightedScore / a.weight)
		} else {
			o.ExposureWeightedRisk = round2(meanFloat(a.scores))
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Industry < out[j].Industry
	})
	return out
}

// PeerPerformer is one company in a top or bottom performer list.
type PeerPerformer struct {
	CompanyID   string  `json:"company_id"`
	CompanyName string  `json:"company_name"`
	RiskScore   float64 `json:"risk_score"`
}

// PeerComparison benchmarks one industry against its own members.
// Percentiles use the nearest-rank convention shared with the stats
// helpers; see percentile.
type PeerComparison struct {
	Industry         string          `json:"industry"`
	Count            int             `json:"count"`
	AverageScore     float64         `json:"average_score"`
	P25              float64         `json:"p25"`
	P50              float64         `json:"p50"`
	P75              float64         `json:"p75"`
	P90              float64         `json:"p90"`
	TopPerformers    []PeerPerformer `json:"top_performers"`
	BottomPerformers []PeerPerformer `json:"bottom_performers"`
	Benchmark        string          `json:"benchmark"`
	RiskProfile      string          `json:"risk_profile"`
}

// ComputePeerComparisons builds peer benchmarks for every industry with at
// least two scored companies. Top and bottom performer lists carry at most
// three entries each; benchmark and risk profile labels derive from the
// industry's average score.
func ComputePeerComparisons(companies []*company.Company) []PeerComparison {
	type member struct {
		c     *company.Company
		score float64
	}
	byIndustry := map[string][]member{}
	for _, c := range companies {
		score, ok := c.Score()
		if !ok {
			continue
		}
		ind := c.Industry
		if ind == "" {
			ind = "Unclassified"
		}
		byIndustry[ind] = append(byIndustry[ind], member{c: c, score: score})
	}

	out := make([]PeerComparison, 0, len(byIndustry))
	for ind, members := range byIndustry {
		if len(members) < 2 {
			continue
		}
		scores := make([]float64, len(members))
		for i, m := range members {
			scores[i] = m.score
		}
		sorted := sortedCopy(scores)
		avg := meanFloat(scores)

		ranked := append([]member(nil), members...)
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].score != ranked[j].score {
				return ranked[i].score > ranked[j].score
			}
			return ranked[i].c.CompanyName < ranked[j].c.CompanyName
		})
		performers := func(ms []member) []PeerPerformer {
			out := make([]PeerPerformer, 0, len(ms))
			for _, m := range ms {
				out = append(out, PeerPerformer{
					CompanyID:   m.c.ID.String(),
					CompanyName: m.c.CompanyName,
					RiskScore:   m.score,
				})
			}
			return out
		}
		topN := 3
		if len(ranked) < topN {
			topN = len(ranked)
		}
		bottom := append([]member(nil), ranked[len(ranked)-topN:]...)
		// bottom list reads worst first
		sort.Slice(bottom, func(i, j int) bool {
			if bottom[i].score != bottom[j].score {
				return bottom[i].score < bottom[j].score
			}
			return bottom[i].c.CompanyName < bottom[j].c.CompanyName
		})

		out = append(out, PeerComparison{
			Industry:         ind,
			Count:            len(members),
			AverageScore:     round2(avg),
			P25:              percentile(sorted, 0.25),
			P50:              percentile(sorted, 0.50),
			P75:              percentile(sorted, 0.75),
			P90:              percentile(sorted, 0.90),
			TopPerformers:    performers(ranked[:topN]),
			BottomPerformers: performers(bottom),
			Benchmark:        benchmarkCategory(avg),
			RiskProfile:      riskProfile(avg),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Industry < out[j].Industry
	})
	return out
}
