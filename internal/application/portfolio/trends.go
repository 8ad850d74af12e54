package portfolio

import (
	"sort"

	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/types/common"
)

// MonthlyTrend is one month's slice of portfolio metrics. Months are keyed
// by the completion timestamp formatted as YYYY-MM.
type MonthlyTrend struct {
	Month           string  `json:"month"`
	Count           int     `json:"count"`
	AverageScore    float64 `json:"average_score"`
	TotalExposure   float64 `json:"total_exposure"`
	HighRiskPercent float64 `json:"high_risk_percent"`
	ComplianceScore float64 `json:"compliance_score"`
}

// ComputeMonthlyTrends buckets companies by the month they completed
// processing and recomputes the headline metrics per bucket. Companies
// without a completion timestamp, or outside the given range, are skipped.
// A nil range includes everything. Buckets come back in ascending month
// order.
func ComputeMonthlyTrends(companies []*company.Company, dr *common.DateRange) []MonthlyTrend {
	byMonth := map[string][]*company.Company{}
	for _, c := range companies {
		if c.CompletedAt == nil {
			continue
		}
		if dr != nil && !dr.Contains(*c.CompletedAt) {
			continue
		}
		key := c.CompletedAt.Format("2006-01")
		byMonth[key] = append(byMonth[key], c)
	}

	out := make([]MonthlyTrend, 0, len(byMonth))
	for month, members := range byMonth {
		var scores []float64
		var exposure float64
		high := 0
		for _, c := range members {
			if v, ok := c.Score(); ok {
				scores = append(scores, v)
			}
			if v, ok := c.Exposure(); ok {
				exposure += v
			}
			if c.RiskGrade.Band() == company.BandHigh {
				high++
			}
		}
		compliance := ComputeComplianceAnalysis(members)
		out = append(out, MonthlyTrend{
			Month:           month,
			Count:           len(members),
			AverageScore:    round2(meanFloat(scores)),
			TotalExposure:   exposure,
			HighRiskPercent: round2(percentOf(float64(high), float64(len(members)))),
			ComplianceScore: compliance.OverallScore,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
