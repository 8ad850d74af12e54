package company

import (
	"github.com/Credmatrix/portfolio-management-sub006/pkg/types/common"
)

// Range is an inclusive numeric interval: a value v matches when
// Min <= v <= Max.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v falls inside the range, inclusive of both ends.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// FilterCriteria is an immutable, caller-constructed value object holding
// the current multi-dimensional filter selection. Every field is optional:
// a nil slice, nil range, or empty string imposes no constraint on its
// dimension, so the zero FilterCriteria matches everything. Fields are never
// mutated after construction; each filtering operation takes criteria as a
// read-only input.
type FilterCriteria struct {
	// Set-membership dimensions.
	RiskGrades          []RiskGrade        `json:"risk_grades,omitempty"`
	Industries          []string           `json:"industries,omitempty"`
	Regions             []string           `json:"regions,omitempty"`
	Cities              []string           `json:"cities,omitempty"`
	Statuses            []ProcessingStatus `json:"processing_status,omitempty"`
	Currencies          []string           `json:"currencies,omitempty"`
	GSTCompliance       []string           `json:"gst_compliance_status,omitempty"`
	EPFOCompliance      []string           `json:"epfo_compliance_status,omitempty"`
	AuditQualifications []string           `json:"audit_qualification_status,omitempty"`

	// Inclusive numeric ranges.
	RiskScoreRange        *Range `json:"risk_score_range,omitempty"`
	RecommendedLimitRange *Range `json:"recommended_limit_range,omitempty"`
	RevenueRange          *Range `json:"revenue_range,omitempty"`
	EBITDAMarginRange     *Range `json:"ebitda_margin_range,omitempty"`
	NetMarginRange        *Range `json:"net_margin_range,omitempty"`
	DebtEquityRange       *Range `json:"debt_equity_range,omitempty"`
	CurrentRatioRange     *Range `json:"current_ratio_range,omitempty"`
	ROERange              *Range `json:"roe_range,omitempty"`
	InterestCoverRange    *Range `json:"interest_cover_range,omitempty"`
	RetryCountRange       *Range `json:"retry_count_range,omitempty"`

	// Inclusive date range applied to completed_at.
	DateRange *common.DateRange `json:"date_range,omitempty"`

	// Free-text search over name, CIN, PAN, and director names.
	SearchQuery string `json:"search_query,omitempty"`
}

// IsEmpty reports whether the criteria impose no constraint at all.
func (fc FilterCriteria) IsEmpty() bool {
	return len(fc.RiskGrades) == 0 &&
		len(fc.Industries) == 0 &&
		len(fc.Regions) == 0 &&
		len(fc.Cities) == 0 &&
		len(fc.Statuses) == 0 &&
		len(fc.Currencies) == 0 &&
		len(fc.GSTCompliance) == 0 &&
		len(fc.EPFOCompliance) == 0 &&
		len(fc.AuditQualifications) == 0 &&
		fc.RiskScoreRange == nil &&
		fc.RecommendedLimitRange == nil &&
		fc.RevenueRange == nil &&
		fc.EBITDAMarginRange == nil &&
		fc.NetMarginRange == nil &&
		fc.DebtEquityRange == nil &&
		fc.CurrentRatioRange == nil &&
		fc.ROERange == nil &&
		fc.InterestCoverRange == nil &&
		fc.RetryCountRange == nil &&
		fc.DateRange == nil &&
		fc.SearchQuery == ""
}
