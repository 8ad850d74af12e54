package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PortfolioClient provides access to company listing, filtering and
// risk-analytics endpoints.
type PortfolioClient struct {
	client *Client
}

// Company is one portfolio entry as returned by the API.
type Company struct {
	ID             string `json:"id"`
	RequestID      string `json:"request_id"`
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`

	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
	RiskGrade   string `json:"risk_grade,omitempty"`

	RiskScore        *float64 `json:"risk_score,omitempty"`
	RecommendedLimit *float64 `json:"recommended_limit,omitempty"`
	Currency         string   `json:"currency,omitempty"`

	Status              string     `json:"status"`
	SubmittedAt         *time.Time `json:"submitted_at,omitempty"`
	ProcessingStartedAt *time.Time `json:"processing_started_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	ErrorMessage        *string    `json:"error_message,omitempty"`
	RetryCount          int        `json:"retry_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyPage is one page of the company list.
type CompanyPage struct {
	Companies  []*Company `json:"companies"`
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
}

// Range bounds a numeric filter, inclusive.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DateRange bounds a time filter, inclusive.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// FilterCriteria selects a portfolio subset. Zero-value fields are
// ignored; all populated fields must match.
type FilterCriteria struct {
	RiskGrades          []string `json:"risk_grades,omitempty"`
	Industries          []string `json:"industries,omitempty"`
	Regions             []string `json:"regions,omitempty"`
	Cities              []string `json:"cities,omitempty"`
	Statuses            []string `json:"processing_status,omitempty"`
	Currencies          []string `json:"currencies,omitempty"`
	GSTCompliance       []string `json:"gst_compliance_status,omitempty"`
	EPFOCompliance      []string `json:"epfo_compliance_status,omitempty"`
	AuditQualifications []string `json:"audit_qualification_status,omitempty"`

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

	DateRange *DateRange `json:"date_range,omitempty"`

	SearchQuery string `json:"search_query,omitempty"`
}

// FilterResult holds the companies matched by a filter request.
type FilterResult struct {
	Companies  []*Company `json:"companies"`
	TotalCount int        `json:"total_count"`
}

// FilterOptions lists the distinct filter values present in the portfolio.
type FilterOptions struct {
	Industries          []string `json:"industries"`
	Regions             []string `json:"regions"`
	Cities              []string `json:"cities"`
	RiskGrades          []string `json:"risk_grades"`
	Statuses            []string `json:"statuses"`
	Currencies          []string `json:"currencies"`
	GSTCompliance       []string `json:"gst_compliance_statuses"`
	EPFOCompliance      []string `json:"epfo_compliance_statuses"`
	AuditQualifications []string `json:"audit_qualification_types"`
}

// IndustryCount is one industry with its company count.
type IndustryCount struct {
	Industry string `json:"industry"`
	Count    int    `json:"count"`
}

// GradeBucket holds the statistics of one risk-grade band.
type GradeBucket struct {
	Grade           string          `json:"grade"`
	Count           int             `json:"count"`
	Percentage      float64         `json:"percentage"`
	AverageScore    float64         `json:"average_score"`
	MinScore        float64         `json:"min_score"`
	MaxScore        float64         `json:"max_score"`
	TotalExposure   float64         `json:"total_exposure"`
	AverageExposure float64         `json:"average_exposure"`
	TopIndustries   []IndustryCount `json:"top_industries"`
}

// GradeDistribution is the per-grade breakdown of a portfolio.
type GradeDistribution struct {
	TotalCompanies int           `json:"total_companies"`
	Buckets        []GradeBucket `json:"buckets"`
}

// RiskConcentration reports the share of the portfolio in each risk band.
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

// IndustryStats holds the aggregate statistics of one industry.
type IndustryStats struct {
	Industry      string  `json:"industry"`
	Count         int     `json:"count"`
	Percentage    float64 `json:"percentage"`
	AverageScore  float64 `json:"average_score"`
	TotalExposure float64 `json:"total_exposure"`
}

// IndustryBreakdown is the per-industry view of a portfolio.
type IndustryBreakdown struct {
	TotalCompanies    int             `json:"total_companies"`
	Industries        []IndustryStats `json:"industries"`
	CountHHI          float64         `json:"count_hhi"`
	CountHHILabel     string          `json:"count_hhi_label"`
	ExposureHHI       float64         `json:"exposure_hhi"`
	ExposureHHILabel  string          `json:"exposure_hhi_label"`
	Top5Concentration float64         `json:"top5_concentration"`
}

// IndustryRiskOverlay is one industry's grade mix.
type IndustryRiskOverlay struct {
	Industry             string         `json:"industry"`
	Count                int            `json:"count"`
	GradeCounts          map[string]int `json:"grade_counts"`
	ExposureWeightedRisk float64        `json:"exposure_weighted_risk"`
	ScoreStdDev          float64        `json:"score_std_dev"`
	HighRiskPercent      float64        `json:"high_risk_percent"`
}

// PeerPerformer identifies one company in a peer ranking.
type PeerPerformer struct {
	CompanyID   string  `json:"company_id"`
	CompanyName string  `json:"company_name"`
	RiskScore   float64 `json:"risk_score"`
}

// PeerComparison benchmarks one industry against its own members.
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

// StatusCounts buckets companies by compliance standing.
type StatusCounts struct {
	Compliant    int `json:"compliant"`
	Partial      int `json:"partial"`
	NonCompliant int `json:"non_compliant"`
	Unknown      int `json:"unknown"`
}

// ComplianceHeatmapCell is one region or industry cell of the compliance
// heatmap.
type ComplianceHeatmapCell struct {
	Key   string       `json:"key"`
	Count int          `json:"count"`
	GST   StatusCounts `json:"gst"`
	EPFO  StatusCounts `json:"epfo"`
	Audit StatusCounts `json:"audit"`
	Score float64      `json:"score"`
}

// ComplianceAnalysis aggregates GST, EPFO and audit standing.
type ComplianceAnalysis struct {
	TotalCompanies  int                     `json:"total_companies"`
	GST             StatusCounts            `json:"gst"`
	EPFO            StatusCounts            `json:"epfo"`
	Audit           StatusCounts            `json:"audit"`
	OverallScore    float64                 `json:"overall_score"`
	RegionHeatmap   []ComplianceHeatmapCell `json:"region_heatmap"`
	IndustryHeatmap []ComplianceHeatmapCell `json:"industry_heatmap"`
}

// MonthlyTrend is one month of portfolio history.
type MonthlyTrend struct {
	Month           string  `json:"month"`
	Count           int     `json:"count"`
	AverageScore    float64 `json:"average_score"`
	TotalExposure   float64 `json:"total_exposure"`
	HighRiskPercent float64 `json:"high_risk_percent"`
	ComplianceScore float64 `json:"compliance_score"`
}

// Dashboard is the full analytics view of a (possibly filtered) portfolio.
type Dashboard struct {
	OrganizationID    string                `json:"organization_id"`
	TotalCompanies    int                   `json:"total_companies"`
	FilteredCompanies int                   `json:"filtered_companies"`
	GradeDistribution GradeDistribution     `json:"grade_distribution"`
	RiskConcentration RiskConcentration     `json:"risk_concentration"`
	IndustryBreakdown IndustryBreakdown     `json:"industry_breakdown"`
	RiskOverlay       []IndustryRiskOverlay `json:"risk_overlay"`
	PeerComparisons   []PeerComparison      `json:"peer_comparisons"`
	Compliance        ComplianceAnalysis    `json:"compliance"`
	Trends            []MonthlyTrend        `json:"trends"`
	ComputedAt        time.Time             `json:"computed_at"`
}

// ListCompaniesOptions customizes a ListCompanies call. The zero value
// requests the first page with server defaults.
type ListCompaniesOptions struct {
	Page     int
	PageSize int
	Statuses []string
	Sort     string
	Order    string
}

// ListCompanies returns one page of the organization's companies.
func (p *PortfolioClient) ListCompanies(ctx context.Context, opts ListCompaniesOptions) (*CompanyPage, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(opts.PageSize))
	}
	if len(opts.Statuses) > 0 {
		q.Set("status", strings.Join(opts.Statuses, ","))
	}
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
		if opts.Order != "" {
			q.Set("order", opts.Order)
		}
	}

	path := "/api/v1/companies"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page CompanyPage
	if err := p.client.get(ctx, path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetCompany returns a single company by ID.
func (p *PortfolioClient) GetCompany(ctx context.Context, companyID string) (*Company, error) {
	if companyID == "" {
		return nil, fmt.Errorf("client: companyID is required")
	}
	var c Company
	if err := p.client.get(ctx, "/api/v1/companies/"+url.PathEscape(companyID), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Filter returns the companies matching the criteria.
func (p *PortfolioClient) Filter(ctx context.Context, criteria FilterCriteria) (*FilterResult, error) {
	var result FilterResult
	if err := p.client.post(ctx, "/api/v1/portfolio/filter", criteria, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FilterOptions returns the distinct filter values present in the
// organization's portfolio.
func (p *PortfolioClient) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	var opts FilterOptions
	if err := p.client.get(ctx, "/api/v1/portfolio/options", &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// Dashboard computes the analytics dashboard. A nil criteria analyzes the
// full portfolio.
func (p *PortfolioClient) Dashboard(ctx context.Context, criteria *FilterCriteria) (*Dashboard, error) {
	var body interface{}
	if criteria != nil {
		body = criteria
	}
	var dash Dashboard
	if err := p.client.post(ctx, "/api/v1/portfolio/dashboard", body, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}
