// Package portfolio implements the dashboard's filtering and analytics
// core plus the application service that fronts it. The filtering and
// aggregation functions are pure; all I/O (repository, cache) stays in the
// service wrapper so the core remains safe for concurrent callers.
package portfolio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/prometheus"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/types/common"
)

// Cache is the snapshot cache the service uses for analytics responses.
// Get must return an error on miss; any Get error is treated as a miss.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Service is the dashboard-facing application interface.
type Service interface {
	ListCompanies(ctx context.Context, input *ListInput) (*CompanyPage, error)
	GetCompany(ctx context.Context, orgID common.OrgID, id common.ID) (*company.Company, error)
	FilterCompanies(ctx context.Context, orgID common.OrgID, criteria company.FilterCriteria) ([]*company.Company, error)
	Options(ctx context.Context, orgID common.OrgID) (*FilterOptions, error)
	Dashboard(ctx context.Context, input *DashboardInput) (*Dashboard, error)
}

// ListInput is a paginated, organization-scoped list request.
type ListInput struct {
	OrganizationID common.OrgID
	Statuses       []company.ProcessingStatus
	Pagination     common.Pagination
	Sort           *common.SortField
}

// CompanyPage is one page of company records.
type CompanyPage struct {
	Companies  []*company.Company `json:"companies"`
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
}

// DashboardInput scopes a dashboard computation to an organization and an
// optional filter selection.
type DashboardInput struct {
	OrganizationID common.OrgID           `json:"organization_id"`
	Criteria       company.FilterCriteria `json:"criteria"`
}

// Dashboard is the full analytics payload for one filtered portfolio view.
type Dashboard struct {
	OrganizationID    common.OrgID          `json:"organization_id"`
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

type service struct {
	repo     company.Repository
	cache    Cache
	cacheTTL time.Duration
	logger   logging.Logger
	metrics  *prometheus.Metrics
}

// ServiceOption customizes the dashboard service.
type ServiceOption func(*service)

// WithMetrics enables instrument recording. A nil metrics set disables it.
func WithMetrics(m *prometheus.Metrics) ServiceOption {
	return func(s *service) {
		s.metrics = m
	}
}

// NewService creates the dashboard service. cache may be nil, in which case
// every call recomputes.
func NewService(repo company.Repository, cache Cache, cacheTTL time.Duration, logger logging.Logger, opts ...ServiceOption) Service {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &service{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) ListCompanies(ctx context.Context, input *ListInput) (*CompanyPage, error) {
	if input.OrganizationID == "" {
		return nil, errors.New(errors.ErrCodeOrganizationRequired, "organization id is required")
	}
	p := input.Pagination
	p.Normalize()

	result, err := s.repo.List(ctx, company.ListQuery{
		OrganizationID: input.OrganizationID,
		Statuses:       input.Statuses,
		Pagination:     p,
		Sort:           input.Sort,
	})
	if err != nil {
		return nil, err
	}
	return &CompanyPage{
		Companies:  result.Companies,
		TotalCount: result.TotalCount,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}, nil
}

func (s *service) GetCompany(ctx context.Context, orgID common.OrgID, id common.ID) (*company.Company, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// records are visible only inside their own organization
	if orgID != "" && c.OrganizationID != orgID {
		return nil, errors.NotFound("company not found")
	}
	return c, nil
}

func (s *service) FilterCompanies(ctx context.Context, orgID common.OrgID, criteria company.FilterCriteria) ([]*company.Company, error) {
	if orgID == "" {
		return nil, errors.New(errors.ErrCodeOrganizationRequired, "organization id is required")
	}
	all, err := s.repo.ListAll(ctx, orgID)
	if err != nil {
		return nil, err
	}
	filtered := Apply(all, criteria)
	if s.metrics != nil {
		s.metrics.ObserveFilteredCompanies("filter", len(filtered))
	}
	return filtered, nil
}

func (s *service) Options(ctx context.Context, orgID common.OrgID) (*FilterOptions, error) {
	if orgID == "" {
		return nil, errors.New(errors.ErrCodeOrganizationRequired, "organization id is required")
	}

	key := "portfolio:options:" + string(orgID)
	if s.cache != nil {
		var cached FilterOptions
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheAccess("filter_options", true)
			}
			return &cached, nil
		}
		if s.metrics != nil {
			s.metrics.RecordCacheAccess("filter_options", false)
		}
	}

	all, err := s.repo.ListAll(ctx, orgID)
	if err != nil {
		return nil, err
	}
	opts := ExtractFilterOptions(all)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, opts, s.cacheTTL); err != nil {
			s.logger.Warn("filter options cache write failed", logging.Err(err))
		}
	}
	return &opts, nil
}

func (s *service) Dashboard(ctx context.Context, input *DashboardInput) (*Dashboard, error) {
	if input.OrganizationID == "" {
		return nil, errors.New(errors.ErrCodeOrganizationRequired, "organization id is required")
	}

	key, keyErr := dashboardCacheKey(input)
	if s.cache != nil && keyErr == nil {
		var cached Dashboard
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheAccess("dashboard", true)
			}
			return &cached, nil
		}
		if s.metrics != nil {
			s.metrics.RecordCacheAccess("dashboard", false)
		}
	}

	started := time.Now()
	all, err := s.repo.ListAll(ctx, input.OrganizationID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAnalyticsFailed, "loading portfolio for analytics")
	}
	filtered := Apply(all, input.Criteria)

	d := &Dashboard{
		OrganizationID:    input.OrganizationID,
		TotalCompanies:    len(all),
		FilteredCompanies: len(filtered),
		GradeDistribution: ComputeGradeDistribution(filtered),
		RiskConcentration: ComputeRiskConcentration(filtered),
		IndustryBreakdown: ComputeIndustryBreakdown(filtered),
		RiskOverlay:       ComputeIndustryRiskOverlay(filtered),
		PeerComparisons:   ComputePeerComparisons(filtered),
		Compliance:        ComputeComplianceAnalysis(filtered),
		Trends:            ComputeMonthlyTrends(filtered, input.Criteria.DateRange),
		ComputedAt:        time.Now().UTC(),
	}
	s.logger.Debug("dashboard computed",
		logging.String("organization_id", string(input.OrganizationID)),
		logging.Int("total", len(all)),
		logging.Int("filtered", len(filtered)),
		logging.Duration("elapsed", time.Since(started)))
	if s.metrics != nil {
		s.metrics.RecordDashboardCompute(false, time.Since(started))
		s.metrics.ObserveFilteredCompanies("dashboard", len(filtered))
	}

	if s.cache != nil && keyErr == nil {
		if err := s.cache.Set(ctx, key, d, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", logging.Err(err))
		}
	}
	return d, nil
}

// dashboardCacheKey derives a stable key from the organization and the full
// criteria selection.
func dashboardCacheKey(input *DashboardInput) (string, error) {
	raw, err := json.Marshal(input.Criteria)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return "portfolio:dashboard:" + string(input.OrganizationID) + ":" + hex.EncodeToString(sum[:8]), nil
}
