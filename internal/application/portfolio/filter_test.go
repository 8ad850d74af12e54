package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/types/common"
)

func TestFilterByRiskGrade(t *testing.T) {
	a := fixture("Alpha Ltd", "Technology", company.GradeCM2, 72, 5000000)
	b := fixture("Beta Ltd", "Manufacturing", company.GradeCM4, 48, 2000000)

	got := FilterByRiskGrade([]*company.Company{a, b}, []company.RiskGrade{company.GradeCM2})
	require.Len(t, got, 1)
	assert.Equal(t, "Alpha Ltd", got[0].CompanyName)

	got = FilterByRiskGrade([]*company.Company{a, b}, nil)
	assert.Equal(t, []string{"Alpha Ltd", "Beta Ltd"}, names(got))
}

func TestFilterByRiskGradeUngradedNeverMatches(t *testing.T) {
	ungraded := fixture("Gamma Ltd", "Retail", "", 0, 0)
	ungraded.RiskScore = nil

	got := FilterByRiskGrade([]*company.Company{ungraded}, []company.RiskGrade{company.GradeCM1, company.GradeCM5})
	assert.Empty(t, got)
}

func TestFilterByRiskGradeNormalizesCase(t *testing.T) {
	a := fixture("Alpha Ltd", "Technology", company.GradeCM2, 72, 5000000)

	got := FilterByRiskGrade([]*company.Company{a}, []company.RiskGrade{"cm2"})
	assert.Len(t, got, 1)
}

func TestFilterByIndustryNoMatch(t *testing.T) {
	a := fixture("Alpha Ltd", "Technology", company.GradeCM2, 72, 5000000)
	b := fixture("Beta Ltd", "Manufacturing", company.GradeCM4, 48, 2000000)

	got := FilterByIndustry([]*company.Company{a, b}, []string{"Healthcare"})
	assert.Empty(t, got)
}

func TestFilterByRegionMatchesEitherAddress(t *testing.T) {
	a := withState(fixture("Alpha Ltd", "Technology", company.GradeCM2, 72, 5000000), "Maharashtra", "")
	b := withState(fixture("Beta Ltd", "Manufacturing", company.GradeCM4, 48, 2000000), "", "Gujarat")

	got := FilterByRegion([]*company.Company{a, b}, []string{"Gujarat"})
	require.Len(t, got, 1)
	assert.Equal(t, "Beta Ltd", got[0].CompanyName)
}

func TestFilterByRegionMissingAddressesNeverMatch(t *testing.T) {
	a := fixture("Alpha Ltd", "Technology", company.GradeCM2, 72, 5000000)

	got := FilterByRegion([]*company.Company{a}, []string{"Karnataka"})
	assert.Empty(t, got)
}

func TestSearch(t *testing.T) {
	a := withIdentity(fixture("Alpha Ltd", "Technology", company.GradeCM2, 72, 5000000),
		"U72200MH2010PTC123456", "ABCDE1234F", "Priya Sharma")
	b := withIdentity(fixture("Beta Ltd", "Manufacturing", company.GradeCM4, 48, 2000000),
		"U25100GJ2012PTC654321", "FGHIJ5678K", "Rohan Mehta")
	all := []*company.Company{a, b}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"by PAN", "FGHIJ5678K", []string{"Beta Ltd"}},
		{"by name fragment", "alpha", []string{"Alpha Ltd"}},
		{"by director", "priya", []string{"Alpha Ltd"}},
		{"by CIN fragment", "GJ2012", []string{"Beta Ltd"}},
		{"case insensitive", "fghij5678k", []string{"Beta Ltd"}},
		{"trimmed", "  Beta  ", []string{"Beta Ltd"}},
		{"empty returns all", "", []string{"Alpha Ltd", "Beta Ltd"}},
		{"no match", "zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(all, tt.query)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestFilterByFinancialMetrics(t *testing.T) {
	a := withRatios(fixture("Alpha Ltd", "Technology", company.GradeCM2, 72, 5000000),
		"2024", company.FinancialRatios{EBITDAMargin: fp(20)})
	b := withRatios(fixture("Beta Ltd", "Manufacturing", company.GradeCM4, 48, 2000000),
		"2024", company.FinancialRatios{EBITDAMargin: fp(10)})

	got := FilterByFinancialMetrics([]*company.Company{a, b}, FinancialMetricRanges{
		EBITDAMargin: &company.Range{Min: 15, Max: 25},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "Alpha Ltd", got[0].CompanyName)
}

func TestFilterByFinancialMetricsMissingRatioNeverMatches(t *testing.T) {
	a := fixture("Alpha Ltd", "Technology", company.GradeCM2, 72, 5000000)

	got := FilterByFinancialMetrics([]*company.Company{a}, FinancialMetricRanges{
		DebtToEquity: &company.Range{Min: 0, Max: 2},
	})
	assert.Empty(t, got)
}

func TestFilterByFinancialMetricsUsesLatestYear(t *testing.T) {
	a := withRatios(fixture("Alpha Ltd", "Technology", company.GradeCM2, 72, 5000000),
		"2022", company.FinancialRatios{EBITDAMargin: fp(30)})
	a = withRatios(a, "2024", company.FinancialRatios{EBITDAMargin: fp(10)})

	got := FilterByFinancialMetrics([]*company.Company{a}, FinancialMetricRanges{
		EBITDAMargin: &company.Range{Min: 25, Max: 35},
	})
	assert.Empty(t, got, "older years must not satisfy the filter")
}

func TestFilterByGSTCompliance(t *testing.T) {
	a := withGST(fixture("Alpha Ltd", "Technology", company.GradeCM2, 72, 5000000),
		company.GSTIN{GSTIN: "27AAAAA0000A1Z5", Status: "active", ComplianceStatus: "compliant"})
	b := withGST(fixture("Beta Ltd", "Manufacturing", company.GradeCM4, 48, 2000000),
		company.GSTIN{GSTIN: "24BBBBB0000B1Z5", Status: "cancelled", ComplianceStatus: "compliant"})

	got := FilterByGSTCompliance([]*company.Company{a, b}, []string{"compliant"})
	require.Len(t, got, 1)
	assert.Equal(t, "Alpha Ltd", got[0].CompanyName, "cancelled registrations do not participate")
}

func TestFilterByEPFOCompliance(t *testing.T) {
	a := withEPFO(fixture("Alpha Ltd", "Technology", company.GradeCM2, 72, 5000000), "regular")
	b := withEPFO(fixture("Beta Ltd", "Manufacturing", company.GradeCM4, 48, 2000000), "delayed")

	got := FilterByEPFOCompliance([]*company.Company{a, b}, []string{"regular"})
	require.Len(t, got, 1)
	assert.Equal(t, "Alpha Ltd", got[0].CompanyName)
}

func TestFilterByAuditQualification(t *testing.T) {
	a := withAudit(fixture("Alpha Ltd", "Technology", company.GradeCM2, 72, 5000000), "going_concern")
	b := withAudit(fixture("Beta Ltd", "Manufacturing", company.GradeCM4, 48, 2000000))

	got := FilterByAuditQualification([]*company.Company{a, b}, []string{"going_concern"})
	require.Len(t, got, 1)
	assert.Equal(t, "Alpha Ltd", got[0].CompanyName)
}

func TestFilterByRiskScoreInclusiveBounds(t *testing.T) {
	lo := fixture("Low Ltd", "Technology", company.GradeCM3, 40, 1000000)
	mid := fixture("Mid Ltd", "Technology", company.GradeCM2, 60, 1000000)
	hi := fixture("High Ltd", "Technology", company.GradeCM1, 80, 1000000)
	unscored := fixture("None Ltd", "Technology", company.GradeCM3, 0, 1000000)
	unscored.RiskScore = nil

	got := FilterByRiskScore([]*company.Company{lo, mid, hi, unscored}, &company.Range{Min: 40, Max: 60})
	assert.Equal(t, []string{"Low Ltd", "Mid Ltd"}, names(got))
}

func TestFilterByDateRange(t *testing.T) {
	early := withCompletedAt(fixture("Early Ltd", "Technology", company.GradeCM2, 70, 1000000),
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	late := withCompletedAt(fixture("Late Ltd", "Technology", company.GradeCM2, 70, 1000000),
		time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	pending := fixture("Pending Ltd", "Technology", company.GradeCM2, 70, 1000000)
	pending.CompletedAt = nil

	criteria := &company.FilterCriteria{DateRange: &common.DateRange{
		From: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}}
	got := FilterByDateRange([]*company.Company{early, late, pending}, criteria)
	assert.Equal(t, []string{"Late Ltd"}, names(got))
}

func portfolioFixture() []*company.Company {
	a := withState(withIdentity(
		fixture("Alpha Ltd", "Technology", company.GradeCM2, 72, 5000000),
		"U72200MH2010PTC123456", "ABCDE1234F", "Priya Sharma"), "Maharashtra", "Maharashtra")
	b := withState(withIdentity(
		fixture("Beta Ltd", "Manufacturing", company.GradeCM4, 48, 2000000),
		"U25100GJ2012PTC654321", "FGHIJ5678K", "Rohan Mehta"), "Gujarat", "Gujarat")
	c := withState(withIdentity(
		fixture("Gamma Ltd", "Technology", company.GradeCM3, 61, 3500000),
		"U72900KA2015PTC111222", "KLMNO9012P", "Anil Kumar"), "Karnataka", "Karnataka")
	return []*company.Company{a, b, c}
}

func TestApplyEmptyCriteriaIdentity(t *testing.T) {
	all := portfolioFixture()

	got := Apply(all, company.FilterCriteria{})

	require.Len(t, got, len(all))
	for i := range all {
		assert.Same(t, all[i], got[i], "order and elements must be preserved")
	}
}

func TestApplyIdempotent(t *testing.T) {
	all := portfolioFixture()
	criteria := company.FilterCriteria{
		Industries:     []string{"Technology"},
		RiskScoreRange: &company.Range{Min: 60, Max: 100},
	}

	once := Apply(all, criteria)
	twice := Apply(once, criteria)
	assert.Equal(t, names(once), names(twice))
}

func TestApplyMonotonic(t *testing.T) {
	all := portfolioFixture()

	base := company.FilterCriteria{Industries: []string{"Technology"}}
	narrowed := base
	narrowed.RiskGrades = []company.RiskGrade{company.GradeCM2}

	assert.LessOrEqual(t, len(Apply(all, narrowed)), len(Apply(all, base)))
}

func TestApplyMatchesSequentialComposition(t *testing.T) {
	all := portfolioFixture()
	criteria := company.FilterCriteria{
		Industries: []string{"Technology"},
		RiskGrades: []company.RiskGrade{company.GradeCM2, company.GradeCM3},
	}

	combined := Apply(all, criteria)
	sequential := FilterByRiskGrade(FilterByIndustry(all, criteria.Industries), criteria.RiskGrades)
	assert.Equal(t, names(sequential), names(combined))
}

func TestApplyAllDimensions(t *testing.T) {
	all := portfolioFixture()
	criteria := company.FilterCriteria{
		Industries:  []string{"Technology"},
		Regions:     []string{"Maharashtra", "Karnataka"},
		RiskGrades:  []company.RiskGrade{company.GradeCM2},
		SearchQuery: "alpha",
		Statuses:    []company.ProcessingStatus{company.StatusCompleted},
		Currencies:  []string{"INR"},
	}

	got := Apply(all, criteria)
	require.Len(t, got, 1)
	assert.Equal(t, "Alpha Ltd", got[0].CompanyName)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	all := portfolioFixture()
	before := names(all)

	Apply(all, company.FilterCriteria{Industries: []string{"Manufacturing"}})
	assert.Equal(t, before, names(all))
}

func TestFiltersEmptyInput(t *testing.T) {
	assert.Empty(t, Apply(nil, company.FilterCriteria{Industries: []string{"Technology"}}))
	assert.Empty(t, FilterByRiskGrade(nil, []company.RiskGrade{company.GradeCM1}))
	assert.Empty(t, Search(nil, "anything"))
}
