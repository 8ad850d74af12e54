package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, "org-1", WithRetryMax(0))
	require.NoError(t, err)
	return c
}

func TestListCompaniesQueryParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/companies", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "25", r.URL.Query().Get("page_size"))
		assert.Equal(t, "completed,failed", r.URL.Query().Get("status"))
		assert.Equal(t, "company_name", r.URL.Query().Get("sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("order"))

		json.NewEncoder(w).Encode(CompanyPage{
			Companies:  []*Company{{ID: "c-1", CompanyName: "Acme Textiles"}},
			TotalCount: 51,
			Page:       2,
			PageSize:   25,
		})
	})

	page, err := c.Portfolio().ListCompanies(context.Background(), ListCompaniesOptions{
		Page:     2,
		PageSize: 25,
		Statuses: []string{"completed", "failed"},
		Sort:     "company_name",
		Order:    "desc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(51), page.TotalCount)
	require.Len(t, page.Companies, 1)
	assert.Equal(t, "Acme Textiles", page.Companies[0].CompanyName)
}

func TestFilterPostsCriteria(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/portfolio/filter", r.URL.Path)

		var criteria FilterCriteria
		require.NoError(t, json.NewDecoder(r.Body).Decode(&criteria))
		assert.Equal(t, []string{"CM4", "CM5"}, criteria.RiskGrades)
		require.NotNil(t, criteria.RiskScoreRange)
		assert.Equal(t, 40.0, criteria.RiskScoreRange.Min)

		json.NewEncoder(w).Encode(FilterResult{
			Companies:  []*Company{{ID: "c-9", RiskGrade: "CM4"}},
			TotalCount: 1,
		})
	})

	result, err := c.Portfolio().Filter(context.Background(), FilterCriteria{
		RiskGrades:     []string{"CM4", "CM5"},
		RiskScoreRange: &Range{Min: 40, Max: 70},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount)
	assert.Equal(t, "CM4", result.Companies[0].RiskGrade)
}

func TestDashboardNilCriteriaSendsEmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/portfolio/dashboard", r.URL.Path)
		assert.Equal(t, int64(0), r.ContentLength)

		json.NewEncoder(w).Encode(Dashboard{
			OrganizationID: "org-1",
			TotalCompanies: 12,
			GradeDistribution: GradeDistribution{
				TotalCompanies: 12,
				Buckets:        []GradeBucket{{Grade: "CM1", Count: 4, Percentage: 33.33}},
			},
		})
	})

	dash, err := c.Portfolio().Dashboard(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 12, dash.TotalCompanies)
	require.NotEmpty(t, dash.GradeDistribution.Buckets)
	assert.Equal(t, "CM1", dash.GradeDistribution.Buckets[0].Grade)
}

func TestGetCompanyRequiresID(t *testing.T) {
	c, err := NewClient("http://localhost:8080", "org-1")
	require.NoError(t, err)

	_, err = c.Portfolio().GetCompany(context.Background(), "")
	assert.Error(t, err)
}
