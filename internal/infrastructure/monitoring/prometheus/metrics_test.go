package prometheus

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHTTPRequest(t *testing.T) {
	m := NewMetrics(NewCollector())

	m.RecordHTTPRequest("GET", "/api/v1/portfolio/companies", 200, 25*time.Millisecond)
	m.RecordHTTPRequest("GET", "/api/v1/portfolio/companies", 200, 30*time.Millisecond)
	m.RecordHTTPRequest("POST", "/api/v1/documents", 500, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/portfolio/companies", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/documents", "500")))
}

func TestRecordCacheAccess(t *testing.T) {
	m := NewMetrics(NewCollector())

	m.RecordCacheAccess("dashboard", true)
	m.RecordCacheAccess("dashboard", true)
	m.RecordCacheAccess("dashboard", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("dashboard")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("dashboard")))
}

func TestRecordDocumentEvent(t *testing.T) {
	m := NewMetrics(NewCollector())

	m.RecordDocumentEvent("document.submitted", "ok")
	m.RecordDocumentEvent("document.failed", "error")

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.DocumentEventsTotal.WithLabelValues("document.submitted", "ok")))
}

func TestSetComponentHealth(t *testing.T) {
	m := NewMetrics(NewCollector())

	m.SetComponentHealth("postgres", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ComponentHealthy.WithLabelValues("postgres")))

	m.SetComponentHealth("postgres", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ComponentHealthy.WithLabelValues("postgres")))
}

func TestCollectorHandlerServesMetrics(t *testing.T) {
	c := NewCollector()
	m := NewMetrics(c)
	m.RecordHTTPRequest("GET", "/healthz", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "credmatrix_http_requests_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRecordDashboardCompute(t *testing.T) {
	m := NewMetrics(NewCollector())

	m.RecordDashboardCompute(false, 120*time.Millisecond)
	m.ObserveFilteredCompanies("dashboard", 42)

	assert.Equal(t, 1, testutil.CollectAndCount(m.DashboardComputeDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FilteredCompanies))
}

func TestRecordReportGenerated(t *testing.T) {
	m := NewMetrics(NewCollector())

	m.RecordReportGenerated("csv", "ok", 80*time.Millisecond)
	m.RecordReportGenerated("csv", "failed", 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.ReportsGeneratedTotal.WithLabelValues("csv", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.ReportsGeneratedTotal.WithLabelValues("csv", "failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ReportBuildDuration))
}

func TestTimerObserveDuration(t *testing.T) {
	m := NewMetrics(NewCollector())

	timer := NewTimer(m.ReportBuildDuration.WithLabelValues("json"))
	timer.ObserveDuration()

	count := testutil.CollectAndCount(m.ReportBuildDuration)
	assert.Equal(t, 1, count)

	// A nil observer is tolerated.
	NewTimer(nil).ObserveDuration()
}
