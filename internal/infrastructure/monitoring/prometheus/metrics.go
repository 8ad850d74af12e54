package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpDurationBuckets      = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	analyticsDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
)

// Metrics holds every instrument the platform records.
type Metrics struct {
	// HTTP layer
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPActiveRequests  *prometheus.GaugeVec

	// Analytics layer
	DashboardComputeDuration *prometheus.HistogramVec
	FilteredCompanies        *prometheus.HistogramVec
	CacheHitsTotal           *prometheus.CounterVec
	CacheMissesTotal         *prometheus.CounterVec

	// Document pipeline
	DocumentEventsTotal *prometheus.CounterVec

	// Reporting
	ReportsGeneratedTotal *prometheus.CounterVec
	ReportBuildDuration   *prometheus.HistogramVec

	// Infrastructure
	ComponentHealthy *prometheus.GaugeVec
}

// NewMetrics registers all instruments on the collector's registry.
func NewMetrics(c *Collector) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: c.counterVec("http_requests_total",
			"HTTP requests served", "method", "path", "status"),
		HTTPRequestDuration: c.histogramVec("http_request_duration_seconds",
			"HTTP request latency", httpDurationBuckets, "method", "path"),
		HTTPActiveRequests: c.gaugeVec("http_active_requests",
			"In-flight HTTP requests", "method"),

		DashboardComputeDuration: c.histogramVec("dashboard_compute_duration_seconds",
			"Time spent computing portfolio analytics", analyticsDurationBuckets, "cached"),
		FilteredCompanies: c.histogramVec("filtered_companies",
			"Companies remaining after filtering", []float64{0, 1, 10, 50, 100, 500, 1000, 5000}, "operation"),
		CacheHitsTotal: c.counterVec("cache_hits_total",
			"Cache hits", "cache"),
		CacheMissesTotal: c.counterVec("cache_misses_total",
			"Cache misses", "cache"),

		DocumentEventsTotal: c.counterVec("document_events_total",
			"Document lifecycle events", "topic", "status"),

		ReportsGeneratedTotal: c.counterVec("reports_generated_total",
			"Generated portfolio reports", "format", "status"),
		ReportBuildDuration: c.histogramVec("report_build_duration_seconds",
			"Report generation time", analyticsDurationBuckets, "format"),

		ComponentHealthy: c.gaugeVec("component_healthy",
			"Component health (1=up, 0=down)", "component"),
	}
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCacheAccess records one cache lookup outcome.
func (m *Metrics) RecordCacheAccess(cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// RecordDashboardCompute records one full analytics computation.
func (m *Metrics) RecordDashboardCompute(cached bool, duration time.Duration) {
	m.DashboardComputeDuration.WithLabelValues(strconv.FormatBool(cached)).Observe(duration.Seconds())
}

// ObserveFilteredCompanies records the result size of one filter pass.
func (m *Metrics) ObserveFilteredCompanies(operation string, n int) {
	m.FilteredCompanies.WithLabelValues(operation).Observe(float64(n))
}

// RecordDocumentEvent records one pipeline transition.
func (m *Metrics) RecordDocumentEvent(topic, status string) {
	m.DocumentEventsTotal.WithLabelValues(topic, status).Inc()
}

// RecordReportGenerated records one report build attempt.
func (m *Metrics) RecordReportGenerated(format, status string, duration time.Duration) {
	m.ReportsGeneratedTotal.WithLabelValues(format, status).Inc()
	m.ReportBuildDuration.WithLabelValues(format).Observe(duration.Seconds())
}

// SetComponentHealth flags a dependency as up or down.
func (m *Metrics) SetComponentHealth(component string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1.0
	}
	m.ComponentHealthy.WithLabelValues(component).Set(v)
}
