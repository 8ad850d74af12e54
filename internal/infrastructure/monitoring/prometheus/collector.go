// Package prometheus exposes the application's metrics on a dedicated
// registry so the /metrics endpoint never leaks default-registry noise from
// linked libraries.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "credmatrix"

// Collector owns the registry all application metrics register against.
type Collector struct {
	registry *prometheus.Registry
}

// NewCollector builds a registry with process and Go runtime collectors.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	registry.MustRegister(prometheus.NewGoCollector())
	return &Collector{registry: registry}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry returns the underlying registry, used by tests to scrape values.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labels)
	c.registry.MustRegister(vec)
	return vec
}

func (c *Collector) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labels)
	c.registry.MustRegister(vec)
	return vec
}

func (c *Collector) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	c.registry.MustRegister(vec)
	return vec
}

// Timer measures one duration and records it on ObserveDuration.
type Timer struct {
	observer prometheus.Observer
	start    time.Time
}

// NewTimer starts timing against the given observer.
func NewTimer(observer prometheus.Observer) *Timer {
	return &Timer{observer: observer, start: time.Now()}
}

// ObserveDuration records the elapsed time in seconds.
func (t *Timer) ObserveDuration() {
	if t.observer == nil {
		return
	}
	t.observer.Observe(time.Since(t.start).Seconds())
}
