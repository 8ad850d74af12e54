package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/prometheus"
)

// Pinger is implemented by every backing service the readiness probe
// checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	components map[string]Pinger
	metrics    *prometheus.Metrics
	timeout    time.Duration
}

// NewHealthHandler builds the handler. components maps a component name to
// its pinger; metrics may be nil.
func NewHealthHandler(components map[string]Pinger, metrics *prometheus.Metrics) *HealthHandler {
	return &HealthHandler{
		components: components,
		metrics:    metrics,
		timeout:    5 * time.Second,
	}
}

// Liveness handles GET /healthz. It reports only that the process is up.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type componentStatus struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// Readiness handles GET /readyz. It pings every registered component in
// parallel and returns 503 when any is down.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	var mu sync.Mutex
	var wg sync.WaitGroup
	statuses := make(map[string]componentStatus, len(h.components))
	ready := true

	for name, pinger := range h.components {
		wg.Add(1)
		go func(name string, p Pinger) {
			defer wg.Done()
			err := p.Ping(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				statuses[name] = componentStatus{Healthy: false, Error: err.Error()}
				ready = false
			} else {
				statuses[name] = componentStatus{Healthy: true}
			}
			if h.metrics != nil {
				h.metrics.SetComponentHealth(name, err == nil)
			}
		}(name, pinger)
	}
	wg.Wait()

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}
	c.JSON(status, gin.H{"status": state, "components": statuses})
}
