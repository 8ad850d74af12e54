// Package http assembles the gin route tree and the API server around it.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/prometheus"
	"github.com/Credmatrix/portfolio-management-sub006/internal/interfaces/http/handlers"
	"github.com/Credmatrix/portfolio-management-sub006/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and cross-cutting dependencies the
// route tree needs. Nil handlers leave their routes unregistered, which
// keeps partial wiring possible in tests.
type RouterConfig struct {
	PortfolioHandler *handlers.PortfolioHandler
	DocumentHandler  *handlers.DocumentHandler
	ReportHandler    *handlers.ReportHandler
	SearchHandler    *handlers.SearchHandler
	HealthHandler    *handlers.HealthHandler

	CORS    *middleware.CORSConfig
	Logger  logging.Logger
	Metrics *prometheus.Metrics
	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler

	// Mode is the gin mode: "debug", "release" or "test".
	Mode string
}

// NewRouter builds the complete route tree. Health and metrics endpoints
// are public; everything under /api/v1 requires caller identity headers.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(cfg.Logger))

	cors := middleware.DefaultCORSConfig()
	if cfg.CORS != nil {
		cors = *cfg.CORS
	}
	r.Use(middleware.CORS(cors))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	api.Use(middleware.Identity())

	if h := cfg.PortfolioHandler; h != nil {
		api.GET("/companies", h.List)
		api.GET("/companies/:companyID", h.Get)
		api.POST("/portfolio/filter", h.Filter)
		api.GET("/portfolio/options", h.Options)
		api.POST("/portfolio/dashboard", h.Dashboard)
	}
	if h := cfg.DocumentHandler; h != nil {
		api.POST("/documents", h.Submit)
		api.GET("/documents/:companyID/status", h.Status)
		api.POST("/documents/:companyID/retry", h.Retry)
	}
	if h := cfg.ReportHandler; h != nil {
		api.POST("/reports", h.Generate)
		api.GET("/reports/:reportID/download", h.Download)
	}
	if h := cfg.SearchHandler; h != nil {
		api.GET("/search", h.Search)
	}

	return r
}
