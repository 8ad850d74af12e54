package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/prometheus"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
)

// RequestLogging logs one line per request and records the request in the
// HTTP metrics. metrics may be nil.
func RequestLogging(logger logging.Logger, metrics *prometheus.Metrics) gin.HandlerFunc {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		if metrics != nil {
			metrics.HTTPActiveRequests.WithLabelValues(c.Request.Method).Inc()
		}
		c.Next()
		if metrics != nil {
			metrics.HTTPActiveRequests.WithLabelValues(c.Request.Method).Dec()
		}

		duration := time.Since(start)
		status := c.Writer.Status()

		if metrics != nil {
			metrics.RecordHTTPRequest(c.Request.Method, path, status, duration)
		}

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", path),
			logging.Int("status", status),
			logging.Duration("duration", duration),
			logging.String("client_ip", c.ClientIP()),
			logging.Int("response_size", c.Writer.Size()),
		}
		if org := c.GetString(ctxKeyOrgID); org != "" {
			fields = append(fields, logging.String("organization_id", org))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			logger.Error("http request", fields...)
		case status >= 400:
			logger.Warn("http request", fields...)
		default:
			logger.Info("http request", fields...)
		}
	}
}

// Recovery converts panics into 500 responses and logs the panic value with
// the request line.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered",
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Any("panic", recovered))
		c.AbortWithStatusJSON(500, gin.H{
			"code":    string(errors.ErrCodeInternal),
			"message": "internal server error",
		})
	})
}
