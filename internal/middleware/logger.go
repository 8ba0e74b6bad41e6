package middleware

import (
	"log/slog"
	"time"

	"github.com/adocavo/adocavo-api/internal/metrics"
	"github.com/adocavo/adocavo-api/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// Logger emits one structured line per request, measured from entry, and
// feeds the request metrics.
func Logger(logger *slog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		attrs := []any{
			"request_id", c.GetString(ContextRequestID),
			"method", method,
			"path", path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"ip", c.ClientIP(),
		}

		switch {
		case status == 429:
			logger.Warn("request rate limited", attrs...)
		case status >= 500:
			logger.Error("request failed", attrs...)
		default:
			logger.Info("request", attrs...)
		}

		if m != nil {
			m.ObserveRequest(ratelimit.RouteKey(path), statusClass(status), duration.Seconds())
		}
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status == 429:
		return "429"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
