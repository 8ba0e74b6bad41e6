package middleware

import (
	"log/slog"
	"net/http"

	"github.com/adocavo/adocavo-api/internal/response"
	"github.com/gin-gonic/gin"
)

// Recovery converts panics into an INTERNAL_ERROR envelope. Full context is
// logged; the client only sees a generic message.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					"request_id", c.GetString(ContextRequestID),
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"ip", c.ClientIP(),
					"panic", err,
				)
				response.AbortError(c, http.StatusInternalServerError,
					response.CodeInternalError, "Internal server error")
			}
		}()
		c.Next()
	}
}
