package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID     = "x-request-id"
	HeaderCorrelationID = "x-correlation-id"

	ContextRequestID     = "request_id"
	ContextCorrelationID = "correlation_id"
)

// RequestID attaches a generated request id to every request and echoes a
// correlation id, honoring one supplied by the caller so log lines can be
// stitched across services.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()

		correlationID := c.GetHeader(HeaderCorrelationID)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		c.Set(ContextRequestID, requestID)
		c.Set(ContextCorrelationID, correlationID)
		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderCorrelationID, correlationID)

		c.Next()
	}
}
