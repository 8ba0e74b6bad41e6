package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Error codes returned in the error envelope. Clients switch on these, so
// they are stable across releases.
const (
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeAIUnavailable     = "AI_UNAVAILABLE"
	CodeInvalidAIResponse = "INVALID_AI_RESPONSE"
	CodeEnvMissing        = "ENV_MISSING"
	CodeInternalError     = "INTERNAL_ERROR"
)

// ErrorBody is the error half of the response envelope.
type ErrorBody struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	RetryAfter int         `json:"retryAfter,omitempty"`
}

// Envelope wraps every API response body.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, Envelope{Success: false, Error: &ErrorBody{Code: code, Message: message}})
}

// AbortError writes an error envelope and stops the handler chain.
func AbortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: &ErrorBody{Code: code, Message: message}})
}

// AbortRateLimited writes the 429 contract: envelope with retryAfter plus a
// Retry-After header in seconds.
func AbortRateLimited(c *gin.Context, retryAfterSeconds int, message string) {
	if retryAfterSeconds < 0 {
		retryAfterSeconds = 0
	}
	c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Envelope{
		Success: false,
		Error: &ErrorBody{
			Code:       CodeRateLimitExceeded,
			Message:    message,
			RetryAfter: retryAfterSeconds,
		},
	})
}
