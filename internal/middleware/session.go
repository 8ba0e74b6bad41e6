package middleware

import (
	"github.com/adocavo/adocavo-api/internal/service"
	"github.com/gin-gonic/gin"
)

// SessionCookieNames are the recognized session cookie names, covering
// secure and non-secure variants across two auth-library naming
// generations. Presence of any one of them counts as "has a session" for
// gatekeeping; actual validation happens in SessionContext/RequireAuth.
var SessionCookieNames = []string{
	"__Secure-authjs.session-token",
	"authjs.session-token",
	"__Secure-next-auth.session-token",
	"next-auth.session-token",
}

const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
	ContextUserTier = "user_tier"
)

// sessionCookie returns the first recognized session cookie value, if any.
func sessionCookie(c *gin.Context) (string, bool) {
	for _, name := range SessionCookieNames {
		if value, err := c.Cookie(name); err == nil && value != "" {
			return value, true
		}
	}
	return "", false
}

// HasSessionCookie is the cheap existence check used by the gatekeeper.
func HasSessionCookie(c *gin.Context) bool {
	_, ok := sessionCookie(c)
	return ok
}

// SessionContext validates the session token when one is present and puts
// the caller's identity into the request context. An invalid token is
// treated as no session; protected routes reject it downstream.
func SessionContext(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := sessionCookie(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}

		if userID, ok := claims["user_id"].(string); ok && userID != "" {
			c.Set(ContextUserID, userID)
		}
		if role, ok := claims["role"].(string); ok {
			c.Set(ContextUserRole, role)
		}
		if tier, ok := claims["tier"].(string); ok {
			c.Set(ContextUserTier, tier)
		}

		c.Next()
	}
}
