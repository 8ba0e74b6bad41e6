package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/adocavo/adocavo-api/internal/response"
	"github.com/gin-gonic/gin"
)

// ProtectedPagePrefixes are page routes that redirect unauthenticated
// visitors to sign-in. ProtectedAPIPrefixes return a 401 envelope instead.
var (
	ProtectedPagePrefixes = []string{"/dashboard", "/generate", "/analyze", "/admin"}
	ProtectedAPIPrefixes  = []string{"/api/generate", "/api/scripts", "/api/favorites", "/api/admin"}
)

// Gatekeeper short-circuits unauthenticated access to protected paths
// before any handler (or rate limit work) runs. It checks only cookie
// presence; token validation happens downstream.
func Gatekeeper() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if hasPrefix(path, ProtectedPagePrefixes) && !HasSessionCookie(c) {
			callback := path
			if raw := c.Request.URL.RawQuery; raw != "" {
				callback += "?" + raw
			}
			c.Redirect(http.StatusTemporaryRedirect,
				"/signin?callbackUrl="+url.QueryEscape(callback))
			c.Abort()
			return
		}

		if hasPrefix(path, ProtectedAPIPrefixes) && !HasSessionCookie(c) {
			response.AbortError(c, http.StatusUnauthorized,
				response.CodeUnauthorized, "Authentication required")
			return
		}

		c.Next()
	}
}

func hasPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// RequireAuth rejects requests whose session token did not validate.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserID) == "" {
			response.AbortError(c, http.StatusUnauthorized,
				response.CodeUnauthorized, "Invalid or expired session")
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects non-admin callers. Admin endpoints still sit behind
// their own rate limit tier.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserID) == "" || c.GetString(ContextUserRole) != "admin" {
			response.AbortError(c, http.StatusUnauthorized,
				response.CodeUnauthorized, "Admin access required")
			return
		}
		c.Next()
	}
}
