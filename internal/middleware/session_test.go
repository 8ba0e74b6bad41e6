package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adocavo/adocavo-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionRouter(secret string) (*gin.Engine, *map[string]string) {
	auth := service.NewAuthService(nil, secret, 24)
	seen := map[string]string{}

	r := gin.New()
	r.Use(SessionContext(auth))
	r.GET("/whoami", func(c *gin.Context) {
		seen[ContextUserID] = c.GetString(ContextUserID)
		seen[ContextUserRole] = c.GetString(ContextUserRole)
		seen[ContextUserTier] = c.GetString(ContextUserTier)
		c.String(http.StatusOK, "ok")
	})
	return r, &seen
}

func sessionToken(t *testing.T, secret string) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u-1",
		"role":    "admin",
		"tier":    "pro",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestSessionContextSetsIdentity(t *testing.T) {
	r, seen := sessionRouter("secret")

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "authjs.session-token", Value: sessionToken(t, "secret")})
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "u-1", (*seen)[ContextUserID])
	assert.Equal(t, "admin", (*seen)[ContextUserRole])
	assert.Equal(t, "pro", (*seen)[ContextUserTier])
}

func TestSessionContextTreatsInvalidTokenAsAnonymous(t *testing.T) {
	r, seen := sessionRouter("secret")

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "authjs.session-token", Value: sessionToken(t, "wrong-secret")})
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Empty(t, (*seen)[ContextUserID])
	assert.Empty(t, (*seen)[ContextUserTier])
}

func TestSessionContextWithoutCookie(t *testing.T) {
	r, seen := sessionRouter("secret")

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Empty(t, (*seen)[ContextUserID])
}
