package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adocavo/adocavo-api/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func gatekeeperRouter(after gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Gatekeeper())
	if after != nil {
		r.Use(after)
	}
	handler := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/api/generate", handler)
	r.POST("/api/generate", handler)
	r.GET("/api/hooks", handler)
	r.GET("/dashboard", handler)
	r.GET("/dashboard/settings", handler)
	r.GET("/api/generated-reports", handler)
	return r
}

func TestGatekeeperRejectsProtectedAPIWithoutSession(t *testing.T) {
	downstream := 0
	r := gatekeeperRouter(func(c *gin.Context) { downstream++; c.Next() })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, downstream, "nothing downstream of the gatekeeper may run")

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, response.CodeUnauthorized, env.Error.Code)
}

func TestGatekeeperRedirectsProtectedPageWithCallback(t *testing.T) {
	r := gatekeeperRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/settings?tab=billing", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/signin?callbackUrl=%2Fdashboard%2Fsettings%3Ftab%3Dbilling", w.Header().Get("Location"))
}

func TestGatekeeperAcceptsAnyRecognizedCookie(t *testing.T) {
	r := gatekeeperRouter(nil)

	for _, name := range SessionCookieNames {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/generate", nil)
		req.AddCookie(&http.Cookie{Name: name, Value: "some-token"})
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "cookie %s should pass the gatekeeper", name)
	}
}

func TestGatekeeperIgnoresEmptyCookie(t *testing.T) {
	r := gatekeeperRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/generate", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieNames[0], Value: ""})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGatekeeperPassesPublicAndPrefixSiblingPaths(t *testing.T) {
	r := gatekeeperRouter(nil)

	for _, path := range []string{"/api/hooks", "/api/generated-reports"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "path %s must not be gatekept", path)
	}
}

func TestRequireAuth(t *testing.T) {
	r := gin.New()
	r.GET("/me", func(c *gin.Context) { c.Set(ContextUserID, c.Query("uid")) }, RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?uid=u-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	r := gin.New()
	r.GET("/admin", func(c *gin.Context) {
		c.Set(ContextUserID, "u-1")
		c.Set(ContextUserRole, c.Query("role"))
	}, RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin?role=user", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin?role=admin", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
