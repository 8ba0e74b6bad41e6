package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/adocavo/adocavo-api/internal/config"
	"github.com/adocavo/adocavo-api/internal/ratelimit"
	"github.com/adocavo/adocavo-api/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *memCache) GetCount(ctx context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key], nil
}

func (m *memCache) SetCount(ctx context.Context, key string, count int, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key] = count
	return nil
}

type noopStore struct{}

func (noopStore) Allow(ctx context.Context, identifier, routeKey string, limit int, window time.Duration, now time.Time) (ratelimit.StoreDecision, error) {
	return ratelimit.StoreDecision{Allowed: true, Count: 1, ResetAt: now.Add(window)}, nil
}

func rateLimitRouter(limit int) *gin.Engine {
	limiter := ratelimit.NewLimiter(
		&memCache{counts: make(map[string]int)},
		noopStore{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	rules := ratelimit.NewRuleSet([]config.RouteRule{
		{RouteKey: "api/analyze", Tier: ratelimit.TierAnonymous, Limit: limit, WindowSeconds: 60},
	})

	r := gin.New()
	r.Use(RateLimit(limiter, rules))
	r.POST("/api/analyze", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/api/hooks", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func analyzeRequest(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
	req.Header.Set("cf-connecting-ip", ip)
	return req
}

func TestRateLimitMiddlewareHeadersAndRejection(t *testing.T) {
	r := rateLimitRouter(2)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, analyzeRequest("203.0.113.1"))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(1-i), w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, analyzeRequest("203.0.113.1"))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, response.CodeRateLimitExceeded, env.Error.Code)
	assert.Equal(t, 60, env.Error.RetryAfter)
}

func TestRateLimitMiddlewareSeparatesClients(t *testing.T) {
	r := rateLimitRouter(1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, analyzeRequest("203.0.113.1"))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, analyzeRequest("203.0.113.2"))
	assert.Equal(t, http.StatusOK, w.Code, "another client has its own quota")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, analyzeRequest("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitMiddlewareSkipsUnmatchedRoutes(t *testing.T) {
	r := rateLimitRouter(1)

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/hooks", nil)
		req.Header.Set("cf-connecting-ip", "203.0.113.1")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimitMiddlewareRejectsUnknownClient(t *testing.T) {
	limiter := ratelimit.NewLimiter(
		&memCache{counts: make(map[string]int)},
		noopStore{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	rules := ratelimit.NewRuleSet([]config.RouteRule{
		{RouteKey: "api/analyze", Tier: ratelimit.TierAnonymous, Limit: 5, WindowSeconds: 60},
	})

	r := gin.New()
	r.Use(RateLimit(limiter, rules))
	r.POST("/api/analyze", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	// No headers and no socket address resolves to no identity.
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
	req.RemoteAddr = ""
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
