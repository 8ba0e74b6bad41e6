package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adocavo/adocavo-api/internal/metrics"
)

// CounterCache is the ephemeral fast path: a best-effort counter with TTL.
// GetCount returns 0 for absent keys.
type CounterCache interface {
	GetCount(ctx context.Context, key string) (int, error)
	SetCount(ctx context.Context, key string, count int, ttl time.Duration) error
}

// StoreDecision is the fallback store's verdict for one request.
type StoreDecision struct {
	Allowed bool
	Count   int
	ResetAt time.Time
}

// CounterStore is the durable fallback: an exact, per-row-atomic counter.
// Implementations must not lose increments under concurrent writers for the
// same (identifier, routeKey).
type CounterStore interface {
	Allow(ctx context.Context, identifier, routeKey string, limit int, window time.Duration, now time.Time) (StoreDecision, error)
}

// Decision is the externally observable outcome of a rate limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter int // seconds
	ResetAt    time.Time
	Source     string // "cache", "database", or "fail-closed"
}

// Limiter admits or rejects requests against a quota with two independent
// enforcement paths: a Redis-backed fixed-window counter, and an exact
// database counter used only when the cache is unavailable. When neither
// path can answer, it fails closed.
type Limiter struct {
	cache   CounterCache
	store   CounterStore
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) { l.metrics = m }
}

func NewLimiter(cache CounterCache, store CounterStore, logger *slog.Logger, opts ...Option) *Limiter {
	l := &Limiter{
		cache:  cache,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check runs one admission decision for (id, rule). A nil error with
// Allowed=false is an ordinary quota rejection; a non-nil error means both
// paths failed and the request was rejected fail-closed.
func (l *Limiter) Check(ctx context.Context, id Identifier, rule Rule) (Decision, error) {
	if id.IsUnknown() {
		if l.metrics != nil {
			l.metrics.RateLimitFailClosed.Inc()
		}
		l.logger.Warn("rate limit rejecting unidentifiable request",
			"route", rule.RouteKey)
		return l.failClosed(rule), nil
	}

	decision, cacheErr := l.checkCache(ctx, id, rule)
	if cacheErr == nil {
		if l.metrics != nil {
			l.metrics.RecordDecision("cache", decision.Allowed)
		}
		return decision, nil
	}

	// Cache path unavailable; the exact database counter takes over.
	if l.metrics != nil {
		l.metrics.RateLimitFallbackTotal.Inc()
	}
	l.logger.Warn("rate limit cache path failed, using database fallback",
		"route", rule.RouteKey, "identifier_kind", id.Kind.String(), "error", cacheErr)

	decision, storeErr := l.checkStore(ctx, id, rule)
	if storeErr == nil {
		if l.metrics != nil {
			l.metrics.RecordDecision("database", decision.Allowed)
		}
		return decision, nil
	}

	if l.metrics != nil {
		l.metrics.RateLimitFailClosed.Inc()
	}
	l.logger.Error("rate limit fail-closed: both paths unavailable",
		"route", rule.RouteKey, "identifier_kind", id.Kind.String(),
		"cache_error", cacheErr, "store_error", storeErr)
	return l.failClosed(rule), fmt.Errorf("rate limit unavailable: cache: %w; store: %v", cacheErr, storeErr)
}

// checkCache is the approximate path. Windows are fixed and epoch-aligned,
// so a client can see up to 2x limit across a boundary, and the read/write
// pair is deliberately not atomic: concurrent requests may over-admit,
// never over-reject.
func (l *Limiter) checkCache(ctx context.Context, id Identifier, rule Rule) (Decision, error) {
	now := l.now()
	windowMs := rule.Window.Milliseconds()
	bucket := now.UnixMilli() / windowMs
	key := fmt.Sprintf("ratelimit:%s:%s:%d", rule.RouteKey, id.Key(), bucket)
	resetAt := time.UnixMilli((bucket + 1) * windowMs)

	count, err := l.cache.GetCount(ctx, key)
	if err != nil {
		return Decision{}, err
	}

	if count >= rule.Limit {
		return Decision{
			Allowed:    false,
			Limit:      rule.Limit,
			Remaining:  0,
			RetryAfter: rule.WindowSeconds(),
			ResetAt:    resetAt,
			Source:     "cache",
		}, nil
	}

	if err := l.cache.SetCount(ctx, key, count+1, rule.Window); err != nil {
		return Decision{}, err
	}

	return Decision{
		Allowed:    true,
		Limit:      rule.Limit,
		Remaining:  rule.Limit - count - 1,
		ResetAt:    resetAt,
		Source:     "cache",
	}, nil
}

func (l *Limiter) checkStore(ctx context.Context, id Identifier, rule Rule) (Decision, error) {
	now := l.now()
	sd, err := l.store.Allow(ctx, id.Key(), rule.RouteKey, rule.Limit, rule.Window, now)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{
		Allowed: sd.Allowed,
		Limit:   rule.Limit,
		ResetAt: sd.ResetAt,
		Source:  "database",
	}
	if sd.Allowed {
		d.Remaining = rule.Limit - sd.Count
		if d.Remaining < 0 {
			d.Remaining = 0
		}
	} else {
		retry := int(sd.ResetAt.Sub(now).Seconds())
		if retry < 1 {
			retry = 1
		}
		d.RetryAfter = retry
	}
	return d, nil
}

func (l *Limiter) failClosed(rule Rule) Decision {
	return Decision{
		Allowed:    false,
		Limit:      rule.Limit,
		Remaining:  0,
		RetryAfter: rule.WindowSeconds(),
		ResetAt:    l.now().Add(rule.Window),
		Source:     "fail-closed",
	}
}
