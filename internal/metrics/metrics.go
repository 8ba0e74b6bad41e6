package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector the service registers. It is constructed
// once in main and passed to the components that record into it; nothing in
// this package is a global.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal          *prometheus.CounterVec
	RequestDurationSeconds *prometheus.HistogramVec

	RateLimitDecisionsTotal *prometheus.CounterVec
	RateLimitFallbackTotal  prometheus.Counter
	RateLimitFailClosed     prometheus.Counter

	AIRequestsTotal   *prometheus.CounterVec
	AIRequestDuration prometheus.Histogram

	CreditsSpentTotal prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adocavo_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
		RequestDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adocavo_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		RateLimitDecisionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adocavo_ratelimit_decisions_total",
			Help: "Rate limit decisions by source (cache/database) and outcome",
		}, []string{"source", "outcome"}),
		RateLimitFallbackTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "adocavo_ratelimit_fallback_total",
			Help: "Times the cache path failed and the database fallback was used",
		}),
		RateLimitFailClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "adocavo_ratelimit_fail_closed_total",
			Help: "Requests rejected because no rate limit decision could be made",
		}),
		AIRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adocavo_ai_requests_total",
			Help: "Calls to the managed inference API by outcome",
		}, []string{"outcome"}),
		AIRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "adocavo_ai_request_duration_seconds",
			Help:    "Latency of managed inference API calls",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
		}),
		CreditsSpentTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "adocavo_credits_spent_total",
			Help: "Credits deducted for generation and analysis",
		}),
	}
}

func (m *Metrics) ObserveRequest(route, status string, seconds float64) {
	m.RequestsTotal.WithLabelValues(route, status).Inc()
	m.RequestDurationSeconds.WithLabelValues(route).Observe(seconds)
}

func (m *Metrics) RecordDecision(source string, allowed bool) {
	outcome := "allowed"
	if !allowed {
		outcome = "rejected"
	}
	m.RateLimitDecisionsTotal.WithLabelValues(source, outcome).Inc()
}
