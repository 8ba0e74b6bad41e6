package ratelimit

import (
	"strings"
	"time"

	"github.com/adocavo/adocavo-api/internal/config"
)

// Tier classifies the caller. Every tier is throttled; admin has its own
// quota, never a bypass.
const (
	TierAnonymous = "anonymous"
	TierFree      = "free"
	TierPro       = "pro"
	TierAdmin     = "admin"
)

// Rule is one quota: at most Limit requests per Window for a route key.
type Rule struct {
	RouteKey string
	Limit    int
	Window   time.Duration
}

func (r Rule) WindowSeconds() int {
	return int(r.Window.Seconds())
}

// RuleSet holds the deploy-time quota table keyed by (routeKey, tier).
type RuleSet struct {
	rules map[string]map[string]Rule
}

func NewRuleSet(rules []config.RouteRule) *RuleSet {
	rs := &RuleSet{rules: make(map[string]map[string]Rule)}
	for _, r := range rules {
		byTier, ok := rs.rules[r.RouteKey]
		if !ok {
			byTier = make(map[string]Rule)
			rs.rules[r.RouteKey] = byTier
		}
		byTier[r.Tier] = Rule{
			RouteKey: r.RouteKey,
			Limit:    r.Limit,
			Window:   time.Duration(r.WindowSeconds) * time.Second,
		}
	}
	return rs
}

// RouteKey normalizes a request path to the quota key: the first two path
// segments, lowercased ("/api/generate/123" -> "api/generate").
func RouteKey(path string) string {
	path = strings.Trim(path, "/")
	segments := strings.SplitN(path, "/", 3)
	if len(segments) > 2 {
		segments = segments[:2]
	}
	return strings.ToLower(strings.Join(segments, "/"))
}

// Match finds the rule for (routeKey, tier), walking from the most specific
// route prefix to the least and falling back to the anonymous tier when the
// caller's tier has no dedicated rule.
func (rs *RuleSet) Match(routeKey, tier string) (Rule, bool) {
	key := strings.Trim(routeKey, "/")
	for key != "" {
		if byTier, ok := rs.rules[key]; ok {
			if rule, ok := byTier[tier]; ok {
				return rule, true
			}
			if rule, ok := byTier[TierAnonymous]; ok {
				return rule, true
			}
		}
		idx := strings.LastIndex(key, "/")
		if idx < 0 {
			break
		}
		key = key[:idx]
	}
	return Rule{}, false
}
