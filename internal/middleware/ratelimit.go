package middleware

import (
	"fmt"

	"github.com/adocavo/adocavo-api/internal/ratelimit"
	"github.com/adocavo/adocavo-api/internal/response"
	"github.com/gin-gonic/gin"
)

// RateLimit enforces the (route, tier) quota for every matched request.
// Identity preference: authenticated user, then guest device, then client
// IP from the header chain. Requests with no determinable identity are
// rejected.
func RateLimit(limiter *ratelimit.Limiter, rules *ratelimit.RuleSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		routeKey := ratelimit.RouteKey(c.Request.URL.Path)

		tier := c.GetString(ContextUserTier)
		if c.GetString(ContextUserID) == "" || tier == "" {
			tier = ratelimit.TierAnonymous
		}

		rule, ok := rules.Match(routeKey, tier)
		if !ok {
			// Route carries no quota; nothing to enforce.
			c.Next()
			return
		}

		id := ratelimit.Resolve(ratelimit.RequestContext{
			UserID:   c.GetString(ContextUserID),
			DeviceID: c.GetString(ContextDeviceID),
			ClientIP: ratelimit.ClientIP(c.Request.Header, c.ClientIP()),
		})

		decision, err := limiter.Check(c.Request.Context(), id, rule)
		_ = err // both paths failed; decision is already fail-closed

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", decision.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", decision.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", decision.ResetAt.Unix()))

		if !decision.Allowed {
			response.AbortRateLimited(c, decision.RetryAfter,
				"Rate limit exceeded. Please retry later.")
			return
		}

		c.Next()
	}
}
