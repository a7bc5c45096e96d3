package server

import (
	"math"
	"strconv"
	"strings"

	obscontext "github.com/enfinitus/onboarding/internal/observability/context"
	obslogger "github.com/enfinitus/onboarding/internal/observability/logger"
	"github.com/enfinitus/onboarding/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ActorRequired rejects ops mutations that do not name an operator in X-Actor.
// The request logger middleware has already copied the header into the context.
func ActorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(obscontext.ActorFromContext(c.Request.Context())) == "" {
			AbortWithError(c, newValidationError("actor", "missing_actor", obslogger.HeaderActor+" header is required"))
			return
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) string {
	return obscontext.ActorFromContext(c.Request.Context())
}

// RateLimit throttles a route per client address. A nil limiter admits
// everything, and limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		res, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			obslogger.WithContext(c.Request.Context(), log).Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			AbortWithError(c, ratelimit.ErrRateLimited)
			return
		}
		c.Next()
	}
}
