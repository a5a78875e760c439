package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dogame-art/nfc-gateway/internal/metrics"
	"github.com/dogame-art/nfc-gateway/internal/ratelimit"
)

// RateLimit enforces the per-identity quota. The partition key is the client
// IP as gin derives it from the forwarded-address chain.
//
// Fail-open: when the counter store errors the request is admitted anyway.
// Availability wins over strict enforcement here, but every bypass is
// logged and counted so operators can see enforcement degrade.
func RateLimit(limiter ratelimit.Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()

		res, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			metrics.RateLimitDegraded.Inc()
			logger.Warn("rate limit store unavailable, failing open",
				zap.String("request_id", c.GetString(ContextKeyRequestID)),
				zap.String("client_ip", key),
				zap.Error(err),
			)

			c.Set(ContextKeyRemaining, limiter.Limit()-1)
			c.Next()
			return
		}

		c.Set(ContextKeyRemaining, res.Remaining)

		if !res.Allowed {
			metrics.RateLimitDecisions.WithLabelValues("denied").Inc()

			retryAfter := res.RetryAfter()
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter,
			})
			return
		}

		metrics.RateLimitDecisions.WithLabelValues("allowed").Inc()
		c.Next()
	}
}
