package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dogame-art/nfc-gateway/internal/metrics"
)

// Logger emits one structured line per request and feeds the request
// counter. Runs after classification so the class label is populated.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		class := ClassFromContext(c)

		metrics.RequestsTotal.WithLabelValues(class.String(), strconv.Itoa(status)).Inc()

		logger.Info("request",
			zap.String("request_id", c.GetString(ContextKeyRequestID)),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("class", class.String()),
		)
	}
}
