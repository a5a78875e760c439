package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dogame-art/nfc-gateway/internal/classifier"
)

// Context keys shared between the pipeline middleware and the handlers.
const (
	ContextKeyRequestID = "request_id"
	ContextKeyClass     = "client_class"
	ContextKeyRemaining = "rate_limit_remaining"
)

// ClassFromContext returns the class the classification middleware stored.
// Requests that somehow skipped classification count as generic.
func ClassFromContext(c *gin.Context) classifier.Class {
	if v, exists := c.Get(ContextKeyClass); exists {
		if class, ok := v.(classifier.Class); ok {
			return class
		}
	}
	return classifier.Generic
}

// RemainingFromContext returns the rate-limit quota left after this request.
func RemainingFromContext(c *gin.Context) int {
	if v, exists := c.Get(ContextKeyRemaining); exists {
		if remaining, ok := v.(int); ok {
			return remaining
		}
	}
	return 0
}
