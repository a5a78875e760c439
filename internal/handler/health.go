package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is anything with a health probe; redis and postgres both qualify.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	redis    Pinger
	postgres Pinger
}

func NewHealthHandler(redis, postgres Pinger) *HealthHandler {
	return &HealthHandler{redis: redis, postgres: postgres}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if h.redis != nil {
		ok := h.redis.Ping(ctx) == nil
		checks["redis"] = ok
		// The limiter fails open without redis, so a redis outage degrades
		// the service but does not take it down.
		if !ok {
			healthy = false
		}
	}

	if h.postgres != nil {
		ok := h.postgres.Ping(ctx) == nil
		checks["database"] = ok
		if !ok {
			healthy = false
		}
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !healthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"service":   "nfc-gateway",
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}
