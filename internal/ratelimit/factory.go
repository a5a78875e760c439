package ratelimit

import (
	"time"

	"github.com/dogame-art/nfc-gateway/internal/storage"
)

// NewLimiter picks a limiter for the configured algorithm. Without a redis
// connection the in-process limiter is the only option.
func NewLimiter(redis *storage.RedisClient, algorithm string, limit int, window time.Duration) Limiter {
	if redis == nil {
		return NewMemory(limit, window)
	}

	switch algorithm {
	case "sliding_window":
		return NewSlidingWindow(redis, limit, window)
	case "fixed_window":
		return NewFixedWindow(redis, limit, window)
	default:
		return NewFixedWindow(redis, limit, window)
	}
}
