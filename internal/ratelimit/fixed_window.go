package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/dogame-art/nfc-gateway/internal/storage"
)

// FixedWindowLimiter counts requests in fixed windows keyed by window number.
// INCR is atomic on the redis side, so concurrent requests for the same
// identity cannot lose updates.
type FixedWindowLimiter struct {
	redis  *storage.RedisClient
	limit  int
	window time.Duration
}

func NewFixedWindow(redis *storage.RedisClient, limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		redis:  redis,
		limit:  limit,
		window: window,
	}
}

func (f *FixedWindowLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	windowSecs := int64(f.window.Seconds())
	currentWindow := time.Now().Unix() / windowSecs
	redisKey := fmt.Sprintf("ratelimit:fixed:%s:%d", key, currentWindow)

	count, err := f.redis.Incr(ctx, redisKey)
	if err != nil {
		return nil, fmt.Errorf("rate limit incr: %w", err)
	}

	if count == 1 {
		f.redis.Expire(ctx, redisKey, f.window)
	}

	remaining := f.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   count <= int64(f.limit),
		Remaining: remaining,
		ResetAt:   time.Unix((currentWindow+1)*windowSecs, 0),
	}, nil
}

func (f *FixedWindowLimiter) Limit() int {
	return f.limit
}

func (f *FixedWindowLimiter) Window() time.Duration {
	return f.window
}
