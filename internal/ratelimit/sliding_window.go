package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dogame-art/nfc-gateway/internal/storage"
)

// slidingWindowScript trims expired entries, counts the window and inserts
// the new request in one atomic round trip. A plain ZCARD-then-ZADD sequence
// would over-admit under concurrency.
// Returns: allowed (0 or 1), remaining, reset time in ms from now.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window_ms = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window_ms)

	local count = redis.call('ZCARD', key)
	local allowed = 0
	if count < limit then
		redis.call('ZADD', key, now, now .. ':' .. math.random())
		count = count + 1
		allowed = 1
	end
	redis.call('PEXPIRE', key, window_ms)

	local reset_ms = window_ms
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	if #oldest > 0 then
		reset_ms = tonumber(oldest[2]) + window_ms - now
	end

	local remaining = limit - count
	if remaining < 0 then
		remaining = 0
	end

	return {allowed, remaining, reset_ms}
`)

// SlidingWindowLimiter keeps a sorted set of request timestamps per identity.
type SlidingWindowLimiter struct {
	redis  *storage.RedisClient
	limit  int
	window time.Duration
}

func NewSlidingWindow(redis *storage.RedisClient, limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		redis:  redis,
		limit:  limit,
		window: window,
	}
}

func (s *SlidingWindowLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	redisKey := fmt.Sprintf("ratelimit:sliding:%s", key)
	now := time.Now()

	values, err := slidingWindowScript.Run(ctx, s.redis.Client(),
		[]string{redisKey}, s.limit, s.window.Milliseconds(), now.UnixMilli()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(values) != 3 {
		return nil, fmt.Errorf("rate limit script returned %d values", len(values))
	}

	return &Result{
		Allowed:   values[0] == 1,
		Remaining: int(values[1]),
		ResetAt:   now.Add(time.Duration(values[2]) * time.Millisecond),
	}, nil
}

func (s *SlidingWindowLimiter) Limit() int {
	return s.limit
}

func (s *SlidingWindowLimiter) Window() time.Duration {
	return s.window
}
