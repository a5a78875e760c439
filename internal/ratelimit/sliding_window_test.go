package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowQuota(t *testing.T) {
	client, _ := newTestRedis(t)
	limiter := NewSlidingWindow(client, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "id")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := limiter.Allow(ctx, "id")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Greater(t, res.RetryAfter(), 0)
}

func TestSlidingWindowConcurrentBurst(t *testing.T) {
	client, _ := newTestRedis(t)
	limiter := NewSlidingWindow(client, 10, time.Minute)
	ctx := context.Background()

	var allowed int64
	var wg sync.WaitGroup

	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := limiter.Allow(ctx, "burst")
			if err == nil && res.Allowed {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), allowed)
}

func TestSlidingWindowSlides(t *testing.T) {
	client, _ := newTestRedis(t)
	limiter := NewSlidingWindow(client, 2, 200*time.Millisecond)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "id")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "id")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "id")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	// Once the first two requests fall out of the window the quota frees up.
	time.Sleep(250 * time.Millisecond)

	res, err = limiter.Allow(ctx, "id")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestSlidingWindowStoreError(t *testing.T) {
	client, mr := newTestRedis(t)
	limiter := NewSlidingWindow(client, 5, time.Minute)

	mr.Close()

	_, err := limiter.Allow(context.Background(), "key")
	assert.Error(t, err)
}
