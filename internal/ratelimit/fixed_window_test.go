package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dogame-art/nfc-gateway/internal/storage"
)

func newTestRedis(t *testing.T) (*storage.RedisClient, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := storage.NewRedis(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestFixedWindowQuota(t *testing.T) {
	client, _ := newTestRedis(t)
	limiter := NewFixedWindow(client, 5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := limiter.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 4-i, res.Remaining)
	}

	res, err := limiter.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Greater(t, res.RetryAfter(), 0)
}

func TestFixedWindowSeparateIdentities(t *testing.T) {
	client, _ := newTestRedis(t)
	limiter := NewFixedWindow(client, 1, time.Minute)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "203.0.113.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "203.0.113.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed, "a second identity has its own quota")

	res, err = limiter.Allow(ctx, "203.0.113.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

// The quota must hold exactly under a concurrent burst: N goroutines against
// a limit of M admit exactly M requests.
func TestFixedWindowConcurrentBurst(t *testing.T) {
	client, _ := newTestRedis(t)
	limiter := NewFixedWindow(client, 10, time.Minute)
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

func TestFixedWindowResets(t *testing.T) {
	client, _ := newTestRedis(t)
	limiter := NewFixedWindow(client, 1, time.Second)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "reset-me")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "reset-me")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	// Wait out the current window, then the quota must be fresh.
	time.Sleep(time.Until(res.ResetAt) + 50*time.Millisecond)

	res, err = limiter.Allow(ctx, "reset-me")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestFixedWindowStoreError(t *testing.T) {
	client, mr := newTestRedis(t)
	limiter := NewFixedWindow(client, 5, time.Minute)

	mr.Close()

	_, err := limiter.Allow(context.Background(), "key")
	assert.Error(t, err, "store failures surface to the caller, fail-open is the middleware's call")
}
