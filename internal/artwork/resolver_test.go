package artwork

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dogame-art/nfc-gateway/internal/circuitbreaker"
)

type fakeCache struct {
	data map[string]string
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := c.data[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.data[key] = string(value.([]byte))
	c.sets++
	return nil
}

type failingStore struct {
	calls int
}

func (s *failingStore) Get(ctx context.Context, slug string) (*Artwork, error) {
	s.calls++
	return nil, errors.New("connection refused")
}

func testStore() *MemoryStore {
	return NewMemoryStore(Artwork{
		Slug:            "WindowShopping",
		Title:           "Window Shopping",
		ImageURL:        "https://dogame.art/images/window-shopping.jpg",
		Description:     "Neon-lit storefront study",
		Exclusive:       true,
		DisplayDuration: 30000,
	})
}

func TestResolverFound(t *testing.T) {
	r := NewResolver(testStore(), nil, nil, time.Hour, nil)

	record, err := r.Resolve(context.Background(), "WindowShopping")
	require.NoError(t, err)
	assert.Equal(t, "Window Shopping", record.Title)
	assert.True(t, record.Exclusive)
}

func TestResolverNotFound(t *testing.T) {
	r := NewResolver(testStore(), nil, nil, time.Hour, nil)

	_, err := r.Resolve(context.Background(), "NoSuchArt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolverCachesHits(t *testing.T) {
	cache := newFakeCache()
	store := testStore()
	r := NewResolver(store, cache, nil, time.Hour, nil)

	_, err := r.Resolve(context.Background(), "WindowShopping")
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)

	// Drop the record from the store; the cached copy must still answer.
	store.records = map[string]Artwork{}

	record, err := r.Resolve(context.Background(), "WindowShopping")
	require.NoError(t, err)
	assert.Equal(t, "Window Shopping", record.Title)
}

func TestResolverIgnoresMalformedCacheEntry(t *testing.T) {
	cache := newFakeCache()
	cache.data[cacheKey("WindowShopping")] = "{not json"

	r := NewResolver(testStore(), cache, nil, time.Hour, nil)

	record, err := r.Resolve(context.Background(), "WindowShopping")
	require.NoError(t, err)
	assert.Equal(t, "Window Shopping", record.Title)
}

func TestResolverNotFoundDoesNotTripBreaker(t *testing.T) {
	breaker := circuitbreaker.New(circuitbreaker.Config{MaxFailures: 1, Timeout: time.Hour})
	r := NewResolver(testStore(), nil, breaker, time.Hour, nil)

	for i := 0; i < 5; i++ {
		_, err := r.Resolve(context.Background(), "NoSuchArt")
		require.ErrorIs(t, err, ErrNotFound)
	}

	assert.Equal(t, circuitbreaker.StateClosed, breaker.State())
}

func TestResolverBreakerOpensOnStoreFailure(t *testing.T) {
	breaker := circuitbreaker.New(circuitbreaker.Config{MaxFailures: 2, Timeout: time.Hour})
	store := &failingStore{}
	r := NewResolver(store, nil, breaker, time.Hour, nil)

	for i := 0; i < 2; i++ {
		_, err := r.Resolve(context.Background(), "WindowShopping")
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrNotFound)
	}

	require.Equal(t, circuitbreaker.StateOpen, breaker.State())

	_, err := r.Resolve(context.Background(), "WindowShopping")
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, 2, store.calls, "open breaker keeps the store out of the path")
}

func TestMemoryStoreCopies(t *testing.T) {
	store := testStore()

	a, err := store.Get(context.Background(), "WindowShopping")
	require.NoError(t, err)
	a.Title = "mutated"

	b, err := store.Get(context.Background(), "WindowShopping")
	require.NoError(t, err)
	assert.Equal(t, "Window Shopping", b.Title)
}

func TestArtworkJSONShape(t *testing.T) {
	payload, err := json.Marshal(Artwork{Slug: "x", Title: "X", DisplayDuration: 1500})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Contains(t, decoded, "image_url")
	assert.Contains(t, decoded, "display_duration")
	assert.Contains(t, decoded, "owner_auth")
}
