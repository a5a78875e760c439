package artwork

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dogame-art/nfc-gateway/internal/circuitbreaker"
	"github.com/dogame-art/nfc-gateway/internal/metrics"
)

// Cache is the slice of the redis client the resolver needs. Satisfied by
// storage.RedisClient; nil disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Resolver reads artwork records through a redis cache and a circuit
// breaker. Not-found is a routing outcome, not a store failure: it bypasses
// the breaker's failure counting and is cached like a hit is not.
type Resolver struct {
	store    Store
	cache    Cache
	breaker  *circuitbreaker.CircuitBreaker
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewResolver(store Store, cache Cache, breaker *circuitbreaker.CircuitBreaker, cacheTTL time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Resolver{
		store:    store,
		cache:    cache,
		breaker:  breaker,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func (r *Resolver) Resolve(ctx context.Context, slug string) (*Artwork, error) {
	// Check cache first
	if cached := r.fromCache(ctx, slug); cached != nil {
		metrics.ArtworkLookups.WithLabelValues("cache_hit").Inc()
		return cached, nil
	}

	var record *Artwork
	lookup := func() error {
		found, err := r.store.Get(ctx, slug)
		if errors.Is(err, ErrNotFound) {
			// Absence is an answer, not a dependency failure.
			return nil
		}
		if err != nil {
			return err
		}
		record = found
		return nil
	}

	if r.breaker != nil {
		if err := r.breaker.Call(lookup); err != nil {
			metrics.ArtworkLookups.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("resolve %q: %w", slug, err)
		}
	} else if err := lookup(); err != nil {
		metrics.ArtworkLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("resolve %q: %w", slug, err)
	}

	if record == nil {
		metrics.ArtworkLookups.WithLabelValues("not_found").Inc()
		return nil, ErrNotFound
	}

	metrics.ArtworkLookups.WithLabelValues("found").Inc()
	r.toCache(ctx, slug, record)

	return record, nil
}

func (r *Resolver) fromCache(ctx context.Context, slug string) *Artwork {
	if r.cache == nil {
		return nil
	}

	cached, err := r.cache.Get(ctx, cacheKey(slug))
	if err != nil || cached == "" {
		return nil
	}

	var record Artwork
	if err := json.Unmarshal([]byte(cached), &record); err != nil {
		r.logger.Debug("discarding malformed cache entry", zap.String("slug", slug), zap.Error(err))
		return nil
	}

	return &record
}

func (r *Resolver) toCache(ctx context.Context, slug string, record *Artwork) {
	if r.cache == nil {
		return
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return
	}

	if err := r.cache.Set(ctx, cacheKey(slug), payload, r.cacheTTL); err != nil {
		// Cache writes are best-effort; the store already answered.
		r.logger.Debug("artwork cache write failed", zap.String("slug", slug), zap.Error(err))
	}
}

func cacheKey(slug string) string {
	return "artwork:cache:" + slug
}
