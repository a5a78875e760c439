package artwork

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// Store is the narrow read interface over the external artwork data.
type Store interface {
	Get(ctx context.Context, slug string) (*Artwork, error)
}

// GormStore reads artworks from postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, slug string) (*Artwork, error) {
	var record Artwork

	err := s.db.WithContext(ctx).First(&record, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("artwork lookup: %w", err)
	}

	return &record, nil
}

// MemoryStore serves a fixed set of records. Used for tests and for
// deployments that seed the catalog from the config file.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Artwork
}

func NewMemoryStore(records ...Artwork) *MemoryStore {
	s := &MemoryStore{records: make(map[string]Artwork, len(records))}
	for _, r := range records {
		s.records[r.Slug] = r
	}
	return s
}

func (s *MemoryStore) Get(ctx context.Context, slug string) (*Artwork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[slug]
	if !ok {
		return nil, ErrNotFound
	}

	// Copy so callers cannot mutate the backing map.
	out := record
	return &out, nil
}

func (s *MemoryStore) Put(record Artwork) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Slug] = record
}
