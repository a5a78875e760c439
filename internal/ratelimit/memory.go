package ratelimit

import (
	"context"
	"sync"
	"time"
)

type windowRecord struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is the in-process fixed-window variant used when no redis is
// configured. Expired records reset lazily on the next request for the
// identity; a background sweep evicts identities that stopped sending.
type MemoryLimiter struct {
	mu      sync.Mutex
	records map[string]*windowRecord
	limit   int
	window  time.Duration
	done    chan struct{}
	once    sync.Once
}

func NewMemory(limit int, window time.Duration) *MemoryLimiter {
	m := &MemoryLimiter{
		records: make(map[string]*windowRecord),
		limit:   limit,
		window:  window,
		done:    make(chan struct{}),
	}

	go m.sweep()

	return m
}

func (m *MemoryLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok || now.After(rec.resetAt) {
		rec = &windowRecord{count: 0, resetAt: now.Add(m.window)}
		m.records[key] = rec
	}

	if rec.count >= m.limit {
		return &Result{Allowed: false, Remaining: 0, ResetAt: rec.resetAt}, nil
	}

	rec.count++

	return &Result{
		Allowed:   true,
		Remaining: m.limit - rec.count,
		ResetAt:   rec.resetAt,
	}, nil
}

func (m *MemoryLimiter) Limit() int {
	return m.limit
}

func (m *MemoryLimiter) Window() time.Duration {
	return m.window
}

func (m *MemoryLimiter) Close() {
	m.once.Do(func() { close(m.done) })
}

func (m *MemoryLimiter) sweep() {
	ticker := time.NewTicker(m.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for key, rec := range m.records {
				if now.After(rec.resetAt) {
					delete(m.records, key)
				}
			}
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}
