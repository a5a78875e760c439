// Package ratelimit implements per-identity request counting over a shared
// counter store. Callers decide what to do when the store errors; the
// limiters report the failure instead of guessing.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of a single quota check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns the whole seconds until the window resets, rounded up,
// for the Retry-After header. Never negative.
func (r *Result) RetryAfter() int {
	secs := int(time.Until(r.ResetAt).Seconds()) + 1
	if secs < 0 {
		secs = 0
	}
	return secs
}

type Limiter interface {
	// Allow records one request for key and reports whether it fits the
	// quota. The consume-and-check must be atomic: concurrent callers for
	// the same key never admit more than Limit requests per window.
	Allow(ctx context.Context, key string) (*Result, error)

	Limit() int

	Window() time.Duration
}
