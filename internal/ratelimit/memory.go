// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package ratelimit

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	mu     sync.Mutex
	start  time.Time
	count  int
	window time.Duration

	// removed is set by Sweep so that a caller holding a stale pointer looks again.
	removed bool
}

// MemoryLimiter is an in-process [Limiter].
//
// The bucket map is guarded by one mutex held only for lookup; each bucket
// serializes its own check-and-increment, so unrelated identifiers never
// contend on the same lock.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewMemoryLimiter constructs an empty [MemoryLimiter] using the wall clock.
func NewMemoryLimiter() *MemoryLimiter {
	return NewMemoryLimiterWithClock(time.Now)
}

// NewMemoryLimiterWithClock constructs a [MemoryLimiter] driven by now.
func NewMemoryLimiterWithClock(now func() time.Time) *MemoryLimiter {
	return &MemoryLimiter{
		buckets: make(map[string]*bucket),
		now:     now,
	}
}

func (limiter *MemoryLimiter) lookup(id string) *bucket {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	current, ok := limiter.buckets[id]
	if !ok {
		current = &bucket{}
		limiter.buckets[id] = current
	}
	return current
}

func (limiter *MemoryLimiter) CheckAndRecord(_ context.Context, id string, maxAttempts int, window time.Duration) (Decision, error) {
	for {
		current := limiter.lookup(id)

		current.mu.Lock()
		if current.removed {
			current.mu.Unlock()
			continue
		}

		now := limiter.now()
		if current.count == 0 || now.Sub(current.start) >= window {
			current.start = now
			current.count = 0
		}
		current.count++
		current.window = window

		decision := decide(current.count, maxAttempts, current.start.Add(window).Sub(now))
		current.mu.Unlock()

		return decision, nil
	}
}

// Sweep drops buckets whose window has elapsed and returns how many were removed.
func (limiter *MemoryLimiter) Sweep() int {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := limiter.now()
	removed := 0
	for id, current := range limiter.buckets {
		current.mu.Lock()
		if now.Sub(current.start) >= current.window {
			current.removed = true
			delete(limiter.buckets, id)
			removed++
		}
		current.mu.Unlock()
	}
	return removed
}

// Len returns the number of live buckets.
func (limiter *MemoryLimiter) Len() int {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	return len(limiter.buckets)
}

// Run sweeps every interval until ctx is done.
func (limiter *MemoryLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
