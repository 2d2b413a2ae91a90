// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type throttleClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Throttle limits requests per client using the token bucket algorithm.
type Throttle struct {
	mu      sync.Mutex
	clients map[string]*throttleClient
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

// NewThrottle allows rps requests per second per client with the given burst.
func NewThrottle(rps float64, burst int, idleTTL time.Duration) *Throttle {
	return &Throttle{
		clients: make(map[string]*throttleClient),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Allow consumes one token of client and reports whether it was available.
func (throttle *Throttle) Allow(client string) bool {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()

	now := throttle.now()
	info, found := throttle.clients[client]

	// Initialize a new limiter if this is a fresh client
	if !found {
		info = &throttleClient{limiter: rate.NewLimiter(throttle.limit, throttle.burst)}
		throttle.clients[client] = info
	}

	info.lastSeen = now
	return info.limiter.AllowN(now, 1)
}

// Sweep forgets clients idle for longer than the idle TTL.
func (throttle *Throttle) Sweep() int {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()

	now := throttle.now()
	removed := 0
	for client, info := range throttle.clients {
		if now.Sub(info.lastSeen) > throttle.idleTTL {
			delete(throttle.clients, client)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (throttle *Throttle) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			throttle.Sweep()
		case <-ctx.Done():
			// Stop the goroutine when the application shuts down
			return
		}
	}
}
