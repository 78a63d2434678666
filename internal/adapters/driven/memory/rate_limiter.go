// Package memory provides single-process implementations of driven ports.
package memory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RateLimiter = (*RateLimiter)(nil)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token bucket limiter held in process memory.
// limit requests refill evenly over window; burst caps back-to-back requests.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	every     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastPrune time.Time
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window per key.
// A burst of 0 defaults to limit.
func NewRateLimiter(limit int, window time.Duration, burst int) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if burst <= 0 {
		burst = limit
	}
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		every:   rate.Every(window / time.Duration(limit)),
		burst:   burst,
		idleTTL: 2 * window,
		now:     time.Now,
	}
}

// Allow takes one token for key, rejecting immediately when none is left.
func (r *RateLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.prune(now)

	c, ok := r.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(r.every, r.burst)}
		r.clients[key] = c
	}
	c.lastSeen = now

	res := c.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, 0, nil
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay, nil
	}
	return true, 0, nil
}

// prune drops limiters idle for longer than idleTTL. Callers hold mu.
func (r *RateLimiter) prune(now time.Time) {
	if now.Sub(r.lastPrune) < r.idleTTL {
		return
	}
	r.lastPrune = now
	for key, c := range r.clients {
		if now.Sub(c.lastSeen) > r.idleTTL {
			delete(r.clients, key)
		}
	}
}

// Close releases all tracked clients
func (r *RateLimiter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = make(map[string]*clientLimiter)
	return nil
}

// Len returns the number of tracked clients
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
