package driven

import (
	"context"
	"time"
)

// RateLimiter enforces a fixed per-client request ceiling.
// Excess requests are rejected immediately, never queued.
type RateLimiter interface {
	// Allow records one request for key and reports whether it is within
	// the limit. When rejected, retryAfter is the time until the next slot.
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)

	// Close releases resources held by the limiter
	Close() error
}
