package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RateLimiter = (*RateLimiter)(nil)

const rateLimitPrefix = "sercha:ratelimit:"

// RateLimiter implements a fixed-window request counter shared by every
// instance pointing at the same Redis.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRateLimiter creates a limiter allowing limit requests per window per key.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// NewClient connects to the Redis at url (redis://[:password@]host:port/db)
// and verifies it with PING.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// incrScript increments the window counter, starting the window on the
// first hit, and returns {count, remaining ttl in ms}.
var incrScript = redis.NewScript(`
	local count = redis.call("incr", KEYS[1])
	if count == 1 then
		redis.call("pexpire", KEYS[1], ARGV[1])
	end
	local ttl = redis.call("pttl", KEYS[1])
	if ttl < 0 then
		redis.call("pexpire", KEYS[1], ARGV[1])
		ttl = tonumber(ARGV[1])
	end
	return {count, ttl}
`)

// Allow counts one request for key in the current window.
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	res, err := incrScript.Run(ctx, r.client, []string{rateLimitPrefix + key}, r.window.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("rate limit %s: unexpected script result %v", key, res)
	}

	if res[0] <= int64(r.limit) {
		return true, 0, nil
	}
	return false, time.Duration(res[1]) * time.Millisecond, nil
}

// Close closes the underlying Redis client
func (r *RateLimiter) Close() error {
	return r.client.Close()
}
