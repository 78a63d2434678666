package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(limit int, window time.Duration, burst int) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewRateLimiter(limit, window, burst)
	l.now = clock.now
	return l, clock
}

func TestRateLimiter_BurstThenReject(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i+1)
	}

	allowed, retryAfter, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.InDelta(t, float64(20*time.Second), float64(retryAfter), float64(time.Millisecond))
}

func TestRateLimiter_RejectionDoesNotConsume(t *testing.T) {
	l, clock := newTestLimiter(1, time.Minute, 0)
	ctx := context.Background()

	allowed, _, _ := l.Allow(ctx, "k")
	require.True(t, allowed)

	for i := 0; i < 5; i++ {
		allowed, _, _ = l.Allow(ctx, "k")
		assert.False(t, allowed)
	}

	clock.advance(time.Minute)
	allowed, _, _ = l.Allow(ctx, "k")
	assert.True(t, allowed)
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute, 0)
	ctx := context.Background()

	a, _, _ := l.Allow(ctx, "a")
	b, _, _ := l.Allow(ctx, "b")
	again, _, _ := l.Allow(ctx, "a")

	assert.True(t, a)
	assert.True(t, b)
	assert.False(t, again)
}

func TestRateLimiter_PrunesIdleClients(t *testing.T) {
	l, clock := newTestLimiter(10, time.Minute, 0)
	ctx := context.Background()

	_, _, _ = l.Allow(ctx, "old")
	clock.advance(3 * time.Minute)
	_, _, _ = l.Allow(ctx, "new")

	assert.Equal(t, 1, l.Len())
}

func TestRateLimiter_Close(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute, 0)
	_, _, _ = l.Allow(context.Background(), "a")

	require.NoError(t, l.Close())
	assert.Equal(t, 0, l.Len())
}
