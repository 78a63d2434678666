package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

// Ensure MockRateLimiter implements RateLimiter
var _ driven.RateLimiter = (*MockRateLimiter)(nil)

// MockRateLimiter allows up to Limit requests per key, then rejects
type MockRateLimiter struct {
	mu     sync.Mutex
	Limit  int
	Err    error
	counts map[string]int
}

// NewMockRateLimiter creates a new MockRateLimiter
func NewMockRateLimiter(limit int) *MockRateLimiter {
	return &MockRateLimiter{
		Limit:  limit,
		counts: make(map[string]int),
	}
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, 0, m.Err
	}
	m.counts[key]++
	if m.counts[key] > m.Limit {
		return false, time.Minute, nil
	}
	return true, 0, nil
}

func (m *MockRateLimiter) Close() error {
	return nil
}
