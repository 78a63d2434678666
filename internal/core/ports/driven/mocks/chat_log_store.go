package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

// Ensure MockChatLogStore implements ChatLogStore
var _ driven.ChatLogStore = (*MockChatLogStore)(nil)

// MockChatLogStore is an in-memory ChatLogStore for testing
type MockChatLogStore struct {
	mu      sync.RWMutex
	logs    []*domain.ChatLog
	FailAll bool
}

// NewMockChatLogStore creates a new MockChatLogStore
func NewMockChatLogStore() *MockChatLogStore {
	return &MockChatLogStore{}
}

func (m *MockChatLogStore) Save(ctx context.Context, log *domain.ChatLog) error {
	if m.FailAll {
		return errors.New("chat log store unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockChatLogStore) Recent(ctx context.Context, limit int) ([]*domain.ChatLog, error) {
	if m.FailAll {
		return nil, errors.New("chat log store unavailable")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.ChatLog
	for i := len(m.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.logs[i])
	}
	return out, nil
}

// Count returns the number of saved logs
func (m *MockChatLogStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.logs)
}
