package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

// Ensure MockLLMService implements LLMService
var _ driven.LLMService = (*MockLLMService)(nil)

// MockLLMService is a mock implementation of LLMService for testing.
// It echoes the user prompt unless GenerateFn is set, and records every request.
type MockLLMService struct {
	mu         sync.Mutex
	model      string
	requests   []domain.GenerationRequest
	GenerateFn func(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)
	PingErr    error
}

// NewMockLLMService creates a new MockLLMService
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{model: "mock-llm"}
}

func (m *MockLLMService) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, req)
	}
	return &domain.GenerationResult{
		Text:       "echo: " + req.UserPrompt,
		TokenCount: 3,
		Model:      m.model,
	}, nil
}

func (m *MockLLMService) Model() string {
	return m.model
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MockLLMService) Close() error {
	return nil
}

// Requests returns a copy of the recorded generation requests
func (m *MockLLMService) Requests() []domain.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.GenerationRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
