package runtime

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
)

// mockLLMService is a mock implementation for testing
type mockLLMService struct {
	pingErr error
	closed  bool
}

func (m *mockLLMService) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	return &domain.GenerationResult{Text: "ok"}, nil
}

func (m *mockLLMService) Model() string {
	return "test-llm"
}

func (m *mockLLMService) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *mockLLMService) Close() error {
	m.closed = true
	return nil
}

func TestNewServices(t *testing.T) {
	cfg := domain.NewRuntimeConfig("memory", "none")
	svc := NewServices(cfg)

	if svc.Config() != cfg {
		t.Error("expected config to be returned")
	}
	if svc.LLMService() != nil {
		t.Error("expected nil LLM service")
	}
}

func TestServices_SetLLMService(t *testing.T) {
	cfg := domain.NewRuntimeConfig("memory", "none")
	svc := NewServices(cfg)

	first := &mockLLMService{}
	svc.SetLLMService(first)
	if !cfg.LLMAvailable() {
		t.Error("expected LLM available after set")
	}

	second := &mockLLMService{}
	svc.SetLLMService(second)
	if !first.closed {
		t.Error("expected previous service to be closed")
	}
	if svc.LLMService() != second {
		t.Error("expected new service to be active")
	}

	svc.SetLLMService(nil)
	if cfg.LLMAvailable() {
		t.Error("expected LLM unavailable after clearing")
	}
	if !second.closed {
		t.Error("expected cleared service to be closed")
	}
}

func TestServices_SetLLMService_SameInstance(t *testing.T) {
	svc := NewServices(domain.NewRuntimeConfig("memory", "none"))
	llm := &mockLLMService{}

	svc.SetLLMService(llm)
	svc.SetLLMService(llm)

	if llm.closed {
		t.Error("re-setting the same service must not close it")
	}
}

func TestServices_Install(t *testing.T) {
	t.Run("probe ok", func(t *testing.T) {
		cfg := domain.NewRuntimeConfig("memory", "none")
		svc := NewServices(cfg)
		llm := &mockLLMService{}

		if err := svc.Install(context.Background(), llm); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if svc.LLMService() != llm || !cfg.LLMAvailable() {
			t.Error("expected service installed and available")
		}
	})

	t.Run("probe fails", func(t *testing.T) {
		cfg := domain.NewRuntimeConfig("memory", "none")
		svc := NewServices(cfg)
		llm := &mockLLMService{pingErr: domain.ErrInferenceUnavailable}

		if err := svc.Install(context.Background(), llm); !errors.Is(err, domain.ErrInferenceUnavailable) {
			t.Fatalf("expected probe error, got %v", err)
		}
		if llm.closed {
			t.Error("an unreachable service stays installed")
		}
		if svc.LLMService() != llm {
			t.Error("expected service installed")
		}
		if cfg.LLMAvailable() {
			t.Error("expected service marked unavailable")
		}
	})

	t.Run("replaces previous", func(t *testing.T) {
		svc := NewServices(domain.NewRuntimeConfig("memory", "none"))
		old := &mockLLMService{}
		svc.SetLLMService(old)

		_ = svc.Install(context.Background(), &mockLLMService{})
		if !old.closed {
			t.Error("expected previous service closed")
		}
	})

	t.Run("nil clears", func(t *testing.T) {
		svc := NewServices(domain.NewRuntimeConfig("memory", "none"))
		svc.SetLLMService(&mockLLMService{})

		if err := svc.Install(context.Background(), nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if svc.LLMService() != nil {
			t.Error("expected service cleared")
		}
	})
}

func TestServices_ReportInference(t *testing.T) {
	cfg := domain.NewRuntimeConfig("memory", "none")
	svc := NewServices(cfg)
	_ = svc.Install(context.Background(), &mockLLMService{pingErr: errors.New("connection refused")})

	steps := []struct {
		name string
		err  error
		want bool
	}{
		{"success recovers", nil, true},
		{"bad request keeps flag", domain.ErrInvalidInput, true},
		{"connectivity failure", fmt.Errorf("wrapped: %w", domain.ErrInferenceUnavailable), false},
		{"success again", nil, true},
		{"missing model", domain.ErrModelNotFound, false},
	}

	for _, step := range steps {
		svc.ReportInference(step.err)
		if got := cfg.LLMAvailable(); got != step.want {
			t.Fatalf("%s: expected available=%v, got %v", step.name, step.want, got)
		}
	}
}

func TestServices_ReportInference_NoService(t *testing.T) {
	cfg := domain.NewRuntimeConfig("memory", "none")
	svc := NewServices(cfg)

	svc.ReportInference(nil)
	if cfg.LLMAvailable() {
		t.Error("no installed service must never be reported available")
	}
}

func TestServices_Close(t *testing.T) {
	cfg := domain.NewRuntimeConfig("memory", "none")
	svc := NewServices(cfg)
	llm := &mockLLMService{}
	svc.SetLLMService(llm)

	if err := svc.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !llm.closed {
		t.Error("expected service closed")
	}
	if cfg.LLMAvailable() {
		t.Error("expected LLM unavailable after close")
	}
}
