package runtime

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

// Services holds the live inference client. The client can be replaced while
// requests are in flight, and its availability flag in RuntimeConfig follows
// both the startup probe and the outcome of real generation calls.
type Services struct {
	mu     sync.RWMutex
	config *domain.RuntimeConfig
	llm    driven.LLMService
}

// NewServices creates an empty registry reporting into config.
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{config: config}
}

// Config returns the runtime capability flags.
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// LLMService returns the current inference client (may be nil).
func (s *Services) LLMService() driven.LLMService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.llm
}

// SetLLMService replaces the inference client, closing the previous one.
// A non-nil client is marked available until a call reports otherwise.
func (s *Services) SetLLMService(svc driven.LLMService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swap(svc)
	s.config.SetLLMAvailable(svc != nil)
}

// Install probes svc and installs it whatever the outcome. A failed probe
// leaves the client marked unavailable and is returned to the caller;
// ReportInference flips the flag back once a generation succeeds.
func (s *Services) Install(ctx context.Context, svc driven.LLMService) error {
	if svc == nil {
		s.SetLLMService(nil)
		return nil
	}

	probeErr := svc.Ping(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.swap(svc)
	s.config.SetLLMAvailable(probeErr == nil)
	return probeErr
}

// ReportInference updates availability from one generation outcome.
// Only connectivity and missing-model failures mark the client unavailable;
// a bad request says nothing about the provider's health.
func (s *Services) ReportInference(err error) {
	s.mu.RLock()
	installed := s.llm != nil
	s.mu.RUnlock()
	if !installed {
		return
	}

	switch {
	case err == nil:
		s.config.SetLLMAvailable(true)
	case errors.Is(err, domain.ErrInferenceUnavailable), errors.Is(err, domain.ErrModelNotFound):
		s.config.SetLLMAvailable(false)
	}
}

// Close releases the inference client.
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swap(nil)
	s.config.SetLLMAvailable(false)
	return nil
}

// swap installs svc and closes the client it replaces. Callers hold mu.
func (s *Services) swap(svc driven.LLMService) {
	if s.llm != nil && s.llm != svc {
		_ = s.llm.Close()
	}
	s.llm = svc
}
