package driven

import (
	"context"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
)

// LLMService is the external inference collaborator that turns a composed
// prompt pair into an answer.
type LLMService interface {
	// Generate runs one completion for the system/user prompt pair.
	// Connectivity failures wrap domain.ErrInferenceUnavailable and missing
	// models wrap domain.ErrModelNotFound.
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the LLM service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the LLM service
	Close() error
}

// LLMFactory builds an inference client for the configured provider.
type LLMFactory interface {
	// CreateLLMService returns nil, nil when settings are incomplete and
	// wraps domain.ErrInvalidProvider for unknown providers.
	CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (LLMService, error)
}
