package ai

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

var _ driven.LLMFactory = (*Factory)(nil)

// llmConstructor builds the client for one provider.
type llmConstructor func(ctx context.Context, s *domain.LLMSettings) (driven.LLMService, error)

// Factory builds inference clients by provider name.
type Factory struct {
	constructors map[domain.AIProvider]llmConstructor
}

// NewFactory returns a factory for every supported provider.
func NewFactory() *Factory {
	return &Factory{
		constructors: map[domain.AIProvider]llmConstructor{
			domain.AIProviderOllama: func(_ context.Context, s *domain.LLMSettings) (driven.LLMService, error) {
				return NewOllamaLLM(s.BaseURL, s.Model)
			},
			domain.AIProviderAnthropic: func(_ context.Context, s *domain.LLMSettings) (driven.LLMService, error) {
				return NewAnthropicLLM(s.APIKey, s.Model, s.BaseURL)
			},
			domain.AIProviderGemini: func(ctx context.Context, s *domain.LLMSettings) (driven.LLMService, error) {
				return NewGeminiLLM(ctx, s.APIKey, s.Model)
			},
		},
	}
}

// CreateLLMService builds the client named by settings.Provider.
// Incomplete settings (no model, or no key for hosted providers) yield nil, nil.
func (f *Factory) CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, nil
	}

	build, ok := f.constructors[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s (supported: %v)", domain.ErrInvalidProvider, settings.Provider, f.Providers())
	}
	if !settings.IsConfigured() {
		return nil, nil
	}
	return build(ctx, settings)
}

// Providers lists the supported provider names, sorted.
func (f *Factory) Providers() []domain.AIProvider {
	out := make([]domain.AIProvider, 0, len(f.constructors))
	for p := range f.constructors {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
