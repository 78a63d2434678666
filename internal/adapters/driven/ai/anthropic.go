package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

// Ensure AnthropicLLM implements LLMService
var _ driven.LLMService = (*AnthropicLLM)(nil)

// AnthropicLLM implements LLMService using the Anthropic Messages API
type AnthropicLLM struct {
	client anthropic.Client
	model  string
}

// NewAnthropicLLM creates a new Anthropic LLM service.
// baseURL is optional and only needed for proxies.
func NewAnthropicLLM(apiKey, model, baseURL string) (driven.LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key is required", domain.ErrInvalidConfig)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: anthropic model is required", domain.ErrInvalidConfig)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(1),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicLLM{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

// Generate runs one Messages API completion
func (a *AnthropicLLM) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	opts := req.Options.Merge(nil)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(opts.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
		Temperature: anthropic.Float(opts.Temperature),
		TopK:        anthropic.Int(int64(opts.TopK)),
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classifyAnthropicError(a.model, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &domain.GenerationResult{
		Text:       strings.TrimSpace(text.String()),
		TokenCount: int(resp.Usage.OutputTokens),
		Model:      string(resp.Model),
	}, nil
}

// Model returns the model name being used
func (a *AnthropicLLM) Model() string {
	return a.model
}

// Ping verifies the API key and model by fetching the model record
func (a *AnthropicLLM) Ping(ctx context.Context) error {
	if _, err := a.client.Models.Get(ctx, a.model, anthropic.ModelGetParams{}); err != nil {
		return classifyAnthropicError(a.model, err)
	}
	return nil
}

// Close releases resources held by the LLM service
func (a *AnthropicLLM) Close() error {
	return nil
}

func classifyAnthropicError(model string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s: %v", domain.ErrModelNotFound, model, err)
	}
	return fmt.Errorf("%w: anthropic: %v", domain.ErrInferenceUnavailable, err)
}
