package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

// Ensure GeminiLLM implements LLMService
var _ driven.LLMService = (*GeminiLLM)(nil)

// GeminiLLM implements LLMService using the Gemini API
type GeminiLLM struct {
	client *genai.Client
	model  string
}

// NewGeminiLLM creates a new Gemini LLM service
func NewGeminiLLM(ctx context.Context, apiKey, model string) (driven.LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", domain.ErrInvalidConfig)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: gemini model is required", domain.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	return &GeminiLLM{client: client, model: model}, nil
}

// Generate runs one GenerateContent call
func (g *GeminiLLM) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	opts := req.Options.Merge(nil)

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(opts.Temperature)),
		TopP:            genai.Ptr(float32(opts.TopP)),
		TopK:            genai.Ptr(float32(opts.TopK)),
		MaxOutputTokens: int32(opts.MaxTokens),
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	contents := []*genai.Content{genai.NewContentFromText(req.UserPrompt, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, classifyGeminiError(g.model, err)
	}

	var text strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				text.WriteString(part.Text)
			}
			if text.Len() > 0 {
				break
			}
		}
	}

	result := &domain.GenerationResult{
		Text:  strings.TrimSpace(text.String()),
		Model: g.model,
	}
	if resp != nil && resp.UsageMetadata != nil {
		result.TokenCount = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return result, nil
}

// Model returns the model name being used
func (g *GeminiLLM) Model() string {
	return g.model
}

// Ping verifies the model is served for this API key
func (g *GeminiLLM) Ping(ctx context.Context) error {
	if _, err := g.client.Models.Get(ctx, g.model, nil); err != nil {
		return classifyGeminiError(g.model, err)
	}
	return nil
}

// Close releases resources held by the LLM service.
// genai.Client holds no closable resources.
func (g *GeminiLLM) Close() error {
	return nil
}

func classifyGeminiError(model string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %s: %v", domain.ErrModelNotFound, model, err)
	}
	return fmt.Errorf("%w: gemini: %v", domain.ErrInferenceUnavailable, err)
}
