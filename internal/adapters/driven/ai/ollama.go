package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

// Ensure OllamaLLM implements LLMService
var _ driven.LLMService = (*OllamaLLM)(nil)

// DefaultOllamaURL is the local Ollama endpoint
const DefaultOllamaURL = "http://localhost:11434"

// OllamaLLM implements LLMService against a local Ollama server's chat API
type OllamaLLM struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaLLM creates a new Ollama LLM service.
// The per-call deadline comes from the caller's context.
func NewOllamaLLM(baseURL, model string) (driven.LLMService, error) {
	if model == "" {
		return nil, fmt.Errorf("%w: ollama model is required", domain.ErrInvalidConfig)
	}
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}

	return &OllamaLLM{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"top_p"`
	TopK          int     `json:"top_k"`
	RepeatPenalty float64 `json:"repeat_penalty"`
	NumPredict    int     `json:"num_predict"`
	NumCtx        int     `json:"num_ctx"`
}

// chatRequest is the request body for Ollama's /api/chat
type chatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

// chatResponse is the non-streaming response from /api/chat
type chatResponse struct {
	Model           string        `json:"model"`
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	Error           string        `json:"error,omitempty"`
}

// Generate runs a single non-streaming chat completion
func (o *OllamaLLM) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	opts := req.Options.Merge(nil)
	body := chatRequest{
		Model: o.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		Stream: false,
		Options: ollamaOptions{
			Temperature:   opts.Temperature,
			TopP:          opts.TopP,
			TopK:          opts.TopK,
			RepeatPenalty: opts.RepeatPenalty,
			NumPredict:    opts.MaxTokens,
			NumCtx:        opts.ContextWindow,
		},
	}

	var resp chatResponse
	if err := o.do(ctx, http.MethodPost, "/api/chat", body, &resp); err != nil {
		return nil, err
	}

	model := resp.Model
	if model == "" {
		model = o.model
	}
	return &domain.GenerationResult{
		Text:       strings.TrimSpace(resp.Message.Content),
		TokenCount: resp.EvalCount,
		Model:      model,
	}, nil
}

// Model returns the model name being used
func (o *OllamaLLM) Model() string {
	return o.model
}

// Ping verifies the Ollama server is reachable
func (o *OllamaLLM) Ping(ctx context.Context) error {
	return o.do(ctx, http.MethodGet, "/api/tags", nil, nil)
}

// Close releases resources held by the LLM service
func (o *OllamaLLM) Close() error {
	o.client.CloseIdleConnections()
	return nil
}

// do sends a JSON request and decodes the JSON response into out (if non-nil)
func (o *OllamaLLM) do(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, o.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := o.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: ollama at %s: %v", domain.ErrInferenceUnavailable, o.baseURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", domain.ErrInferenceUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return o.statusError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: failed to parse response: %v", domain.ErrInferenceUnavailable, err)
	}
	return nil
}

func (o *OllamaLLM) statusError(status int, body []byte) error {
	var apiErr struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &apiErr)
	msg := apiErr.Error
	if msg == "" {
		msg = http.StatusText(status)
	}

	if status == http.StatusNotFound || strings.Contains(strings.ToLower(msg), "not found") {
		return fmt.Errorf("%w: %s: %s", domain.ErrModelNotFound, o.model, msg)
	}
	return fmt.Errorf("%w: ollama returned status %d: %s", domain.ErrInferenceUnavailable, status, msg)
}
