package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-assist/internal/runtime"
)

// Ensure chatService implements ChatService
var _ driving.ChatService = (*chatService)(nil)

// DefaultTopK is the number of chunks retrieved when a request does not say.
const DefaultTopK = 4

// chatService orchestrates retrieval, prompt composition and generation.
type chatService struct {
	retriever  driving.RetrievalService
	composer   driving.PromptService
	services   *runtime.Services
	chatLogs   driven.ChatLogStore
	topK       int
	generation domain.GenerationOptions
	timeout    time.Duration
	logger     *slog.Logger
}

// ChatServiceConfig holds configuration for the chat service.
type ChatServiceConfig struct {
	Retriever  driving.RetrievalService
	Composer   driving.PromptService
	Services   *runtime.Services        // Dynamic LLM access
	ChatLogs   driven.ChatLogStore      // Optional: audit trail
	TopK       int                      // Default chunks per request (default: 4)
	Generation domain.GenerationOptions // Configured generation defaults
	Timeout    time.Duration            // Bound on each inference call (default: 60s)
	Logger     *slog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(cfg ChatServiceConfig) driving.ChatService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &chatService{
		retriever:  cfg.Retriever,
		composer:   cfg.Composer,
		services:   cfg.Services,
		chatLogs:   cfg.ChatLogs,
		topK:       topK,
		generation: cfg.Generation,
		timeout:    timeout,
		logger:     logger.With("component", "chat"),
	}
}

// Chat answers one message. Retrieval errors propagate unchanged; inference
// errors always wrap ErrInferenceUnavailable or ErrModelNotFound.
func (s *chatService) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	start := time.Now()

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(message) > domain.MaxMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", domain.ErrInvalidInput, domain.MaxMessageLength)
	}

	topK := s.topK
	if req.TopK != nil {
		if *req.TopK < 0 {
			return nil, fmt.Errorf("%w: top_k must not be negative", domain.ErrInvalidInput)
		}
		topK = *req.TopK
	}

	llm := s.services.LLMService()
	if llm == nil {
		return nil, fmt.Errorf("%w: no inference service configured", domain.ErrInferenceUnavailable)
	}

	chunks, err := s.retriever.Search(ctx, message, topK)
	if err != nil {
		return nil, err
	}

	bundle := s.composer.Compose(message, chunks)

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := llm.Generate(genCtx, domain.GenerationRequest{
		SystemPrompt: bundle.SystemPrompt,
		UserPrompt:   bundle.UserPrompt,
		Options:      s.generation.Merge(req.Options),
	})
	if err != nil {
		s.logger.Error("generation failed", "model", llm.Model(), "error", err)
		err = classifyInferenceError(err)
		if ctx.Err() == nil {
			s.services.ReportInference(err)
		}
		return nil, err
	}
	s.services.ReportInference(nil)

	resp := &domain.ChatResponse{
		Answer:     strings.TrimSpace(result.Text),
		Sources:    bundle.Sources,
		HasContext: bundle.HasContext,
		Language:   bundle.Language,
		ChunkCount: bundle.ChunkCount,
		Model:      result.Model,
		TokenCount: result.TokenCount,
		Took:       time.Since(start),
	}
	if resp.Model == "" {
		resp.Model = llm.Model()
	}

	s.record(ctx, message, resp)

	s.logger.Info("chat answered",
		"language", resp.Language,
		"has_context", resp.HasContext,
		"chunks", resp.ChunkCount,
		"tokens", resp.TokenCount,
		"took", resp.Took,
	)
	return resp, nil
}

// RecentLogs returns the latest recorded exchanges, newest first.
func (s *chatService) RecentLogs(ctx context.Context, limit int) ([]*domain.ChatLog, error) {
	if s.chatLogs == nil {
		return []*domain.ChatLog{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.chatLogs.Recent(ctx, limit)
}

// record saves the exchange; failures are logged and never surfaced.
func (s *chatService) record(ctx context.Context, message string, resp *domain.ChatResponse) {
	if s.chatLogs == nil {
		return
	}

	entry := &domain.ChatLog{
		ID:         uuid.New().String(),
		Message:    message,
		Answer:     resp.Answer,
		Language:   resp.Language,
		Sources:    resp.Sources,
		HasContext: resp.HasContext,
		Model:      resp.Model,
		TokenCount: resp.TokenCount,
		LatencyMs:  resp.Took.Milliseconds(),
		CreatedAt:  time.Now(),
	}
	if err := s.chatLogs.Save(ctx, entry); err != nil {
		s.logger.Warn("failed to record chat log", "error", err)
	}
}

// classifyInferenceError keeps known inference kinds and wraps anything
// else as unavailable.
func classifyInferenceError(err error) error {
	if domain.IsInferenceError(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: generation timed out", domain.ErrInferenceUnavailable)
	}
	return fmt.Errorf("%w: %v", domain.ErrInferenceUnavailable, err)
}
