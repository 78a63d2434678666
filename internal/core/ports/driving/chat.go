package driving

import (
	"context"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
)

// ChatService answers a single stateless chat turn
type ChatService interface {
	// Chat retrieves context, composes prompts and generates an answer
	Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)

	// RecentLogs returns the latest recorded exchanges, newest first.
	// Returns an empty list when no chat log store is configured.
	RecentLogs(ctx context.Context, limit int) ([]*domain.ChatLog, error)
}
