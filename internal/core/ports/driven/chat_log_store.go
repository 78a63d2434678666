package driven

import (
	"context"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
)

// ChatLogStore persists an audit trail of answered chat turns (PostgreSQL).
type ChatLogStore interface {
	// Save records one chat exchange
	Save(ctx context.Context, log *domain.ChatLog) error

	// Recent returns the latest exchanges, newest first
	Recent(ctx context.Context, limit int) ([]*domain.ChatLog, error)
}
