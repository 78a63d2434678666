package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChatLogStore = (*ChatLogStore)(nil)

// ChatLogStore implements driven.ChatLogStore using PostgreSQL
type ChatLogStore struct {
	db *DB
}

// NewChatLogStore creates a new ChatLogStore
func NewChatLogStore(db *DB) *ChatLogStore {
	return &ChatLogStore{db: db}
}

// Save records one chat exchange
func (s *ChatLogStore) Save(ctx context.Context, log *domain.ChatLog) error {
	query := `
		INSERT INTO chat_logs (id, message, answer, language, sources, has_context, model, token_count, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`

	sources := log.Sources
	if sources == nil {
		sources = []string{}
	}

	_, err := s.db.ExecContext(ctx, query,
		log.ID,
		log.Message,
		log.Answer,
		string(log.Language),
		pq.Array(sources),
		log.HasContext,
		log.Model,
		log.TokenCount,
		log.LatencyMs,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save chat log %s: %w", log.ID, err)
	}
	return nil
}

// Recent returns the latest exchanges, newest first
func (s *ChatLogStore) Recent(ctx context.Context, limit int) ([]*domain.ChatLog, error) {
	query := `
		SELECT id, message, answer, language, sources, has_context, model, token_count, latency_ms, created_at
		FROM chat_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*domain.ChatLog, 0, limit)
	for rows.Next() {
		var log domain.ChatLog
		var sources pq.StringArray
		if err := rows.Scan(
			&log.ID,
			&log.Message,
			&log.Answer,
			&log.Language,
			&sources,
			&log.HasContext,
			&log.Model,
			&log.TokenCount,
			&log.LatencyMs,
			&log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chat log: %w", err)
		}
		log.Sources = []string(sources)
		logs = append(logs, &log)
	}
	return logs, rows.Err()
}
