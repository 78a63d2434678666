package driving

import (
	"context"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
)

// RetrievalService ranks corpus chunks against a query
type RetrievalService interface {
	// Search returns at most topK chunks scoring above the configured
	// threshold, best first. topK <= 0 yields an empty result.
	Search(ctx context.Context, query string, topK int) ([]domain.ScoredChunk, error)
}

// PromptService assembles the system/user prompt pair for a query
type PromptService interface {
	// Compose never fails; an empty chunk list produces a no-context prompt.
	Compose(query string, chunks []domain.ScoredChunk) *domain.PromptBundle
}
