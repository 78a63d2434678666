package driving

import (
	"context"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
)

// CorpusService owns the in-memory chunk corpus
type CorpusService interface {
	// Load reads and chunks every eligible document in dir, replacing the
	// corpus only if the whole load succeeds.
	Load(ctx context.Context, dir string) error

	// Refresh reloads the last loaded (or configured) directory.
	// On failure the previous corpus keeps serving.
	Refresh(ctx context.Context) error

	// Stats returns a read-only snapshot of corpus state
	Stats() domain.CorpusStats

	// Chunks returns the current corpus, loading it lazily on first use.
	// The returned slice must not be modified.
	Chunks(ctx context.Context) ([]domain.DocumentChunk, error)
}
