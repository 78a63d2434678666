package driven

import (
	"context"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
)

// DocumentSource reads the knowledge documents that make up the corpus.
type DocumentSource interface {
	// Load reads every eligible document under dir.
	// Returns domain.ErrDataDirectoryMissing if dir is absent or not a directory.
	// Any per-document read error aborts the whole load.
	Load(ctx context.Context, dir string) ([]domain.SourceDocument, error)
}
