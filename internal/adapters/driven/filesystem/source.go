package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

// Ensure DocumentSource implements driven.DocumentSource
var _ driven.DocumentSource = (*DocumentSource)(nil)

// DocumentSource reads knowledge files from a local directory.
// Only regular files directly under the directory are considered, and only
// those whose extension has a registered normaliser.
type DocumentSource struct {
	registry driven.NormaliserRegistry
}

// NewDocumentSource creates a filesystem source backed by registry.
func NewDocumentSource(registry driven.NormaliserRegistry) *DocumentSource {
	return &DocumentSource{registry: registry}
}

// Load reads and normalises every eligible file under dir, sorted by name.
func (s *DocumentSource) Load(ctx context.Context, dir string) ([]domain.SourceDocument, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDataDirectoryMissing, dir)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", domain.ErrCorpusUnavailable, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrDataDirectoryMissing, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrCorpusUnavailable, dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	docs := make([]domain.SourceDocument, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.Type().IsRegular() {
			continue
		}

		normaliser := s.registry.Get(filepath.Ext(entry.Name()))
		if normaliser == nil {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrCorpusUnavailable, path, err)
		}

		docs = append(docs, domain.SourceDocument{
			Name:    entry.Name(),
			Path:    path,
			Content: normaliser.Normalise(string(raw)),
		})
	}

	return docs, nil
}
