package postprocessors

import (
	"strings"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-assist/internal/language"
)

// MetadataTagger fills per-chunk metadata derived from the chunk's own
// text: detected language, word count and (when missing) document type.
type MetadataTagger struct{}

// Verify interface compliance
var _ driven.PostProcessor = (*MetadataTagger)(nil)

// NewMetadataTagger creates a new metadata tagger.
func NewMetadataTagger() *MetadataTagger {
	return &MetadataTagger{}
}

// Process tags every chunk in place order.
func (m *MetadataTagger) Process(chunks []domain.DocumentChunk) []domain.DocumentChunk {
	result := make([]domain.DocumentChunk, 0, len(chunks))

	for _, chunk := range chunks {
		chunk.Language = language.Detect(chunk.Content)
		chunk.WordCount = len(strings.Fields(chunk.Content))
		if chunk.Type == "" {
			chunk.Type = domain.DocumentType(chunk.Source)
		}
		result = append(result, chunk)
	}

	return result
}

// Name returns the processor name.
func (m *MetadataTagger) Name() string {
	return "metadata-tagger"
}

// Order returns 10 - tagging runs after chunking.
func (m *MetadataTagger) Order() int {
	return 10
}
