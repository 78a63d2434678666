package postprocessors

import (
	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

// ChunkConfig configures the chunker behavior.
// Sizes are in runes so multi-byte text is never split mid-character.
type ChunkConfig struct {
	// ChunkSize is the maximum runes per chunk
	ChunkSize int

	// Overlap is the rune overlap between adjacent chunks (must be < ChunkSize)
	Overlap int
}

// DefaultChunkConfig returns sensible defaults.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		ChunkSize: 1000,
		Overlap:   200,
	}
}

// Chunker splits content into overlapping fixed-size windows.
// This is the first processor in the pipeline (Order = 0).
//
// Chunk i starts at rune i*(ChunkSize-Overlap); every chunk except the last
// is exactly ChunkSize runes, so the source is recovered by appending each
// subsequent chunk minus its first Overlap runes.
type Chunker struct {
	config ChunkConfig
}

// Verify interface compliance
var _ driven.PostProcessor = (*Chunker)(nil)

// NewChunker creates a new chunker with the given config.
// Invalid sizes fall back to the defaults; an overlap that does not fit
// inside the chunk is reduced to a quarter of the chunk size.
func NewChunker(config ChunkConfig) *Chunker {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkConfig().ChunkSize
	}
	if config.Overlap < 0 {
		config.Overlap = 0
	}
	if config.Overlap >= config.ChunkSize {
		config.Overlap = config.ChunkSize / 4
	}
	return &Chunker{config: config}
}

// Config returns the effective configuration.
func (c *Chunker) Config() ChunkConfig {
	return c.config
}

// Process splits each input chunk into windows, numbering them per source.
func (c *Chunker) Process(chunks []domain.DocumentChunk) []domain.DocumentChunk {
	var result []domain.DocumentChunk
	positions := make(map[string]int)

	for _, chunk := range chunks {
		for _, window := range c.split(chunk) {
			window.ChunkIndex = positions[window.Source]
			positions[window.Source]++
			result = append(result, window)
		}
	}

	return result
}

// Name returns the processor name.
func (c *Chunker) Name() string {
	return "chunker"
}

// Order returns 0 - chunker should be first.
func (c *Chunker) Order() int {
	return 0
}

// split slides a fixed window over one chunk's content.
func (c *Chunker) split(parent domain.DocumentChunk) []domain.DocumentChunk {
	runes := []rune(parent.Content)
	n := len(runes)
	if n == 0 {
		return nil
	}

	step := c.config.ChunkSize - c.config.Overlap
	var windows []domain.DocumentChunk

	for start := 0; ; start += step {
		end := start + c.config.ChunkSize
		if end > n {
			end = n
		}

		window := parent
		window.Content = string(runes[start:end])
		window.StartOffset = parent.StartOffset + start
		window.EndOffset = parent.StartOffset + end
		windows = append(windows, window)

		if end == n {
			break
		}
	}

	return windows
}
