package postprocessors

import (
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline implements PostProcessorPipeline.
// It chains multiple post-processors in order, starting with a Chunker.
type Pipeline struct {
	mu         sync.RWMutex
	processors []driven.PostProcessor
	sorted     bool
}

// NewPipeline creates a new post-processor pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{
		processors: make([]driven.PostProcessor, 0),
	}
}

// Add adds a processor to the pipeline.
// Processors are sorted by Order() before processing.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processors = append(p.processors, processor)
	p.sorted = false
}

// Process applies all processors in order to one source document.
// Output is the ordered chunk sequence for the document.
func (p *Pipeline) Process(doc domain.SourceDocument) []domain.DocumentChunk {
	processors := p.ordered()

	if doc.Content == "" {
		return nil
	}

	// Start with a single chunk containing the whole document
	chunks := []domain.DocumentChunk{
		{
			Content:     doc.Content,
			Source:      doc.Name,
			Type:        domain.DocumentType(doc.Name),
			ChunkIndex:  0,
			StartOffset: 0,
			EndOffset:   utf8.RuneCountInString(doc.Content),
		},
	}

	for _, proc := range processors {
		chunks = proc.Process(chunks)
	}

	return chunks
}

// ordered returns a snapshot of the processors sorted by Order().
func (p *Pipeline) ordered() []driven.PostProcessor {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.sorted {
		sort.SliceStable(p.processors, func(i, j int) bool {
			return p.processors[i].Order() < p.processors[j].Order()
		})
		p.sorted = true
	}

	processors := make([]driven.PostProcessor, len(p.processors))
	copy(processors, p.processors)
	return processors
}

// List returns processor names in order.
func (p *Pipeline) List() []string {
	processors := p.ordered()

	names := make([]string, len(processors))
	for i, proc := range processors {
		names[i] = proc.Name()
	}
	return names
}

// DefaultPipeline creates a pipeline with the default processors.
func DefaultPipeline(config ChunkConfig) *Pipeline {
	p := NewPipeline()
	p.Add(NewChunker(config))
	p.Add(NewMetadataTagger())
	return p
}
