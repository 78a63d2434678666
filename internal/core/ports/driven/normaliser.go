package driven

import "github.com/custodia-labs/sercha-assist/internal/core/domain"

// Normaliser normalizes raw document content before chunking.
type Normaliser interface {
	// Normalise transforms raw file content into clean text.
	Normalise(content string) string

	// SupportedExtensions returns the file extensions this normaliser handles,
	// lowercase with the leading dot (".txt").
	SupportedExtensions() []string

	// Priority returns the normaliser priority (higher = more specific).
	Priority() int
}

// NormaliserRegistry manages content normalisers by file extension.
// A file is eligible for the corpus only if some normaliser handles its extension.
type NormaliserRegistry interface {
	// Get retrieves the best-matching normaliser for an extension.
	// Returns nil if no normaliser is registered for it.
	Get(ext string) Normaliser

	// GetAll retrieves all normalisers for an extension, sorted by priority (highest first).
	GetAll(ext string) []Normaliser

	// Register registers a normaliser.
	Register(normaliser Normaliser)

	// List returns all registered extensions.
	List() []string
}

// PostProcessor transforms document chunks.
// Processors form a pipeline: Chunker -> MetadataTagger.
type PostProcessor interface {
	// Process applies post-processing to chunks.
	// The first processor (Chunker) receives a single chunk with the full document.
	// Subsequent processors receive the chunks from the previous stage.
	Process(chunks []domain.DocumentChunk) []domain.DocumentChunk

	// Name returns the processor name for logging/debugging.
	Name() string

	// Order returns the processor order in the pipeline (lower = earlier).
	Order() int
}

// PostProcessorPipeline chains multiple post-processors in order.
type PostProcessorPipeline interface {
	// Process turns one source document into its ordered chunks.
	Process(doc domain.SourceDocument) []domain.DocumentChunk

	// Add adds a processor to the pipeline.
	// Processors are sorted by Order() before processing.
	Add(processor PostProcessor)

	// List returns processor names in order.
	List() []string
}
