package mocks

import (
	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

// MockNormaliser is a mock implementation of Normaliser for testing
type MockNormaliser struct {
	SupportedExtensionsFn func() []string
	PriorityFn            func() int
	NormaliseFn           func(content string) string
}

func NewMockNormaliser() *MockNormaliser {
	return &MockNormaliser{}
}

func (m *MockNormaliser) Normalise(content string) string {
	if m.NormaliseFn != nil {
		return m.NormaliseFn(content)
	}
	return content
}

func (m *MockNormaliser) SupportedExtensions() []string {
	if m.SupportedExtensionsFn != nil {
		return m.SupportedExtensionsFn()
	}
	return []string{".txt"}
}

func (m *MockNormaliser) Priority() int {
	if m.PriorityFn != nil {
		return m.PriorityFn()
	}
	return 100
}

// MockPostProcessorPipeline is a mock implementation of PostProcessorPipeline for testing
type MockPostProcessorPipeline struct {
	ProcessFn func(doc domain.SourceDocument) []domain.DocumentChunk
	AddFn     func(processor driven.PostProcessor)
	ListFn    func() []string
}

func NewMockPostProcessorPipeline() *MockPostProcessorPipeline {
	return &MockPostProcessorPipeline{}
}

func (m *MockPostProcessorPipeline) Process(doc domain.SourceDocument) []domain.DocumentChunk {
	if m.ProcessFn != nil {
		return m.ProcessFn(doc)
	}
	// Default: one chunk with the whole document
	return []domain.DocumentChunk{
		{
			Content:   doc.Content,
			Source:    doc.Name,
			Type:      domain.DocumentType(doc.Name),
			EndOffset: len([]rune(doc.Content)),
		},
	}
}

func (m *MockPostProcessorPipeline) Add(processor driven.PostProcessor) {
	if m.AddFn != nil {
		m.AddFn(processor)
	}
}

func (m *MockPostProcessorPipeline) List() []string {
	if m.ListFn != nil {
		return m.ListFn()
	}
	return []string{"mock-processor"}
}
