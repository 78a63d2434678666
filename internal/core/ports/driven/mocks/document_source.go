package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

// Ensure MockDocumentSource implements DocumentSource
var _ driven.DocumentSource = (*MockDocumentSource)(nil)

// MockDocumentSource is an in-memory DocumentSource keyed by directory
type MockDocumentSource struct {
	// BeforeLoad, when set, runs at the start of every Load with its ctx;
	// a non-nil error is returned from Load. Used to hold a load in flight.
	BeforeLoad func(ctx context.Context) error

	mu    sync.RWMutex
	dirs  map[string][]domain.SourceDocument
	err   error
	calls int
}

// NewMockDocumentSource creates a new MockDocumentSource
func NewMockDocumentSource() *MockDocumentSource {
	return &MockDocumentSource{
		dirs: make(map[string][]domain.SourceDocument),
	}
}

// SetDocuments replaces the documents served for dir
func (m *MockDocumentSource) SetDocuments(dir string, docs ...domain.SourceDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[dir] = docs
}

// SetError makes every subsequent Load fail with err (nil clears it)
func (m *MockDocumentSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Load was invoked
func (m *MockDocumentSource) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

func (m *MockDocumentSource) Load(ctx context.Context, dir string) ([]domain.SourceDocument, error) {
	if m.BeforeLoad != nil {
		if err := m.BeforeLoad(ctx); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	docs, ok := m.dirs[dir]
	if !ok {
		return nil, domain.ErrDataDirectoryMissing
	}
	out := make([]domain.SourceDocument, len(docs))
	copy(out, docs)
	return out, nil
}
