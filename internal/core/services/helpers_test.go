package services

import (
	"io"
	"log/slog"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/sercha-assist/internal/postprocessors"
)

const testDataDir = "/data/knowledge"

const coursesText = "Full-Stack Bootcamp costs $500. Data Science Bootcamp costs $700."

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestCorpus builds a corpus store over an in-memory source serving docs
// from testDataDir, chunked with the default pipeline.
func newTestCorpus(docs ...domain.SourceDocument) (*CorpusStore, *mocks.MockDocumentSource) {
	source := mocks.NewMockDocumentSource()
	source.SetDocuments(testDataDir, docs...)

	store := NewCorpusStore(CorpusStoreConfig{
		Source:   source,
		Pipeline: postprocessors.DefaultPipeline(postprocessors.DefaultChunkConfig()),
		DataPath: testDataDir,
		Logger:   discardLogger(),
	})
	return store, source
}

func newTestRetriever(store *CorpusStore, minScore float64) *Retriever {
	return NewRetriever(RetrieverConfig{
		Corpus:   store,
		MinScore: minScore,
		Logger:   discardLogger(),
	})
}

func doc(name, content string) domain.SourceDocument {
	return domain.SourceDocument{Name: name, Path: testDataDir + "/" + name, Content: content}
}

func scored(source, content string, score float64) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk: domain.DocumentChunk{Source: source, Content: content, Type: domain.DocumentType(source)},
		Score: score,
	}
}
