package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-assist/internal/language"
)

// Ensure Retriever implements RetrievalService
var _ driving.RetrievalService = (*Retriever)(nil)

// Score weights
const (
	keywordMatchWeight = 2.0
	phraseMatchBonus   = 10.0
	tokenMatchBonus    = 1.0
	languageMatchBonus = 0.5
	typeMatchBonus     = 3.0

	// Raw query tokens shorter than this do not earn the substring bonus
	minRawTokenRunes = 3
)

// DefaultMinScore is the threshold a chunk must strictly exceed to be returned.
const DefaultMinScore = 0.5

// Retriever ranks corpus chunks against a query with lexical scoring.
type Retriever struct {
	corpus   driving.CorpusService
	minScore float64
	score    func(domain.DocumentChunk, string, domain.KeywordSet) float64
	logger   *slog.Logger
}

// RetrieverConfig holds configuration for the retriever.
type RetrieverConfig struct {
	Corpus   driving.CorpusService
	MinScore float64 // Chunks scoring <= MinScore are discarded
	Logger   *slog.Logger
}

// NewRetriever creates a new retriever over the given corpus.
func NewRetriever(cfg RetrieverConfig) *Retriever {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Retriever{
		corpus:   cfg.Corpus,
		minScore: cfg.MinScore,
		score:    Score,
		logger:   logger.With("component", "retriever"),
	}
}

// Search returns at most topK chunks scoring above the threshold, best first.
// Ties keep corpus order. An uninitialized corpus is loaded first and its
// errors propagate; a failure while scoring returns ErrRetrievalFailed.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]domain.ScoredChunk, error) {
	chunks, err := r.corpus.Chunks(ctx)
	if err != nil {
		return nil, err
	}

	if topK <= 0 || len(chunks) == 0 {
		return []domain.ScoredChunk{}, nil
	}

	return r.rank(query, chunks, topK)
}

// rank scores, filters, sorts and truncates. Panics become ErrRetrievalFailed.
func (r *Retriever) rank(query string, chunks []domain.DocumentChunk, topK int) (results []domain.ScoredChunk, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("retrieval failed", "query", query, "panic", rec)
			results = nil
			err = fmt.Errorf("%w: %v", domain.ErrRetrievalFailed, rec)
		}
	}()

	keywords := language.ExtractKeywords(query)
	normalizedQuery := language.Normalize(query)

	results = make([]domain.ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		score := r.score(chunk, normalizedQuery, keywords)
		if score > r.minScore {
			results = append(results, domain.ScoredChunk{Chunk: chunk, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}

	r.logger.Debug("retrieval complete",
		"query", query,
		"language", keywords.Language,
		"candidates", len(chunks),
		"returned", len(results),
	)
	return results, nil
}

// Score computes the relevance of one chunk for a query:
//
//	2 x word-boundary matches of every expanded keyword
//	+10 if the chunk contains the whole normalized query
//	+1 per raw query token of 3+ runes found as a substring
//	+0.5 if the chunk language equals the query language
//	+3 if the chunk type is associated with an expanded keyword
func Score(chunk domain.DocumentChunk, normalizedQuery string, keywords domain.KeywordSet) float64 {
	text := language.Normalize(chunk.Content)
	score := 0.0

	for kw := range keywords.Expanded {
		score += keywordMatchWeight * float64(language.CountWordMatches(text, kw))
	}

	if normalizedQuery != "" && strings.Contains(text, normalizedQuery) {
		score += phraseMatchBonus
	}

	for _, token := range keywords.Original {
		if utf8.RuneCountInString(token) >= minRawTokenRunes && strings.Contains(text, token) {
			score += tokenMatchBonus
		}
	}

	if chunk.Language == keywords.Language {
		score += languageMatchBonus
	}

	if language.TypeMatches(chunk.Type, keywords) {
		score += typeMatchBonus
	}

	return score
}
