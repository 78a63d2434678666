package domain

import "time"

// ScoredChunk is a chunk with its relevance score for one query.
// It exists only for the duration of one retrieval call.
type ScoredChunk struct {
	Chunk DocumentChunk `json:"chunk"`
	Score float64       `json:"score"`
}

// KeywordSet is the tokenised and expanded form of a query
type KeywordSet struct {
	Original []string            `json:"original"` // Ordered query tokens
	Expanded map[string]struct{} `json:"-"`        // Original tokens plus dictionary synonyms
	Language Language            `json:"language"`
}

// Has reports whether token is in the expanded set
func (k KeywordSet) Has(token string) bool {
	_, ok := k.Expanded[token]
	return ok
}

// SearchResult represents the result of a search query
type SearchResult struct {
	Query    string        `json:"query"`
	Language Language      `json:"language"`
	Results  []ScoredChunk `json:"results"`
	Took     time.Duration `json:"took"`
}
