package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Language is the detected language of a text
type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageEnglish Language = "en"
)

// IsArabic reports whether the language is Arabic
func (l Language) IsArabic() bool {
	return l == LanguageArabic
}

// SourceDocument is one knowledge file read from the corpus directory
type SourceDocument struct {
	Name    string `json:"name"` // File name, used as the chunk source
	Path    string `json:"path"`
	Content string `json:"content"`
}

// DocumentChunk is a bounded contiguous slice of a source document.
// Chunks are owned by the corpus store and recreated on every refresh.
type DocumentChunk struct {
	Content     string   `json:"content"`
	Source      string   `json:"source"`
	ChunkIndex  int      `json:"chunk_index"` // Zero-based position within the source
	Type        string   `json:"type"`        // Logical category derived from the source
	WordCount   int      `json:"word_count"`
	Language    Language `json:"language"`
	StartOffset int      `json:"start_offset"` // Rune offset into the source text
	EndOffset   int      `json:"end_offset"`
}

// DocumentType derives the logical category of a source from its name:
// the lowercased base name without extension ("Services.txt" -> "services").
func DocumentType(source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(strings.TrimSpace(base))
}

// CorpusStats is a read-only snapshot of the corpus store
type CorpusStats struct {
	DocumentsLoaded int        `json:"documents_loaded"`
	ChunksCreated   int        `json:"chunks_created"`
	IsInitialized   bool       `json:"is_initialized"`
	LastUpdateTime  *time.Time `json:"last_update_time,omitempty"`
	DataPath        string     `json:"data_path"`
	LastError       string     `json:"last_error,omitempty"` // Most recent failed load/refresh
}
