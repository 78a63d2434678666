package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
)

func TestPromptComposer_NoContext(t *testing.T) {
	c := NewPromptComposer("")

	bundle := c.Compose("random unrelated query", nil)

	assert.False(t, bundle.HasContext)
	assert.NotEmpty(t, bundle.SystemPrompt)
	assert.NotContains(t, bundle.SystemPrompt, "[Document")
	assert.Contains(t, bundle.SystemPrompt, "general knowledge")
	assert.Empty(t, bundle.Sources)
	assert.Equal(t, 0, bundle.ChunkCount)
	assert.Equal(t, domain.LanguageEnglish, bundle.Language)
	assert.Equal(t, "random unrelated query", bundle.UserPrompt)
	assert.NotContains(t, bundle.SystemPrompt, egyptianTone)
}

func TestPromptComposer_NoContext_Arabic(t *testing.T) {
	c := NewPromptComposer("")

	bundle := c.Compose("إزاي أقدر أتعلم البرمجة؟", []domain.ScoredChunk{})

	assert.False(t, bundle.HasContext)
	assert.Equal(t, domain.LanguageArabic, bundle.Language)
	assert.Contains(t, bundle.SystemPrompt, egyptianTone)
	assert.NotContains(t, bundle.SystemPrompt, "[Document")
	assert.Equal(t, "إزاي أقدر أتعلم البرمجة؟", bundle.UserPrompt)
}

func TestPromptComposer_SourcesDeduplicated(t *testing.T) {
	c := NewPromptComposer("")
	chunks := []domain.ScoredChunk{
		scored("services.txt", "Web development.", 9),
		scored("services.txt", "Mobile apps.", 7),
		scored("courses.txt", coursesText, 4),
	}

	bundle := c.Compose("What do you offer?", chunks)

	assert.True(t, bundle.HasContext)
	assert.Equal(t, []string{"services.txt", "courses.txt"}, bundle.Sources)
	assert.Equal(t, 3, bundle.ChunkCount)
}

func TestPromptComposer_ContextBlock(t *testing.T) {
	c := NewPromptComposer("Acme Academy")
	chunks := []domain.ScoredChunk{
		scored("services.txt", "Web development.", 9),
		scored("courses.txt", coursesText, 4),
	}

	bundle := c.Compose("What courses do you offer?", chunks)

	assert.Contains(t, bundle.SystemPrompt, "Acme Academy")
	assert.Contains(t, bundle.SystemPrompt, "[Document 1 - services.txt]\nWeb development.")
	assert.Contains(t, bundle.SystemPrompt, "[Document 2 - courses.txt]\n"+coursesText)
	assert.Contains(t, bundle.SystemPrompt, "Web development."+contextSeparator+"[Document 2")
	assert.Contains(t, bundle.SystemPrompt, "say so explicitly")
	assert.Equal(t, "What courses do you offer?", bundle.UserPrompt)

	first := strings.Index(bundle.SystemPrompt, "[Document 1")
	second := strings.Index(bundle.SystemPrompt, "[Document 2")
	assert.Less(t, first, second, "documents keep ranking order")
}

func TestPromptComposer_ArabicScenario(t *testing.T) {
	c := NewPromptComposer("")
	query := "ما هي أسعار الدورات التدريبية؟"

	bundle := c.Compose(query, []domain.ScoredChunk{scored("courses.txt", coursesText, 11)})

	assert.Equal(t, domain.LanguageArabic, bundle.Language)
	assert.True(t, bundle.HasContext)
	assert.Equal(t, []string{"courses.txt"}, bundle.Sources)
	assert.Contains(t, bundle.SystemPrompt, egyptianTone)
	assert.Contains(t, bundle.SystemPrompt, "معلومات الشركة")
	assert.Contains(t, bundle.SystemPrompt, "[Document 1 - courses.txt]")
	assert.Contains(t, bundle.UserPrompt, "استخدم المعلومات اللي فوق")
	assert.True(t, strings.HasSuffix(bundle.UserPrompt, query))
}

func TestUniqueSources(t *testing.T) {
	tests := []struct {
		name     string
		sources  []string
		expected []string
	}{
		{"empty", nil, []string{}},
		{"single", []string{"a.txt"}, []string{"a.txt"}},
		{"interleaved", []string{"a.txt", "b.txt", "a.txt", "c.txt", "b.txt"}, []string{"a.txt", "b.txt", "c.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := make([]domain.ScoredChunk, len(tt.sources))
			for i, s := range tt.sources {
				chunks[i] = scored(s, "x", 1)
			}
			assert.Equal(t, tt.expected, uniqueSources(chunks))
		})
	}
}
