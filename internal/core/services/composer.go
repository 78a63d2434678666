package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-assist/internal/language"
)

// Ensure PromptComposer implements PromptService
var _ driving.PromptService = (*PromptComposer)(nil)

const contextSeparator = "\n\n---\n\n"

// egyptianTone is appended to every Arabic system prompt.
const egyptianTone = `قواعد الأسلوب (اللهجة المصرية):
- ابدأ الرد بتحية مصرية زي "أهلاً بحضرتك" أو "أهلاً وسهلاً" أو "نورتنا".
- استخدم "إيه" بدل "ماذا"، و"إزاي" بدل "كيف"، و"فين" بدل "أين"، و"إمتى" بدل "متى"، و"بكام" بدل "كم السعر".
- استخدم كلمات الذوق زي "لو سمحت" و"تحت أمرك" و"يسعدنا" و"متترددش تسألنا".
- خاطب العميل دايماً بـ"حضرتك" وماتستخدمش "أنت" بشكل مباشر.
- خلي الرد قصير وواضح وودود، ومن غير فصحى متكلفة.`

// PromptComposer builds language- and context-adaptive prompt pairs.
type PromptComposer struct {
	companyName string
}

// NewPromptComposer creates a composer; companyName appears in the
// assistant persona and defaults to a neutral phrase.
func NewPromptComposer(companyName string) *PromptComposer {
	return &PromptComposer{companyName: strings.TrimSpace(companyName)}
}

// Compose builds the prompt bundle for query from the retrieved chunks.
// It never fails; an empty chunk list yields a general-knowledge prompt.
func (c *PromptComposer) Compose(query string, chunks []domain.ScoredChunk) *domain.PromptBundle {
	lang := language.Detect(query)
	bundle := &domain.PromptBundle{
		Language:   lang,
		HasContext: len(chunks) > 0,
		ChunkCount: len(chunks),
		Sources:    uniqueSources(chunks),
	}

	if !bundle.HasContext {
		bundle.SystemPrompt = c.noContextPrompt(lang)
		bundle.UserPrompt = query
		return bundle
	}

	contextBlock := buildContextBlock(chunks)
	bundle.SystemPrompt = c.contextPrompt(lang, contextBlock)
	bundle.UserPrompt = query
	if lang.IsArabic() {
		bundle.UserPrompt = "استخدم المعلومات اللي فوق علشان تجاوب على سؤال العميل ده:\n" + query
	}
	return bundle
}

func (c *PromptComposer) noContextPrompt(lang domain.Language) string {
	if lang.IsArabic() {
		return fmt.Sprintf(`أنت مساعد خدمة عملاء خبير لـ%s.
مفيش معلومات في ملفات الشركة تخص السؤال ده. جاوب من معرفتك العامة، وقول بصراحة إن معندكش تفاصيل خاصة بالشركة عن الموضوع ده.
ماتألفش أسعار أو مواعيد أو بيانات تواصل أو سياسات.

%s`, c.arabicCompany(), egyptianTone)
	}

	return fmt.Sprintf(`You are an expert customer support assistant for %s.
No company documents matched this question. Answer from your general knowledge and be honest that you do not have company-specific details on this topic.
Never invent prices, schedules, contact details or policies.
Keep the answer concise and friendly.`, c.englishCompany())
}

func (c *PromptComposer) contextPrompt(lang domain.Language, contextBlock string) string {
	if lang.IsArabic() {
		return fmt.Sprintf(`أنت مساعد خدمة عملاء خبير لـ%s.
جاوب بشكل أساسي من معلومات الشركة اللي تحت. لو المعلومات مش كفاية للإجابة، قول ده بوضوح وبعدين جاوب من معرفتك العامة.
ماتألفش أي تفاصيل مش موجودة في المعلومات.

%s

معلومات الشركة:
%s`, c.arabicCompany(), egyptianTone, contextBlock)
	}

	return fmt.Sprintf(`You are an expert customer support assistant for %s.
Answer primarily from the company information below. If it is not sufficient to answer, say so explicitly and then answer from general knowledge.
Never fabricate details that are not in the information.

Company information:
%s`, c.englishCompany(), contextBlock)
}

func (c *PromptComposer) englishCompany() string {
	if c.companyName == "" {
		return "our company"
	}
	return c.companyName
}

func (c *PromptComposer) arabicCompany() string {
	if c.companyName == "" {
		return "الشركة"
	}
	return c.companyName
}

// buildContextBlock labels each chunk "[Document N - source]" and joins them.
func buildContextBlock(chunks []domain.ScoredChunk) string {
	parts := make([]string, len(chunks))
	for i, sc := range chunks {
		parts[i] = fmt.Sprintf("[Document %d - %s]\n%s", i+1, sc.Chunk.Source, sc.Chunk.Content)
	}
	return strings.Join(parts, contextSeparator)
}

// uniqueSources returns distinct chunk sources in first-seen order.
func uniqueSources(chunks []domain.ScoredChunk) []string {
	sources := make([]string, 0, len(chunks))
	seen := make(map[string]struct{}, len(chunks))
	for _, sc := range chunks {
		if _, ok := seen[sc.Chunk.Source]; ok {
			continue
		}
		seen[sc.Chunk.Source] = struct{}{}
		sources = append(sources, sc.Chunk.Source)
	}
	return sources
}
