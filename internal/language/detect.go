// Package language provides script detection, text normalisation and
// bilingual keyword expansion for retrieval queries and corpus chunks.
// Every function is pure and total over all strings.
package language

import (
	"strings"
	"unicode"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
)

// arabicRanges covers the Arabic block, Arabic Supplement, Arabic Extended-A
// and both Arabic presentation-form blocks.
var arabicRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0600, Hi: 0x06FF, Stride: 1},
		{Lo: 0x0750, Hi: 0x077F, Stride: 1},
		{Lo: 0x08A0, Hi: 0x08FF, Stride: 1},
		{Lo: 0xFB50, Hi: 0xFDFF, Stride: 1},
		{Lo: 0xFE70, Hi: 0xFEFF, Stride: 1},
	},
}

const tatweel = 'ـ'

// Detect returns Arabic if text contains at least one rune in the Arabic
// script ranges, English otherwise (including for empty input).
func Detect(text string) domain.Language {
	for _, r := range text {
		if unicode.Is(arabicRanges, r) {
			return domain.LanguageArabic
		}
	}
	return domain.LanguageEnglish
}

// Normalize lowercases text, strips Arabic diacritics and tatweel, and
// collapses whitespace runs to single spaces. It is idempotent.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if isDiacritic(r) || r == tatweel {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// isDiacritic reports whether r is an Arabic harakat mark or the
// superscript alef.
func isDiacritic(r rune) bool {
	return (r >= 0x064B && r <= 0x065F) || r == 0x0670
}

// isWordRune mirrors a regex word character, extended to every script.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
