package language

import (
	"strings"
	"unicode/utf8"
)

// CountWordMatches counts non-overlapping occurrences of word in text that
// are not adjacent to another word rune on either side. Both arguments are
// expected to be normalized.
func CountWordMatches(text, word string) int {
	if word == "" || len(word) > len(text) {
		return 0
	}

	count := 0
	pos := 0
	for pos <= len(text)-len(word) {
		idx := strings.Index(text[pos:], word)
		if idx == -1 {
			break
		}
		start := pos + idx
		end := start + len(word)

		if atBoundary(text, start, end) {
			count++
			pos = end
			continue
		}

		// Skip one rune past the rejected match start
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return count
}

func atBoundary(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}
