package structure

import (
	"strings"
	"unicode"
)

// normalize lowercases s and drops everything that is not a letter or digit.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// cleanTitle collapses whitespace and bounds the length of a heading.
func cleanTitle(s string) string {
	return truncateRunes(strings.Join(strings.Fields(s), " "), 120)
}
