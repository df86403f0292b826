package mediagen

import (
	"strings"
	"unicode/utf8"
)

// SplitText breaks text into segments of at most maxLen characters, cutting
// after sentence ends (". ") where possible. A sentence longer than maxLen is
// cut at the limit.
func SplitText(text string, maxLen int) []string {
	if maxLen < 1 {
		maxLen = 1
	}

	var (
		segments []string
		current  strings.Builder
		length   int
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			segments = append(segments, s)
		}
		current.Reset()
		length = 0
	}

	for _, sentence := range strings.SplitAfter(text, ". ") {
		n := utf8.RuneCountInString(sentence)
		if length+n > maxLen {
			flush()
		}
		for n > maxLen {
			runes := []rune(sentence)
			current.WriteString(string(runes[:maxLen]))
			flush()
			sentence = string(runes[maxLen:])
			n -= maxLen
		}
		current.WriteString(sentence)
		length += n
	}
	flush()

	return segments
}

// NarrationText is the spoken text for a recipe.
func NarrationText(name, instructions string) string {
	return strings.TrimSpace(name) + ". " + strings.TrimSpace(instructions)
}
