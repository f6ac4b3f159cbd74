package answer

import (
	"regexp"
	"strings"
)

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]`)

// FirstSentence returns the first run of text ending in '.', '!' or '?',
// trimmed. Text without a terminator is returned whole, trimmed.
func FirstSentence(text string) string {
	if m := sentencePattern.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return strings.TrimSpace(text)
}
