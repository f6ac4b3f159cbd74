package answer

import (
	"regexp"
	"strings"

	"github.com/portfolio-site/backend/internal/corpus"
)

var (
	degreePattern    = regexp.MustCompile(`(graduate|graduation|undergrad|b\.?tech|btech|bachelor)`)
	temporalPattern  = regexp.MustCompile(`(year|when|date)`)
	yearRangePattern = regexp.MustCompile(`\b(20\d{2})[\s\p{Zs}]*[–-][\s\p{Zs}]*(20\d{2})\b`)
	yearPattern      = regexp.MustCompile(`\b20\d{2}\b`)
)

// Graduation answers "when did you graduate" style questions with the year
// found in the matched chunks.
type Graduation struct{}

func (Graduation) Name() string { return "graduation" }

func (Graduation) Answer(query string, matches []corpus.Chunk) (string, bool) {
	if !IsGraduationQuestion(query) {
		return "", false
	}
	year, ok := GraduationYear(matches)
	if !ok {
		return "", false
	}
	return "I graduated in " + year + ".", true
}

// IsGraduationQuestion reports whether query pairs a degree word with a
// temporal word.
func IsGraduationQuestion(query string) bool {
	normalized := strings.ToLower(query)
	return degreePattern.MatchString(normalized) && temporalPattern.MatchString(normalized)
}

// GraduationYear prefers the end year of the first "YYYY-YYYY" range in
// ranked order. Without a range anywhere, the first chunk containing a bare
// year supplies its last one.
func GraduationYear(chunks []corpus.Chunk) (string, bool) {
	for _, ch := range chunks {
		if m := yearRangePattern.FindStringSubmatch(ch.Content); m != nil {
			return m[2], true
		}
	}
	for _, ch := range chunks {
		if years := yearPattern.FindAllString(ch.Content, -1); len(years) > 0 {
			return years[len(years)-1], true
		}
	}
	return "", false
}
