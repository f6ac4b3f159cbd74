package answer

import (
	"regexp"
	"strings"
)

type substitution struct {
	pattern     *regexp.Regexp
	replacement string
}

// FirstPerson rewrites third-person resume prose ("Sahasra led…", "her thesis")
// into the owner's own voice. Substitutions run strictly in order; later
// rules see the output of earlier ones (the name rules can produce "I's",
// which the last rule turns into "my").
type FirstPerson struct {
	rules []substitution
}

// NewFirstPerson builds the rewriter for the owner's full name. The full name
// and the given name are matched case-insensitively; pronoun rules are
// case-sensitive.
func NewFirstPerson(fullName string) *FirstPerson {
	var rules []substitution

	parts := strings.Fields(fullName)
	if len(parts) > 1 {
		quoted := make([]string, len(parts))
		for i, p := range parts {
			quoted[i] = regexp.QuoteMeta(p)
		}
		rules = append(rules, substitution{
			pattern:     regexp.MustCompile(`(?i)\b` + strings.Join(quoted, `\s+`) + `\b`),
			replacement: "I",
		})
	}
	if len(parts) > 0 {
		rules = append(rules, substitution{
			pattern:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(parts[0]) + `\b`),
			replacement: "I",
		})
	}

	for _, r := range [][2]string{
		{`\bShe\b`, "I"},
		{`\bHer\b`, "My"},
		{`\bher\b`, "my"},
		{`\bHerself\b`, "myself"},
		{`\bherself\b`, "myself"},
		{`\bI's\b`, "my"},
	} {
		rules = append(rules, substitution{pattern: regexp.MustCompile(r[0]), replacement: r[1]})
	}

	return &FirstPerson{rules: rules}
}

// Rewrite applies every substitution in order and trims the result.
func (f *FirstPerson) Rewrite(text string) string {
	for _, r := range f.rules {
		text = r.pattern.ReplaceAllLiteralString(text, r.replacement)
	}
	return strings.TrimSpace(text)
}
