package search

import "strings"

// MinTermLength is the shortest run of characters kept as a query term.
const MinTermLength = 3

// Tokenize lowercases text and splits it on every character outside [a-z0-9].
// Duplicates and short tokens are kept.
func Tokenize(text string) []string {
	f := func(c rune) bool {
		return !(c >= 'a' && c <= 'z') && !(c >= '0' && c <= '9')
	}
	return strings.FieldsFunc(strings.ToLower(text), f)
}

// ExtractTerms returns the distinct tokens of query that are at least
// MinTermLength characters long, in first-seen order. An empty result is valid.
func ExtractTerms(query string) []string {
	fields := Tokenize(query)

	seen := make(map[string]struct{}, len(fields))
	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) < MinTermLength {
			continue
		}
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		terms = append(terms, field)
	}
	return terms
}
