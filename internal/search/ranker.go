package search

import (
	"sort"
	"strings"

	"github.com/portfolio-site/backend/internal/corpus"
)

const (
	// MaxContext caps how many chunks are handed to the answer stage.
	MaxContext = 4
	// DefaultContext is how many leading chunks are used when a query has no terms.
	DefaultContext = 2
)

// Match holds a ranked chunk and its score
type Match struct {
	Chunk corpus.Chunk
	Score int
}

// Score counts the distinct terms found anywhere in content, case-insensitively.
// Presence counts, frequency does not.
func Score(terms []string, content string) int {
	if len(terms) == 0 {
		return 0
	}
	haystack := strings.ToLower(content)
	score := 0
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			score++
		}
	}
	return score
}

// RankMatches scores every chunk of c against terms, drops zero scores and
// returns up to MaxContext matches by descending score. Equal scores keep
// corpus order. With no terms it returns the first DefaultContext chunks
// unscored.
func RankMatches(terms []string, c *corpus.Corpus) []Match {
	chunks := c.Chunks()
	if len(terms) == 0 {
		n := min(DefaultContext, len(chunks))
		matches := make([]Match, n)
		for i := 0; i < n; i++ {
			matches[i] = Match{Chunk: chunks[i]}
		}
		return matches
	}

	var matches []Match
	for _, ch := range chunks {
		if score := Score(terms, ch.Content); score > 0 {
			matches = append(matches, Match{Chunk: ch, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > MaxContext {
		return matches[:MaxContext]
	}
	return matches
}

// Rank is RankMatches without the scores.
func Rank(terms []string, c *corpus.Corpus) []corpus.Chunk {
	matches := RankMatches(terms, c)
	out := make([]corpus.Chunk, len(matches))
	for i, m := range matches {
		out[i] = m.Chunk
	}
	return out
}
