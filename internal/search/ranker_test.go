package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-site/backend/internal/corpus"
	"github.com/portfolio-site/backend/internal/search"
)

func testCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()
	c, err := corpus.New([]corpus.Chunk{
		{ID: "intro", Content: "Sahasra builds machine learning systems."},
		{ID: "edu", Content: "Bachelor of Technology in Computer Science, 2021-2025."},
		{ID: "research", Content: "Research on learning machines and machine learning fairness."},
		{ID: "cloud", Content: "Cloud and DevOps: AWS, Docker, Kubernetes."},
		{ID: "ta", Content: "Teaching assistant for cloud computing."},
		{ID: "projects", Content: "Projects in cloud systems and learning."},
	})
	require.NoError(t, err)
	return c
}

func ids(chunks []corpus.Chunk) []string {
	out := make([]string, len(chunks))
	for i, ch := range chunks {
		out[i] = ch.ID
	}
	return out
}

func TestRankNoTermsReturnsLeadingChunks(t *testing.T) {
	c := testCorpus(t)

	got := search.Rank(search.ExtractTerms("?!"), c)
	assert.Equal(t, []string{"intro", "edu"}, ids(got))
}

func TestRankOrdersByDistinctTermCount(t *testing.T) {
	c := testCorpus(t)

	// "research" matches machine+learning+research, intro matches machine+learning
	got := search.RankMatches([]string{"machine", "learning", "research"}, c)
	require.NotEmpty(t, got)
	assert.Equal(t, "research", got[0].Chunk.ID)
	assert.Equal(t, 3, got[0].Score)
	assert.Equal(t, "intro", got[1].Chunk.ID)
	assert.Equal(t, 2, got[1].Score)
}

func TestRankTiesKeepCorpusOrder(t *testing.T) {
	c := testCorpus(t)

	got := search.Rank([]string{"cloud"}, c)
	assert.Equal(t, []string{"cloud", "ta", "projects"}, ids(got))
}

func TestRankTruncatesToMaxContext(t *testing.T) {
	c := testCorpus(t)

	// six chunks match at least one of these fragments
	got := search.Rank([]string{"ing", "clo", "ach", "ear", "sys"}, c)
	assert.Len(t, got, search.MaxContext)
}

func TestRankDropsZeroScores(t *testing.T) {
	c := testCorpus(t)

	assert.Empty(t, search.Rank([]string{"quantum"}, c))
}

func TestScoreIsSubstringPresence(t *testing.T) {
	assert.Equal(t, 1, search.Score([]string{"bach"}, "Bachelor of Science"))
	assert.Equal(t, 1, search.Score([]string{"cloud"}, "cloud cloud cloud"))
	assert.Equal(t, 0, search.Score(nil, "anything"))
}
