package embedding

import (
	"context"
	"errors"
	"math"

	"github.com/minio/highwayhash"

	"github.com/portfolio-site/backend/internal/search"
)

// hashKey must be 32 bytes.
var hashKey = []byte("ask-resume/embedding/hashkey/v01")

// HashedEmbedder is a deterministic TF-IDF embedder. Terms are folded into
// a fixed number of buckets with HighwayHash, so the vector size does not
// depend on the vocabulary.
type HashedEmbedder struct {
	dimension int
	idf       map[string]float64
	docCount  float64
	prepared  bool
}

// NewHashedEmbedder creates an unprepared embedder producing vectors of size dimension.
func NewHashedEmbedder(dimension int) *HashedEmbedder {
	if dimension <= 0 {
		dimension = Dimension
	}
	return &HashedEmbedder{
		dimension: dimension,
		idf:       make(map[string]float64),
	}
}

func (e *HashedEmbedder) Name() string { return "local" }

func (e *HashedEmbedder) Dimension() int { return e.dimension }

// Prepare learns document frequencies from corpus
func (e *HashedEmbedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for embedder prepare")
	}

	df := make(map[string]int)
	for _, doc := range corpus {
		seenInDoc := make(map[string]bool)
		for _, token := range terms(doc) {
			if !seenInDoc[token] {
				df[token]++
				seenInDoc[token] = true
			}
		}
	}

	e.docCount = float64(len(corpus))
	e.idf = make(map[string]float64, len(df))
	for token, count := range df {
		// smoothed idf
		e.idf[token] = math.Log((1+e.docCount)/(1+float64(count))) + 1
	}
	e.prepared = true
	return nil
}

// Embed returns the L2-normalised hashed TF-IDF vector of text. Text with no
// usable terms yields the zero vector.
func (e *HashedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if !e.prepared {
		return nil, ErrNotPrepared
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vector := make([]float64, e.dimension)
	tokens := terms(text)
	if len(tokens) == 0 {
		return vector, nil
	}

	tf := make(map[string]float64)
	for _, token := range tokens {
		tf[token]++
	}
	for token, count := range tf {
		vector[e.bucket(token)] += (count / float64(len(tokens))) * e.weight(token)
	}

	normalize(vector)
	return vector, nil
}

// weight is the idf of token; unseen tokens get the rarest possible weight.
func (e *HashedEmbedder) weight(token string) float64 {
	if idf, ok := e.idf[token]; ok {
		return idf
	}
	return math.Log(1+e.docCount) + 1
}

func (e *HashedEmbedder) bucket(token string) int {
	return int(highwayhash.Sum64([]byte(token), hashKey) % uint64(e.dimension))
}

func terms(text string) []string {
	tokens := search.Tokenize(text)
	kept := tokens[:0]
	for _, token := range tokens {
		if len(token) >= search.MinTermLength {
			kept = append(kept, token)
		}
	}
	return kept
}

func normalize(v []float64) {
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] /= norm
	}
}
