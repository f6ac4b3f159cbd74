package search

import (
	"math"
	"sort"
)

// Embedded is anything carrying a dense vector.
type Embedded interface {
	Vector() []float64
}

// Scored pairs an item with its similarity to a query vector.
type Scored[T Embedded] struct {
	Item  T
	Score float64
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// Empty, mismatched or zero-magnitude inputs score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TopK returns the k items most similar to query, best first. A non-positive k
// yields nothing.
func TopK[T Embedded](query []float64, items []T, k int) []Scored[T] {
	if k <= 0 {
		return nil
	}
	results := make([]Scored[T], len(items))
	for i, item := range items {
		results[i] = Scored[T]{Item: item, Score: CosineSimilarity(query, item.Vector())}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		return results[:k]
	}
	return results
}
