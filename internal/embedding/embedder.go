// Package embedding turns resume chunks into fixed-size vectors for the
// offline embedding job and the similarity lookup.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/portfolio-site/backend/internal/config"
)

// Dimension is the vector size every embedder in this package produces.
const Dimension = 384

var (
	// ErrDimensionMismatch is returned when a vector has the wrong size.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrNotPrepared is returned when Embed is called before Prepare.
	ErrNotPrepared = errors.New("embedder not prepared")
	// ErrMissingAPIKey is returned when a remote embedder has no credential.
	ErrMissingAPIKey = errors.New("missing embedding API key")
)

// Embedder converts free text into a numeric vector.
// Implementations may need a preparation pass over the corpus.
type Embedder interface {
	Name() string
	Dimension() int
	Prepare(corpus []string) error
	Embed(ctx context.Context, text string) ([]float64, error)
}

// New creates the embedder named by cfg.Provider.
func New(cfg config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case "", "local":
		return NewHashedEmbedder(Dimension), nil
	case "openai":
		return NewOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
