package embedding

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/portfolio-site/backend/internal/corpus"
)

// ErrEmptySource is returned when there is nothing to embed.
var ErrEmptySource = errors.New("source resume chunk file is empty or not an array")

// EmbeddedChunk is a resume chunk plus its vector. It marshals as the
// chunk's own fields with an added "embedding" array.
type EmbeddedChunk struct {
	corpus.Chunk
	Embedding []float64 `json:"embedding"`
}

// Vector returns the chunk embedding.
func (c EmbeddedChunk) Vector() []float64 {
	return c.Embedding
}

// Pipeline embeds a chunk list one chunk at a time, writing a progress line
// per chunk.
type Pipeline struct {
	Embedder Embedder
	Logger   *logrus.Entry
	Progress io.Writer
}

// Run validates and embeds chunks in order. The first invalid chunk or
// embedder failure aborts the run.
func (p *Pipeline) Run(ctx context.Context, chunks []corpus.Chunk) ([]EmbeddedChunk, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptySource
	}
	logger := p.Logger
	if logger == nil {
		logger = logrus.WithField("component", "embedding")
	}
	progress := p.Progress
	if progress == nil {
		progress = io.Discard
	}

	contents := make([]string, len(chunks))
	for i, ch := range chunks {
		contents[i] = ch.Content
	}
	if err := p.Embedder.Prepare(contents); err != nil {
		return nil, fmt.Errorf("failed to prepare %s embedder: %w", p.Embedder.Name(), err)
	}

	embedded := make([]EmbeddedChunk, 0, len(chunks))
	for i, ch := range chunks {
		if err := corpus.Validate(ch, i); err != nil {
			return nil, err
		}
		fmt.Fprintf(progress, "Embedding chunk %d/%d: %s...\n", i+1, len(chunks), ch.ID)

		vector, err := p.Embedder.Embed(ctx, ch.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %q: %w", ch.ID, err)
		}
		if len(vector) != p.Embedder.Dimension() {
			return nil, fmt.Errorf("chunk %q: %w: got %d, want %d", ch.ID, ErrDimensionMismatch, len(vector), p.Embedder.Dimension())
		}
		embedded = append(embedded, EmbeddedChunk{Chunk: ch, Embedding: vector})
	}

	logger.WithFields(logrus.Fields{
		"embedder": p.Embedder.Name(),
		"chunks":   len(embedded),
	}).Info("Embedded resume chunks")
	return embedded, nil
}
