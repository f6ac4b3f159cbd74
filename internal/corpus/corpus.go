// Package corpus holds the fixed set of resume chunks the assistant answers from.
//
// A Corpus is loaded once at startup and never mutated afterwards, so it is
// safe for concurrent readers without locking.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrEmptyCorpus is returned when the dataset holds no chunks.
	ErrEmptyCorpus = errors.New("corpus is empty")
	// ErrInvalidChunk is returned when an entry is missing its id or content.
	ErrInvalidChunk = errors.New("invalid chunk")
)

// Chunk is one retrievable unit of resume text.
type Chunk struct {
	ID      string                 `json:"id"`
	Content string                 `json:"content"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// Corpus is an ordered, immutable sequence of chunks. Order is significant:
// it breaks ranking ties and supplies the default context for content-free queries.
type Corpus struct {
	chunks []Chunk
	byID   map[string]int
}

// New validates chunks and builds a Corpus. Entries are copied so later
// changes to the input slice cannot leak in.
func New(chunks []Chunk) (*Corpus, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyCorpus
	}
	c := &Corpus{
		chunks: make([]Chunk, len(chunks)),
		byID:   make(map[string]int, len(chunks)),
	}
	for i, ch := range chunks {
		if err := Validate(ch, i); err != nil {
			return nil, err
		}
		if prev, dup := c.byID[ch.ID]; dup {
			return nil, fmt.Errorf("%w: chunk %q at index %d duplicates index %d", ErrInvalidChunk, ch.ID, i, prev)
		}
		c.byID[ch.ID] = i
		c.chunks[i] = ch
	}
	return c, nil
}

// Validate checks a single entry; index is used in the error message.
func Validate(ch Chunk, index int) error {
	if strings.TrimSpace(ch.ID) == "" {
		return fmt.Errorf("%w: chunk at index %d is missing an id", ErrInvalidChunk, index)
	}
	if strings.TrimSpace(ch.Content) == "" {
		return fmt.Errorf("%w: chunk %q is missing content", ErrInvalidChunk, ch.ID)
	}
	return nil
}

// Parse decodes a JSON array of chunks and validates it.
func Parse(data []byte) (*Corpus, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode corpus: %w", err)
	}
	chunks := make([]Chunk, 0, len(raw))
	for i, entry := range raw {
		var ch Chunk
		if err := json.Unmarshal(entry, &ch); err != nil {
			return nil, fmt.Errorf("%w: chunk at index %d is not a valid object: %v", ErrInvalidChunk, i, err)
		}
		chunks = append(chunks, ch)
	}
	return New(chunks)
}

// Load reads and validates the corpus file at path.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Len returns the number of chunks. A nil Corpus is empty.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.chunks)
}

// Chunks returns the chunks in corpus order. The slice must not be modified.
func (c *Corpus) Chunks() []Chunk {
	if c == nil {
		return nil
	}
	return c.chunks
}

// Get looks a chunk up by id.
func (c *Corpus) Get(id string) (Chunk, bool) {
	if c == nil {
		return Chunk{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Chunk{}, false
	}
	return c.chunks[i], true
}
