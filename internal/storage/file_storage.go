package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/portfolio-site/backend/internal/embedding"
)

// ChunkStorage persists the embedded resume corpus
type ChunkStorage interface {
	Save(chunks []embedding.EmbeddedChunk) error
	Load() ([]embedding.EmbeddedChunk, error)
	Close() error
}

// FileStorage implements ChunkStorage as a single pretty-printed JSON array
type FileStorage struct {
	path string
	mu   sync.RWMutex
}

// NewFileStorage creates a file-based store at path, creating its directory
func NewFileStorage(path string) (*FileStorage, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	return &FileStorage{
		path: path,
	}, nil
}

// Path returns the backing file
func (fs *FileStorage) Path() string {
	return fs.path
}

// Save replaces the file with chunks. The write goes through a temporary
// file so readers never see a partial array.
func (fs *FileStorage) Save(chunks []embedding.EmbeddedChunk) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if chunks == nil {
		chunks = []embedding.EmbeddedChunk{}
	}
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chunks: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace file: %w", err)
	}

	return nil
}

// Load reads the embedded corpus back from disk
func (fs *FileStorage) Load() ([]embedding.EmbeddedChunk, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	data, err := os.ReadFile(fs.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var chunks []embedding.EmbeddedChunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chunks: %w", err)
	}

	for _, ch := range chunks {
		if len(ch.Embedding) != embedding.Dimension {
			return nil, fmt.Errorf("chunk %q: %w: got %d, want %d", ch.ID, embedding.ErrDimensionMismatch, len(ch.Embedding), embedding.Dimension)
		}
	}

	return chunks, nil
}

// Close is a no-op for file storage
func (fs *FileStorage) Close() error {
	return nil
}
