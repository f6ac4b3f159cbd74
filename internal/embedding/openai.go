package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/portfolio-site/backend/internal/config"
)

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint. Ollama's
// /v1 API speaks the same shape.
type OpenAIEmbedder struct {
	BaseURL    string
	APIKey     string
	Model      string
	Client     *http.Client
	MaxRetries int

	// sleep waits between retries; replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewOpenAIEmbedder creates a remote embedder from cfg.
func NewOpenAIEmbedder(cfg config.EmbeddingConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIEmbedder{
		BaseURL:    baseURL,
		APIKey:     cfg.APIKey,
		Model:      model,
		Client:     &http.Client{Timeout: timeout},
		MaxRetries: 3,
		sleep:      sleepContext,
	}, nil
}

func (e *OpenAIEmbedder) Name() string { return "openai" }

func (e *OpenAIEmbedder) Dimension() int { return Dimension }

// Prepare is a no-op for remote embedding
func (e *OpenAIEmbedder) Prepare(corpus []string) error { return nil }

type embeddingRequest struct {
	Input      string `json:"input"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed requests a Dimension-sized vector for text. Rate limiting and
// server errors are retried with backoff, honouring Retry-After.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(embeddingRequest{Input: text, Model: e.Model, Dimensions: Dimension})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	sleep := e.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 0; attempt <= e.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, retryDelay(lastErr, attempt)); err != nil {
				return nil, err
			}
		}

		vector, retry, err := e.do(ctx, body)
		if err == nil {
			return vector, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("embedding failed after %d attempts: %w", e.MaxRetries+1, lastErr)
}

// retryableError carries the server's Retry-After hint.
type retryableError struct {
	status     string
	retryAfter time.Duration
}

func (r *retryableError) Error() string {
	return "embedding request failed: " + r.status
}

func (e *OpenAIEmbedder) do(ctx context.Context, body []byte) ([]float64, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		retryErr := &retryableError{status: resp.Status}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			retryErr.retryAfter = time.Duration(secs) * time.Second
		}
		return nil, true, retryErr
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, false, fmt.Errorf("embedding request failed: %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var out embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, false, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Data) == 0 {
		return nil, false, fmt.Errorf("embedding response has no data")
	}
	vector := out.Data[0].Embedding
	if len(vector) != Dimension {
		return nil, false, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), Dimension)
	}
	return vector, false, nil
}

func retryDelay(err error, attempt int) time.Duration {
	if r, ok := err.(*retryableError); ok && r.retryAfter > 0 {
		return r.retryAfter
	}
	return time.Duration(1<<uint(attempt-1)) * 500 * time.Millisecond
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
