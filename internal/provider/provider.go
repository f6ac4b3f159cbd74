package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/portfolio-site/backend/internal/config"
	"github.com/portfolio-site/backend/internal/corpus"
)

var (
	// ErrMissingCredential means the provider needs an API key and none is configured.
	ErrMissingCredential = errors.New("missing api credential")
	// ErrEmptyResponse means the upstream answered without any candidate text.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrRateLimited means the upstream rejected the call with 429.
	ErrRateLimited = errors.New("rate limited by model provider")
)

// LLMProvider defines the interface for AI model integration
type LLMProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// UpstreamError reports a non-2xx reply from a model provider.
type UpstreamError struct {
	Provider string
	Status   int
	Message  string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s returned status: %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s returned status: %d: %s", e.Provider, e.Status, e.Message)
}

// New builds the provider selected by cfg. Providers that need a credential
// return ErrMissingCredential when cfg.APIKey is empty.
func New(cfg config.LLMConfig) (LLMProvider, error) {
	switch cfg.Provider {
	case "", "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini: %w", ErrMissingCredential)
		}
		return NewGeminiProvider(cfg.BaseURL, cfg.Model, cfg.APIKey), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai: %w", ErrMissingCredential)
		}
		return NewOpenAIProvider(cfg.BaseURL, cfg.Model, cfg.APIKey), nil
	case "ollama":
		return NewOllamaProvider(cfg.BaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// BuildPrompt grounds the question in the ranked chunks, numbered in rank order.
func BuildPrompt(ownerName, query string, chunks []corpus.Chunk) string {
	var block strings.Builder
	for i, ch := range chunks {
		if i > 0 {
			block.WriteString("\n")
		}
		fmt.Fprintf(&block, "(%d) %s", i+1, ch.Content)
	}

	return "You are " + ownerName + " answering questions about your resume.\n" +
		"Use only the resume context below. If the answer is not in the context, say you don't have that detail and suggest a resume-related topic.\n" +
		"Do not add or infer timelines or statuses (e.g., \"currently\") unless explicitly stated in the context.\n" +
		"Respond in first person, 2-5 sentences, professional and concise.\n\n" +
		"Resume context:\n" + block.String() + "\n\n" +
		"Question: " + query + "\n" +
		"Answer:"
}

// upstreamError drains a small part of the body into an UpstreamError.
func upstreamError(provider string, resp *http.Response) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w", provider, ErrRateLimited)
	}
	slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return &UpstreamError{
		Provider: provider,
		Status:   resp.StatusCode,
		Message:  strings.TrimSpace(string(slurp)),
	}
}

func clientOrDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return http.DefaultClient
}
