package provider_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-site/backend/internal/config"
	"github.com/portfolio-site/backend/internal/corpus"
	"github.com/portfolio-site/backend/internal/provider"
)

type MockTransport struct {
	Response *http.Response
	Err      error
	Request  *http.Request
}

func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.Request = req
	return m.Response, m.Err
}

func mockClient(status int, body string) (*http.Client, *MockTransport) {
	transport := &MockTransport{
		Response: &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		},
	}
	return &http.Client{Transport: transport}, transport
}

func TestOllamaGenerate(t *testing.T) {
	client, transport := mockClient(200, `{"response": "Helsinki is the capital of Finland.", "done": true}`)

	p := provider.NewOllamaProvider("http://mock-ollama/", "llama2")
	p.Client = client

	ans, err := p.Generate(context.Background(), "Capital of Finland?")
	assert.NoError(t, err)
	assert.Equal(t, "Helsinki is the capital of Finland.", ans)
	assert.Equal(t, "http://mock-ollama/api/generate", transport.Request.URL.String())

	var sent map[string]interface{}
	require.NoError(t, json.NewDecoder(transport.Request.Body).Decode(&sent))
	assert.Equal(t, "llama2", sent["model"])
	assert.Equal(t, false, sent["stream"])
}

func TestProviderDefaults(t *testing.T) {
	openai := provider.NewOpenAIProvider("", "", "key")
	assert.Equal(t, "https://api.openai.com/v1", openai.BaseURL)
	assert.Equal(t, "gpt-4o-mini", openai.Model)

	ollama := provider.NewOllamaProvider("", "")
	assert.Equal(t, "http://localhost:11434", ollama.BaseURL)
	assert.Equal(t, "qwen3:1.7b", ollama.Model)
}

func TestOpenAIGenerate(t *testing.T) {
	client, transport := mockClient(200, `{
		"choices": [
			{
				"message": {
					"content": "Paris"
				}
			}
		]
	}`)

	p := provider.NewOpenAIProvider("http://mock-openai/v1", "gpt-3.5-turbo", "sk-fake")
	p.Client = client

	ans, err := p.Generate(context.Background(), "Capital of France?")
	assert.NoError(t, err)
	assert.Equal(t, "Paris", ans)
	assert.Equal(t, "http://mock-openai/v1/chat/completions", transport.Request.URL.String())
	assert.Equal(t, "Bearer sk-fake", transport.Request.Header.Get("Authorization"))
}

func TestOpenAINoChoices(t *testing.T) {
	client, _ := mockClient(200, `{"choices": []}`)

	p := provider.NewOpenAIProvider("", "gpt-4", "key")
	p.Client = client

	_, err := p.Generate(context.Background(), "q")
	assert.ErrorIs(t, err, provider.ErrEmptyResponse)
}

func TestGeminiGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "gm-key", r.Header.Get("x-goog-api-key"))

		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "When did you graduate?", req.Contents[0].Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "I graduated "}, {"text": "in 2025."}]}}]}`))
	}))
	defer server.Close()

	p := provider.NewGeminiProvider(server.URL, "models/gemini-2.5-flash", "gm-key")
	p.Client = server.Client()

	ans, err := p.Generate(context.Background(), "When did you graduate?")
	require.NoError(t, err)
	assert.Equal(t, "I graduated in 2025.", ans)
}

func TestGeminiBareModelName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", r.URL.Path)
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "ok"}]}}]}`))
	}))
	defer server.Close()

	p := provider.NewGeminiProvider(server.URL+"/", "gemini-pro", "k")
	p.Client = server.Client()

	ans, err := p.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", ans)
}

func TestGeminiErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"server error", 503, "overloaded", func(t *testing.T, err error) {
			var upstream *provider.UpstreamError
			require.True(t, errors.As(err, &upstream))
			assert.Equal(t, 503, upstream.Status)
			assert.Equal(t, "overloaded", upstream.Message)
		}},
		{"rate limited", 429, "", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, provider.ErrRateLimited)
		}},
		{"no candidates", 200, `{"candidates": []}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, provider.ErrEmptyResponse)
		}},
		{"bad json", 200, `{`, func(t *testing.T, err error) {
			assert.Error(t, err)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := mockClient(tt.status, tt.body)
			p := provider.NewGeminiProvider("http://mock-gemini", "", "k")
			p.Client = client

			_, err := p.Generate(context.Background(), "q")
			tt.check(t, err)
		})
	}
}

func TestGenerateNetworkError(t *testing.T) {
	p := provider.NewOllamaProvider("http://mock-ollama", "m")
	p.Client = &http.Client{Transport: &MockTransport{Err: errors.New("connection refused")}}

	_, err := p.Generate(context.Background(), "q")
	assert.Error(t, err)
}

func TestProviderFactory(t *testing.T) {
	p, err := provider.New(config.LLMConfig{Provider: "gemini", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())

	p, err = provider.New(config.LLMConfig{Provider: "openai", Model: "gpt-4", APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	p, err = provider.New(config.LLMConfig{Provider: "ollama", Model: "llama2"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	_, err = provider.New(config.LLMConfig{Provider: "gemini"})
	assert.ErrorIs(t, err, provider.ErrMissingCredential)

	_, err = provider.New(config.LLMConfig{Provider: "openai"})
	assert.ErrorIs(t, err, provider.ErrMissingCredential)

	_, err = provider.New(config.LLMConfig{Provider: "claude"})
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	prompt := provider.BuildPrompt("Ada Lovelace", "What did you build?", []corpus.Chunk{
		{ID: "a", Content: "Wrote the first program."},
		{ID: "b", Content: "Worked on the Analytical Engine."},
	})

	assert.True(t, strings.HasPrefix(prompt, "You are Ada Lovelace answering questions about your resume.\n"))
	assert.Contains(t, prompt, "Resume context:\n(1) Wrote the first program.\n(2) Worked on the Analytical Engine.\n\n")
	assert.Contains(t, prompt, "Respond in first person, 2-5 sentences")
	assert.Contains(t, prompt, "Do not add or infer timelines or statuses")
	assert.True(t, strings.HasSuffix(prompt, "Question: What did you build?\nAnswer:"))
}
