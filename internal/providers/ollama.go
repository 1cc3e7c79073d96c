package providers

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama implements the Generator interface for Ollama and LM Studio
// through their OpenAI-compatible endpoint.
type Ollama struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOllama creates a new Ollama provider. No API key is required by default.
func NewOllama(model string) (*Ollama, error) {
	baseURL := os.Getenv("OLLAMA_HOST")
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	return &Ollama{
		apiKey:  os.Getenv("REDLINE_OLLAMA_API_KEY"),
		model:   model,
		baseURL: normalizeOllamaURL(baseURL),
		client:  &http.Client{Timeout: 300 * time.Second},
	}, nil
}

// normalizeOllamaURL accepts a host with or without /v1 or the full
// completions path and returns the completions endpoint.
func normalizeOllamaURL(baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1/chat/completions")
	baseURL = strings.TrimSuffix(baseURL, "/v1")
	return baseURL + "/v1/chat/completions"
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Generate(ctx context.Context, req Request) (Response, error) {
	headers := map[string]string{}
	if o.apiKey != "" {
		headers["Authorization"] = "Bearer " + o.apiKey
	}

	var result openaiResponse
	if err := postJSON(ctx, o.client, o.baseURL, headers, chatRequest(o.model, req), &result); err != nil {
		return Response{}, err
	}
	return result.response()
}
