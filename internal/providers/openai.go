package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAI implements the Generator interface for OpenAI's chat completions API.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAI creates a new OpenAI provider.
func NewOpenAI(model string) (*OpenAI, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}
	baseURL := os.Getenv("REDLINE_OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	return &OpenAI{
		apiKey:  key,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Generate(ctx context.Context, req Request) (Response, error) {
	body := chatRequest(o.model, req)

	var result openaiResponse
	err := postJSON(ctx, o.client, o.baseURL, map[string]string{
		"Authorization": "Bearer " + o.apiKey,
	}, body, &result)
	if err != nil {
		return Response{}, err
	}
	return result.response()
}

// chatRequest builds an OpenAI-compatible chat completion request.
func chatRequest(model string, req Request) openaiRequest {
	body := openaiRequest{
		Model: model,
		Messages: []openaiMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens: maxTokens(req),
	}
	if req.Temperature > 0 {
		t := req.Temperature
		body.Temperature = &t
	}
	return body
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}

type openaiUsage struct {
	TotalTokens int `json:"total_tokens"`
}

func (r openaiResponse) response() (Response, error) {
	if len(r.Choices) == 0 {
		return Response{}, fmt.Errorf("no choices in response")
	}
	if r.Choices[0].Message.Content == "" {
		return Response{}, fmt.Errorf("empty text content in API response")
	}
	return Response{
		Content:    r.Choices[0].Message.Content,
		TokensUsed: r.Usage.TotalTokens,
	}, nil
}
