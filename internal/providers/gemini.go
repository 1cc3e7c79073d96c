package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"google.golang.org/genai"
)

// Gemini implements the Generator interface for Google's Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a new Gemini provider.
func NewGemini(model string) (*Gemini, error) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY (or GOOGLE_API_KEY) environment variable is not set")
	}
	return newGemini(context.Background(), key, model, os.Getenv("REDLINE_GEMINI_BASE_URL"))
}

func newGemini(ctx context.Context, apiKey, model, baseURL string) (*Gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Generate(ctx context.Context, req Request) (Response, error) {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens(req)),
	}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		cfg.Temperature = &t
	}

	var resp Response
	err := retryWithBackoff(ctx, maxRetries, func() error {
		result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.UserPrompt), cfg)
		if err != nil {
			return classifyGeminiError(err)
		}
		text := result.Text()
		if text == "" {
			return fmt.Errorf("no content in response")
		}
		resp = Response{Content: text}
		if result.UsageMetadata != nil {
			resp.TokensUsed = int(result.UsageMetadata.TotalTokenCount)
		}
		return nil
	})
	return resp, err
}

// classifyGeminiError maps genai API errors onto the shared error kinds.
func classifyGeminiError(err error) error {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	default:
		return err
	}

	switch {
	case code == http.StatusTooManyRequests:
		return &rateLimitError{}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &authError{message: err.Error()}
	case code >= 500:
		return &serverError{statusCode: code, body: err.Error()}
	default:
		return err
	}
}
