// Package providers implements the Generator interface for each supported LLM
// provider.
//
// Supported providers: OpenAI (GPT), Anthropic (Claude), Google (Gemini), and
// Ollama / LM Studio for local models.
//
// The HTTP providers share one JSON round-trip helper with exponential
// back-off on rate limits and server errors. Gemini goes through the genai
// SDK and maps its API errors onto the same error kinds, so callers can use
// [IsAuthError] regardless of provider.
//
// Use [New] to obtain a Generator by provider name and model string.
package providers
