package ai

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

type geminiCompleter struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Provider backed by the Gemini API. An empty key fails
// here, before any network call is attempted.
func NewGemini(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &ProviderError{
			Provider: "gemini",
			Code:     ErrCodeAPIKey,
			Message:  "API key is required for the Gemini provider",
		}
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &ProviderError{Provider: "gemini", Code: ErrCodeAPIKey, Message: "failed to create Gemini client", Err: err}
	}

	return &Client{c: &geminiCompleter{client: client, model: model}}, nil
}

func (p *geminiCompleter) name() string { return "gemini" }

func (p *geminiCompleter) complete(ctx context.Context, prompt string, jsonOutput bool) (string, error) {
	var cfg *genai.GenerateContentConfig
	if jsonOutput {
		cfg = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", &ProviderError{Provider: "gemini", Code: ErrCodeUnreachable, Message: "generate content failed", Err: err}
	}
	if result == nil {
		return "", &ProviderError{Provider: "gemini", Code: ErrCodeBadResponse, Message: "no response generated"}
	}

	text, err := result.Text()
	if err != nil {
		return "", &ProviderError{Provider: "gemini", Code: ErrCodeBadResponse, Message: "failed to extract response text", Err: err}
	}
	return text, nil
}
