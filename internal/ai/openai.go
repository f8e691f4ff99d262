package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type openAICompleter struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenAI builds a Provider for any OpenAI-compatible chat completion
// endpoint. An empty key fails before any network call is attempted.
func NewOpenAI(baseURL, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &ProviderError{
			Provider: "openai",
			Code:     ErrCodeAPIKey,
			Message:  "API key is required for the OpenAI provider",
		}
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{c: &openAICompleter{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 90 * time.Second},
	}}, nil
}

func (p *openAICompleter) name() string { return "openai" }

type openAIMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatReq struct {
	Model          string      `json:"model"`
	Messages       []openAIMsg `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type openAIChatResp struct {
	Choices []struct {
		Message openAIMsg `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *openAICompleter) complete(ctx context.Context, prompt string, jsonOutput bool) (string, error) {
	reqBody := openAIChatReq{
		Model:    p.model,
		Messages: []openAIMsg{{Role: "user", Content: prompt}},
	}
	if jsonOutput {
		reqBody.ResponseFormat = &struct {
			Type string `json:"type"`
		}{Type: "json_object"}
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(p.baseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: "openai", Code: ErrCodeUnreachable, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", &ProviderError{Provider: "openai", Code: ErrCodeAPIKey, Message: "API key rejected"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", &ProviderError{Provider: "openai", Code: ErrCodeUnreachable, Message: msg}
	}

	var decoded openAIChatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &ProviderError{Provider: "openai", Code: ErrCodeBadResponse, Message: "malformed response body", Err: err}
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", &ProviderError{Provider: "openai", Code: ErrCodeBadResponse, Message: decoded.Error.Message}
	}
	if len(decoded.Choices) == 0 {
		return "", &ProviderError{Provider: "openai", Code: ErrCodeBadResponse, Message: "empty response", Err: errors.New("no choices")}
	}
	return decoded.Choices[0].Message.Content, nil
}
