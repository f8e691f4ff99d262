package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

const ollamaRequestTimeout = 60 * time.Second

type ollamaCompleter struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama builds a Provider backed by a local Ollama server. No credential
// is required; availability is only known once a request is made.
func NewOllama(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "gemma3:4b"
	}
	return &Client{c: &ollamaCompleter{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: ollamaRequestTimeout},
	}}
}

func (p *ollamaCompleter) name() string { return "ollama" }

type ollamaGenerateReq struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type ollamaGenerateResp struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func (p *ollamaCompleter) complete(ctx context.Context, prompt string, jsonOutput bool) (string, error) {
	reqBody := ollamaGenerateReq{
		Model:  p.model,
		Prompt: prompt,
		Stream: false,
	}
	if jsonOutput {
		reqBody.Format = "json"
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/api/generate", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", p.wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", &ProviderError{
			Provider: "ollama",
			Code:     ErrCodeModelMissing,
			Message:  fmt.Sprintf("model %q not found. Please run 'ollama pull %s'", p.model, p.model),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ProviderError{
			Provider: "ollama",
			Code:     ErrCodeUnreachable,
			Message:  fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	var decoded ollamaGenerateResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &ProviderError{Provider: "ollama", Code: ErrCodeBadResponse, Message: "malformed response body", Err: err}
	}
	if decoded.Error != "" {
		return "", &ProviderError{Provider: "ollama", Code: ErrCodeBadResponse, Message: decoded.Error}
	}
	return decoded.Response, nil
}

func (p *ollamaCompleter) wrapTransportError(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &ProviderError{Provider: "ollama", Code: ErrCodeTimeout, Message: "request timed out", Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Provider: "ollama", Code: ErrCodeTimeout, Message: "request timed out", Err: err}
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return &ProviderError{
			Provider: "ollama",
			Code:     ErrCodeUnreachable,
			Message:  fmt.Sprintf("Ollama is not running. Is it reachable at %s?", p.baseURL),
			Err:      err,
		}
	}
	return &ProviderError{
		Provider: "ollama",
		Code:     ErrCodeUnreachable,
		Message:  fmt.Sprintf("could not connect to Ollama at %s", p.baseURL),
		Err:      err,
	}
}
