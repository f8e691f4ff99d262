package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOllama_CompleteOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaGenerateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Format != "json" {
			t.Fatalf("expected json format request, got %q", req.Format)
		}
		_ = json.NewEncoder(w).Encode(ollamaGenerateResp{Response: `{"ok":true}`})
	}))
	defer srv.Close()

	p := &ollamaCompleter{baseURL: srv.URL, model: "gemma3:4b", client: srv.Client()}
	out, err := p.complete(context.Background(), "prompt", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"ok":true}` {
		t.Fatalf("unexpected response: %q", out)
	}
}

func TestOllama_ModelMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p := &ollamaCompleter{baseURL: srv.URL, model: "missing:1b", client: srv.Client()}
	_, err := p.complete(context.Background(), "prompt", false)

	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Code != ErrCodeModelMissing {
		t.Fatalf("expected model_missing, got %v", err)
	}
}

func TestOllama_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	p := &ollamaCompleter{
		baseURL: srv.URL,
		model:   "gemma3:4b",
		client:  &http.Client{Timeout: 50 * time.Millisecond},
	}
	_, err := p.complete(context.Background(), "prompt", false)

	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Code != ErrCodeTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestOllama_Unreachable(t *testing.T) {
	// grab a port nothing listens on
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()

	p := &ollamaCompleter{
		baseURL: "http://" + addr,
		model:   "gemma3:4b",
		client:  &http.Client{Timeout: time.Second},
	}
	_, err = p.complete(context.Background(), "prompt", false)

	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Code != ErrCodeUnreachable {
		t.Fatalf("expected unreachable, got %v", err)
	}
}

func TestNewGemini_EmptyKeyFailsFast(t *testing.T) {
	_, err := NewGemini("", "gemini-2.0-flash")
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Code != ErrCodeAPIKey {
		t.Fatalf("expected api_key error, got %v", err)
	}
}

func TestNewOpenAI_EmptyKeyFailsFast(t *testing.T) {
	_, err := NewOpenAI("", "", "gpt-4o-mini")
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Code != ErrCodeAPIKey {
		t.Fatalf("expected api_key error, got %v", err)
	}
}
