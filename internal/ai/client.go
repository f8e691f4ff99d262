package ai

import (
	"context"
	"strings"
)

// completer is the low-level single-shot completion call each backend implements.
type completer interface {
	name() string
	complete(ctx context.Context, prompt string, jsonOutput bool) (string, error)
}

// Client implements Provider on top of a completer. All prompt text and the
// JSON-parse-with-fallback policy live here so backends stay transport-only.
type Client struct {
	c completer
}

func (cl *Client) Name() string { return cl.c.name() }

func (cl *Client) GenerateOpeningQuestion(ctx context.Context, systemPrompt string) (string, error) {
	out, err := cl.c.complete(ctx, OpeningPrompt(systemPrompt), false)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		out = "Could you tell me about your project?"
	}
	return out, nil
}

func (cl *Client) AnalyzeAnswer(ctx context.Context, history []Message, answer, projectContext string) (*Analysis, error) {
	raw, err := cl.c.complete(ctx, analysisPrompt(history, answer, projectContext), true)
	if err != nil {
		return nil, err
	}
	return parseAnalysis(raw), nil
}

func (cl *Client) GenerateSummary(ctx context.Context, history []Message) (*SummaryData, error) {
	raw, err := cl.c.complete(ctx, summaryPrompt(history), true)
	if err != nil {
		return nil, err
	}
	return parseSummary(raw), nil
}
