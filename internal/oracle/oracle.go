// Package oracle implements domain.Oracle on top of a text-completion
// backend (OpenAI, Anthropic, Ollama or Gemini).
package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ada/internal/domain"
)

// Completer sends one system+user prompt to a model and returns its text.
type Completer interface {
	Name() string
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// LLM adapts a Completer to the two questions the router asks.
type LLM struct {
	completer Completer
	timeout   time.Duration
	logger    *slog.Logger
}

type LLMConfig struct {
	Completer Completer
	Timeout   time.Duration // per call; 0 = rely on ctx
	Logger    *slog.Logger
}

var _ domain.Oracle = (*LLM)(nil)

func NewLLM(cfg LLMConfig) *LLM {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &LLM{completer: cfg.Completer, timeout: cfg.Timeout, logger: cfg.Logger}
}

// Name returns the backend name.
func (l *LLM) Name() string { return l.completer.Name() }

func (l *LLM) Classify(ctx context.Context, req domain.ClassifyRequest) (domain.ClassifyResponse, error) {
	text, err := l.complete(ctx, classifySystemPrompt(req.Categories), classifyUserPrompt(req))
	if err != nil {
		return domain.ClassifyResponse{}, err
	}
	category := parseCategory(text)
	l.logger.Debug("oracle classified", "provider", l.completer.Name(), "raw", text, "category", category)
	return domain.ClassifyResponse{Category: category}, nil
}

func (l *LLM) SelectTool(ctx context.Context, req domain.SelectRequest) (domain.SelectResponse, error) {
	system, err := selectSystemPrompt(req)
	if err != nil {
		return domain.SelectResponse{}, err
	}
	text, err := l.complete(ctx, system, req.Input)
	if err != nil {
		return domain.SelectResponse{}, err
	}
	if len(req.Tools) == 0 {
		return domain.SelectResponse{Reply: stripRolePrefix(text)}, nil
	}
	resp, err := parseSelection(text)
	if err != nil {
		l.logger.Warn("unusable tool selection", "provider", l.completer.Name(), "err", err)
		return domain.SelectResponse{}, err
	}
	l.logger.Debug("oracle selected tool", "provider", l.completer.Name(), "tool", resp.Tool)
	return resp, nil
}

func (l *LLM) complete(ctx context.Context, system, prompt string) (string, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	start := time.Now()
	text, err := l.completer.Complete(ctx, system, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", l.completer.Name(), err)
	}
	l.logger.Debug("oracle call", "provider", l.completer.Name(), "duration", time.Since(start))
	if text == "" {
		return "", fmt.Errorf("%s: %w", l.completer.Name(), ErrEmptyResponse)
	}
	return text, nil
}

// Unavailable fails every call with Err. Direct commands keep working
// when no backend could be built.
type Unavailable struct {
	Err error
}

var _ domain.Oracle = Unavailable{}

func (u Unavailable) Classify(context.Context, domain.ClassifyRequest) (domain.ClassifyResponse, error) {
	return domain.ClassifyResponse{}, u.Err
}

func (u Unavailable) SelectTool(context.Context, domain.SelectRequest) (domain.SelectResponse, error) {
	return domain.SelectResponse{}, u.Err
}
