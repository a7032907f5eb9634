package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

const (
	ollamaDefaultBase  = "http://localhost:11434"
	ollamaDefaultModel = "llama3.1:8b"
)

// Ollama completes prompts against a local or remote Ollama server.
type Ollama struct {
	client *ollama.Client
	model  string
	logger *slog.Logger
}

type OllamaConfig struct {
	APIBase    string // falls back to OLLAMA_HOST
	Model      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

var _ Completer = (*Ollama)(nil)

func NewOllama(cfg OllamaConfig) (*Ollama, error) {
	if cfg.APIBase == "" {
		cfg.APIBase = os.Getenv("OLLAMA_HOST")
	}
	if cfg.APIBase == "" {
		cfg.APIBase = ollamaDefaultBase
	}
	if cfg.Model == "" {
		cfg.Model = ollamaDefaultModel
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = newHTTPClient(0)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	u, err := url.Parse(cfg.APIBase)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base %q: %w", cfg.APIBase, err)
	}
	return &Ollama{
		client: ollama.NewClient(u, cfg.HTTPClient),
		model:  cfg.Model,
		logger: cfg.Logger,
	}, nil
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Complete(ctx context.Context, system, prompt string) (string, error) {
	var text strings.Builder
	req := &ollama.GenerateRequest{
		Model:  o.model,
		System: system,
		Prompt: prompt,
	}
	err := o.client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		text.WriteString(gr.Response)
		if gr.Done {
			o.logger.Debug("ollama done", "model", o.model, "reason", gr.DoneReason)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return text.String(), nil
}
