package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"google.golang.org/genai"
)

const (
	geminiDefaultModel = "gemini-2.5-flash"
)

// Gemini completes prompts with the Gemini API.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int
	logger    *slog.Logger
}

type GeminiConfig struct {
	APIKey     string // falls back to GEMINI_API_KEY
	APIBase    string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
	Logger     *slog.Logger
}

var _ Completer = (*Gemini)(nil)

func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = geminiDefaultModel
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.APIBase != "" {
		cc.HTTPOptions.BaseURL = cfg.APIBase
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model, maxTokens: cfg.MaxTokens, logger: cfg.Logger}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Complete(ctx context.Context, system, prompt string) (string, error) {
	gc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		MaxOutputTokens:   int32(g.maxTokens),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), gc)
	if err != nil {
		return "", err
	}
	if resp.UsageMetadata != nil {
		g.logger.Debug("gemini usage", "model", g.model, "prompt_tokens", resp.UsageMetadata.PromptTokenCount, "output_tokens", resp.UsageMetadata.CandidatesTokenCount)
	}
	return resp.Text(), nil
}
