package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"ada/internal/config"
)

// Constructor creates a backend from its config entry.
type Constructor func(ctx context.Context, pc config.ProviderConfig, logger *slog.Logger) (Completer, error)

// Factory creates and caches oracle backends from config.
type Factory struct {
	cfg          *config.Config
	logger       *slog.Logger
	constructors map[string]Constructor
	cache        map[string]Completer
	mu           sync.RWMutex
}

// NewFactory creates a factory with the built-in backends registered.
func NewFactory(cfg *config.Config, logger *slog.Logger) *Factory {
	f := &Factory{
		cfg:          cfg,
		logger:       logger,
		constructors: make(map[string]Constructor),
		cache:        make(map[string]Completer),
	}
	f.registerDefaults()
	return f
}

// RegisterConstructor adds (or replaces) a backend constructor by name.
func (f *Factory) RegisterConstructor(name string, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[name] = ctor
}

func (f *Factory) registerDefaults() {
	f.constructors["openai"] = func(_ context.Context, pc config.ProviderConfig, logger *slog.Logger) (Completer, error) {
		return NewOpenAI(OpenAIConfig{
			APIKey: pc.APIKey, APIBase: pc.APIBase, Model: pc.Model, MaxTokens: pc.MaxTokens,
			HTTPClient: newHTTPClient(timeoutOf(pc)), Logger: logger,
		}), nil
	}
	f.constructors["anthropic"] = func(_ context.Context, pc config.ProviderConfig, logger *slog.Logger) (Completer, error) {
		return NewAnthropic(AnthropicConfig{
			APIKey: pc.APIKey, APIBase: pc.APIBase, Model: pc.Model, MaxTokens: pc.MaxTokens,
			HTTPClient: newHTTPClient(timeoutOf(pc)), Logger: logger,
		}), nil
	}
	f.constructors["ollama"] = func(_ context.Context, pc config.ProviderConfig, logger *slog.Logger) (Completer, error) {
		return NewOllama(OllamaConfig{
			APIBase: pc.APIBase, Model: pc.Model,
			HTTPClient: newHTTPClient(timeoutOf(pc)), Logger: logger,
		})
	}
	f.constructors["gemini"] = func(ctx context.Context, pc config.ProviderConfig, logger *slog.Logger) (Completer, error) {
		return NewGemini(ctx, GeminiConfig{
			APIKey: pc.APIKey, APIBase: pc.APIBase, Model: pc.Model, MaxTokens: pc.MaxTokens,
			HTTPClient: newHTTPClient(timeoutOf(pc)), Logger: logger,
		})
	}
}

// Get returns the backend with the given name, or the default if name is empty.
// Created backends are cached so the same instance is reused across calls.
func (f *Factory) Get(ctx context.Context, name string) (Completer, error) {
	if name == "" {
		name = f.cfg.General.DefaultProvider
	}

	f.mu.RLock()
	if cached, ok := f.cache[name]; ok {
		f.mu.RUnlock()
		return cached, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if cached, ok := f.cache[name]; ok {
		return cached, nil
	}

	pc, ok := f.cfg.Providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
	if !pc.Enabled {
		return nil, fmt.Errorf("provider %s is disabled", name)
	}

	ctor, found := f.constructors[name]
	if !found {
		if pc.APIBase == "" {
			return nil, fmt.Errorf("provider %s: no constructor registered and no API base configured", name)
		}
		// Unknown providers are treated as OpenAI-compatible.
		ctor = f.constructors["openai"]
	}

	c, err := ctor(ctx, pc, f.logger.With("provider", name))
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", name, err)
	}
	f.cache[name] = c
	return c, nil
}

// Oracle wraps the named backend (default if empty) as a domain oracle.
func (f *Factory) Oracle(ctx context.Context, name string) (*LLM, error) {
	if name == "" {
		name = f.cfg.General.DefaultProvider
	}
	c, err := f.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return NewLLM(LLMConfig{
		Completer: c,
		Timeout:   timeoutOf(f.cfg.Providers[name]),
		Logger:    f.logger,
	}), nil
}

// Enabled lists the enabled provider names, sorted.
func (f *Factory) Enabled() []string {
	var names []string
	for name, pc := range f.cfg.Providers {
		if pc.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func timeoutOf(pc config.ProviderConfig) time.Duration {
	return time.Duration(pc.TimeoutSeconds) * time.Second
}
