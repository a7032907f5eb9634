package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config is the root configuration for Ada.
type Config struct {
	General   GeneralConfig             `json:"general"`
	Providers map[string]ProviderConfig `json:"providers"`
	Routing   RoutingConfig             `json:"routing"`
	Tools     ToolsConfig               `json:"tools"`
	Audit     AuditConfig               `json:"audit"`
}

type GeneralConfig struct {
	Workspace       string `json:"workspace"`         // empty = current directory
	LogLevel        string `json:"logLevel"`          // debug | info | warn | error
	LogFile         string `json:"logFile,omitempty"` // optional log file path
	DefaultProvider string `json:"defaultProvider"`
	ShowIntent      bool   `json:"showIntent"`
}

// ProviderConfig configures one oracle backend.
type ProviderConfig struct {
	Enabled        bool   `json:"enabled"`
	APIBase        string `json:"apiBase,omitempty"`
	APIKey         string `json:"apiKey,omitempty"`
	Model          string `json:"model,omitempty"`
	MaxTokens      int    `json:"maxTokens,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// RoutingConfig controls how inputs reach tools.
type RoutingConfig struct {
	DirectCommands bool     `json:"directCommands"`
	Whitelist      []string `json:"whitelist,omitempty"` // empty = built-in list
	AgentsFile     string   `json:"agentsFile,omitempty"`
	ContextLines   int      `json:"contextLines"`
}

type ToolsConfig struct {
	Shell ShellToolConfig `json:"shell"`
	Git   GitToolConfig   `json:"git"`
	Web   WebToolConfig   `json:"web"`
	Read  ReadToolConfig  `json:"read"`
	Tree  TreeToolConfig  `json:"tree"`
}

type ShellToolConfig struct {
	Timeout        int `json:"timeout"`
	MaxOutputBytes int `json:"maxOutputBytes"`
}

type GitToolConfig struct {
	Timeout int `json:"timeout"`
}

type WebToolConfig struct {
	Timeout    int    `json:"timeout"`
	MaxBytes   int    `json:"maxBytes"`
	Render     bool   `json:"render"` // enable headless Chrome rendering
	ChromePath string `json:"chromePath,omitempty"`
	ProfileDir string `json:"profileDir,omitempty"`
}

type ReadToolConfig struct {
	MaxBytes int `json:"maxBytes"`
}

type TreeToolConfig struct {
	MaxDepth int `json:"maxDepth"`
}

// AuditConfig configures the SQLite turn log.
type AuditConfig struct {
	Enabled       bool   `json:"enabled"`
	DBPath        string `json:"dbPath"`
	RetentionDays int    `json:"retentionDays"`
}

// DefaultConfigDir returns the default config directory (~/.ada).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ada"
	}
	return filepath.Join(home, ".ada")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}
	cfg.expandPaths()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Defaults().
// A file that exists but is broken is still an error.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Defaults()
		cfg.expandPaths()
		return cfg, nil
	}
	return cfg, err
}

func (c *Config) expandPaths() {
	c.General.Workspace = ExpandPath(c.General.Workspace)
	c.General.LogFile = ExpandPath(c.General.LogFile)
	c.Routing.AgentsFile = ExpandPath(c.Routing.AgentsFile)
	c.Audit.DBPath = ExpandPath(c.Audit.DBPath)
	c.Tools.Web.ProfileDir = ExpandPath(c.Tools.Web.ProfileDir)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // Keep original if no env var and no default
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	// API keys may be stored inline.
	return os.WriteFile(path, data, 0o600)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	switch strings.ToLower(cfg.General.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	if cfg.General.DefaultProvider != "" {
		if _, ok := cfg.Providers[cfg.General.DefaultProvider]; !ok {
			errs = append(errs, fmt.Sprintf("general.defaultProvider references unknown provider: %s", cfg.General.DefaultProvider))
		}
	}
	for name, pc := range cfg.Providers {
		if pc.TimeoutSeconds < 0 {
			errs = append(errs, fmt.Sprintf("providers.%s.timeoutSeconds must be >= 0", name))
		}
		if pc.MaxTokens < 0 {
			errs = append(errs, fmt.Sprintf("providers.%s.maxTokens must be >= 0", name))
		}
	}

	if cfg.Routing.ContextLines < 0 || cfg.Routing.ContextLines > 20 {
		errs = append(errs, "routing.contextLines must be between 0 and 20")
	}

	if cfg.Tools.Shell.Timeout < 1 {
		errs = append(errs, "tools.shell.timeout must be >= 1")
	}
	if cfg.Tools.Git.Timeout < 1 {
		errs = append(errs, "tools.git.timeout must be >= 1")
	}
	if cfg.Tools.Web.Timeout < 1 {
		errs = append(errs, "tools.web.timeout must be >= 1")
	}
	if cfg.Tools.Tree.MaxDepth < 1 {
		errs = append(errs, "tools.tree.maxDepth must be >= 1")
	}

	if cfg.Audit.Enabled && cfg.Audit.DBPath == "" {
		errs = append(errs, "audit.dbPath is required when audit is enabled")
	}
	if cfg.Audit.RetentionDays < 1 {
		errs = append(errs, "audit.retentionDays must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
