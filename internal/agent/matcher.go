package agent

import (
	"log/slog"
	"os/exec"
	"strings"

	"github.com/google/shlex"

	"ada/internal/domain"
)

// DefaultWhitelist is the set of commands run directly without asking the oracle.
var DefaultWhitelist = []string{
	"ls", "cat", "pwd", "echo", "date", "whoami", "which", "head", "tail",
	"git", "cargo", "npm", "yarn", "pnpm", "python", "python3", "node",
	"docker", "kubectl", "make", "grep", "find", "tree", "du", "df", "ps",
	"top", "uname", "hostname", "curl", "wget", "ping",
}

// questionWords mark natural-language input even when the first word is a command name.
var questionWords = map[string]bool{
	"what": true, "how": true, "why": true, "when": true, "where": true,
	"who": true, "which": true, "can": true, "could": true, "would": true,
	"should": true, "is": true, "are": true, "do": true, "does": true,
}

// Matcher recognises whitelisted shell commands typed verbatim.
type Matcher struct {
	whitelist map[string]bool
	lookPath  func(string) (string, error)
	enabled   bool
	logger    *slog.Logger
}

// MatcherConfig configures a Matcher. A nil Whitelist uses DefaultWhitelist;
// a nil LookPath uses exec.LookPath.
type MatcherConfig struct {
	Whitelist []string
	LookPath  func(string) (string, error)
	Disabled  bool
	Logger    *slog.Logger
}

func NewMatcher(cfg MatcherConfig) *Matcher {
	wl := cfg.Whitelist
	if wl == nil {
		wl = DefaultWhitelist
	}
	set := make(map[string]bool, len(wl))
	for _, c := range wl {
		set[c] = true
	}
	lookPath := cfg.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{whitelist: set, lookPath: lookPath, enabled: !cfg.Disabled, logger: logger}
}

// Match decides whether input is a direct command. It has no side effects.
func (m *Matcher) Match(input string) (domain.ToolCall, bool) {
	input = strings.TrimSpace(input)
	if !m.enabled || input == "" {
		return domain.ToolCall{}, false
	}
	fields := strings.Fields(input)
	first := fields[0]

	if questionWords[strings.ToLower(first)] {
		return domain.ToolCall{}, false
	}
	if !m.whitelist[first] {
		return domain.ToolCall{}, false
	}
	if _, err := m.lookPath(first); err != nil {
		m.logger.Debug("direct command not on PATH", "command", first)
		return domain.ToolCall{}, false
	}

	if first == "git" && len(fields) > 1 {
		if call, ok := gitCall(input); ok {
			return call, true
		}
	}
	return domain.ToolCall{
		Tool: "execute",
		Args: map[string]any{"command": input},
	}, true
}

// gitCall maps "git <op> <args...>" onto the git tool.
func gitCall(input string) (domain.ToolCall, bool) {
	argv, err := shlex.Split(input)
	if err != nil || len(argv) < 2 {
		return domain.ToolCall{}, false
	}
	op := argv[1]
	after := strings.TrimSpace(strings.TrimPrefix(input, "git"))
	// Global flags (git -C dir ...) and quoted subcommands stay on execute.
	if strings.HasPrefix(op, "-") || !strings.HasPrefix(after, op) {
		return domain.ToolCall{}, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(after, op))
	return domain.ToolCall{
		Tool: "git",
		Args: map[string]any{"operation": op, "args": rest},
	}, true
}
