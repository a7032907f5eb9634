package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"ada/internal/domain"
)

const (
	defaultShellTimeout   = 30
	defaultMaxOutputBytes = 65536
)

// ShellTool runs a command line through sh -c.
type ShellTool struct {
	workingDir     string
	timeoutSeconds int
	maxOutputBytes int
}

type ShellConfig struct {
	WorkingDir     string
	TimeoutSeconds int
	MaxOutputBytes int
}

func NewShellTool(cfg ShellConfig) *ShellTool {
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = defaultShellTimeout
	}
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = defaultMaxOutputBytes
	}
	return &ShellTool{
		workingDir:     cfg.WorkingDir,
		timeoutSeconds: cfg.TimeoutSeconds,
		maxOutputBytes: cfg.MaxOutputBytes,
	}
}

func (s *ShellTool) Name() string              { return "execute" }
func (s *ShellTool) Category() domain.Category { return domain.CategoryShell }

func (s *ShellTool) Description() string {
	return "Execute a shell command. Use for running terminal commands, scripts, builds or any CLI tool. Returns stdout and stderr."
}

func (s *ShellTool) Schema() domain.Schema {
	return domain.Schema{Params: []domain.Param{
		{Name: "command", Type: domain.TypeString, Description: "The shell command to execute (e.g. 'ls -la', 'cargo build')", Required: true},
		{Name: "working_dir", Type: domain.TypeString, Description: "Directory to run in (default: current directory)"},
	}}
}

func (s *ShellTool) Execute(ctx context.Context, args map[string]any) (domain.Output, error) {
	command := strings.TrimSpace(ArgsString(args, "command"))
	if command == "" {
		return domain.Output{}, fmt.Errorf("missing argument: command")
	}

	dir := s.workingDir
	if wd := ArgsString(args, "working_dir"); wd != "" {
		resolved, err := resolvePath(s.workingDir, wd)
		if err != nil {
			return domain.Output{}, err
		}
		dir = resolved
	}
	if dir == "" {
		dir = "."
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}

	out, err := runCommand(ctx, absDir, time.Duration(s.timeoutSeconds)*time.Second, s.maxOutputBytes, "sh", "-c", command)
	return domain.Output{Text: out}, err
}

// runCommand runs name with args and returns stdout followed by a STDERR
// section when stderr is non-empty. A non-zero exit is an error, and the
// output is still returned.
func runCommand(ctx context.Context, dir string, timeout time.Duration, maxBytes int, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := stdout.String()
	if stderr.Len() > 0 {
		if result != "" && !strings.HasSuffix(result, "\n") {
			result += "\n"
		}
		result += "STDERR:\n" + stderr.String()
	}
	if maxBytes > 0 && len(result) > maxBytes {
		result = cutUTF8(result, maxBytes) + "\n... (output truncated)"
	}
	result = strings.TrimRight(result, "\n")

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return result, fmt.Errorf("command timed out after %s", timeout)
		}
		if ctx.Err() != nil {
			return result, fmt.Errorf("command cancelled")
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return result, fmt.Errorf("exit status %d", exitErr.ExitCode())
		}
		return result, fmt.Errorf("run %s: %w", name, err)
	}
	if result == "" {
		result = "(no output)"
	}
	return result, nil
}

var _ domain.Tool = (*ShellTool)(nil)

// cutUTF8 returns at most n bytes of s without splitting a rune.
func cutUTF8(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
