package tool

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/shlex"

	"ada/internal/domain"
)

const defaultGitTimeout = 30

var gitOperation = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// GitTool runs a git subcommand in the working directory.
type GitTool struct {
	workDir        string
	timeoutSeconds int
	maxOutputBytes int
}

func NewGitTool(workDir string, timeoutSeconds, maxOutputBytes int) *GitTool {
	if timeoutSeconds <= 0 {
		timeoutSeconds = defaultGitTimeout
	}
	if maxOutputBytes <= 0 {
		maxOutputBytes = defaultMaxOutputBytes
	}
	return &GitTool{workDir: workDir, timeoutSeconds: timeoutSeconds, maxOutputBytes: maxOutputBytes}
}

func (t *GitTool) Name() string              { return "git" }
func (t *GitTool) Category() domain.Category { return domain.CategoryGit }
func (t *GitTool) Description() string {
	return "Run a git operation such as status, diff, log, add, commit, branch or checkout."
}
func (t *GitTool) Schema() domain.Schema {
	return domain.Schema{Params: []domain.Param{
		{Name: "operation", Type: domain.TypeString, Description: "Git subcommand (e.g. status, diff, log)", Required: true},
		{Name: "args", Type: domain.TypeString, Description: "Additional arguments, shell-quoted (e.g. '-n 5 --oneline')"},
	}}
}

func (t *GitTool) Execute(ctx context.Context, args map[string]any) (domain.Output, error) {
	op := ArgsString(args, "operation")
	if !gitOperation.MatchString(op) {
		return domain.Output{}, fmt.Errorf("invalid git operation: %q", op)
	}
	extra, err := shlex.Split(ArgsString(args, "args"))
	if err != nil {
		return domain.Output{}, fmt.Errorf("parse git args: %w", err)
	}

	dir := t.workDir
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	argv := append([]string{"-c", "color.ui=never", op}, extra...)
	out, err := runCommand(ctx, dir, time.Duration(t.timeoutSeconds)*time.Second, t.maxOutputBytes, "git", argv...)
	if err != nil {
		return domain.Output{Text: out}, fmt.Errorf("git %s: %w", op, err)
	}
	return domain.Output{Text: out}, nil
}

var _ domain.Tool = (*GitTool)(nil)
