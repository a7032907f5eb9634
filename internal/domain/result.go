package domain

import (
	"time"

	"ada/internal/diff"
)

// ToolCall names a tool and the argument values for one invocation.
type ToolCall struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"arguments"`
}

// ToolResult is the normalized outcome of one ToolCall.
type ToolResult struct {
	Tool     string
	Success  bool
	Output   string
	Diffs    []*diff.FileDiff
	Err      error
	Duration time.Duration
}

// HasDiff reports whether the result carries at least one file diff.
func (r ToolResult) HasDiff() bool {
	return len(r.Diffs) > 0
}

// ErrorMessage returns the failure text, or "" for successful results.
func (r ToolResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
