package tool

import (
	"context"
	"fmt"
	"os"
	"strings"

	"ada/internal/domain"
)

// EditTool replaces exact text in a file.
type EditTool struct {
	workDir string
}

func NewEditTool(workDir string) *EditTool {
	return &EditTool{workDir: workDir}
}

func (t *EditTool) Name() string              { return "edit" }
func (t *EditTool) Category() domain.Category { return domain.CategoryFileOps }
func (t *EditTool) Description() string {
	return "Replace text in a file by finding an exact string and replacing it. Only the first occurrence is replaced unless replace_all is true."
}
func (t *EditTool) Schema() domain.Schema {
	return domain.Schema{Params: []domain.Param{
		{Name: "file_path", Type: domain.TypeString, Description: "Path of the file to edit", Required: true},
		{Name: "old_string", Type: domain.TypeString, Description: "Exact text to find", Required: true},
		{Name: "new_string", Type: domain.TypeString, Description: "Replacement text", Required: true},
		{Name: "replace_all", Type: domain.TypeBoolean, Description: "Replace every occurrence (default: false)"},
	}}
}

func (t *EditTool) Execute(ctx context.Context, args map[string]any) (domain.Output, error) {
	path, err := resolvePath(t.workDir, ArgsString(args, "file_path"))
	if err != nil {
		return domain.Output{}, err
	}
	shown := displayPath(t.workDir, path)
	oldStr := ArgsString(args, "old_string")
	newStr := ArgsString(args, "new_string")
	if oldStr == "" {
		return domain.Output{}, fmt.Errorf("old_string must not be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.Output{}, fmt.Errorf("read %s: %w", shown, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Output{}, fmt.Errorf("read %s: %w", shown, err)
	}
	before := string(data)

	count := strings.Count(before, oldStr)
	if count == 0 {
		return domain.Output{}, fmt.Errorf("string not found in %s: %q", shown, oldStr)
	}

	n := 1
	if ArgsBool(args, "replace_all", false) {
		n = -1
	} else {
		count = 1
	}
	after := strings.Replace(before, oldStr, newStr, n)

	if err := os.WriteFile(path, []byte(after), info.Mode().Perm()); err != nil {
		return domain.Output{}, fmt.Errorf("write %s: %w", shown, err)
	}

	return domain.Output{
		Text:      fmt.Sprintf("Replaced %d occurrence(s) in %s", count, shown),
		Mutations: []domain.Mutation{{Path: shown, Before: before, After: after}},
	}, nil
}

var _ domain.Tool = (*EditTool)(nil)
