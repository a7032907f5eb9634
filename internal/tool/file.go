package tool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ada/internal/domain"
)

const defaultReadMaxBytes = 1 << 20 // 1MB

// resolvePath resolves a path relative to the working directory.
func resolvePath(workDir, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if !filepath.IsAbs(path) && workDir != "" {
		path = filepath.Join(workDir, path)
	}
	resolved, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	return resolved, nil
}

// displayPath shows path relative to workDir when it lies inside it.
func displayPath(workDir, path string) string {
	if workDir == "" {
		return path
	}
	wd, err := filepath.Abs(workDir)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// readIfExists returns the file content, or "" if the file does not exist.
func readIfExists(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// --- ReadFileTool ---

// ReadFileTool returns file contents with line numbers.
type ReadFileTool struct {
	workDir  string
	maxBytes int64
}

func NewReadFileTool(workDir string, maxBytes int64) *ReadFileTool {
	if maxBytes <= 0 {
		maxBytes = defaultReadMaxBytes
	}
	return &ReadFileTool{workDir: workDir, maxBytes: maxBytes}
}

func (t *ReadFileTool) Name() string              { return "read_file" }
func (t *ReadFileTool) Category() domain.Category { return domain.CategoryFileOps }
func (t *ReadFileTool) Description() string {
	return "Read the contents of a file. Returns the content with line numbers."
}
func (t *ReadFileTool) Schema() domain.Schema {
	return domain.Schema{Params: []domain.Param{
		{Name: "file_path", Type: domain.TypeString, Description: "Path of the file to read", Required: true},
	}}
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any) (domain.Output, error) {
	path, err := resolvePath(t.workDir, ArgsString(args, "file_path"))
	if err != nil {
		return domain.Output{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.Output{}, fmt.Errorf("read %s: %w", displayPath(t.workDir, path), err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, t.maxBytes+1))
	if err != nil {
		return domain.Output{}, fmt.Errorf("read %s: %w", displayPath(t.workDir, path), err)
	}
	truncated := int64(len(data)) > t.maxBytes
	if truncated {
		data = data[:t.maxBytes]
	}

	var b strings.Builder
	for i, line := range strings.Split(strings.TrimSuffix(string(data), "\n"), "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%6d→%s", i+1, line)
	}
	if truncated {
		fmt.Fprintf(&b, "\n... (truncated at %d bytes)", t.maxBytes)
	}
	return domain.Output{Text: b.String()}, nil
}

// --- ListDirectoryTool ---

// ListDirectoryTool lists the entries of one directory.
type ListDirectoryTool struct {
	workDir string
}

func NewListDirectoryTool(workDir string) *ListDirectoryTool {
	return &ListDirectoryTool{workDir: workDir}
}

func (t *ListDirectoryTool) Name() string              { return "list_directory" }
func (t *ListDirectoryTool) Category() domain.Category { return domain.CategoryFileOps }
func (t *ListDirectoryTool) Description() string {
	return "List files and folders in a directory."
}
func (t *ListDirectoryTool) Schema() domain.Schema {
	return domain.Schema{Params: []domain.Param{
		{Name: "path", Type: domain.TypeString, Description: "Directory to list (default: current directory)"},
		{Name: "show_hidden", Type: domain.TypeBoolean, Description: "Include hidden entries (default: false)"},
	}}
}

func (t *ListDirectoryTool) Execute(ctx context.Context, args map[string]any) (domain.Output, error) {
	path := ArgsString(args, "path")
	if path == "" {
		path = "."
	}
	resolved, err := resolvePath(t.workDir, path)
	if err != nil {
		return domain.Output{}, err
	}
	showHidden := ArgsBool(args, "show_hidden", false)

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return domain.Output{}, fmt.Errorf("read directory %s: %w", path, err)
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if !showHidden && strings.HasPrefix(e.Name(), ".") {
			continue
		}
		kind := "FILE"
		switch {
		case e.Type()&fs.ModeSymlink != 0:
			kind = "LINK"
		case e.IsDir():
			kind = "DIR "
		}
		lines = append(lines, kind+" "+e.Name())
	}
	sort.Strings(lines)
	if len(lines) == 0 {
		return domain.Output{Text: "Empty directory"}, nil
	}
	return domain.Output{Text: strings.Join(lines, "\n")}, nil
}

// --- WriteFilesTool ---

// WriteFilesTool writes one or more files, creating parent directories.
type WriteFilesTool struct {
	workDir string
}

func NewWriteFilesTool(workDir string) *WriteFilesTool {
	return &WriteFilesTool{workDir: workDir}
}

func (t *WriteFilesTool) Name() string              { return "write_files" }
func (t *WriteFilesTool) Category() domain.Category { return domain.CategoryFileOps }
func (t *WriteFilesTool) Description() string {
	return "Write content to one or more files at once. Creates files and parent directories as needed; overwrites existing files."
}
func (t *WriteFilesTool) Schema() domain.Schema {
	return domain.Schema{Params: []domain.Param{
		{
			Name:        "files",
			Type:        domain.TypeArray,
			Description: "Files to write",
			Required:    true,
			Items: &domain.Schema{Params: []domain.Param{
				{Name: "path", Type: domain.TypeString, Description: "File path", Required: true},
				{Name: "content", Type: domain.TypeString, Description: "File content", Required: true},
			}},
		},
	}}
}

func (t *WriteFilesTool) Execute(ctx context.Context, args map[string]any) (domain.Output, error) {
	files := ArgsObjects(args, "files")
	if len(files) == 0 {
		return domain.Output{}, fmt.Errorf("no files to write")
	}

	var out domain.Output
	var written []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		path, err := resolvePath(t.workDir, ArgsString(f, "path"))
		if err != nil {
			return out, err
		}
		content := ArgsString(f, "content")
		before, err := readIfExists(path)
		if err != nil {
			return out, fmt.Errorf("read %s: %w", displayPath(t.workDir, path), err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return out, fmt.Errorf("create directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return out, fmt.Errorf("write %s: %w", displayPath(t.workDir, path), err)
		}
		shown := displayPath(t.workDir, path)
		written = append(written, shown)
		out.Mutations = append(out.Mutations, domain.Mutation{Path: shown, Before: before, After: content})
	}
	out.Text = fmt.Sprintf("Wrote %d file(s): %s", len(written), strings.Join(written, ", "))
	return out, nil
}

// --- FileOpsTool ---

// FileOpsTool deletes, moves and copies files.
type FileOpsTool struct {
	workDir string
}

func NewFileOpsTool(workDir string) *FileOpsTool {
	return &FileOpsTool{workDir: workDir}
}

func (t *FileOpsTool) Name() string              { return "file_ops" }
func (t *FileOpsTool) Category() domain.Category { return domain.CategoryFileOps }
func (t *FileOpsTool) Description() string {
	return "Perform file operations: delete, move (rename) or copy a file."
}
func (t *FileOpsTool) Schema() domain.Schema {
	return domain.Schema{Params: []domain.Param{
		{Name: "operation", Type: domain.TypeString, Description: "Operation to perform", Required: true, Enum: []string{"delete", "move", "copy"}},
		{Name: "source", Type: domain.TypeString, Description: "Source file or directory path", Required: true},
		{Name: "destination", Type: domain.TypeString, Description: "Destination path (required for move and copy)"},
	}}
}

func (t *FileOpsTool) Execute(ctx context.Context, args map[string]any) (domain.Output, error) {
	src, err := resolvePath(t.workDir, ArgsString(args, "source"))
	if err != nil {
		return domain.Output{}, err
	}
	srcShown := displayPath(t.workDir, src)

	op := ArgsString(args, "operation")
	if op == "delete" {
		info, err := os.Stat(src)
		if err != nil {
			return domain.Output{}, fmt.Errorf("access %s: %w", srcShown, err)
		}
		kind := "file"
		if info.IsDir() {
			kind = "directory"
			err = os.RemoveAll(src)
		} else {
			err = os.Remove(src)
		}
		if err != nil {
			return domain.Output{}, fmt.Errorf("delete %s: %w", srcShown, err)
		}
		return domain.Output{Text: fmt.Sprintf("Deleted %s %s", kind, srcShown)}, nil
	}

	rawDst := ArgsString(args, "destination")
	if rawDst == "" {
		return domain.Output{}, fmt.Errorf("destination required for %s operation", op)
	}
	dst, err := resolvePath(t.workDir, rawDst)
	if err != nil {
		return domain.Output{}, err
	}
	dstShown := displayPath(t.workDir, dst)

	switch op {
	case "move":
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return domain.Output{}, fmt.Errorf("create directory: %w", err)
		}
		if err := os.Rename(src, dst); err != nil {
			return domain.Output{}, fmt.Errorf("move %s: %w", srcShown, err)
		}
		return domain.Output{Text: fmt.Sprintf("Moved %s to %s", srcShown, dstShown)}, nil

	case "copy":
		info, err := os.Stat(src)
		if err != nil {
			return domain.Output{}, fmt.Errorf("access %s: %w", srcShown, err)
		}
		if info.IsDir() {
			return domain.Output{}, fmt.Errorf("copying directories is not supported")
		}
		data, err := os.ReadFile(src)
		if err != nil {
			return domain.Output{}, fmt.Errorf("read %s: %w", srcShown, err)
		}
		before, err := readIfExists(dst)
		if err != nil {
			return domain.Output{}, fmt.Errorf("read %s: %w", dstShown, err)
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return domain.Output{}, fmt.Errorf("create directory: %w", err)
		}
		if err := os.WriteFile(dst, data, info.Mode().Perm()); err != nil {
			return domain.Output{}, fmt.Errorf("copy to %s: %w", dstShown, err)
		}
		out := domain.Output{Text: fmt.Sprintf("Copied %s to %s", srcShown, dstShown)}
		if before != "" {
			out.Mutations = []domain.Mutation{{Path: dstShown, Before: before, After: string(data)}}
		}
		return out, nil
	}
	return domain.Output{}, fmt.Errorf("unknown operation: %s", op)
}

// Compile-time interface checks.
var (
	_ domain.Tool = (*ReadFileTool)(nil)
	_ domain.Tool = (*ListDirectoryTool)(nil)
	_ domain.Tool = (*WriteFilesTool)(nil)
	_ domain.Tool = (*FileOpsTool)(nil)
)
