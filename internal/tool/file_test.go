package tool

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ada/internal/domain"
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestReadFile_LineNumbers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "one\ntwo\n")

	out, err := NewReadFileTool(dir, 0).Execute(context.Background(), map[string]any{"file_path": "a.txt"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := "     1→one\n     2→two"
	if out.Text != want {
		t.Fatalf("got %q, want %q", out.Text, want)
	}
	if len(out.Mutations) != 0 {
		t.Fatal("read_file must not report mutations")
	}
}

func TestReadFile_Truncates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.txt", strings.Repeat("x", 100))

	out, err := NewReadFileTool(dir, 10).Execute(context.Background(), map[string]any{"file_path": "big.txt"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.Text, "truncated at 10 bytes") {
		t.Fatalf("expected truncation notice, got %q", out.Text)
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := NewReadFileTool(t.TempDir(), 0).Execute(context.Background(), map[string]any{"file_path": "nope.txt"})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestListDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/main.rs", "fn main() {}")
	writeFile(t, dir, "Cargo.toml", "")
	writeFile(t, dir, ".env", "")

	tl := NewListDirectoryTool(dir)
	out, err := tl.Execute(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := "DIR  src\nFILE Cargo.toml"
	if out.Text != want {
		t.Fatalf("got %q, want %q", out.Text, want)
	}

	out, err = tl.Execute(context.Background(), map[string]any{"show_hidden": true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.Text, "FILE .env") {
		t.Fatalf("expected hidden file, got %q", out.Text)
	}
}

func TestListDirectory_Empty(t *testing.T) {
	out, err := NewListDirectoryTool(t.TempDir()).Execute(context.Background(), map[string]any{"path": "."})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Text != "Empty directory" {
		t.Fatalf("got %q", out.Text)
	}
}

func TestWriteFiles_ReportsMutations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "old.txt", "before\n")

	out, err := NewWriteFilesTool(dir).Execute(context.Background(), map[string]any{
		"files": []any{
			map[string]any{"path": "old.txt", "content": "after\n"},
			map[string]any{"path": "nested/new.txt", "content": "fresh\n"},
		},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []domain.Mutation{
		{Path: "old.txt", Before: "before\n", After: "after\n"},
		{Path: filepath.Join("nested", "new.txt"), Before: "", After: "fresh\n"},
	}
	if diff := cmp.Diff(want, out.Mutations); diff != "" {
		t.Fatalf("mutations mismatch (-want +got):\n%s", diff)
	}
	if got := readFile(t, filepath.Join(dir, "nested", "new.txt")); got != "fresh\n" {
		t.Fatalf("new file content %q", got)
	}
}

func TestEdit_ReplacesFirst(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Cargo.toml", "[package]\nversion = \"0.1.0\"\n# version = \"0.1.0\"\n")

	out, err := NewEditTool(dir).Execute(context.Background(), map[string]any{
		"file_path":  "Cargo.toml",
		"old_string": `version = "0.1.0"`,
		"new_string": `version = "0.2.0"`,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := "[package]\nversion = \"0.2.0\"\n# version = \"0.1.0\"\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("content %q, want %q", got, want)
	}
	if len(out.Mutations) != 1 || out.Mutations[0].After != want {
		t.Fatalf("unexpected mutations: %+v", out.Mutations)
	}
}

func TestEdit_ReplaceAll(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "foo foo foo")

	out, err := NewEditTool(dir).Execute(context.Background(), map[string]any{
		"file_path": "a.txt", "old_string": "foo", "new_string": "bar", "replace_all": true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := readFile(t, path); got != "bar bar bar" {
		t.Fatalf("content %q", got)
	}
	if !strings.Contains(out.Text, "3 occurrence") {
		t.Fatalf("text %q", out.Text)
	}
}

func TestEdit_NotFoundLeavesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "hello")

	_, err := NewEditTool(dir).Execute(context.Background(), map[string]any{
		"file_path": "a.txt", "old_string": "absent", "new_string": "x",
	})
	if err == nil || !strings.Contains(err.Error(), "string not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if got := readFile(t, path); got != "hello" {
		t.Fatalf("file changed: %q", got)
	}
}

func TestFileOps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "A")
	writeFile(t, dir, "b.txt", "B")
	tl := NewFileOpsTool(dir)
	ctx := context.Background()

	out, err := tl.Execute(ctx, map[string]any{"operation": "copy", "source": "a.txt", "destination": "b.txt"})
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if len(out.Mutations) != 1 || out.Mutations[0].Before != "B" || out.Mutations[0].After != "A" {
		t.Fatalf("copy over existing should report a mutation, got %+v", out.Mutations)
	}

	if _, err := tl.Execute(ctx, map[string]any{"operation": "move", "source": "a.txt", "destination": "sub/c.txt"}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.txt")); !os.IsNotExist(err) {
		t.Fatal("source should be gone after move")
	}
	if got := readFile(t, filepath.Join(dir, "sub", "c.txt")); got != "A" {
		t.Fatalf("moved content %q", got)
	}

	out, err = tl.Execute(ctx, map[string]any{"operation": "delete", "source": "b.txt"})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if out.Text != "Deleted file b.txt" {
		t.Fatalf("text %q", out.Text)
	}

	if _, err := tl.Execute(ctx, map[string]any{"operation": "copy", "source": "sub/c.txt"}); err == nil {
		t.Fatal("expected error without destination")
	}
}
