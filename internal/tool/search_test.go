package tool

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func searchFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "src/main.rs", "fn main() {\n    // TODO: handle args\n}\n")
	writeFile(t, dir, "src/lib.rs", "pub fn lib() {}\n// todo lowercase\n")
	writeFile(t, dir, "README.md", "# Project\n")
	writeFile(t, dir, "build/out.rs", "// TODO: generated\n")
	writeFile(t, dir, ".gitignore", "build/\n")
	return dir
}

func TestGrep_FindsMatchesAndHonorsGitignore(t *testing.T) {
	dir := searchFixture(t)
	out, err := NewGrepTool(dir).Execute(context.Background(), map[string]any{"pattern": "TODO"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := filepath.Join("src", "main.rs") + ":2:// TODO: handle args"
	if out.Text != want {
		t.Fatalf("got %q, want %q", out.Text, want)
	}
}

func TestGrep_CaseInsensitive(t *testing.T) {
	dir := searchFixture(t)
	out, err := NewGrepTool(dir).Execute(context.Background(), map[string]any{"pattern": "todo", "case_insensitive": true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if n := len(strings.Split(out.Text, "\n")); n != 2 {
		t.Fatalf("expected 2 matches, got %d: %q", n, out.Text)
	}
}

func TestGrep_NoMatchesAndBadPattern(t *testing.T) {
	dir := searchFixture(t)
	tl := NewGrepTool(dir)
	out, err := tl.Execute(context.Background(), map[string]any{"pattern": "nothing-here"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Text != "No matches found" {
		t.Fatalf("got %q", out.Text)
	}
	if _, err := tl.Execute(context.Background(), map[string]any{"pattern": "("}); err == nil {
		t.Fatal("expected error for invalid regexp")
	}
}

func TestGlob(t *testing.T) {
	dir := searchFixture(t)
	tl := NewGlobTool(dir)

	out, err := tl.Execute(context.Background(), map[string]any{"pattern": "**/*.rs"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := filepath.Join("src", "lib.rs") + "\n" + filepath.Join("src", "main.rs")
	if out.Text != want {
		t.Fatalf("got %q, want %q", out.Text, want)
	}

	out, err = tl.Execute(context.Background(), map[string]any{"pattern": "*.md"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Text != "README.md" {
		t.Fatalf("got %q", out.Text)
	}

	out, err = tl.Execute(context.Background(), map[string]any{"pattern": "*.py"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Text != "No files matched the pattern" {
		t.Fatalf("got %q", out.Text)
	}
}

func TestSearchDirectory(t *testing.T) {
	dir := searchFixture(t)
	out, err := NewSearchDirectoryTool(dir).Execute(context.Background(), map[string]any{"path": "src"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := filepath.Join("src", "lib.rs") + "\n" + filepath.Join("src", "main.rs")
	if out.Text != want {
		t.Fatalf("got %q, want %q", out.Text, want)
	}

	out, err = NewSearchDirectoryTool(dir).Execute(context.Background(), map[string]any{"path": ".", "pattern": "MAIN"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Text != filepath.Join("src", "main.rs") {
		t.Fatalf("got %q", out.Text)
	}

	if _, err := NewSearchDirectoryTool(dir).Execute(context.Background(), map[string]any{"path": "missing"}); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestTree(t *testing.T) {
	dir := searchFixture(t)
	out, err := NewTreeTool(dir, 0).Execute(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := filepath.Base(dir) + "/\n" +
		"├── src/\n" +
		"│   ├── lib.rs\n" +
		"│   └── main.rs\n" +
		"└── README.md\n" +
		"\n1 directories, 3 files"
	if out.Text != want {
		t.Fatalf("got:\n%s\nwant:\n%s", out.Text, want)
	}

	out, err = NewTreeTool(dir, 0).Execute(context.Background(), map[string]any{"max_depth": float64(1)})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if strings.Contains(out.Text, "main.rs") {
		t.Fatalf("depth 1 should not list nested files:\n%s", out.Text)
	}
}
