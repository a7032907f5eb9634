package report

import (
	"errors"
	"strings"
	"testing"

	"ada/internal/diff"
	"ada/internal/domain"
)

func TestRender_Text(t *testing.T) {
	d := Render(domain.ToolResult{Tool: "list_directory", Success: true, Output: "DIR  src"})
	if d.Kind != KindText {
		t.Fatalf("kind: got %s", d.Kind)
	}
	if got := d.String(); got != "⏺ List directory\nDIR  src" {
		t.Fatalf("got %q", got)
	}
}

func TestRender_Diff(t *testing.T) {
	before := "[package]\nname = \"demo\"\nversion = \"0.1.0\"\n"
	after := "[package]\nname = \"demo\"\nversion = \"0.2.0\"\n"
	res := domain.ToolResult{
		Tool:    "edit",
		Success: true,
		Output:  "Replaced 1 occurrence(s) in Cargo.toml",
		Diffs:   []*diff.FileDiff{diff.Compute("Cargo.toml", before, after, diff.DefaultContext)},
	}

	d := Render(res)
	if d.Kind != KindDiff {
		t.Fatalf("kind: got %s", d.Kind)
	}
	if d.Title != "⏺ Edit(Cargo.toml)" {
		t.Fatalf("title: got %q", d.Title)
	}
	lines := strings.Split(d.Body, "\n")
	want := []string{
		"  ⎿  Updated Cargo.toml with 1 addition and 1 removal",
		"        1   [package]",
		"        2   name = \"demo\"",
		"        3 - version = \"0.1.0\"",
		"        3 + version = \"0.2.0\"",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(want), len(lines), d.Body)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRender_NewFileAndMultiple(t *testing.T) {
	res := domain.ToolResult{
		Tool:    "write_files",
		Success: true,
		Diffs: []*diff.FileDiff{
			diff.Compute("a.txt", "", "one\ntwo\n", 2),
			diff.Compute("b.txt", "same\n", "same\n", 2),
		},
	}
	d := Render(res)
	if d.Title != "⏺ Write files(a.txt, b.txt)" {
		t.Fatalf("title: got %q", d.Title)
	}
	if !strings.Contains(d.Body, "Created a.txt with 2 lines") {
		t.Errorf("missing created line:\n%s", d.Body)
	}
	if !strings.Contains(d.Body, "No changes to b.txt") {
		t.Errorf("missing no-change line:\n%s", d.Body)
	}
}

func TestRender_ErrorNamesClass(t *testing.T) {
	tests := []struct {
		err   error
		title string
	}{
		{&domain.ScopeError{Tool: "execute", Agent: "code-search"}, "✗ Scope error"},
		{&domain.SchemaError{Tool: "grep", Problems: []string{`missing required argument "pattern"`}}, "✗ Schema error"},
		{&domain.OracleError{Op: "select", Err: errors.New("timeout")}, "✗ Oracle error"},
		{&domain.ToolExecutionError{Tool: "git", Err: errors.New("exit status 1")}, "✗ Execution error"},
	}
	for _, tt := range tests {
		d := Render(domain.ToolResult{Tool: "x", Err: tt.err, Output: "STDERR:\nfatal"})
		if d.Kind != KindError {
			t.Errorf("%T: kind %s", tt.err, d.Kind)
		}
		if d.Title != tt.title {
			t.Errorf("%T: title %q, want %q", tt.err, d.Title, tt.title)
		}
		if !strings.HasPrefix(d.Body, tt.err.Error()) || !strings.HasSuffix(d.Body, "fatal") {
			t.Errorf("%T: body %q", tt.err, d.Body)
		}
	}
}

func TestReply(t *testing.T) {
	if got := Reply("  hello there \n").String(); got != "hello there" {
		t.Fatalf("got %q", got)
	}
}
