package agent

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ada/internal/domain"
)

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher(MatcherConfig{
		LookPath: lookPathOnly("ls", "git", "cargo", "which", "find"),
		Logger:   testLogger(),
	})

	tests := []struct {
		input string
		want  domain.ToolCall
		ok    bool
	}{
		{"ls -la", domain.ToolCall{Tool: "execute", Args: map[string]any{"command": "ls -la"}}, true},
		{"  cargo build --release ", domain.ToolCall{Tool: "execute", Args: map[string]any{"command": "cargo build --release"}}, true},
		{"git status", domain.ToolCall{Tool: "git", Args: map[string]any{"operation": "status", "args": ""}}, true},
		{`git commit -m "fix: typo"`, domain.ToolCall{Tool: "git", Args: map[string]any{"operation": "commit", "args": `-m "fix: typo"`}}, true},
		{"git", domain.ToolCall{Tool: "execute", Args: map[string]any{"command": "git"}}, true},
		{"git -C sub status", domain.ToolCall{Tool: "execute", Args: map[string]any{"command": "git -C sub status"}}, true},
		{"what files are in src?", domain.ToolCall{}, false},
		{"which cargo", domain.ToolCall{}, false},
		{"Is this repo clean", domain.ToolCall{}, false},
		{"lsof -i", domain.ToolCall{}, false},   // "ls" prefix is not a match
		{"gitk", domain.ToolCall{}, false},      // "git" prefix is not a match
		{"LS", domain.ToolCall{}, false},        // case-sensitive
		{"make test", domain.ToolCall{}, false}, // whitelisted but not on PATH
		{"", domain.ToolCall{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := m.Match(tt.input)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("call mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatcher_Disabled(t *testing.T) {
	m := NewMatcher(MatcherConfig{Disabled: true, LookPath: lookPathOnly("ls"), Logger: testLogger()})
	if _, ok := m.Match("ls"); ok {
		t.Fatal("disabled matcher must not match")
	}
}

func TestMatcher_CustomWhitelist(t *testing.T) {
	m := NewMatcher(MatcherConfig{Whitelist: []string{"go"}, LookPath: lookPathOnly("go", "ls"), Logger: testLogger()})
	if _, ok := m.Match("go test ./..."); !ok {
		t.Fatal("expected custom whitelist entry to match")
	}
	if _, ok := m.Match("ls"); ok {
		t.Fatal("default whitelist should be replaced")
	}
}
