package oracle

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ada/internal/domain"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"git", "git"},
		{"  file_ops\n\nbecause it edits a file", "file_ops"},
		{`{"category": "web"}`, "web"},
		{"```\nexecution\n```", "execution"},
		{"assistant\ngeneral", "general"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := parseCategory(tt.in); got != tt.want {
			t.Errorf("parseCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want domain.SelectResponse
	}{
		{
			name: "plain",
			in:   `{"tool": "read_file", "arguments": {"file_path": "Cargo.toml"}}`,
			want: domain.SelectResponse{Tool: "read_file", Arguments: map[string]any{"file_path": "Cargo.toml"}},
		},
		{
			name: "name and parameters",
			in:   `{"name": "web_fetch", "parameters": {"url": "https://example.com"}}`,
			want: domain.SelectResponse{Tool: "webfetch", Arguments: map[string]any{"url": "https://example.com"}},
		},
		{
			name: "prose around object",
			in:   "I'll run it.\n{\"tool\": \"shell\", \"arguments\": {\"command\": \"ls\"}}\nDone.",
			want: domain.SelectResponse{Tool: "execute", Arguments: map[string]any{"command": "ls"}},
		},
		{
			name: "missing arguments",
			in:   `{"tool": "tree"}`,
			want: domain.SelectResponse{Tool: "tree", Arguments: map[string]any{}},
		},
		{
			name: "invalid escape",
			in:   `{"tool": "grep", "arguments": {"pattern": "fn\s+main\\("}}`,
			want: domain.SelectResponse{Tool: "grep", Arguments: map[string]any{"pattern": `fns+main\(`}},
		},
		{
			name: "reply object",
			in:   `{"reply": "Nothing to run."}`,
			want: domain.SelectResponse{Reply: "Nothing to run."},
		},
		{
			name: "prose only",
			in:   "You can use cargo for that.",
			want: domain.SelectResponse{Reply: "You can use cargo for that."},
		},
		{
			name: "braces in prose",
			in:   "Use a closure like {x + 1} here.",
			want: domain.SelectResponse{Reply: "Use a closure like {x + 1} here."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSelection(tt.in)
			if err != nil {
				t.Fatalf("parseSelection: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSelection_BrokenJSON(t *testing.T) {
	if _, err := parseSelection(`{"tool": "grep", "arguments": {`); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestSanitizeJSONEscapes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a": "100\%"}`, `{"a": "100%"}`},
		{`{"a": "C:\\dir\\file"}`, `{"a": "C:\\dir\\file"}`},
		{`{"a": "say \"hi\"\n"}`, `{"a": "say \"hi\"\n"}`},
		{`{"a": "\\\Y"}`, `{"a": "\\Y"}`},
	}
	for _, tt := range tests {
		if got := sanitizeJSONEscapes(tt.in); got != tt.want {
			t.Errorf("sanitizeJSONEscapes(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeToolName(t *testing.T) {
	for in, want := range map[string]string{
		"ListDir":     "list_directory",
		"write_file":  "write_files",
		"grep":        "grep",
		" read-file ": "read_file",
	} {
		if got := normalizeToolName(in); got != want {
			t.Errorf("normalizeToolName(%q) = %q, want %q", in, got, want)
		}
	}
}
