package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ada/internal/domain"
)

// ErrNoSelection means the model answered with JSON that names neither a
// tool nor a reply.
var ErrNoSelection = errors.New("model response names no tool and no reply")

type selection struct {
	Tool       string         `json:"tool"`
	Name       string         `json:"name"`
	Arguments  map[string]any `json:"arguments"`
	Parameters map[string]any `json:"parameters"`
	Reply      string         `json:"reply"`
}

// parseCategory pulls the raw category out of a classification answer:
// either {"category": "..."} or the first non-empty line.
func parseCategory(text string) string {
	text = stripFences(stripRolePrefix(strings.TrimSpace(text)))
	if start, end := findJSONBounds(text); start == 0 && end > start {
		var obj struct {
			Category string `json:"category"`
		}
		if json.Unmarshal([]byte(text[start:end]), &obj) == nil && obj.Category != "" {
			return obj.Category
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// parseSelection decodes a tool-selection answer. Handles several shapes:
//   - Pure JSON: `{"tool":"grep","arguments":{...}}`
//   - Code-fenced: ```json\n{...}\n```
//   - Prefixed or suffixed prose around the object
//   - The {"name", "parameters"} spelling some models prefer
//
// An answer without any JSON object is taken as a plain reply.
func parseSelection(text string) (domain.SelectResponse, error) {
	content := stripFences(stripRolePrefix(strings.TrimSpace(text)))

	sel, err := decodeSelection(content)
	if err != nil {
		start, end := findJSONBounds(content)
		switch {
		case start < 0 && strings.HasPrefix(content, "{"):
			return domain.SelectResponse{}, fmt.Errorf("decode tool selection: %w", err)
		case start < 0 || content[start] != '{':
			return domain.SelectResponse{Reply: content}, nil
		}
		if sel, err = decodeSelection(content[start:end]); err != nil {
			if start > 0 {
				// braces inside prose, not a selection
				return domain.SelectResponse{Reply: content}, nil
			}
			return domain.SelectResponse{}, fmt.Errorf("decode tool selection: %w", err)
		}
	}

	name := sel.Tool
	if name == "" {
		name = sel.Name
	}
	if name != "" {
		return domain.SelectResponse{
			Tool:      normalizeToolName(name),
			Arguments: coalesce(sel.Arguments, sel.Parameters),
		}, nil
	}
	if sel.Reply != "" {
		return domain.SelectResponse{Reply: sel.Reply}, nil
	}
	return domain.SelectResponse{}, ErrNoSelection
}

func decodeSelection(raw string) (selection, error) {
	var sel selection
	err := json.Unmarshal([]byte(raw), &sel)
	if err != nil {
		sel = selection{}
		err = json.Unmarshal([]byte(sanitizeJSONEscapes(raw)), &sel)
	}
	return sel, err
}

func stripFences(content string) string {
	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) >= 3 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
			return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
		}
	}
	return content
}

// findJSONBounds locates the first top-level JSON object ({}) or array ([]) in s.
// Returns the start index and end+1 index, or (-1, -1) if not found.
func findJSONBounds(s string) (int, int) {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return -1, -1
	}

	openChar := s[start]
	var closeChar byte
	if openChar == '{' {
		closeChar = '}'
	} else {
		closeChar = ']'
	}

	depth := 0
	inStr := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inStr {
			if ch == '\\' {
				i++
				continue
			}
			if ch == '"' {
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case openChar:
			depth++
		case closeChar:
			depth--
			if depth == 0 {
				return start, i + 1
			}
		}
	}
	return -1, -1
}

var toolAliases = map[string]string{
	"web_fetch":       "webfetch",
	"web-fetch":       "webfetch",
	"fetch":           "webfetch",
	"readfile":        "read_file",
	"read-file":       "read_file",
	"writefiles":      "write_files",
	"write-files":     "write_files",
	"write_file":      "write_files",
	"writefile":       "write_files",
	"listdir":         "list_directory",
	"list-dir":        "list_directory",
	"list_dir":        "list_directory",
	"listdirectory":   "list_directory",
	"searchdirectory": "search_directory",
	"search-dir":      "search_directory",
	"fileops":         "file_ops",
	"file-ops":        "file_ops",
	"shell":           "execute",
	"bash":            "execute",
	"exec":            "execute",
}

// normalizeToolName maps common model-generated tool name variations to the
// registered names. Smaller models often drop underscores or use hyphens.
func normalizeToolName(name string) string {
	name = strings.TrimSpace(name)
	if mapped, ok := toolAliases[strings.ToLower(name)]; ok {
		return mapped
	}
	return name
}

// stripRolePrefix removes role-name prefixes that some models leak into
// their content: "assistant\nHello" → "Hello", "Assistant: Hello" → "Hello".
func stripRolePrefix(content string) string {
	prefixes := []string{
		"assistant\n",
		"Assistant\n",
		"assistant:\n",
		"Assistant:\n",
		"assistant: ",
		"Assistant: ",
	}
	for _, p := range prefixes {
		if strings.HasPrefix(content, p) {
			return strings.TrimSpace(content[len(p):])
		}
	}
	return content
}

// coalesce returns the first non-nil map, or an empty map if both are nil.
func coalesce(a, b map[string]any) map[string]any {
	if a != nil {
		return a
	}
	if b != nil {
		return b
	}
	return make(map[string]any)
}

// sanitizeJSONEscapes fixes invalid JSON escape sequences produced by some models.
// Valid JSON escapes: \", \\, \/, \b, \f, \n, \r, \t, \uXXXX.
// Invalid ones (e.g. \% or \Y) are corrected by dropping the backslash.
func sanitizeJSONEscapes(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	inString := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '"' {
			inString = !inString
			buf.WriteByte(ch)
			continue
		}
		if inString && ch == '\\' && i+1 < len(s) {
			switch next := s[i+1]; next {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				buf.WriteByte(ch)
				buf.WriteByte(next)
				i++
			}
			continue
		}
		buf.WriteByte(ch)
	}
	return buf.String()
}
