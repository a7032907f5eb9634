package tool

import (
	"strings"
	"testing"

	"ada/internal/domain"
)

var testSchema = domain.Schema{Params: []domain.Param{
	{Name: "path", Type: domain.TypeString, Required: true},
	{Name: "count", Type: domain.TypeInteger},
	{Name: "mode", Type: domain.TypeString, Enum: []string{"fast", "slow"}},
	{Name: "tags", Type: domain.TypeArray, ItemType: domain.TypeString},
	{Name: "files", Type: domain.TypeArray, Items: &domain.Schema{Params: []domain.Param{
		{Name: "path", Type: domain.TypeString, Required: true},
	}}},
}}

func TestValidate_OK(t *testing.T) {
	args := map[string]any{
		"path":  "src/main.rs",
		"count": float64(3),
		"mode":  "fast",
		"tags":  []any{"a", "b"},
		"files": []any{map[string]any{"path": "x"}},
		"extra": "ignored",
	}
	if problems := Validate(testSchema, args); len(problems) != 0 {
		t.Fatalf("expected no problems, got %v", problems)
	}
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing required", map[string]any{}, `missing required argument "path"`},
		{"null required", map[string]any{"path": nil}, `missing required argument "path"`},
		{"wrong type", map[string]any{"path": 12.0}, `argument "path" must be a string, got number`},
		{"fractional integer", map[string]any{"path": "p", "count": 1.5}, `argument "count" must be an integer`},
		{"enum", map[string]any{"path": "p", "mode": "medium"}, `must be one of [fast slow]`},
		{"item type", map[string]any{"path": "p", "tags": []any{"a", true}}, `argument "tags[1]" must be a string, got boolean`},
		{"nested object", map[string]any{"path": "p", "files": []any{map[string]any{}}}, `files[0]: missing required argument "path"`},
		{"nested not object", map[string]any{"path": "p", "files": []any{"x"}}, `argument "files[0]" must be an object`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := Validate(testSchema, tt.args)
			if len(problems) == 0 {
				t.Fatal("expected problems")
			}
			if !strings.Contains(strings.Join(problems, "; "), tt.want) {
				t.Fatalf("problems %v do not mention %q", problems, tt.want)
			}
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	problems := Validate(testSchema, map[string]any{"count": "three", "mode": "medium"})
	if len(problems) != 3 {
		t.Fatalf("expected 3 problems, got %d: %v", len(problems), problems)
	}
}
