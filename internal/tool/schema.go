package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"ada/internal/domain"
)

// Validate checks args against schema and returns every problem found.
// An empty result means the call may proceed. Undeclared arguments are ignored.
func Validate(schema domain.Schema, args map[string]any) []string {
	var problems []string
	for _, p := range schema.Params {
		v, ok := args[p.Name]
		if !ok || v == nil {
			if p.Required {
				problems = append(problems, fmt.Sprintf("missing required argument %q", p.Name))
			}
			continue
		}
		problems = append(problems, checkValue(p.Name, p, v)...)
	}
	return problems
}

func checkValue(path string, p domain.Param, v any) []string {
	if !hasType(v, p.Type) {
		return []string{fmt.Sprintf("argument %q must be %s, got %s", path, article(p.Type), describe(v))}
	}

	switch p.Type {
	case domain.TypeString:
		if len(p.Enum) > 0 && !slices.Contains(p.Enum, v.(string)) {
			return []string{fmt.Sprintf("argument %q must be one of %v, got %q", path, p.Enum, v)}
		}
	case domain.TypeArray:
		items := toSlice(v)
		var problems []string
		for i, item := range items {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			switch {
			case p.Items != nil:
				obj, ok := item.(map[string]any)
				if !ok {
					problems = append(problems, fmt.Sprintf("argument %q must be an object, got %s", itemPath, describe(item)))
					continue
				}
				for _, prob := range Validate(*p.Items, obj) {
					problems = append(problems, itemPath+": "+prob)
				}
			case p.ItemType != "":
				if !hasType(item, p.ItemType) {
					problems = append(problems, fmt.Sprintf("argument %q must be %s, got %s", itemPath, article(p.ItemType), describe(item)))
				}
			}
		}
		return problems
	}
	return nil
}

func hasType(v any, typ string) bool {
	switch typ {
	case domain.TypeString:
		_, ok := v.(string)
		return ok
	case domain.TypeBoolean:
		_, ok := v.(bool)
		return ok
	case domain.TypeInteger:
		switch n := v.(type) {
		case int, int32, int64:
			return true
		case float64:
			return n == math.Trunc(n) && !math.IsInf(n, 0)
		case json.Number:
			_, err := n.Int64()
			return err == nil
		}
		return false
	case domain.TypeNumber:
		switch v.(type) {
		case int, int32, int64, float32, float64, json.Number:
			return true
		}
		return false
	case domain.TypeArray:
		switch v.(type) {
		case []any, []string:
			return true
		}
		return false
	case domain.TypeObject:
		_, ok := v.(map[string]any)
		return ok
	}
	return false
}

func toSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	}
	return nil
}

func article(typ string) string {
	switch typ {
	case domain.TypeArray, domain.TypeObject, domain.TypeInteger:
		return "an " + typ
	}
	return "a " + typ
}

func describe(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64, json.Number:
		return "number"
	case []any, []string:
		return "array"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
