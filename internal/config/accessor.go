package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// node is the generic JSON view of a Config used by the dot-path accessors.
type node = map[string]any

func toNode(cfg *Config) (node, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var n node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return n, nil
}

func splitPath(path string) ([]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("empty path")
	}
	parts := strings.Split(path, ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("malformed path %q", path)
		}
	}
	return parts, nil
}

// GetByPath returns the value at a dot path such as "general.workspace".
// Numeric segments index into lists ("routing.whitelist.0").
func GetByPath(cfg *Config, path string) (any, error) {
	parts, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	root, err := toNode(cfg)
	if err != nil {
		return nil, err
	}

	var cur any = root
	for _, key := range parts {
		switch v := cur.(type) {
		case node:
			next, ok := v[key]
			if !ok {
				return nil, fmt.Errorf("key not found: %s", path)
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(v) {
				return nil, fmt.Errorf("invalid list index %q in %s", key, path)
			}
			cur = v[i]
		default:
			return nil, fmt.Errorf("%s: %q is not a section", path, key)
		}
	}
	return cur, nil
}

// SetByPath assigns value at a dot path. String values are coerced to the
// JSON type they spell; list settings accept a comma-separated string.
// Unknown keys are rejected, except that a new entry may be created
// directly under "providers".
func SetByPath(cfg *Config, path string, value any) error {
	parts, err := splitPath(path)
	if err != nil {
		return err
	}
	root, err := toNode(cfg)
	if err != nil {
		return err
	}

	parent := root
	for i, key := range parts[:len(parts)-1] {
		next, ok := parent[key]
		if !ok || next == nil {
			if i == 0 || parts[i-1] != "providers" {
				return fmt.Errorf("key not found: %s", strings.Join(parts[:i+1], "."))
			}
			next = node{}
			parent[key] = next
		}
		section, ok := next.(node)
		if !ok {
			return fmt.Errorf("%s: %q is not a section", path, key)
		}
		parent = section
	}

	leaf := parts[len(parts)-1]
	old, exists := parent[leaf]
	if _, isSection := old.(node); isSection {
		return fmt.Errorf("%s is a section, set one of its keys instead", path)
	}
	parent[leaf] = coerce(old, value)

	updated, err := fromNode(root)
	if s, isString := parent[leaf].(string); err != nil && isString && old == nil {
		// an omitted list setting given a single item
		parent[leaf] = []any{s}
		updated, err = fromNode(root)
	}
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	// Keys absent before (omitted empty fields) must survive decoding;
	// misspelled ones do not.
	if !exists && !isEmpty(parent[leaf]) {
		if _, err := GetByPath(updated, path); err != nil {
			return fmt.Errorf("key not found: %s", path)
		}
	}
	*cfg = *updated
	return nil
}

func fromNode(n node) (*Config, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	}
	return false
}

// coerce converts a string from the command line into the JSON type it
// spells. When the current value is a list the string is split on commas.
func coerce(old, v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if _, isList := old.([]any); isList || old == nil && strings.Contains(s, ",") {
		if strings.TrimSpace(s) == "" {
			return []any{}
		}
		items := strings.Split(s, ",")
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = strings.TrimSpace(item)
		}
		return out
	}
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// Sanitize returns a deep copy of cfg with provider API keys masked.
func Sanitize(cfg *Config) *Config {
	out := *cfg
	out.Routing.Whitelist = append([]string(nil), cfg.Routing.Whitelist...)
	out.Providers = make(map[string]ProviderConfig, len(cfg.Providers))
	for name, p := range cfg.Providers {
		if p.APIKey != "" {
			p.APIKey = mask(p.APIKey)
		}
		out.Providers[name] = p
	}
	return &out
}

func mask(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// ListPaths flattens cfg into leaf dot paths and their values.
func ListPaths(cfg *Config) map[string]any {
	root, err := toNode(cfg)
	if err != nil {
		return nil
	}
	out := make(map[string]any)
	var walk func(prefix string, n node)
	walk = func(prefix string, n node) {
		for k, v := range n {
			p := k
			if prefix != "" {
				p = prefix + "." + k
			}
			if child, ok := v.(node); ok {
				walk(p, child)
				continue
			}
			out[p] = v
		}
	}
	walk("", root)
	return out
}
