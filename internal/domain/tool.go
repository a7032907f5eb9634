package domain

import "context"

// Tool is the interface every capability (file ops, search, git, shell, web) implements.
// Tools are registered once at startup and never change afterwards.
type Tool interface {
	Name() string
	Description() string
	Category() Category
	Schema() Schema
	Execute(ctx context.Context, args map[string]any) (Output, error)
}

// Output is what a tool hands back to the invoker.
// Mutating tools report the before/after content of every file they touched;
// the invoker turns those into diffs.
type Output struct {
	Text      string
	Mutations []Mutation
}

// Mutation records one file change made by a tool.
type Mutation struct {
	Path   string
	Before string
	After  string
}

// Param types accepted by Schema.
const (
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeArray   = "array"
	TypeObject  = "object"
)

// Param describes a single named tool argument.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Enum        []string // allowed values for string params
	Items       *Schema  // element schema for arrays of objects
	ItemType    string   // element type for arrays of scalars
}

// Schema is the ordered argument list of a tool.
type Schema struct {
	Params []Param
}

// Param returns the named parameter, if declared.
func (s Schema) Param(name string) (Param, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Required returns the names of all required parameters, in declaration order.
func (s Schema) Required() []string {
	var names []string
	for _, p := range s.Params {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// JSON renders the schema as a JSON Schema "parameters" object for the oracle.
func (s Schema) JSON() map[string]any {
	props := make(map[string]any, len(s.Params))
	for _, p := range s.Params {
		prop := map[string]any{"type": p.Type, "description": p.Description}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Type == TypeArray {
			switch {
			case p.Items != nil:
				prop["items"] = p.Items.JSON()
			case p.ItemType != "":
				prop["items"] = map[string]any{"type": p.ItemType}
			}
		}
		props[p.Name] = prop
	}
	out := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if req := s.Required(); len(req) > 0 {
		out["required"] = req
	}
	return out
}

// ToolDefinition is the description of a tool sent across the oracle boundary.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}
