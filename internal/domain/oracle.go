package domain

import "context"

// Oracle is the external language-model service. The core only ever asks it
// two things: which category an input belongs to, and which tool (with which
// arguments) should serve an already-classified input.
type Oracle interface {
	Classify(ctx context.Context, req ClassifyRequest) (ClassifyResponse, error)
	SelectTool(ctx context.Context, req SelectRequest) (SelectResponse, error)
}

type ClassifyRequest struct {
	Input      string
	Categories []Category
	WorkingDir string
}

type ClassifyResponse struct {
	Category string // raw, normalized by the classifier
}

type SelectRequest struct {
	Input      string
	Category   Category
	Tools      []ToolDefinition
	WorkingDir string
}

// SelectResponse either names a tool to call or carries a plain reply
// (Tool empty) when no tool is needed.
type SelectResponse struct {
	Tool      string
	Arguments map[string]any
	Reply     string
}

// Call converts the response into a ToolCall.
func (r SelectResponse) Call() ToolCall {
	args := r.Arguments
	if args == nil {
		args = map[string]any{}
	}
	return ToolCall{Tool: r.Tool, Args: args}
}
