package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ada/internal/diff"
	"ada/internal/domain"
	"ada/internal/tool"
)

// Invoker runs one tool call inside an agent's scope and always produces a result.
type Invoker struct {
	tools        ToolLookup
	contextLines int
	logger       *slog.Logger
}

func NewInvoker(tools ToolLookup, contextLines int, logger *slog.Logger) *Invoker {
	if contextLines < 0 {
		contextLines = diff.DefaultContext
	}
	return &Invoker{tools: tools, contextLines: contextLines, logger: logger}
}

// Invoke checks scope, then arguments, then executes. Scope and schema
// failures never reach tool code.
func (inv *Invoker) Invoke(ctx context.Context, agent domain.Agent, call domain.ToolCall) (res domain.ToolResult) {
	start := time.Now()
	res.Tool = call.Tool
	defer func() { res.Duration = time.Since(start) }()

	t := inv.tools.Get(call.Tool)
	if t == nil || !agent.Allows(call.Tool) {
		inv.logger.Warn("tool call out of scope", "tool", call.Tool, "agent", agent.Name)
		res.Err = &domain.ScopeError{Tool: call.Tool, Agent: agent.Name}
		return res
	}

	args := call.Args
	if args == nil {
		args = map[string]any{}
	}
	if problems := tool.Validate(t.Schema(), args); len(problems) > 0 {
		inv.logger.Warn("tool arguments rejected", "tool", call.Tool, "problems", problems)
		res.Err = &domain.SchemaError{Tool: call.Tool, Problems: problems}
		return res
	}

	inv.logger.Info("executing tool", "tool", call.Tool, "agent", agent.Name)
	if inv.logger.Enabled(ctx, slog.LevelDebug) {
		if argsJSON, err := json.Marshal(args); err == nil {
			inv.logger.Debug("tool arguments", "tool", call.Tool, "args", string(argsJSON))
		}
	}

	out, err := inv.execute(ctx, t, args)
	res.Output = out.Text
	for _, m := range out.Mutations {
		res.Diffs = append(res.Diffs, diff.Compute(m.Path, m.Before, m.After, inv.contextLines))
	}
	if err != nil {
		inv.logger.Warn("tool failed", "tool", call.Tool, "err", err)
		res.Err = &domain.ToolExecutionError{Tool: call.Tool, Err: err}
		return res
	}

	res.Success = true
	inv.logger.Debug("tool completed", "tool", call.Tool, "result_len", len(res.Output), "diffs", len(res.Diffs))
	return res
}

// execute runs the tool, converting a panic into an error.
func (inv *Invoker) execute(ctx context.Context, t domain.Tool, args map[string]any) (out domain.Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			inv.logger.Error("tool panicked", "tool", t.Name(), "panic", r)
			out = domain.Output{}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.Execute(ctx, args)
}
