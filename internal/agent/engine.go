package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ada/internal/domain"
	"ada/internal/report"
)

// State is a step of the per-turn state machine.
type State string

const (
	StateIdle        State = "idle"
	StateMatching    State = "matching"
	StateDirectCall  State = "direct-call"
	StateClassifying State = "classifying"
	StateSelecting   State = "selecting"
	StateInvoking    State = "invoking"
	StateReporting   State = "reporting"
)

// StateFunc observes state transitions, e.g. to drive a spinner.
type StateFunc func(State)

// Route records how a turn was handled.
type Route string

const (
	RouteNone    Route = ""
	RouteCommand Route = "command"
	RouteDirect  Route = "direct"
	RouteIntent  Route = "intent"
)

// Catalog is the registry surface the engine needs.
type Catalog interface {
	ToolLookup
	Names() []string
	Definitions(names ...string) []domain.ToolDefinition
}

// TurnRecorder persists finished turns.
type TurnRecorder interface {
	RecordTurn(ctx context.Context, t *Turn) error
}

// Turn is everything that happened for one line of input.
type Turn struct {
	ID       string
	Input    string
	Route    Route
	Intent   domain.Intent
	Agent    domain.Agent
	Call     *domain.ToolCall
	Result   *domain.ToolResult
	Display  report.Display
	Started  time.Time
	Duration time.Duration
}

// Header is the "Intent: category → [agent]" line for intent-routed turns.
func (t *Turn) Header() string {
	if t.Route != RouteIntent {
		return ""
	}
	return fmt.Sprintf("Intent: %s → [%s]", t.Intent.Category, t.Agent.Name)
}

// Success reports whether the turn ended without an error display.
func (t *Turn) Success() bool {
	return t.Display.Kind != report.KindError
}

// Engine runs turns: slash command, direct command, or classify → select → invoke.
type Engine struct {
	matcher    *Matcher
	classifier *Classifier
	table      *Table
	invoker    *Invoker
	oracle     domain.Oracle
	tools      Catalog
	workDir    string
	recorder   TurnRecorder
	onState    StateFunc
	logger     *slog.Logger
}

// EngineConfig holds all dependencies of the engine.
type EngineConfig struct {
	Matcher    *Matcher
	Classifier *Classifier
	Table      *Table
	Invoker    *Invoker
	Oracle     domain.Oracle
	Tools      Catalog
	WorkDir    string
	Recorder   TurnRecorder // optional
	OnState    StateFunc    // optional
	Logger     *slog.Logger
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Table == nil {
		cfg.Table = DefaultTable()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{
		matcher:    cfg.Matcher,
		classifier: cfg.Classifier,
		table:      cfg.Table,
		invoker:    cfg.Invoker,
		oracle:     cfg.Oracle,
		tools:      cfg.Tools,
		workDir:    cfg.WorkDir,
		recorder:   cfg.Recorder,
		onState:    cfg.OnState,
		logger:     cfg.Logger,
	}
}

// OnState replaces the state observer.
func (e *Engine) OnState(fn StateFunc) {
	e.onState = fn
}

func (e *Engine) setState(s State) {
	if e.onState != nil {
		e.onState(s)
	}
}

// Process handles one line of input. It never returns nil and never panics
// because of a tool or oracle failure.
func (e *Engine) Process(ctx context.Context, input string) *Turn {
	turn := &Turn{
		ID:      uuid.New().String(),
		Input:   strings.TrimSpace(input),
		Started: time.Now(),
	}
	defer func() {
		turn.Duration = time.Since(turn.Started)
		e.setState(StateIdle)
		e.record(ctx, turn)
	}()

	if turn.Input == "" {
		return turn
	}

	// Only known slash commands are claimed; paths such as /bin/ls route normally.
	if cmd := ParseCommand(turn.Input); cmd != nil {
		if text, ok := e.HandleCommand(cmd); ok {
			turn.Route = RouteCommand
			turn.Display = report.Reply(text)
			return turn
		}
	}

	e.setState(StateMatching)
	if call, ok := e.matcher.Match(turn.Input); ok {
		e.setState(StateDirectCall)
		turn.Route = RouteDirect
		turn.Agent = e.table.Direct()
		e.logger.Debug("direct command", "tool", call.Tool, "turn", turn.ID)
		e.invoke(ctx, turn, call)
		return turn
	}

	turn.Route = RouteIntent
	e.setState(StateClassifying)
	turn.Intent = e.classifier.Classify(ctx, turn.Input)
	turn.Agent = e.table.Select(turn.Intent.Category)
	if turn.Intent.Fallback {
		e.setState(StateReporting)
		turn.Display = report.Unclassified(turn.Intent.Err)
		return turn
	}

	e.setState(StateSelecting)
	var defs []domain.ToolDefinition
	if len(turn.Agent.Tools) > 0 {
		defs = e.tools.Definitions(turn.Agent.Tools...)
	}
	resp, err := e.oracle.SelectTool(ctx, domain.SelectRequest{
		Input:      turn.Input,
		Category:   turn.Intent.Category,
		Tools:      defs,
		WorkingDir: e.workDir,
	})
	if err != nil {
		oerr := &domain.OracleError{Op: "select", Err: err}
		e.logger.Warn("tool selection failed", "category", turn.Intent.Category, "err", err)
		turn.Result = &domain.ToolResult{Err: oerr}
		e.setState(StateReporting)
		turn.Display = report.Failure(oerr)
		return turn
	}

	if resp.Tool == "" {
		e.setState(StateReporting)
		turn.Display = report.Reply(resp.Reply)
		return turn
	}
	e.invoke(ctx, turn, resp.Call())
	return turn
}

func (e *Engine) invoke(ctx context.Context, turn *Turn, call domain.ToolCall) {
	turn.Call = &call
	e.setState(StateInvoking)
	res := e.invoker.Invoke(ctx, turn.Agent, call)
	turn.Result = &res

	e.setState(StateReporting)
	turn.Display = report.Render(res)
}

func (e *Engine) record(ctx context.Context, turn *Turn) {
	if e.recorder == nil || turn.Input == "" || turn.Route == RouteCommand {
		return
	}
	if err := e.recorder.RecordTurn(context.WithoutCancel(ctx), turn); err != nil {
		e.logger.Warn("failed to record turn", "turn", turn.ID, "err", err)
	}
}

// Table returns the agent table in use.
func (e *Engine) Table() *Table { return e.table }
