package agent

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ada/internal/domain"
	"ada/internal/report"
	"ada/internal/tool"
)

type recordedTurns struct {
	mu    sync.Mutex
	turns []*Turn
}

func (r *recordedTurns) RecordTurn(ctx context.Context, t *Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, t)
	return nil
}

type engineFixture struct {
	engine   *Engine
	oracle   *fakeOracle
	states   []State
	recorder *recordedTurns
	dir      string
}

func newEngineFixture(t *testing.T, known ...string) *engineFixture {
	t.Helper()
	dir := t.TempDir()
	f := &engineFixture{oracle: &fakeOracle{}, recorder: &recordedTurns{}, dir: dir}

	reg := tool.NewBuiltinRegistry(tool.Options{WorkDir: dir, ShellTimeoutSeconds: 10, GitTimeoutSeconds: 10}, testLogger())
	table := DefaultTable()
	f.engine = NewEngine(EngineConfig{
		Matcher:    NewMatcher(MatcherConfig{LookPath: lookPathOnly(known...), Logger: testLogger()}),
		Classifier: NewClassifier(f.oracle, dir, testLogger()),
		Table:      table,
		Invoker:    NewInvoker(reg, 2, testLogger()),
		Oracle:     f.oracle,
		Tools:      reg,
		WorkDir:    dir,
		Recorder:   f.recorder,
		OnState:    func(s State) { f.states = append(f.states, s) },
		Logger:     testLogger(),
	})
	return f
}

func TestEngine_GitStatusIsDirect(t *testing.T) {
	f := newEngineFixture(t, "git")
	haveGit := exec.Command("git", "init", "-q", f.dir).Run() == nil
	if haveGit {
		os.WriteFile(filepath.Join(f.dir, "main.rs"), []byte("fn main() {}\n"), 0o644)
	}

	turn := f.engine.Process(context.Background(), "git status")

	if turn.Route != RouteDirect {
		t.Fatalf("route: got %q", turn.Route)
	}
	if f.oracle.calls() != 0 {
		t.Fatalf("oracle must not be consulted for direct commands, got %d calls", f.oracle.calls())
	}
	want := domain.ToolCall{Tool: "git", Args: map[string]any{"operation": "status", "args": ""}}
	if diff := cmp.Diff(want, *turn.Call); diff != "" {
		t.Fatalf("call mismatch (-want +got):\n%s", diff)
	}
	if turn.Agent.Name != DirectAgentName {
		t.Fatalf("agent: got %q", turn.Agent.Name)
	}
	if haveGit {
		if !turn.Result.Success {
			t.Fatalf("git status failed: %v", turn.Result.Err)
		}
		if !strings.Contains(turn.Result.Output, "main.rs") {
			t.Fatalf("expected untracked file in output, got %q", turn.Result.Output)
		}
	}
	wantStates := []State{StateMatching, StateDirectCall, StateInvoking, StateReporting, StateIdle}
	if diff := cmp.Diff(wantStates, f.states); diff != "" {
		t.Fatalf("states mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_WhatFilesAreInSrc(t *testing.T) {
	f := newEngineFixture(t, "ls", "git", "which")
	os.MkdirAll(filepath.Join(f.dir, "src"), 0o755)
	os.WriteFile(filepath.Join(f.dir, "src", "main.rs"), []byte("fn main() {}\n"), 0o644)
	os.WriteFile(filepath.Join(f.dir, "src", "lib.rs"), []byte("\n"), 0o644)

	f.oracle.category = "code-search"
	f.oracle.selectResp = domain.SelectResponse{Tool: "search_directory", Arguments: map[string]any{"path": "src"}}

	turn := f.engine.Process(context.Background(), "what files are in src?")

	if turn.Route != RouteIntent || turn.Intent.Category != domain.CategoryCodeSearch {
		t.Fatalf("expected code-search intent, got route=%q intent=%+v", turn.Route, turn.Intent)
	}
	var offered []string
	for _, d := range f.oracle.lastSelect.Tools {
		offered = append(offered, d.Name)
	}
	if diff := cmp.Diff([]string{"grep", "glob", "search_directory", "read_file"}, offered); diff != "" {
		t.Fatalf("oracle offered wrong tools (-want +got):\n%s", diff)
	}
	if !turn.Result.Success {
		t.Fatalf("search_directory failed: %v", turn.Result.Err)
	}
	want := filepath.Join("src", "lib.rs") + "\n" + filepath.Join("src", "main.rs")
	if turn.Result.Output != want {
		t.Fatalf("output: got %q, want %q", turn.Result.Output, want)
	}
	if turn.Header() != "Intent: code-search → [Code Search]" {
		t.Fatalf("header: got %q", turn.Header())
	}
}

func TestEngine_EditCargoTomlShowsDiff(t *testing.T) {
	f := newEngineFixture(t)
	manifest := "[package]\nname = \"demo\"\nversion = \"0.1.0\"\n\n[dependencies]\nserde = \"1\"\n"
	os.WriteFile(filepath.Join(f.dir, "Cargo.toml"), []byte(manifest), 0o644)

	f.oracle.category = "file_ops"
	f.oracle.selectResp = domain.SelectResponse{Tool: "edit", Arguments: map[string]any{
		"file_path":  "Cargo.toml",
		"old_string": "[dependencies]\nserde = \"1\"\n",
		"new_string": "[dependencies]\nserde = \"1\"\ntokio = { version = \"1\", features = [\"full\"] }\n",
	}}

	turn := f.engine.Process(context.Background(), "edit Cargo.toml and add tokio dependency")

	if !turn.Result.Success {
		t.Fatalf("edit failed: %v", turn.Result.Err)
	}
	if turn.Display.Kind != report.KindDiff {
		t.Fatalf("display kind: got %s", turn.Display.Kind)
	}
	out := turn.Display.String()
	if !strings.Contains(out, "Updated Cargo.toml with 1 addition and 0 removals") {
		t.Fatalf("missing summary:\n%s", out)
	}
	if !strings.Contains(out, "+ tokio = ") {
		t.Fatalf("missing added line:\n%s", out)
	}
	if strings.Contains(out, "[package]") {
		t.Fatalf("diff should only show changed lines plus context:\n%s", out)
	}
}

func TestEngine_OracleTimeoutFallsBackGracefully(t *testing.T) {
	f := newEngineFixture(t, "git")
	f.oracle.classifyErr = context.DeadlineExceeded

	turn := f.engine.Process(context.Background(), "find all TODO comments")

	if turn.Intent.Category != domain.CategoryGeneral || !turn.Intent.Fallback {
		t.Fatalf("expected general fallback, got %+v", turn.Intent)
	}
	if turn.Call != nil || turn.Result != nil {
		t.Fatal("no tool may be invoked after a failed classification")
	}
	if f.oracle.selectCalls != 0 {
		t.Fatal("tool selection must not run after a failed classification")
	}
	if !strings.Contains(turn.Display.String(), "Unable to classify") {
		t.Fatalf("display: %q", turn.Display.String())
	}
	wantStates := []State{StateMatching, StateClassifying, StateReporting, StateIdle}
	if diff := cmp.Diff(wantStates, f.states); diff != "" {
		t.Fatalf("states mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_GeneralAnswersWithoutTools(t *testing.T) {
	f := newEngineFixture(t)
	f.oracle.category = "general"
	f.oracle.selectResp = domain.SelectResponse{Reply: "Rust is a systems language."}

	turn := f.engine.Process(context.Background(), "tell me about rust")

	if len(f.oracle.lastSelect.Tools) != 0 {
		t.Fatalf("general agent must not be offered tools, got %d", len(f.oracle.lastSelect.Tools))
	}
	if turn.Display.String() != "Rust is a systems language." {
		t.Fatalf("display: %q", turn.Display.String())
	}
}

func TestEngine_OracleSelectsOutOfScopeTool(t *testing.T) {
	f := newEngineFixture(t)
	f.oracle.category = "web"
	f.oracle.selectResp = domain.SelectResponse{Tool: "execute", Arguments: map[string]any{"command": "touch pwned"}}

	turn := f.engine.Process(context.Background(), "fetch example.com")

	var scope *domain.ScopeError
	if !errors.As(turn.Result.Err, &scope) {
		t.Fatalf("expected ScopeError, got %v", turn.Result.Err)
	}
	if _, err := os.Stat(filepath.Join(f.dir, "pwned")); !os.IsNotExist(err) {
		t.Fatal("out-of-scope tool must not run")
	}
}

func TestEngine_SelectionFailure(t *testing.T) {
	f := newEngineFixture(t)
	f.oracle.category = "git"
	f.oracle.selectErr = errors.New("connection refused")

	turn := f.engine.Process(context.Background(), "show me recent commits")

	if domain.KindOf(turn.Result.Err) != domain.KindOracle {
		t.Fatalf("expected oracle error, got %v", turn.Result.Err)
	}
	if turn.Success() {
		t.Fatal("turn should report failure")
	}
}

func TestEngine_SlashCommands(t *testing.T) {
	f := newEngineFixture(t)

	help := f.engine.Process(context.Background(), "/help")
	if help.Route != RouteCommand || !strings.Contains(help.Display.Body, "search_directory") {
		t.Fatalf("help should list agent tools:\n%s", help.Display.Body)
	}
	tools := f.engine.Process(context.Background(), "/tools")
	if !strings.Contains(tools.Display.Body, "Available tools (12)") {
		t.Fatalf("tools:\n%s", tools.Display.Body)
	}
	if f.oracle.calls() != 0 {
		t.Fatal("slash commands must not reach the oracle")
	}
	if len(f.recorder.turns) != 0 {
		t.Fatal("slash commands are not recorded")
	}
}

func TestEngine_AbsolutePathIsNotASlashCommand(t *testing.T) {
	f := newEngineFixture(t, "ls")
	f.oracle.category = "shell"
	f.oracle.selectResp = domain.SelectResponse{Tool: "execute", Arguments: map[string]any{"command": "echo listed"}}

	turn := f.engine.Process(context.Background(), "/bin/ls -la")

	if turn.Route != RouteIntent {
		t.Fatalf("route: got %q", turn.Route)
	}
	if f.oracle.classifyCalls != 1 {
		t.Fatalf("expected classification, got %d classify calls", f.oracle.classifyCalls)
	}
	if strings.Contains(turn.Display.String(), "Unknown command") {
		t.Fatalf("display: %q", turn.Display.String())
	}
	if len(f.recorder.turns) != 1 {
		t.Fatal("routed turn should be recorded")
	}
}

func TestEngine_RecordsTurns(t *testing.T) {
	f := newEngineFixture(t, "echo")
	turn := f.engine.Process(context.Background(), "echo hi")
	if turn.Result == nil || turn.Result.Output != "hi" {
		t.Fatalf("unexpected result: %+v", turn.Result)
	}
	if len(f.recorder.turns) != 1 || f.recorder.turns[0].ID != turn.ID || turn.ID == "" {
		t.Fatalf("turn not recorded: %+v", f.recorder.turns)
	}

	empty := f.engine.Process(context.Background(), "   ")
	if empty.Route != RouteNone || len(f.recorder.turns) != 1 {
		t.Fatal("blank input should be ignored")
	}
}

func TestParseCommand(t *testing.T) {
	cmd := ParseCommand("  /Help me  ")
	if cmd == nil || cmd.Name != "help" || len(cmd.Args) != 1 {
		t.Fatalf("unexpected parse: %+v", cmd)
	}
	if ParseCommand("ls /tmp") != nil || ParseCommand("/") != nil {
		t.Fatal("non-commands must return nil")
	}
}
