package channel

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"ada/internal/agent"
	"ada/internal/domain"
	"ada/internal/report"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeEngine struct {
	inputs  []string
	onState agent.StateFunc
	turn    func(input string) *agent.Turn
}

func (f *fakeEngine) OnState(fn agent.StateFunc) { f.onState = fn }

func (f *fakeEngine) Process(ctx context.Context, input string) *agent.Turn {
	f.inputs = append(f.inputs, input)
	if f.onState != nil {
		f.onState(agent.StateClassifying)
		f.onState(agent.StateIdle)
	}
	return f.turn(input)
}

func echoTurn(input string) *agent.Turn {
	return &agent.Turn{
		Input:   input,
		Route:   agent.RouteIntent,
		Intent:  domain.Intent{Category: domain.CategoryGeneral},
		Agent:   domain.Agent{Name: "General Assistant"},
		Display: report.Reply("you said " + input),
	}
}

func newTestCLI(eng *fakeEngine, in string, showIntent, spinner bool) (*CLI, *bytes.Buffer) {
	var out bytes.Buffer
	plain := PlainStyles()
	cli := NewCLI(CLIConfig{
		Engine:     eng,
		ShowIntent: showIntent,
		Spinner:    spinner,
		Styles:     &plain,
		Logger:     testLogger(),
		In:         strings.NewReader(in),
		Out:        &out,
	})
	return cli, &out
}

func TestCLI_Start(t *testing.T) {
	eng := &fakeEngine{turn: echoTurn}
	cli, out := newTestCLI(eng, "hello\n\n  tell me about rust  \n/quit\nignored\n", true, false)

	if err := cli.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(eng.inputs) != 2 || eng.inputs[1] != "tell me about rust" {
		t.Fatalf("unexpected inputs: %q", eng.inputs)
	}
	got := out.String()
	for _, want := range []string{
		"Intent: general → [General Assistant]",
		"you said hello",
		"you said tell me about rust",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "ignored") {
		t.Fatal("input after /quit must not be processed")
	}
}

func TestCLI_HidesIntentWhenDisabled(t *testing.T) {
	eng := &fakeEngine{turn: echoTurn}
	cli, out := newTestCLI(eng, "", false, false)
	cli.RunOnce(context.Background(), "hi")
	if strings.Contains(out.String(), "Intent:") {
		t.Fatalf("intent header should be hidden:\n%s", out.String())
	}
}

func TestCLI_RunOnceReportsFailure(t *testing.T) {
	eng := &fakeEngine{turn: func(input string) *agent.Turn {
		return &agent.Turn{Input: input, Route: agent.RouteDirect, Display: report.Failure(&domain.ToolExecutionError{Tool: "execute"})}
	}}
	cli, _ := newTestCLI(eng, "", true, true)
	if cli.RunOnce(context.Background(), "false") {
		t.Fatal("failed turn should report false")
	}
	if cli.thinking {
		t.Fatal("spinner must be stopped after a turn")
	}
}

func TestStyles_RenderDiff(t *testing.T) {
	d := report.Display{
		Kind:  report.KindDiff,
		Title: "⏺ Edit(Cargo.toml)",
		Body:  "  ⎿  Updated Cargo.toml with 1 addition and 0 removals\n        6   serde = \"1\"\n        7 + tokio = \"1\"",
	}
	got := PlainStyles().Render(d)
	want := d.Title + "\n" + d.Body
	if got != want {
		t.Fatalf("plain render changed content:\n%s", got)
	}
	if m := diffLine.FindStringSubmatch("        7 + tokio"); m == nil || m[1] != "+" {
		t.Fatalf("diff line not recognised: %v", m)
	}
	if m := diffLine.FindStringSubmatch("  ⎿  Updated Cargo.toml"); m != nil {
		t.Fatalf("summary line should not match: %v", m)
	}
}
