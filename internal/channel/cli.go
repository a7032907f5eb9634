// Package channel is the interactive terminal front end.
package channel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"ada/internal/agent"
)

// Processor runs one turn per input line.
type Processor interface {
	Process(ctx context.Context, input string) *agent.Turn
	OnState(fn agent.StateFunc)
}

// CLI is the read-eval-print loop. One turn runs at a time; a spinner
// shows the engine state while it does.
type CLI struct {
	engine     Processor
	logger     *slog.Logger
	in         io.Reader
	out        io.Writer
	styles     Styles
	showIntent bool
	spinner    bool

	mu        sync.Mutex
	label     string
	thinking  bool
	thinkStop chan struct{}
	thinkDone chan struct{}
}

type CLIConfig struct {
	Engine     Processor
	ShowIntent bool
	Spinner    bool
	Styles     *Styles // nil = DefaultStyles
	Logger     *slog.Logger
	In         io.Reader
	Out        io.Writer
}

func NewCLI(cfg CLIConfig) *CLI {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	styles := DefaultStyles()
	if cfg.Styles != nil {
		styles = *cfg.Styles
	}
	c := &CLI{
		engine:     cfg.Engine,
		logger:     cfg.Logger,
		in:         cfg.In,
		out:        cfg.Out,
		styles:     styles,
		showIntent: cfg.ShowIntent,
		spinner:    cfg.Spinner,
	}
	cfg.Engine.OnState(c.onState)
	return c
}

var stateLabels = map[agent.State]string{
	agent.StateMatching:    "Matching...",
	agent.StateDirectCall:  "Running...",
	agent.StateClassifying: "Classifying intent...",
	agent.StateSelecting:   "Selecting tool...",
	agent.StateInvoking:    "Running tool...",
	agent.StateReporting:   "Formatting...",
}

// Start runs the REPL and blocks until EOF, /quit, or ctx is cancelled.
func (c *CLI) Start(ctx context.Context) error {
	fmt.Fprintln(c.out, "Ada. Type a request or a shell command and press Enter. /help for help, /quit to exit.")
	c.prompt()

	scanner := bufio.NewScanner(c.in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			fmt.Fprintln(c.out)
			return nil // EOF
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			c.prompt()
			continue
		}
		if line == "/quit" || line == "/exit" || line == "/q" {
			c.logger.Debug("user requested quit")
			return nil
		}

		c.RunOnce(ctx, line)
		c.prompt()
	}
}

// RunOnce processes a single input and prints its display.
// It returns false when the turn ended in an error display.
func (c *CLI) RunOnce(ctx context.Context, input string) bool {
	turn := c.engine.Process(ctx, input)
	c.stopThinking()

	if c.showIntent {
		if h := turn.Header(); h != "" {
			fmt.Fprintln(c.out, c.styles.Header.Render(h))
		}
	}
	if out := c.styles.Render(turn.Display); out != "" {
		fmt.Fprintln(c.out, out)
	}
	return turn.Success()
}

func (c *CLI) prompt() {
	fmt.Fprint(c.out, c.styles.Prompt.Render("ada>")+" ")
}

func (c *CLI) onState(s agent.State) {
	if !c.spinner {
		return
	}
	if s == agent.StateIdle {
		c.stopThinking()
		return
	}
	label, ok := stateLabels[s]
	if !ok {
		return
	}
	c.mu.Lock()
	c.label = label
	c.mu.Unlock()
	c.startThinking()
}

func (c *CLI) startThinking() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.thinking {
		return
	}
	c.thinking = true
	c.thinkStop = make(chan struct{})
	c.thinkDone = make(chan struct{})
	go func(stop, done chan struct{}) {
		defer close(done)
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		i := 0
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				fmt.Fprint(c.out, "\r\033[K")
				return
			case <-ticker.C:
				c.mu.Lock()
				label := c.label
				c.mu.Unlock()
				fmt.Fprintf(c.out, "\r\033[K%s", c.styles.Spinner.Render(frames[i%len(frames)]+" "+label))
				i++
			}
		}
	}(c.thinkStop, c.thinkDone)
}

func (c *CLI) stopThinking() {
	c.mu.Lock()
	if !c.thinking {
		c.mu.Unlock()
		return
	}
	c.thinking = false
	close(c.thinkStop)
	done := c.thinkDone
	c.mu.Unlock()
	<-done
}
