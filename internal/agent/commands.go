package agent

import (
	"fmt"
	"runtime"
	"strings"
)

// ChatCommand represents a parsed slash command.
type ChatCommand struct {
	Name string   // command name without "/"
	Args []string // arguments after the command
	Raw  string   // original full text
}

// ParseCommand checks if input starts with "/" and parses it into a ChatCommand.
// Returns nil if the input is not a command.
func ParseCommand(text string) *ChatCommand {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return nil
	}
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return nil
	}
	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	if name == "" {
		return nil
	}
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	return &ChatCommand{Name: name, Args: args, Raw: text}
}

// version is set by the build system. Default fallback.
var version = "0.1.0"

// SetVersion sets the version string used by /version.
func SetVersion(v string) {
	version = v
}

// HandleCommand answers a slash command. ok is false for unknown commands.
func (e *Engine) HandleCommand(cmd *ChatCommand) (string, bool) {
	switch cmd.Name {
	case "help", "?":
		return e.helpText(), true
	case "tools":
		return e.toolsText(), true
	case "agents":
		return e.agentsText(), true
	case "version":
		return fmt.Sprintf("ada v%s (%s/%s, Go %s)", version, runtime.GOOS, runtime.GOARCH, runtime.Version()), true
	}
	return "", false
}

func (e *Engine) helpText() string {
	var sb strings.Builder
	sb.WriteString("Type a request in plain language, or a shell command to run it directly.\n\n")
	sb.WriteString("Commands:\n")
	sb.WriteString("  /help     Show this help message\n")
	sb.WriteString("  /tools    List available tools\n")
	sb.WriteString("  /agents   List agents and the tools each may use\n")
	sb.WriteString("  /version  Show version info\n")
	sb.WriteString("  /quit     Leave the session\n\n")
	sb.WriteString(e.agentsText())
	return strings.TrimRight(sb.String(), "\n")
}

func (e *Engine) toolsText() string {
	names := e.tools.Names()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Available tools (%d):\n", len(names))
	for _, name := range names {
		if t := e.tools.Get(name); t != nil {
			fmt.Fprintf(&sb, "  %-17s %s\n", name, t.Description())
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (e *Engine) agentsText() string {
	var sb strings.Builder
	sb.WriteString("Agents:\n")
	for _, a := range e.table.Agents() {
		tools := strings.Join(a.Tools, ", ")
		if tools == "" {
			tools = "(answers directly)"
		}
		fmt.Fprintf(&sb, "  %-12s [%s] %s\n", a.Category, a.Name, tools)
	}
	d := e.table.Direct()
	fmt.Fprintf(&sb, "  %-12s [%s] %s\n", "direct", d.Name, strings.Join(d.Tools, ", "))
	return strings.TrimRight(sb.String(), "\n")
}
