package channel

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ada/internal/report"
)

var (
	accent      = lipgloss.Color("#8BC34A")
	destructive = lipgloss.Color("#e53935")
	info        = lipgloss.Color("#2196F3")
	muted       = lipgloss.Color("#6b7280")
)

// Styles renders report displays for a terminal.
type Styles struct {
	Prompt  lipgloss.Style
	Header  lipgloss.Style
	Title   lipgloss.Style
	Error   lipgloss.Style
	Added   lipgloss.Style
	Removed lipgloss.Style
	Context lipgloss.Style
	Spinner lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Prompt:  lipgloss.NewStyle().Foreground(accent).Bold(true),
		Header:  lipgloss.NewStyle().Foreground(info).Italic(true),
		Title:   lipgloss.NewStyle().Bold(true),
		Error:   lipgloss.NewStyle().Foreground(destructive).Bold(true),
		Added:   lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")),
		Removed: lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
		Context: lipgloss.NewStyle().Foreground(muted),
		Spinner: lipgloss.NewStyle().Foreground(muted),
	}
}

// PlainStyles renders without any escape codes.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{plain, plain, plain, plain, plain, plain, plain, plain}
}

// diffLine matches a rendered diff line: line number then sign.
var diffLine = regexp.MustCompile(`^\s+\d+ ([+\- ]) `)

// Render styles a display for terminal output.
func (s Styles) Render(d report.Display) string {
	var b strings.Builder
	if d.Title != "" {
		title := s.Title
		if d.Kind == report.KindError {
			title = s.Error
		}
		b.WriteString(title.Render(d.Title))
		if d.Body != "" {
			b.WriteByte('\n')
		}
	}
	if d.Kind != report.KindDiff {
		b.WriteString(d.Body)
		return b.String()
	}

	lines := strings.Split(d.Body, "\n")
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		m := diffLine.FindStringSubmatch(line)
		switch {
		case m == nil:
			b.WriteString(line)
		case m[1] == "+":
			b.WriteString(s.Added.Render(line))
		case m[1] == "-":
			b.WriteString(s.Removed.Render(line))
		default:
			b.WriteString(s.Context.Render(line))
		}
	}
	return b.String()
}
