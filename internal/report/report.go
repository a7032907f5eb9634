// Package report turns tool results into display blocks for the terminal.
package report

import (
	"fmt"
	"strings"

	"ada/internal/diff"
	"ada/internal/domain"
)

// Kind is the shape of a display block.
type Kind string

const (
	KindText  Kind = "text"
	KindDiff  Kind = "diff"
	KindError Kind = "error"
)

const (
	bullet = "⏺"
	elbow  = "⎿"
	cross  = "✗"
	indent = "  "
)

// Display is a rendered block ready for the interface layer.
type Display struct {
	Kind  Kind
	Title string
	Body  string
}

func (d Display) String() string {
	switch {
	case d.Title == "":
		return d.Body
	case d.Body == "":
		return d.Title
	}
	return d.Title + "\n" + d.Body
}

// Render formats a tool result. Failed results become an error banner,
// results with diffs become diff blocks, everything else is plain text.
func Render(res domain.ToolResult) Display {
	if !res.Success {
		return renderError(res)
	}
	if res.HasDiff() {
		return renderDiffs(res)
	}
	return Display{
		Kind:  KindText,
		Title: fmt.Sprintf("%s %s", bullet, label(res.Tool)),
		Body:  res.Output,
	}
}

// Reply wraps a plain answer that involved no tool.
func Reply(text string) Display {
	return Display{Kind: KindText, Body: strings.TrimSpace(text)}
}

// Failure renders an error that happened before any tool ran.
func Failure(err error) Display {
	return Display{
		Kind:  KindError,
		Title: fmt.Sprintf("%s %s error", cross, titleCase(string(domain.KindOf(err)))),
		Body:  err.Error(),
	}
}

// Unclassified is shown when the input could not be classified.
func Unclassified(err error) Display {
	d := Display{
		Kind:  KindError,
		Title: fmt.Sprintf("%s Unable to classify request", cross),
		Body:  "Try rephrasing it, or type a shell command to run it directly.",
	}
	if err != nil {
		d.Body = err.Error() + "\n" + d.Body
	}
	return d
}

func renderError(res domain.ToolResult) Display {
	d := Failure(res.Err)
	if res.Err == nil {
		d = Display{Kind: KindError, Title: fmt.Sprintf("%s %s failed", cross, label(res.Tool))}
	}
	if out := strings.TrimSpace(res.Output); out != "" {
		if d.Body != "" {
			d.Body += "\n"
		}
		d.Body += out
	}
	return d
}

func renderDiffs(res domain.ToolResult) Display {
	paths := make([]string, len(res.Diffs))
	for i, fd := range res.Diffs {
		paths[i] = fd.Path
	}

	var b strings.Builder
	for i, fd := range res.Diffs {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeFileDiff(&b, fd)
	}
	return Display{
		Kind:  KindDiff,
		Title: fmt.Sprintf("%s %s(%s)", bullet, label(res.Tool), strings.Join(paths, ", ")),
		Body:  strings.TrimRight(b.String(), "\n"),
	}
}

func writeFileDiff(b *strings.Builder, fd *diff.FileDiff) {
	switch {
	case fd.Empty():
		fmt.Fprintf(b, "%s%s  No changes to %s\n", indent, elbow, fd.Path)
		return
	case fd.IsNew:
		fmt.Fprintf(b, "%s%s  Created %s with %d line%s\n", indent, elbow, fd.Path, fd.Additions, plural(fd.Additions))
	case fd.IsDelete:
		fmt.Fprintf(b, "%s%s  Emptied %s (%d line%s removed)\n", indent, elbow, fd.Path, fd.Removals, plural(fd.Removals))
	default:
		fmt.Fprintf(b, "%s%s  Updated %s with %s\n", indent, elbow, fd.Path, fd.Summary())
	}
	for i, h := range fd.Hunks {
		if i > 0 {
			fmt.Fprintf(b, "%s     ...\n", indent)
		}
		for _, l := range h.Lines {
			fmt.Fprintf(b, "%s   %4d %s %s\n", indent, l.Number, l.Type, l.Content)
		}
	}
}

// label turns a tool name into a display label: write_files → Write files.
func label(tool string) string {
	if tool == "" {
		return "Tool"
	}
	return titleCase(strings.ReplaceAll(tool, "_", " "))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
