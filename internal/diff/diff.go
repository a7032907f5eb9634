// Package diff computes line-level diffs between two versions of a file.
// It is a pure function of (before, after) and knows nothing about where the
// content came from.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines kept around each change.
const DefaultContext = 2

// ChangeType is the kind of a diff line.
type ChangeType int

const (
	Context ChangeType = iota
	Addition
	Removal
)

func (c ChangeType) String() string {
	switch c {
	case Addition:
		return "+"
	case Removal:
		return "-"
	default:
		return " "
	}
}

// Op is one run of whole lines with the same change type.
// Text keeps its line terminators so ops can be replayed exactly.
type Op struct {
	Type ChangeType
	Text string
}

// Line is a single display line. Number is the line position in the new
// content; removed lines carry the position they were removed at.
type Line struct {
	Number  int
	Type    ChangeType
	Content string
}

// Hunk is a contiguous group of display lines.
type Hunk struct {
	Lines []Line
}

// FileDiff is the diff of one file.
type FileDiff struct {
	Path      string
	Additions int
	Removals  int
	IsNew     bool
	IsDelete  bool
	Ops       []Op   // complete edit script, before → after
	Hunks     []Hunk // changed lines with surrounding context, for display
}

// Empty reports whether before and after were identical.
func (d *FileDiff) Empty() bool {
	return d.Additions == 0 && d.Removals == 0
}

// Summary renders "N additions and M removals".
func (d *FileDiff) Summary() string {
	return fmt.Sprintf("%d addition%s and %d removal%s",
		d.Additions, plural(d.Additions), d.Removals, plural(d.Removals))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// Compute diffs before against after line by line, keeping contextLines of
// unchanged lines around each change in the display hunks. A negative
// contextLines uses DefaultContext.
func Compute(path, before, after string, contextLines int) *FileDiff {
	if contextLines < 0 {
		contextLines = DefaultContext
	}
	d := &FileDiff{
		Path:     path,
		IsNew:    before == "" && after != "",
		IsDelete: before != "" && after == "",
	}

	for _, df := range lineDiff(before, after) {
		if df.Text != "" {
			d.appendOp(opType(df.Type), df.Text)
		}
	}

	// Display lines come from newline-terminated copies so that appending to
	// a file without a final newline does not show its last line as changed.
	shown := lineDiff(terminate(before), terminate(after))
	if !hasChanges(shown) {
		shown = lineDiff(before, after)
	}

	var lines []Line
	current := 1
	for _, df := range shown {
		if df.Text == "" {
			continue
		}
		typ := opType(df.Type)
		for _, content := range splitLines(df.Text) {
			lines = append(lines, Line{Number: current, Type: typ, Content: content})
			switch typ {
			case Addition:
				d.Additions++
				current++
			case Removal:
				d.Removals++
			default:
				current++
			}
		}
	}

	d.Hunks = group(lines, contextLines)
	return d
}

func lineDiff(before, after string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	return dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)
}

func terminate(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

func hasChanges(diffs []diffmatchpatch.Diff) bool {
	for _, df := range diffs {
		if df.Type != diffmatchpatch.DiffEqual && df.Text != "" {
			return true
		}
	}
	return false
}

func opType(t diffmatchpatch.Operation) ChangeType {
	switch t {
	case diffmatchpatch.DiffInsert:
		return Addition
	case diffmatchpatch.DiffDelete:
		return Removal
	default:
		return Context
	}
}

// appendOp merges consecutive runs of the same type.
func (d *FileDiff) appendOp(typ ChangeType, text string) {
	if n := len(d.Ops); n > 0 && d.Ops[n-1].Type == typ {
		d.Ops[n-1].Text += text
		return
	}
	d.Ops = append(d.Ops, Op{Type: typ, Text: text})
}

// splitLines splits text into lines without their terminators.
func splitLines(text string) []string {
	parts := strings.SplitAfter(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(strings.TrimSuffix(p, "\n"), "\r")
	}
	return parts
}

// group keeps changed lines plus contextLines of context on either side and
// splits the result wherever unchanged lines were dropped.
func group(lines []Line, contextLines int) []Hunk {
	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.Type == Context {
			continue
		}
		lo := max(0, i-contextLines)
		hi := min(len(lines)-1, i+contextLines)
		for j := lo; j <= hi; j++ {
			keep[j] = true
		}
	}

	var (
		hunks []Hunk
		cur   *Hunk
	)
	for i, l := range lines {
		if !keep[i] {
			cur = nil
			continue
		}
		if cur == nil {
			hunks = append(hunks, Hunk{})
			cur = &hunks[len(hunks)-1]
		}
		cur.Lines = append(cur.Lines, l)
	}
	return hunks
}

// Apply replays the diff's edit script on before and returns the new content.
// It fails if before is not the content the diff was computed from.
func Apply(before string, d *FileDiff) (string, error) {
	var out strings.Builder
	rest := before
	for i, op := range d.Ops {
		switch op.Type {
		case Addition:
			out.WriteString(op.Text)
		default:
			if !strings.HasPrefix(rest, op.Text) {
				return "", fmt.Errorf("diff op %d does not match input", i)
			}
			rest = rest[len(op.Text):]
			if op.Type == Context {
				out.WriteString(op.Text)
			}
		}
	}
	if rest != "" {
		return "", fmt.Errorf("input has %d unmatched trailing bytes", len(rest))
	}
	return out.String(), nil
}
