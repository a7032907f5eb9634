package tool

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"ada/internal/domain"
)

const (
	maxSearchResults = 200
	maxLineLength    = 300
	searchWorkers    = 8
)

func limitLines(lines []string) string {
	sort.Strings(lines)
	if len(lines) > maxSearchResults {
		extra := len(lines) - maxSearchResults
		lines = append(lines[:maxSearchResults], fmt.Sprintf("... (%d more results)", extra))
	}
	return strings.Join(lines, "\n")
}

// --- GrepTool ---

// GrepTool searches file contents with a regular expression.
type GrepTool struct {
	workDir string
}

func NewGrepTool(workDir string) *GrepTool {
	return &GrepTool{workDir: workDir}
}

func (t *GrepTool) Name() string              { return "grep" }
func (t *GrepTool) Category() domain.Category { return domain.CategoryCodeSearch }
func (t *GrepTool) Description() string {
	return "Search file contents for a regular expression. Returns matching lines as path:line:text."
}
func (t *GrepTool) Schema() domain.Schema {
	return domain.Schema{Params: []domain.Param{
		{Name: "pattern", Type: domain.TypeString, Description: "Regular expression to search for", Required: true},
		{Name: "path", Type: domain.TypeString, Description: "Directory or file to search (default: current directory)"},
		{Name: "case_insensitive", Type: domain.TypeBoolean, Description: "Ignore case (default: false)"},
	}}
}

func (t *GrepTool) Execute(ctx context.Context, args map[string]any) (domain.Output, error) {
	pattern := ArgsString(args, "pattern")
	if ArgsBool(args, "case_insensitive", false) {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return domain.Output{}, fmt.Errorf("invalid pattern: %w", err)
	}

	root := ArgsString(args, "path")
	if root == "" {
		root = "."
	}
	resolved, err := resolvePath(t.workDir, root)
	if err != nil {
		return domain.Output{}, err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return domain.Output{}, fmt.Errorf("search %s: %w", root, err)
	}

	if !info.IsDir() {
		lines, err := grepFile(resolved, displayPath(t.workDir, resolved), re)
		if err != nil {
			return domain.Output{}, err
		}
		if len(lines) == 0 {
			return domain.Output{Text: "No matches found"}, nil
		}
		return domain.Output{Text: limitLines(lines)}, nil
	}

	var (
		mu      sync.Mutex
		matches []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(searchWorkers)

	w := newWalker(resolved, walkOptions{})
	err = w.walk(gctx, func(path, _ string, d fs.DirEntry) error {
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		shown := displayPath(t.workDir, path)
		g.Go(func() error {
			lines, err := grepFile(path, shown, re)
			if err != nil {
				return nil
			}
			if len(lines) > 0 {
				mu.Lock()
				matches = append(matches, lines...)
				mu.Unlock()
			}
			return nil
		})
		return nil
	})
	if werr := g.Wait(); err == nil {
		err = werr
	}
	if err != nil {
		return domain.Output{}, fmt.Errorf("search %s: %w", root, err)
	}
	if len(matches) == 0 {
		return domain.Output{Text: "No matches found"}, nil
	}
	return domain.Output{Text: limitLines(matches)}, nil
}

// grepFile returns "shown:line:text" entries for matching lines.
// Files containing NUL bytes in the first chunk are treated as binary and skipped.
func grepFile(path, shown string, re *regexp.Regexp) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		if n == 1 && strings.IndexByte(line, 0) >= 0 {
			return nil, nil
		}
		if !re.MatchString(line) {
			continue
		}
		if len(line) > maxLineLength {
			line = line[:maxLineLength] + "..."
		}
		out = append(out, fmt.Sprintf("%s:%d:%s", shown, n, strings.TrimSpace(line)))
	}
	return out, sc.Err()
}

// --- GlobTool ---

// GlobTool finds files by glob pattern. ** matches across directories.
type GlobTool struct {
	workDir string
}

func NewGlobTool(workDir string) *GlobTool {
	return &GlobTool{workDir: workDir}
}

func (t *GlobTool) Name() string              { return "glob" }
func (t *GlobTool) Category() domain.Category { return domain.CategoryCodeSearch }
func (t *GlobTool) Description() string {
	return "Find files by name pattern, e.g. **/*.go or src/*.rs."
}
func (t *GlobTool) Schema() domain.Schema {
	return domain.Schema{Params: []domain.Param{
		{Name: "pattern", Type: domain.TypeString, Description: "Glob pattern (supports **)", Required: true},
		{Name: "path", Type: domain.TypeString, Description: "Directory to search from (default: current directory)"},
	}}
}

func (t *GlobTool) Execute(ctx context.Context, args map[string]any) (domain.Output, error) {
	pattern := ArgsString(args, "pattern")
	if !doublestar.ValidatePattern(pattern) {
		return domain.Output{}, fmt.Errorf("invalid glob pattern: %s", pattern)
	}
	root := ArgsString(args, "path")
	if root == "" {
		root = "."
	}
	resolved, err := resolvePath(t.workDir, root)
	if err != nil {
		return domain.Output{}, err
	}

	var files []string
	w := newWalker(resolved, walkOptions{hidden: strings.Contains(pattern, "/.") || strings.HasPrefix(pattern, ".")})
	err = w.walk(ctx, func(path, rel string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		ok, _ := doublestar.Match(pattern, rel)
		if !ok && !strings.Contains(pattern, "/") {
			ok, _ = doublestar.Match(pattern, d.Name())
		}
		if ok {
			files = append(files, displayPath(t.workDir, path))
		}
		return nil
	})
	if err != nil {
		return domain.Output{}, fmt.Errorf("glob %s: %w", root, err)
	}
	if len(files) == 0 {
		return domain.Output{Text: "No files matched the pattern"}, nil
	}
	return domain.Output{Text: limitLines(files)}, nil
}

// --- SearchDirectoryTool ---

// SearchDirectoryTool finds files and directories whose name contains a substring.
type SearchDirectoryTool struct {
	workDir string
}

func NewSearchDirectoryTool(workDir string) *SearchDirectoryTool {
	return &SearchDirectoryTool{workDir: workDir}
}

func (t *SearchDirectoryTool) Name() string              { return "search_directory" }
func (t *SearchDirectoryTool) Category() domain.Category { return domain.CategoryCodeSearch }
func (t *SearchDirectoryTool) Description() string {
	return "Search a directory recursively for files and folders whose name contains the given text (case-insensitive)."
}
func (t *SearchDirectoryTool) Schema() domain.Schema {
	return domain.Schema{Params: []domain.Param{
		{Name: "path", Type: domain.TypeString, Description: "Directory to search", Required: true},
		{Name: "pattern", Type: domain.TypeString, Description: "Text the name must contain (default: match everything)"},
	}}
}

func (t *SearchDirectoryTool) Execute(ctx context.Context, args map[string]any) (domain.Output, error) {
	root := ArgsString(args, "path")
	resolved, err := resolvePath(t.workDir, root)
	if err != nil {
		return domain.Output{}, err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return domain.Output{}, fmt.Errorf("search %s: %w", root, err)
	}
	if !info.IsDir() {
		return domain.Output{}, fmt.Errorf("%s is not a directory", root)
	}
	needle := strings.ToLower(ArgsString(args, "pattern"))

	var found []string
	w := newWalker(resolved, walkOptions{})
	err = w.walk(ctx, func(path, _ string, d fs.DirEntry) error {
		if needle != "" && !strings.Contains(strings.ToLower(d.Name()), needle) {
			return nil
		}
		entry := displayPath(t.workDir, path)
		if d.IsDir() {
			entry += "/"
		}
		found = append(found, entry)
		return nil
	})
	if err != nil {
		return domain.Output{}, fmt.Errorf("search %s: %w", root, err)
	}
	if len(found) == 0 {
		return domain.Output{Text: "No files found"}, nil
	}
	return domain.Output{Text: limitLines(found)}, nil
}

var (
	_ domain.Tool = (*GrepTool)(nil)
	_ domain.Tool = (*GlobTool)(nil)
	_ domain.Tool = (*SearchDirectoryTool)(nil)
)
