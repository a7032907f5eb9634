package tool

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// alwaysSkipped directories are never descended into.
var alwaysSkipped = map[string]bool{
	".git":         true,
	"node_modules": true,
	"target":       true,
	"vendor":       true,
	"__pycache__":  true,
}

type walkOptions struct {
	hidden   bool // include dotfiles
	maxDepth int  // 0 means unlimited
}

// walker traverses a directory tree honoring the root .gitignore.
type walker struct {
	root    string
	opts    walkOptions
	matcher *ignore.GitIgnore
}

func newWalker(root string, opts walkOptions) *walker {
	w := &walker{root: root, opts: opts}
	gi := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(gi); err == nil {
		if m, err := ignore.CompileIgnoreFile(gi); err == nil {
			w.matcher = m
		}
	}
	return w
}

func (w *walker) ignored(rel string, isDir bool) bool {
	if w.matcher == nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if w.matcher.MatchesPath(rel) {
		return true
	}
	return isDir && w.matcher.MatchesPath(rel+"/")
}

// walk calls fn for every entry below root that survives the filters.
// rel is slash-separated and relative to root.
func (w *walker) walk(ctx context.Context, fn func(path, rel string, d fs.DirEntry) error) error {
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == w.root {
				return err
			}
			if errors.Is(err, fs.ErrPermission) {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == w.root {
			return nil
		}

		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() && alwaysSkipped[name] {
			return filepath.SkipDir
		}
		if !w.opts.hidden && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if w.ignored(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		depth := strings.Count(filepath.ToSlash(rel), "/") + 1
		if w.opts.maxDepth > 0 && depth > w.opts.maxDepth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		return fn(path, filepath.ToSlash(rel), d)
	})
}
