package tool

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ada/internal/domain"
)

const defaultTreeDepth = 3

// TreeTool renders a directory hierarchy.
type TreeTool struct {
	workDir  string
	maxDepth int
}

func NewTreeTool(workDir string, maxDepth int) *TreeTool {
	if maxDepth <= 0 {
		maxDepth = defaultTreeDepth
	}
	return &TreeTool{workDir: workDir, maxDepth: maxDepth}
}

func (t *TreeTool) Name() string              { return "tree" }
func (t *TreeTool) Category() domain.Category { return domain.CategoryFileOps }
func (t *TreeTool) Description() string {
	return "Show the directory structure as a tree. Respects .gitignore."
}
func (t *TreeTool) Schema() domain.Schema {
	return domain.Schema{Params: []domain.Param{
		{Name: "path", Type: domain.TypeString, Description: "Root directory (default: current directory)"},
		{Name: "max_depth", Type: domain.TypeInteger, Description: fmt.Sprintf("Maximum depth (default: %d)", t.maxDepth)},
	}}
}

type treeNode struct {
	name     string
	dir      bool
	children map[string]*treeNode
}

func (n *treeNode) child(name string, dir bool) *treeNode {
	if n.children == nil {
		n.children = make(map[string]*treeNode)
	}
	c, ok := n.children[name]
	if !ok {
		c = &treeNode{name: name, dir: dir}
		n.children[name] = c
	}
	return c
}

func (t *TreeTool) Execute(ctx context.Context, args map[string]any) (domain.Output, error) {
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
		return domain.Output{}, fmt.Errorf("tree %s: %w", root, err)
	}
	if !info.IsDir() {
		return domain.Output{}, fmt.Errorf("%s is not a directory", root)
	}
	depth := ArgsInt(args, "max_depth", t.maxDepth)
	if depth <= 0 {
		depth = t.maxDepth
	}

	top := &treeNode{name: filepath.Base(resolved), dir: true}
	dirs, files := 0, 0
	w := newWalker(resolved, walkOptions{maxDepth: depth})
	err = w.walk(ctx, func(_, rel string, d fs.DirEntry) error {
		node := top
		parts := strings.Split(rel, "/")
		for i, p := range parts {
			node = node.child(p, i < len(parts)-1 || d.IsDir())
		}
		if d.IsDir() {
			dirs++
		} else {
			files++
		}
		return nil
	})
	if err != nil {
		return domain.Output{}, fmt.Errorf("tree %s: %w", root, err)
	}

	var b strings.Builder
	b.WriteString(top.name + "/\n")
	renderTree(&b, top, "")
	fmt.Fprintf(&b, "\n%d directories, %d files", dirs, files)
	return domain.Output{Text: b.String()}, nil
}

// renderTree writes children sorted with directories first.
func renderTree(b *strings.Builder, n *treeNode, prefix string) {
	kids := make([]*treeNode, 0, len(n.children))
	for _, c := range n.children {
		kids = append(kids, c)
	}
	sort.Slice(kids, func(i, j int) bool {
		if kids[i].dir != kids[j].dir {
			return kids[i].dir
		}
		return kids[i].name < kids[j].name
	})
	for i, c := range kids {
		connector, next := "├── ", "│   "
		if i == len(kids)-1 {
			connector, next = "└── ", "    "
		}
		name := c.name
		if c.dir {
			name += "/"
		}
		b.WriteString(prefix + connector + name + "\n")
		renderTree(b, c, prefix+next)
	}
}

var _ domain.Tool = (*TreeTool)(nil)
