package domain

import "strings"

// Category is the classified kind of a user request.
type Category string

const (
	CategoryCodeSearch Category = "code-search"
	CategoryFileOps    Category = "file-ops"
	CategoryGit        Category = "git"
	CategoryShell      Category = "shell"
	CategoryWeb        Category = "web"
	CategoryGeneral    Category = "general"
)

// Categories is the fixed category enumeration sent to the oracle.
var Categories = []Category{
	CategoryCodeSearch,
	CategoryFileOps,
	CategoryGit,
	CategoryShell,
	CategoryWeb,
	CategoryGeneral,
}

// categoryAliases maps spellings produced by models (and older prompts) to categories.
var categoryAliases = map[string]Category{
	"code-search": CategoryCodeSearch,
	"code_search": CategoryCodeSearch,
	"codesearch":  CategoryCodeSearch,
	"search":      CategoryCodeSearch,
	"file-ops":    CategoryFileOps,
	"file_ops":    CategoryFileOps,
	"fileops":     CategoryFileOps,
	"files":       CategoryFileOps,
	"git":         CategoryGit,
	"shell":       CategoryShell,
	"execution":   CategoryShell,
	"execute":     CategoryShell,
	"web":         CategoryWeb,
	"general":     CategoryGeneral,
}

// ParseCategory normalizes a raw category string. ok is false when the
// string does not name a known category.
func ParseCategory(raw string) (Category, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Trim(s, "\"'`.,;:!")
	c, ok := categoryAliases[s]
	return c, ok
}

// Intent is the classification of one user turn.
type Intent struct {
	Category Category
	Input    string
	Fallback bool  // true when the classifier failed closed to general
	Err      error // the oracle failure behind a fallback, if any
}

// Agent is a bounded subset of the tool catalog reachable for one turn.
type Agent struct {
	Name     string
	Category Category
	Tools    []string
}

// Allows reports whether the agent may invoke the named tool.
func (a Agent) Allows(tool string) bool {
	for _, t := range a.Tools {
		if t == tool {
			return true
		}
	}
	return false
}
