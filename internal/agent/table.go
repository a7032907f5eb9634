package agent

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ada/internal/domain"
)

// DirectAgentName scopes calls produced by the direct-command matcher.
const DirectAgentName = "Direct"

// ToolLookup is the slice of the registry the table needs for validation.
type ToolLookup interface {
	Get(name string) domain.Tool
}

// Table maps categories to agents. It is built once and read-only afterwards.
type Table struct {
	agents map[domain.Category]domain.Agent
	direct domain.Agent
}

// DefaultTable returns the built-in category → agent mapping.
func DefaultTable() *Table {
	return newTable([]domain.Agent{
		{Name: "Code Search", Category: domain.CategoryCodeSearch, Tools: []string{"grep", "glob", "search_directory", "read_file"}},
		{Name: "File Operations", Category: domain.CategoryFileOps, Tools: []string{"read_file", "edit", "write_files", "file_ops", "list_directory", "tree"}},
		{Name: "Git Operations", Category: domain.CategoryGit, Tools: []string{"git", "read_file"}},
		{Name: "Shell Execution", Category: domain.CategoryShell, Tools: []string{"execute"}},
		{Name: "Web Fetching", Category: domain.CategoryWeb, Tools: []string{"webfetch"}},
		{Name: "General Assistant", Category: domain.CategoryGeneral, Tools: nil},
	})
}

func newTable(agents []domain.Agent) *Table {
	t := &Table{
		agents: make(map[domain.Category]domain.Agent, len(agents)),
		direct: domain.Agent{Name: DirectAgentName, Category: domain.CategoryShell, Tools: []string{"execute", "git"}},
	}
	for _, a := range agents {
		t.agents[a.Category] = a
	}
	return t
}

// Select returns the agent for category. Unknown categories get the general agent.
func (t *Table) Select(category domain.Category) domain.Agent {
	if a, ok := t.agents[category]; ok {
		return cloneAgent(a)
	}
	return cloneAgent(t.agents[domain.CategoryGeneral])
}

// Direct returns the agent that scopes direct commands.
func (t *Table) Direct() domain.Agent {
	return cloneAgent(t.direct)
}

// Agents returns every agent in category order.
func (t *Table) Agents() []domain.Agent {
	out := make([]domain.Agent, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		if a, ok := t.agents[c]; ok {
			out = append(out, cloneAgent(a))
		}
	}
	return out
}

// Validate checks that every tool named by an agent is registered and that
// the general agent, the fallback for failed classification, has none.
func (t *Table) Validate(reg ToolLookup) error {
	var errs []error
	if g := t.agents[domain.CategoryGeneral]; len(g.Tools) > 0 {
		errs = append(errs, fmt.Errorf("agent %q must not have tools, got %v", g.Name, g.Tools))
	}
	check := func(a domain.Agent) {
		for _, name := range a.Tools {
			if reg.Get(name) == nil {
				errs = append(errs, fmt.Errorf("agent %q references unknown tool %q", a.Name, name))
			}
		}
	}
	for _, a := range t.Agents() {
		check(a)
	}
	check(t.direct)
	return errors.Join(errs...)
}

func cloneAgent(a domain.Agent) domain.Agent {
	a.Tools = append([]string(nil), a.Tools...)
	return a
}

// agentFile is the YAML override format:
//
//	agents:
//	  code-search:
//	    name: Code Search
//	    tools: [grep, glob, read_file]
//	direct:
//	  tools: [execute, git]
type agentFile struct {
	Agents map[string]agentSpec `yaml:"agents"`
	Direct *agentSpec           `yaml:"direct,omitempty"`
}

type agentSpec struct {
	Name  string   `yaml:"name,omitempty"`
	Tools []string `yaml:"tools"`
}

// LoadTable reads agent overrides from a YAML file on top of DefaultTable.
// A missing file yields the default table.
func LoadTable(path string, logger *slog.Logger) (*Table, error) {
	t := DefaultTable()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Debug("agents file does not exist, using defaults", "path", path)
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read agents file: %w", err)
	}

	var f agentFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse agents file %s: %w", path, err)
	}

	for raw, spec := range f.Agents {
		category, ok := domain.ParseCategory(raw)
		if !ok {
			return nil, fmt.Errorf("agents file %s: unknown category %q", path, raw)
		}
		if category == domain.CategoryGeneral && len(spec.Tools) > 0 {
			return nil, fmt.Errorf("agents file %s: the %s agent cannot be given tools", path, category)
		}
		a := t.agents[category]
		if spec.Name != "" {
			a.Name = strings.TrimSpace(spec.Name)
		}
		a.Tools = append([]string(nil), spec.Tools...)
		t.agents[category] = a
		logger.Info("agent override loaded", "category", category, "tools", len(a.Tools))
	}
	if f.Direct != nil {
		if f.Direct.Name != "" {
			t.direct.Name = f.Direct.Name
		}
		t.direct.Tools = append([]string(nil), f.Direct.Tools...)
	}
	return t, nil
}
