package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"ada/internal/agent"
	"ada/internal/audit"
	"ada/internal/browser"
	"ada/internal/config"
	"ada/internal/tool"
)

// apiKeyEnv names the environment fallback each backend reads.
var apiKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on your Ada installation",
		Long: `Verifies that the configuration, oracle providers, audit database and
the commands Ada shells out to are set up. Reports pass/fail for each check.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := &doctor{out: cmd.OutOrStdout(), lookPath: exec.LookPath}
			return d.run(resolveConfigPath())
		},
	}
}

type doctor struct {
	out      io.Writer
	lookPath func(string) (string, error)

	passed, warned, failed int
}

func (d *doctor) run(cfgPath string) error {
	fmt.Fprintf(d.out, "Ada Doctor v%s\n", version)
	fmt.Fprintf(d.out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	cfg, err := config.Load(cfgPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		d.warn("Config file", fmt.Sprintf("not found at %s (using defaults; run 'ada init')", cfgPath))
		cfg, _ = config.LoadOrDefault(cfgPath)
	case err != nil:
		d.fail("Config validation", err.Error())
		return d.summary()
	default:
		d.pass("Config file", cfgPath)
	}

	if cfg.General.Workspace == "" {
		d.warn("Workspace", "not configured (using current directory)")
	} else if info, err := os.Stat(cfg.General.Workspace); err != nil || !info.IsDir() {
		d.fail("Workspace", fmt.Sprintf("not a directory: %s", cfg.General.Workspace))
	} else {
		d.pass("Workspace", cfg.General.Workspace)
	}

	d.checkProviders(cfg)

	if table, err := agent.LoadTable(cfg.Routing.AgentsFile, slog.New(slog.DiscardHandler)); err != nil {
		d.fail("Agents", err.Error())
	} else if err := table.Validate(tool.NewBuiltinRegistry(tool.Options{WorkDir: os.TempDir()}, slog.New(slog.DiscardHandler))); err != nil {
		d.fail("Agents", err.Error())
	} else if cfg.Routing.AgentsFile != "" {
		d.pass("Agents", cfg.Routing.AgentsFile)
	} else {
		d.pass("Agents", "built-in table")
	}

	if cfg.Audit.Enabled {
		if err := checkAudit(cfg.Audit.DBPath); err != nil {
			d.fail("Audit log", err.Error())
		} else {
			d.pass("Audit log", cfg.Audit.DBPath)
		}
	}

	if p, err := d.lookPath("git"); err != nil {
		d.warn("git", "not found on PATH (git tool will fail)")
	} else {
		d.pass("git", p)
	}

	if cfg.Routing.DirectCommands {
		wl := cfg.Routing.Whitelist
		if wl == nil {
			wl = agent.DefaultWhitelist
		}
		found := 0
		for _, c := range wl {
			if _, err := d.lookPath(c); err == nil {
				found++
			}
		}
		d.pass("Direct commands", fmt.Sprintf("%d of %d whitelisted commands on PATH", found, len(wl)))
	}

	if cfg.Tools.Web.Render {
		path := cfg.Tools.Web.ChromePath
		if path == "" {
			path = browser.FindChrome()
		}
		if path == "" {
			d.fail("Chrome", "tools.web.render is on but no Chrome binary was found")
		} else {
			d.pass("Chrome", path)
		}
	}

	if cfg.General.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.General.LogFile), 0o755); err != nil {
			d.warn("Log file", fmt.Sprintf("cannot create log directory: %v", err))
		} else {
			d.pass("Log file", cfg.General.LogFile)
		}
	}

	return d.summary()
}

func (d *doctor) checkProviders(cfg *config.Config) {
	def, ok := cfg.Providers[cfg.General.DefaultProvider]
	switch {
	case !ok:
		d.fail("Default provider", fmt.Sprintf("%q is not configured", cfg.General.DefaultProvider))
	case !def.Enabled:
		d.fail("Default provider", fmt.Sprintf("%s is disabled", cfg.General.DefaultProvider))
	default:
		d.pass("Default provider", cfg.General.DefaultProvider)
	}

	for _, name := range sortedProviders(cfg) {
		p := cfg.Providers[name]
		if !p.Enabled {
			continue
		}
		env, needsKey := apiKeyEnv[name]
		switch {
		case !needsKey:
			d.pass("Provider: "+name, p.APIBase)
		case p.APIKey != "":
			d.pass("Provider: "+name, "API key configured")
		case os.Getenv(env) != "":
			d.pass("Provider: "+name, "API key from "+env)
		default:
			d.warn("Provider: "+name, "enabled but no API key (set apiKey or "+env+")")
		}
	}
}

func (d *doctor) summary() error {
	fmt.Fprintf(d.out, "\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(d.out, "Results: %d passed, %d warnings, %d failed\n", d.passed, d.warned, d.failed)
	if d.failed > 0 {
		return fmt.Errorf("%d check(s) failed", d.failed)
	}
	return nil
}

func checkAudit(dbPath string) error {
	store, err := audit.NewStore(dbPath, slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}
	return store.Close()
}

func (d *doctor) pass(check, detail string) {
	d.passed++
	fmt.Fprintf(d.out, "  [PASS] %-20s %s\n", check, detail)
}

func (d *doctor) fail(check, detail string) {
	d.failed++
	fmt.Fprintf(d.out, "  [FAIL] %-20s %s\n", check, detail)
}

func (d *doctor) warn(check, detail string) {
	d.warned++
	fmt.Fprintf(d.out, "  [WARN] %-20s %s\n", check, detail)
}

func sortedProviders(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
