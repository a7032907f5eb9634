package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ada/internal/agent"
	"ada/internal/audit"
	"ada/internal/browser"
	"ada/internal/config"
	"ada/internal/domain"
	"ada/internal/oracle"
	"ada/internal/tool"
)

// app is everything one process needs to run turns.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	workDir string
	tools   *tool.Registry
	engine  *agent.Engine
	audit   *audit.Store
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "err", err)
		}
	}
}

// loadConfig reads the config file, falling back to defaults when it is
// missing, and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(resolveConfigPath())
	if err != nil {
		return nil, err
	}
	if providerFlag != "" {
		cfg.General.DefaultProvider = providerFlag
	}
	if logLevelFlag != "" {
		cfg.General.LogLevel = logLevelFlag
	}
	return cfg, nil
}

// newLogger builds the process logger. With a log file the output is JSON,
// so that the REPL's own output stays clean.
func newLogger(gc config.GeneralConfig) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: parseLevel(gc.LogLevel)}
	if gc.LogFile == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(gc.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(gc.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, opts)), f, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func resolveWorkDir(cfg *config.Config) (string, error) {
	dir := workDirFlag
	if dir == "" {
		dir = cfg.General.Workspace
	}
	if dir == "" {
		return os.Getwd()
	}
	abs, err := filepath.Abs(config.ExpandPath(dir))
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("workspace: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("workspace %s is not a directory", abs)
	}
	return abs, nil
}

// bootstrap wires config → tools → agent table → oracle → engine.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, logCloser, err := newLogger(cfg.General)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}
	if logCloser != nil {
		a.closers = append(a.closers, logCloser.Close)
	}

	if a.workDir, err = resolveWorkDir(cfg); err != nil {
		a.Close()
		return nil, err
	}

	opts := tool.Options{
		WorkDir:             a.workDir,
		ShellTimeoutSeconds: cfg.Tools.Shell.Timeout,
		ShellMaxOutputBytes: cfg.Tools.Shell.MaxOutputBytes,
		GitTimeoutSeconds:   cfg.Tools.Git.Timeout,
		ReadMaxBytes:        int64(cfg.Tools.Read.MaxBytes),
		TreeMaxDepth:        cfg.Tools.Tree.MaxDepth,
		WebTimeoutSeconds:   cfg.Tools.Web.Timeout,
		WebMaxBytes:         int64(cfg.Tools.Web.MaxBytes),
	}
	if cfg.Tools.Web.Render {
		opts.Renderer = browser.NewBridge(browser.BridgeConfig{
			ProfileDir: cfg.Tools.Web.ProfileDir,
			ExecPath:   cfg.Tools.Web.ChromePath,
			Timeout:    time.Duration(cfg.Tools.Web.Timeout) * time.Second,
			Logger:     logger,
		})
	}
	a.tools = tool.NewBuiltinRegistry(opts, logger)

	table, err := agent.LoadTable(cfg.Routing.AgentsFile, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if err := table.Validate(a.tools); err != nil {
		a.Close()
		return nil, fmt.Errorf("agent table: %w", err)
	}

	var orc domain.Oracle
	llm, err := oracle.NewFactory(cfg, logger).Oracle(ctx, "")
	if err != nil {
		logger.Warn("oracle unavailable, only direct commands will work", "provider", cfg.General.DefaultProvider, "err", err)
		orc = oracle.Unavailable{Err: err}
	} else {
		orc = llm
	}

	var recorder agent.TurnRecorder
	if cfg.Audit.Enabled {
		store, err := audit.NewStore(cfg.Audit.DBPath, logger)
		if err != nil {
			logger.Warn("audit log disabled", "path", cfg.Audit.DBPath, "err", err)
		} else {
			a.audit = store
			a.closers = append(a.closers, store.Close)
			recorder = store
			if _, err := store.Prune(ctx, time.Duration(cfg.Audit.RetentionDays)*24*time.Hour); err != nil {
				logger.Warn("audit prune failed", "err", err)
			}
		}
	}

	a.engine = agent.NewEngine(agent.EngineConfig{
		Matcher: agent.NewMatcher(agent.MatcherConfig{
			Whitelist: cfg.Routing.Whitelist,
			Disabled:  !cfg.Routing.DirectCommands,
			Logger:    logger,
		}),
		Classifier: agent.NewClassifier(orc, a.workDir, logger),
		Table:      table,
		Invoker:    agent.NewInvoker(a.tools, cfg.Routing.ContextLines, logger),
		Oracle:     orc,
		Tools:      a.tools,
		WorkDir:    a.workDir,
		Recorder:   recorder,
		Logger:     logger,
	})
	logger.Debug("ready", "workdir", a.workDir, "tools", len(a.tools.Names()), "provider", cfg.General.DefaultProvider)
	return a, nil
}
