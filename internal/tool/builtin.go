package tool

import (
	"log/slog"

	"ada/internal/domain"
)

// Options configures the built-in tool catalog.
type Options struct {
	WorkDir string

	ShellTimeoutSeconds int
	ShellMaxOutputBytes int
	GitTimeoutSeconds   int
	ReadMaxBytes        int64
	TreeMaxDepth        int

	WebTimeoutSeconds int
	WebMaxBytes       int64
	Renderer          PageRenderer
}

// Builtins returns every built-in tool.
func Builtins(opts Options) []domain.Tool {
	return []domain.Tool{
		NewGrepTool(opts.WorkDir),
		NewGlobTool(opts.WorkDir),
		NewSearchDirectoryTool(opts.WorkDir),
		NewReadFileTool(opts.WorkDir, opts.ReadMaxBytes),
		NewEditTool(opts.WorkDir),
		NewWriteFilesTool(opts.WorkDir),
		NewFileOpsTool(opts.WorkDir),
		NewListDirectoryTool(opts.WorkDir),
		NewTreeTool(opts.WorkDir, opts.TreeMaxDepth),
		NewGitTool(opts.WorkDir, opts.GitTimeoutSeconds, opts.ShellMaxOutputBytes),
		NewShellTool(ShellConfig{
			WorkingDir:     opts.WorkDir,
			TimeoutSeconds: opts.ShellTimeoutSeconds,
			MaxOutputBytes: opts.ShellMaxOutputBytes,
		}),
		NewWebFetchTool(WebFetchConfig{
			TimeoutSeconds: opts.WebTimeoutSeconds,
			MaxBytes:       opts.WebMaxBytes,
			Renderer:       opts.Renderer,
		}),
	}
}

// NewBuiltinRegistry registers every built-in tool and freezes the registry.
func NewBuiltinRegistry(opts Options, logger *slog.Logger) *Registry {
	reg := NewRegistry(logger)
	reg.MustRegister(Builtins(opts)...)
	reg.Freeze()
	return reg
}
