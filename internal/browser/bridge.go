package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	defaultRenderTimeout = 30 * time.Second
	defaultSettleDelay   = 500 * time.Millisecond
)

// Bridge renders pages in a headless Chrome so webfetch can read
// JavaScript-built content.
type Bridge struct {
	profileDir string
	execPath   string
	timeout    time.Duration
	settle     time.Duration
	logger     *slog.Logger
}

// BridgeConfig holds configuration for the browser bridge.
type BridgeConfig struct {
	ProfileDir string        // Chrome user data directory (empty: a temporary profile)
	ExecPath   string        // Chrome binary (empty: autodetect)
	Timeout    time.Duration // per-render limit
	Settle     time.Duration // wait after the page is ready before reading the DOM
	Logger     *slog.Logger
}

func NewBridge(cfg BridgeConfig) *Bridge {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRenderTimeout
	}
	if cfg.Settle <= 0 {
		cfg.Settle = defaultSettleDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Bridge{
		profileDir: cfg.ProfileDir,
		execPath:   cfg.ExecPath,
		timeout:    cfg.Timeout,
		settle:     cfg.Settle,
		logger:     cfg.Logger,
	}
}

// DefaultProfileDir is the persistent profile location under the ada home.
func DefaultProfileDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ada", "chrome-profile")
}

// FindChrome returns the first Chrome or Chromium binary on PATH, or "".
func FindChrome() string {
	for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

// NewContext creates a new chromedp context for one render.
// The caller MUST call cancel() when done.
func (b *Bridge) NewContext(parentCtx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"),
	)
	if b.profileDir != "" {
		if err := os.MkdirAll(b.profileDir, 0o755); err != nil {
			b.logger.Error("failed to create profile dir", "dir", b.profileDir, "err", err)
		} else {
			opts = append(opts, chromedp.UserDataDir(b.profileDir))
		}
	}
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}
	// Chrome refuses to start as root with the sandbox on.
	if os.Geteuid() == 0 {
		opts = append(opts, chromedp.NoSandbox)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parentCtx, opts...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	cancelAll := func() {
		taskCancel()
		allocCancel()
	}
	return taskCtx, cancelAll
}

// Render navigates to url and returns the document's outer HTML after scripts ran.
func (b *Bridge) Render(ctx context.Context, url string) (string, error) {
	taskCtx, cancel := b.NewContext(ctx)
	defer cancel()

	taskCtx, timeoutCancel := context.WithTimeout(taskCtx, b.timeout)
	defer timeoutCancel()

	start := time.Now()
	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(b.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	b.logger.Debug("rendered page", "url", url, "bytes", len(html), "duration", time.Since(start))
	return html, nil
}
