package tool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"ada/internal/domain"
)

const (
	defaultFetchTimeout  = 30
	defaultFetchMaxBytes = 512 * 1024
	userAgentString      = "ada/0.1"
)

// PageRenderer renders a page in a browser and returns the resulting HTML.
type PageRenderer interface {
	Render(ctx context.Context, url string) (string, error)
}

type WebFetchConfig struct {
	TimeoutSeconds int
	MaxBytes       int64
	Renderer       PageRenderer // optional; enables render=true
	Client         *http.Client
}

// WebFetchTool fetches a URL and converts the body to markdown, text or html.
type WebFetchTool struct {
	client   *http.Client
	maxBytes int64
	renderer PageRenderer
}

func NewWebFetchTool(cfg WebFetchConfig) *WebFetchTool {
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = defaultFetchTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultFetchMaxBytes
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	}
	return &WebFetchTool{client: client, maxBytes: cfg.MaxBytes, renderer: cfg.Renderer}
}

func (t *WebFetchTool) Name() string              { return "webfetch" }
func (t *WebFetchTool) Category() domain.Category { return domain.CategoryWeb }
func (t *WebFetchTool) Description() string {
	return "Fetch the content of a web page by URL. Returns markdown by default; text and html formats are also available."
}
func (t *WebFetchTool) Schema() domain.Schema {
	return domain.Schema{Params: []domain.Param{
		{Name: "url", Type: domain.TypeString, Description: "Full URL to fetch (must start with http:// or https://)", Required: true},
		{Name: "format", Type: domain.TypeString, Description: "Output format (default: markdown)", Enum: []string{"markdown", "text", "html"}},
		{Name: "render", Type: domain.TypeBoolean, Description: "Render JavaScript in a headless browser first (default: false)"},
	}}
}

func (t *WebFetchTool) Execute(ctx context.Context, args map[string]any) (domain.Output, error) {
	rawURL := ArgsString(args, "url")
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return domain.Output{}, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return domain.Output{}, fmt.Errorf("unsupported URL scheme: %q (only http/https allowed)", parsed.Scheme)
	}
	format := ArgsString(args, "format")
	if format == "" {
		format = "markdown"
	}

	var content, contentType string
	if ArgsBool(args, "render", false) {
		if t.renderer == nil {
			return domain.Output{}, fmt.Errorf("browser rendering is not enabled")
		}
		content, err = t.renderer.Render(ctx, rawURL)
		if err != nil {
			return domain.Output{}, fmt.Errorf("render %s: %w", rawURL, err)
		}
		contentType = "text/html"
	} else {
		content, contentType, err = t.fetch(ctx, rawURL)
		if err != nil {
			return domain.Output{}, err
		}
	}

	if strings.Contains(contentType, "text/html") {
		content, err = convertHTML(content, format)
		if err != nil {
			return domain.Output{}, err
		}
	}

	if int64(len(content)) > t.maxBytes {
		content = cutUTF8(content, int(t.maxBytes)) + fmt.Sprintf("\n\n[Content truncated to %d bytes]", t.maxBytes)
	}
	return domain.Output{Text: content}, nil
}

func (t *WebFetchTool) fetch(ctx context.Context, rawURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgentString)
	req.Header.Set("Accept", "text/html,text/plain,text/markdown;q=0.9,*/*;q=0.8")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	// Read a little past the output cap; conversion usually shrinks HTML.
	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBytes*4))
	if err != nil {
		return "", "", fmt.Errorf("read body: %w", err)
	}
	return string(body), resp.Header.Get("Content-Type"), nil
}

func convertHTML(content, format string) (string, error) {
	switch format {
	case "text":
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
		if err != nil {
			return "", fmt.Errorf("parse HTML: %w", err)
		}
		doc.Find("script, style, noscript").Remove()
		return strings.Join(strings.Fields(doc.Find("body").Text()), " "), nil

	case "html":
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
		if err != nil {
			return "", fmt.Errorf("parse HTML: %w", err)
		}
		body, err := doc.Find("body").Html()
		if err != nil {
			return "", fmt.Errorf("extract body: %w", err)
		}
		return "<html>\n<body>\n" + strings.TrimSpace(body) + "\n</body>\n</html>", nil

	default:
		converter := md.NewConverter("", true, nil)
		out, err := converter.ConvertString(content)
		if err != nil {
			return "", fmt.Errorf("convert HTML to markdown: %w", err)
		}
		return out, nil
	}
}

var _ domain.Tool = (*WebFetchTool)(nil)
