package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewBridge_Defaults(t *testing.T) {
	b := NewBridge(BridgeConfig{})
	if b.timeout != defaultRenderTimeout {
		t.Errorf("timeout: got %v", b.timeout)
	}
	if b.settle != defaultSettleDelay {
		t.Errorf("settle: got %v", b.settle)
	}
	if b.logger == nil {
		t.Error("logger should default")
	}
}

func TestBridge_Render(t *testing.T) {
	path := FindChrome()
	if path == "" {
		t.Skip("no Chrome binary available")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div id="out"></div><script>document.getElementById("out").textContent = "from-js";</script></body></html>`)
	}))
	defer srv.Close()

	b := NewBridge(BridgeConfig{ExecPath: path, Timeout: 20 * time.Second, Settle: 100 * time.Millisecond})
	html, err := b.Render(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, "from-js") {
		t.Fatalf("script output missing from rendered html: %q", html)
	}
}
