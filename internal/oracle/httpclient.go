package oracle

import (
	"net"
	"net/http"
	"time"
)

const defaultBackendTimeout = 120 * time.Second

// newHTTPClient builds the client for one backend. Each backend talks to a
// single host, and an intent turn makes two calls to it back to back
// (classify, then select), so the second call reuses the kept-alive
// connection instead of paying for another TLS handshake.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultBackendTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          4,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       5 * time.Minute,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
		},
	}
}
