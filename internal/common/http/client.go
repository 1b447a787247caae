// internal/common/http/client.go
package http

import (
	"net/http"
	"time"
)

// Client is the shared HTTP client used by every source client. Source
// fetches carry their own per-call deadlines through context; the
// transport timeout is only a backstop for calls issued without one.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.httpClient.Do(req)
}
