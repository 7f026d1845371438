// Package lookup is a client for the definition service.
package lookup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/metcalfc/zoom/internal/markup"
)

// DefinePath is the endpoint that answers a (word, context) lookup.
const DefinePath = "/define"

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("bad status %d", e.Code)
	}
	return fmt.Sprintf("bad status %d: %s", e.Code, e.Body)
}

// Client issues one GET per lookup. It never retries, caches or
// deduplicates.
type Client struct {
	BaseURL string
	client  *http.Client
}

// New creates a client for the service at baseURL. A zero timeout means no
// client-side limit.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// URL builds the lookup URL for word and passage.
func URL(baseURL, word, passage string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + DefinePath)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	q := url.Values{}
	q.Set("word", word)
	q.Set("context", passage)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Page returns the raw response body, to be swapped in as a whole view.
func (c *Client) Page(ctx context.Context, word, passage string) (string, error) {
	return c.get(ctx, word, passage)
}

// Define returns the plain text content of the response body.
func (c *Client) Define(ctx context.Context, word, passage string) (string, error) {
	body, err := c.get(ctx, word, passage)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(markup.Text(body)), nil
}

func (c *Client) get(ctx context.Context, word, passage string) (string, error) {
	u, err := URL(c.BaseURL, word, passage)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(raw), nil
}
