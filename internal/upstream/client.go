package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/linkstatus-core/internal/devicestatus"
	"github.com/nerrad567/linkstatus-core/internal/infrastructure/config"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxBodyBytes = 16 << 20

	// maxErrorBodyBytes caps the body echoed into a StatusError.
	maxErrorBodyBytes = 64 << 10

	userAgent = "linkstatus-core"
)

// Client fetches payloads from a single upstream URL.
//
// Thread Safety: safe for concurrent use; it holds no per-request state.
type Client struct {
	url        string
	maxBody    int64
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is
// overwritten by the configured upstream timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for cfg. Zero values fall back to a 10 s timeout
// and a 16 MiB body limit.
func New(cfg config.UpstreamConfig, opts ...Option) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	c := &Client{
		url:        cfg.URL,
		maxBody:    maxBody,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.httpClient
	hc.Timeout = timeout
	c.httpClient = &hc

	return c
}

// URL returns the upstream endpoint.
func (c *Client) URL() string {
	return c.url
}

// Fetch performs one GET against the upstream and decodes the payload.
//
// Returns:
//   - *devicestatus.Payload: the decoded body
//   - error: *StatusError, ErrDecode, ErrBodyTooLarge or a transport error
func (c *Client) Fetch(ctx context.Context) (*devicestatus.Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("upstream read: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, c.maxBody)
	}

	var payload devicestatus.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return &payload, nil
}

// newStatusError captures the status line and as much body as can be read.
func newStatusError(resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes)) //nolint:errcheck // partial body is fine

	return &StatusError{
		StatusCode: resp.StatusCode,
		Status:     reasonPhrase(resp),
		Body:       string(body),
	}
}

// reasonPhrase strips the numeric code from resp.Status ("502 Bad Gateway" -> "Bad Gateway").
func reasonPhrase(resp *http.Response) string {
	if text, ok := strings.CutPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); ok {
		return text
	}
	if resp.Status != "" && resp.Status != strconv.Itoa(resp.StatusCode) {
		return resp.Status
	}
	return http.StatusText(resp.StatusCode)
}
