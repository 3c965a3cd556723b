// Package httpapi fetches patient pages from a JSON HTTP endpoint.
//
// Responses are decoded into typed records and checked before they reach
// the list. A malformed body yields a *ParseError naming the offending
// field; it is never turned into an empty page.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/carelist/internal/logging"
	"github.com/rshade/carelist/internal/paging"
	"github.com/rshade/carelist/internal/patient"
	"github.com/rshade/carelist/internal/session"
)

// Request headers carrying the session.
const (
	HeaderWorkspace = "X-Carelist-Workspace"
	HeaderSession   = "X-Carelist-Session"
	HeaderTraceID   = "X-Request-Id"
)

const (
	// DefaultTimeout bounds a single page request.
	DefaultTimeout = 10 * time.Second
	// DefaultPath is the page endpoint relative to the base URL.
	DefaultPath = "/v1/patients"

	maxBodyBytes    = 8 << 20
	maxErrorSnippet = 256
)

// Client errors.
var (
	ErrEmptyBaseURL = errors.New("base url is required")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithPath overrides the page endpoint path.
func WithPath(path string) Option {
	return func(c *Client) {
		c.path = path
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client is a paging.PageSource backed by an HTTP endpoint.
type Client struct {
	base   *url.URL
	path   string
	http   *http.Client
	logger zerolog.Logger
}

// New creates a client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	c := &Client{
		base:   base,
		path:   DefaultPath,
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.ComponentLogger(c.logger, "httpapi")
	return c, nil
}

// FetchPage requests one page. The session in ctx, when present, scopes the
// request to its workspace.
func (c *Client) FetchPage(ctx context.Context, req paging.Request) (paging.Page[patient.Summary], error) {
	var empty paging.Page[patient.Summary]

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(req), nil)
	if err != nil {
		return empty, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if s := session.FromContext(ctx); s.Active() {
		httpReq.Header.Set(HeaderWorkspace, s.Workspace())
		httpReq.Header.Set(HeaderSession, s.ID())
	}
	if traceID := logging.TraceIDFromContext(ctx); traceID != "" {
		httpReq.Header.Set(HeaderTraceID, traceID)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return empty, fmt.Errorf("requesting page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return empty, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Int("offset", req.Offset).
		Dur("elapsed", time.Since(start)).
		Msg("page response")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return empty, &StatusError{Code: resp.StatusCode, Body: snippet(body)}
	}

	return DecodePage(body)
}

func (c *Client) pageURL(req paging.Request) string {
	u := c.base.JoinPath(c.path)
	q := u.Query()
	q.Set("offset", strconv.Itoa(req.Offset))
	q.Set("limit", strconv.Itoa(req.Limit))
	if req.Sort != "" {
		q.Set("sort", req.Sort)
		q.Set("order", req.Order)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func snippet(body []byte) string {
	if len(body) > maxErrorSnippet {
		return string(body[:maxErrorSnippet]) + "…"
	}
	return string(body)
}
