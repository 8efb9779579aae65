package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/ireporter/internal/logging"
	"github.com/google/uuid"
)

const maxResponseBytes = 8 << 20

// HTTPClient is the transport shared by the Users, Incidents and
// Notifications adapters.
type HTTPClient struct {
	baseURL string
	rootURL string
	hc      *http.Client
	log     logging.Logger
}

type Option func(*HTTPClient)

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.hc.Timeout = d }
}

// WithBaseTransport replaces http.DefaultTransport underneath the bearer
// transport.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) {
		c.hc.Transport.(*bearerTransport).base = rt
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient builds a client for the API rooted at baseURL, for example
// "http://localhost:5001/api".
func NewHTTPClient(baseURL string, tokens TokenSource, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host required", baseURL)
	}

	root := *u
	root.Path, root.RawQuery, root.Fragment = "/", "", ""

	c := &HTTPClient{
		baseURL: strings.TrimRight(u.String(), "/"),
		rootURL: root.String(),
		hc: &http.Client{
			Transport: &bearerTransport{base: http.DefaultTransport, tokens: tokens},
		},
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root without a trailing slash.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

// Users returns the user/admin adapter.
func (c *HTTPClient) Users() *Users { return &Users{c: c} }

// Incidents returns the incident adapter.
func (c *HTTPClient) Incidents() *Incidents { return &Incidents{c: c} }

// Notifications returns the notification adapter.
func (c *HTTPClient) Notifications() *Notifications { return &Notifications{c: c} }

// Ping probes the server root. Any HTTP response counts as reachable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(anonymous(ctx), http.MethodGet, c.rootURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return c.mapError(ctx, err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.Body.Close()
}

// errorBody covers both shapes the backend uses for failures.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do sends a JSON request to path (relative to the base URL) and decodes a
// 2xx response into out when out is non-nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	reqID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, reqID)
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set(HeaderRequestID, reqID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "error", err)
		return c.mapError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return c.mapError(ctx, err)
	}

	c.log.Debug(ctx, "request",
		"method", method, "path", path, "status", resp.StatusCode,
		"elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			apiErr.Message = eb.Error
			if apiErr.Message == "" {
				apiErr.Message = eb.Message
			}
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// mapError turns transport failures into ErrUnavailable. Cancellation by the
// caller is passed through unchanged.
func (c *HTTPClient) mapError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
