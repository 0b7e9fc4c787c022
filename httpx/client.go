package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	errEmptyPath = errors.New("httpx: empty path")
	errNoBaseURL = errors.New("httpx: relative path requires a base URL")
)

// Client sends one request per call: no retries, no caching. It is safe for
// concurrent use once WithMiddleware and WithHooks are done.
type Client struct {
	hc *http.Client

	baseURL        *url.URL
	timeout        time.Duration
	defaultHeaders http.Header
	userAgent      string
	maxErrBody     int64
	requestID      RequestIDConfig
	logger         *slog.Logger

	before []BeforeHook
	after  []AfterHook
}

// New constructs a Client from DefaultConfig() plus the provided options.
func New(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return NewWithConfig(cfg)
}

func NewWithConfig(cfg Config) (*Client, error) {
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		hc:             &http.Client{Transport: cfg.Transport},
		baseURL:        base,
		timeout:        cfg.Timeout,
		defaultHeaders: cfg.DefaultHeaders.Clone(),
		userAgent:      cfg.UserAgent,
		maxErrBody:     cfg.MaxErrorBodyBytes,
		requestID:      cfg.RequestID,
		logger:         cfg.Logger,
	}
	if c.hc.Transport == nil {
		c.hc.Transport = DefaultTransport()
	}
	if c.defaultHeaders == nil {
		c.defaultHeaders = make(http.Header)
	}
	if c.maxErrBody == 0 {
		c.maxErrBody = DefaultMaxErrorBodyBytes
	}
	if c.requestID.New == nil {
		c.requestID.New = DefaultRequestID
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c, nil
}

// parseBaseURL accepts "" (no base) or an absolute URL. Its path becomes a prefix:
// "https://h/prod-api" + "/users" is "https://h/prod-api/users".
func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("httpx: base url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("httpx: base url %q must be absolute", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// BaseURL returns the normalized base URL, or nil when none is configured.
func (c *Client) BaseURL() *url.URL {
	if c.baseURL == nil {
		return nil
	}
	u := *c.baseURL
	return &u
}

func (c *Client) Timeout() time.Duration { return c.timeout }

// DefaultHeaders returns a copy of the headers applied to every request.
func (c *Client) DefaultHeaders() http.Header { return c.defaultHeaders.Clone() }

// WithMiddleware wraps the transport; the first middleware is the outermost.
// Call it during initialization only.
func (c *Client) WithMiddleware(mws ...Middleware) *Client {
	if len(mws) > 0 {
		c.hc.Transport = chain(c.hc.Transport, mws)
	}
	return c
}

// WithHooks appends hooks. Call it during initialization only.
func (c *Client) WithHooks(before []BeforeHook, after []AfterHook) *Client {
	c.before = append(c.before, before...)
	c.after = append(c.after, after...)
	return c
}

func (c *Client) resolveURL(path string, query url.Values) (*url.URL, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errEmptyPath
	}
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	u := *ref
	if !ref.IsAbs() {
		if c.baseURL == nil {
			return nil, errNoBaseURL
		}
		ref.Path = strings.TrimPrefix(ref.Path, "/")
		ref.RawPath = strings.TrimPrefix(ref.RawPath, "/")
		u = *c.baseURL.ResolveReference(ref)
	}
	if len(query) > 0 {
		u.RawQuery = appendValues(u.Query(), query).Encode()
	}
	return &u, nil
}

// callContext bounds ctx by the client timeout or the shorter per-request timeout.
// An earlier deadline already on ctx is kept.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	d := c.timeout
	if rt := requestTimeout(ctx); rt > 0 && (d <= 0 || rt < d) {
		d = rt
	}
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// Do executes the request once with net/http semantics: transport errors are
// returned as is and any status comes back as a response.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.do(req, false)
}

// DoStatus executes the request once and reports failures as *Error. A transport
// failure has StatusCode 0. For status >= 400 up to MaxErrorBodyBytes of the body is
// captured, and the response is returned as well with those bytes as its body.
func (c *Client) DoStatus(req *http.Request) (*http.Response, error) {
	return c.do(req, true)
}

func (c *Client) do(req *http.Request, statusAsError bool) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("httpx: nil request")
	}
	ctx, cancel := c.callContext(req.Context())
	req = req.Clone(ctx)

	for _, h := range c.before {
		if h == nil {
			continue
		}
		if err := h(req); err != nil {
			cancel()
			return nil, err
		}
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	dur := time.Since(start)
	for _, h := range c.after {
		if h != nil {
			h(req, resp, err, dur)
		}
	}
	c.log(req, resp, err, dur)

	switch {
	case err != nil:
		cancel()
		if !statusAsError {
			return nil, err
		}
		return nil, &Error{
			Method:    req.Method,
			URL:       req.URL.String(),
			RequestID: c.requestIDOf(req, nil),
			Cause:     err,
		}
	case statusAsError && resp.StatusCode >= 400:
		defer cancel()
		return resp, c.statusError(req, resp)
	case resp.Body == nil:
		cancel()
		return resp, nil
	default:
		// The caller reads the body after we return; the deadline ends with Close.
		resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
		return resp, nil
	}
}

func (c *Client) log(req *http.Request, resp *http.Response, err error, dur time.Duration) {
	attrs := []any{"method", req.Method, "url", req.URL.String(), "dur", dur}
	if rid := c.requestIDOf(req, nil); rid != "" {
		attrs = append(attrs, "request_id", rid)
	}
	if err != nil {
		c.logger.Debug("httpx call failed", append(attrs, "err", err)...)
		return
	}
	c.logger.Debug("httpx call", append(attrs, "status", resp.StatusCode)...)
}

// requestIDOf prefers the id echoed by the server.
func (c *Client) requestIDOf(req *http.Request, resp *http.Response) string {
	h := c.requestID.Header
	if h == "" {
		return ""
	}
	if resp != nil {
		if rid := strings.TrimSpace(resp.Header.Get(h)); rid != "" {
			return rid
		}
	}
	return strings.TrimSpace(req.Header.Get(h))
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	defer b.cancel()
	return b.ReadCloser.Close()
}

// statusError drains at most maxErrBody bytes, releases the connection and swaps
// the body for the captured bytes.
func (c *Client) statusError(req *http.Request, resp *http.Response) error {
	var raw []byte
	if resp.Body != nil {
		raw, _ = io.ReadAll(io.LimitReader(resp.Body, c.maxErrBody))
		_ = resp.Body.Close()
	}
	resp.Body = io.NopCloser(bytes.NewReader(raw))

	return &Error{
		Method:     req.Method,
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		RequestID:  c.requestIDOf(req, resp),
		Header:     resp.Header.Clone(),
		RawBody:    raw,
		Cause:      errors.New(http.StatusText(resp.StatusCode)),
	}
}
