package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RequestOption customizes a single request built by NewRequest.
type RequestOption func(*requestConfig)

type requestConfig struct {
	header  http.Header
	query   url.Values
	timeout time.Duration

	body        io.Reader
	contentType string

	// err is reported by NewRequest, e.g. a body that failed to marshal.
	err error
}

// WithHeader sets key on the request, replacing any default header of that name.
func WithHeader(key, value string) RequestOption {
	return func(c *requestConfig) {
		if c.header == nil {
			c.header = make(http.Header)
		}
		c.header.Set(key, value)
	}
}

func WithHeaders(h http.Header) RequestOption {
	return func(c *requestConfig) { c.header = appendValues(c.header, h) }
}

func WithQuery(values url.Values) RequestOption {
	return func(c *requestConfig) { c.query = appendValues(c.query, values) }
}

func WithQueryParam(key, value string) RequestOption {
	return func(c *requestConfig) { c.query = appendValues(c.query, url.Values{key: {value}}) }
}

// WithRequestTimeout caps this request below the client timeout. A longer value has
// no effect; the shortest of the two and the context deadline applies.
func WithRequestTimeout(d time.Duration) RequestOption {
	return func(c *requestConfig) { c.timeout = d }
}

func WithBodyBytes(b []byte) RequestOption {
	return func(c *requestConfig) { c.body = bytes.NewReader(bytes.Clone(b)) }
}

func WithBody(r io.Reader) RequestOption {
	return func(c *requestConfig) { c.body = r }
}

// WithJSON encodes v as the body. Content-Type falls back to application/json when
// neither the client defaults nor the request set one.
func WithJSON(v any) RequestOption {
	return func(c *requestConfig) {
		b, err := json.Marshal(v)
		if err != nil {
			c.err = fmt.Errorf("httpx: encode json body: %w", err)
			return
		}
		c.body = bytes.NewReader(b)
		c.contentType = "application/json"
	}
}

// appendValues adds every value of src to dst, allocating dst when needed.
func appendValues[M ~map[string][]string](dst, src M) M {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(M, len(src))
	}
	for k, vv := range src {
		dst[k] = append(dst[k], vv...)
	}
	return dst
}

type requestTimeoutKey struct{}

func requestTimeout(ctx context.Context) time.Duration {
	d, _ := ctx.Value(requestTimeoutKey{}).(time.Duration)
	return d
}

// NewRequest builds a request for path, relative to the base URL unless absolute.
// Headers are layered: client defaults, then request options, then User-Agent and
// request id when still unset.
func (c *Client) NewRequest(ctx context.Context, method, path string, opts ...RequestOption) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rc requestConfig
	for _, o := range opts {
		if o != nil {
			o(&rc)
		}
	}
	if rc.err != nil {
		return nil, rc.err
	}

	u, err := c.resolveURL(path, rc.query)
	if err != nil {
		return nil, err
	}
	if rc.timeout > 0 {
		ctx = context.WithValue(ctx, requestTimeoutKey{}, rc.timeout)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), u.String(), rc.body)
	if err != nil {
		return nil, err
	}
	req.Header = c.defaultHeaders.Clone()
	for k, vv := range rc.header {
		req.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vv...)
	}
	setIfEmpty(req.Header, "Content-Type", rc.contentType)
	setIfEmpty(req.Header, "User-Agent", c.userAgent)
	if h := c.requestID.Header; h != "" && req.Header.Get(h) == "" {
		setIfEmpty(req.Header, h, strings.TrimSpace(c.requestID.New()))
	}
	return req, nil
}

func setIfEmpty(h http.Header, key, value string) {
	if value != "" && h.Get(key) == "" {
		h.Set(key, value)
	}
}
