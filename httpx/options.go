package httpx

import (
	"log/slog"
	"net/http"
	"time"
)

// Option adjusts the Config used by New.
type Option func(*Config)

func WithBaseURL(baseURL string) Option { return func(c *Config) { c.BaseURL = baseURL } }

func WithTimeout(d time.Duration) Option { return func(c *Config) { c.Timeout = d } }

func WithTransport(rt http.RoundTripper) Option { return func(c *Config) { c.Transport = rt } }

// WithDefaultHeader sets a header sent on every request unless the request overrides it.
func WithDefaultHeader(key, value string) Option {
	return func(c *Config) {
		if c.DefaultHeaders == nil {
			c.DefaultHeaders = make(http.Header)
		}
		c.DefaultHeaders.Set(key, value)
	}
}

func WithDefaultHeaders(h http.Header) Option {
	return func(c *Config) {
		if len(h) > 0 && c.DefaultHeaders == nil {
			c.DefaultHeaders = make(http.Header, len(h))
		}
		for k, vv := range h {
			for _, v := range vv {
				c.DefaultHeaders.Add(k, v)
			}
		}
	}
}

func WithUserAgent(ua string) Option { return func(c *Config) { c.UserAgent = ua } }

func WithMaxErrorBodyBytes(n int64) Option { return func(c *Config) { c.MaxErrorBodyBytes = n } }

// WithRequestID replaces the request id header and generator. An empty Header
// disables injection.
func WithRequestID(cfg RequestIDConfig) Option { return func(c *Config) { c.RequestID = cfg } }

func WithLogger(logger *slog.Logger) Option { return func(c *Config) { c.Logger = logger } }
