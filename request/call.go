package request

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/lgc202/apikit/httpx"
)

type callConfig struct {
	binary bool
	opts   []httpx.RequestOption
}

// CallOption tunes a single call.
type CallOption func(*callConfig)

// AsBinary marks the call as a file download: any non-JSON response is passed
// through as Result.Binary.
func AsBinary() CallOption { return func(c *callConfig) { c.binary = true } }

func Query(values url.Values) CallOption {
	return func(c *callConfig) { c.opts = append(c.opts, httpx.WithQuery(values)) }
}

func Param(key, value string) CallOption {
	return func(c *callConfig) { c.opts = append(c.opts, httpx.WithQueryParam(key, value)) }
}

func Header(key, value string) CallOption {
	return func(c *callConfig) { c.opts = append(c.opts, httpx.WithHeader(key, value)) }
}

// Timeout shortens the deadline of this call below the client timeout.
func Timeout(d time.Duration) CallOption {
	return func(c *callConfig) { c.opts = append(c.opts, httpx.WithRequestTimeout(d)) }
}

// Result is what a successful call yields: exactly one of Envelope and Binary is set.
type Result struct {
	Envelope *Envelope

	// Binary is the untouched response of a file download. The caller closes its body.
	Binary *http.Response
}

func (r *Result) IsBinary() bool { return r != nil && r.Binary != nil }

func (c *Client) Get(ctx context.Context, path string, opts ...CallOption) (*Result, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body any, opts ...CallOption) (*Result, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body any, opts ...CallOption) (*Result, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts...)
}

func (c *Client) Patch(ctx context.Context, path string, body any, opts ...CallOption) (*Result, error) {
	return c.Do(ctx, http.MethodPatch, path, body, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, opts ...CallOption) (*Result, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts...)
}

// Download performs an export call and returns the raw response. A JSON error reply
// (the backend refusing the export) goes through the normal envelope handling; a
// JSON success reply yields ErrUnexpectedEnvelope, which nobody has shown the user.
func (c *Client) Download(ctx context.Context, method, path string, body any, opts ...CallOption) (*http.Response, error) {
	res, err := c.Do(ctx, method, path, body, append(opts, AsBinary())...)
	if err != nil {
		return nil, err
	}
	if !res.IsBinary() {
		return nil, fmt.Errorf("%w (code %s)", ErrUnexpectedEnvelope, res.Envelope.Code)
	}
	return res.Binary, nil
}

// Do sends body (JSON-encoded, nil for none) to path and interprets the response.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...CallOption) (*Result, error) {
	var cc callConfig
	for _, o := range opts {
		if o != nil {
			o(&cc)
		}
	}

	req, err := c.http.NewJSONRequest(ctx, method, path, body, cc.opts...)
	if err != nil {
		c.observe(method, KindRequest)
		return nil, &Error{Kind: KindRequest, Message: err.Error(), Cause: err}
	}
	if cc.binary {
		req.Header.Set("Accept", "*/*")
	}

	resp, err := c.http.DoStatus(req)
	if err != nil {
		res := c.onFailure(ctx, req, err)
		c.observe(method, res.Kind)
		return nil, res
	}

	res, ferr := c.onSuccess(ctx, req, resp, cc.binary)
	if ferr != nil {
		c.observe(method, ferr.Kind)
		return nil, ferr
	}
	if res.IsBinary() {
		c.observe(method, KindBinary)
	} else {
		c.observe(method, KindSuccess)
	}
	return res, nil
}

// onSuccess is the response hook for 2xx/3xx responses.
func (c *Client) onSuccess(ctx context.Context, req *http.Request, resp *http.Response, wantBinary bool) (*Result, *Error) {
	if isBinary(resp, wantBinary) {
		return &Result{Binary: resp}, nil
	}
	defer resp.Body.Close()

	var env Envelope
	if err := httpx.DecodeJSON(resp.Body, &env, false); err != nil {
		c.notifier.Error(context.WithoutCancel(ctx), DefaultErrorMessage)
		c.logger.Warn("undecodable response", "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode, "err", err)
		return nil, &Error{Kind: KindBusiness, StatusCode: resp.StatusCode, Message: DefaultErrorMessage, Cause: err}
	}
	if env.OK() {
		return &Result{Envelope: &env}, nil
	}

	msg := env.Msg
	if msg == "" {
		msg = DefaultErrorMessage
	}
	c.notifier.Error(context.WithoutCancel(ctx), msg)
	c.logger.Info("business error", "method", req.Method, "url", req.URL.String(), "code", env.Code, "msg", env.Msg)
	return nil, &Error{
		Kind:       KindBusiness,
		StatusCode: resp.StatusCode,
		Code:       env.Code,
		Msg:        env.Msg,
		Data:       env.Data,
		Message:    msg,
	}
}

// onFailure is the response hook for failed calls. The returned message is always the
// transport error's own text; the envelope only drives the user-facing side effects.
func (c *Client) onFailure(ctx context.Context, req *http.Request, err error) *Error {
	he, ok := httpx.AsError(err)
	if !ok {
		// Raised by a before hook or by the client itself; hand it back as is.
		return &Error{Kind: KindRequest, Message: err.Error(), Cause: err}
	}

	out := &Error{
		Kind:       KindTransport,
		StatusCode: he.StatusCode,
		Message:    he.Error(),
		Cause:      err,
	}
	if he.StatusCode == 0 {
		c.logger.Warn("request failed", "method", req.Method, "url", req.URL.String(), "timeout", he.Timeout(), "err", he.Cause)
		return out
	}

	env, ok := parseEnvelope(he.RawBody)
	if !ok {
		c.logger.Warn("request failed", "method", req.Method, "url", req.URL.String(), "status", he.StatusCode)
		return out
	}
	out.Code, out.Msg, out.Data = env.Code, env.Msg, env.Data

	// The dialog may outlive the call's deadline.
	uctx := context.WithoutCancel(ctx)
	if env.Code == CodeSessionExpired {
		out.Kind = KindSessionExpired
		c.logger.Info("session expired", "method", req.Method, "url", req.URL.String())
		c.promptRelogin(uctx)
		return out
	}

	msg := env.Msg
	if msg == "" {
		msg = DefaultErrorMessage
	}
	c.notifier.Error(uctx, msg)
	c.logger.Warn("request failed", "method", req.Method, "url", req.URL.String(), "status", he.StatusCode, "code", env.Code, "msg", env.Msg)
	return out
}

// promptRelogin asks the user to sign in again. On confirmation local session data
// is cleared and the user is sent to RootPath.
func (c *Client) promptRelogin(ctx context.Context) {
	ok, err := c.notifier.Confirm(ctx, SessionExpiredDialog)
	if err != nil {
		c.logger.Warn("relogin prompt failed", "err", err)
		return
	}
	if !ok {
		return
	}
	if err := c.navigator.ClearLocalData(ctx); err != nil {
		c.logger.Warn("clear local session data", "err", err)
	}
	if err := c.navigator.Redirect(ctx, RootPath); err != nil {
		c.logger.Warn("redirect after session expiry", "path", RootPath, "err", err)
	}
}

// DoJSON performs the call and decodes Envelope.Data into T.
func DoJSON[T any](ctx context.Context, c *Client, method, path string, body any, opts ...CallOption) (T, error) {
	var out T
	res, err := c.Do(ctx, method, path, body, opts...)
	if err != nil {
		return out, err
	}
	if res.IsBinary() {
		_ = res.Binary.Body.Close()
		return out, ErrBinaryResponse
	}
	if err := res.Envelope.Decode(&out); err != nil {
		var zero T
		return zero, fmt.Errorf("request: decode data: %w", err)
	}
	return out, nil
}

func GetJSON[T any](ctx context.Context, c *Client, path string, opts ...CallOption) (T, error) {
	return DoJSON[T](ctx, c, http.MethodGet, path, nil, opts...)
}

func PostJSON[T any](ctx context.Context, c *Client, path string, body any, opts ...CallOption) (T, error) {
	return DoJSON[T](ctx, c, http.MethodPost, path, body, opts...)
}
