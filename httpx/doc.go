// Package httpx is the general-purpose HTTP client underneath apikit:
// - base URL resolution and default headers applied to every request
// - a per-call timeout bounded by the caller's context deadline
// - before/after hooks and RoundTripper middleware for auth, logging, metrics and tracing
// - an error type carrying method, url, status, request id and a limited copy of the body
//
// Each call is a single attempt. Retrying is left to callers.
package httpx
