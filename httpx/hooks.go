package httpx

import (
	"net/http"
	"time"
)

// BeforeHook runs after the request is built and before it is sent. It may mutate
// req (headers in particular). A non-nil error aborts the call and is returned as is.
type BeforeHook func(req *http.Request) error

// AfterHook observes the outcome of a call. resp is nil when err is non-nil.
// Hooks must not consume resp.Body.
type AfterHook func(req *http.Request, resp *http.Response, err error, dur time.Duration)

type Middleware func(next http.RoundTripper) http.RoundTripper

func chain(rt http.RoundTripper, mws []Middleware) http.RoundTripper {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		rt = mws[i](rt)
	}
	return rt
}
