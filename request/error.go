package request

import (
	"encoding/json"
	"errors"
)

// Kind classifies the outcome of a call.
type Kind string

const (
	KindSuccess        Kind = "success"
	KindBinary         Kind = "binary"
	KindBusiness       Kind = "business"
	KindSessionExpired Kind = "session_expired"
	KindTransport      Kind = "transport"
	KindRequest        Kind = "request"
)

// Error is returned by every failed call.
//
// Error() is the message the caller should show or log: the backend msg (or
// DefaultErrorMessage) for business errors, the transport error text otherwise.
// Code and Msg keep whatever envelope the backend sent.
type Error struct {
	Kind Kind

	// StatusCode is the HTTP status, 0 when no response was received.
	StatusCode int

	Code string
	Msg  string
	Data json.RawMessage

	Message string

	// Cause is the underlying error (*httpx.Error for transport failures).
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return DefaultErrorMessage
}

func (e *Error) Unwrap() error { return e.Cause }

func AsError(err error) (*Error, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

func IsBusiness(err error) bool {
	re, ok := AsError(err)
	return ok && re.Kind == KindBusiness
}

func IsSessionExpired(err error) bool {
	re, ok := AsError(err)
	return ok && re.Kind == KindSessionExpired
}

func IsTransport(err error) bool {
	re, ok := AsError(err)
	return ok && re.Kind == KindTransport
}

var (
	// ErrBinaryResponse is returned by the JSON helpers when the server sent a file.
	ErrBinaryResponse = errors.New("request: unexpected binary response")

	// ErrUnexpectedEnvelope is returned by Download when the server answered a
	// file request with a successful JSON envelope.
	ErrUnexpectedEnvelope = errors.New("request: expected a file, got a JSON response")
)
