package request

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
)

const (
	// CodeSuccess is the only success code.
	CodeSuccess = "00000"
	// CodeSessionExpired marks an invalid or expired token.
	CodeSessionExpired = "A0230"
)

// Envelope is the wrapper the backend puts around every JSON response.
type Envelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (e *Envelope) OK() bool { return e != nil && e.Code == CodeSuccess }

// Decode unmarshals Data into dst. A missing or null Data leaves dst untouched.
func (e *Envelope) Decode(dst any) error {
	if e == nil {
		return errors.New("request: nil envelope")
	}
	if len(e.Data) == 0 || bytes.Equal(bytes.TrimSpace(e.Data), []byte("null")) {
		return nil
	}
	return json.Unmarshal(e.Data, dst)
}

// parseEnvelope decodes raw as an envelope. It reports false for anything that is not
// a JSON object carrying a code.
func parseEnvelope(raw []byte) (*Envelope, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Code == "" {
		return nil, false
	}
	return &env, true
}

// sniffLimit bounds how far past leading whitespace isBinary looks for a '{'.
const sniffLimit = 512

// isBinary reports whether resp carries a file rather than an envelope:
//   - an attachment requested with wantBinary is a file, whatever its type;
//   - a JSON content type is an envelope (an export the backend refused);
//   - wantBinary otherwise means a file;
//   - anything else is an envelope only if the body starts with a JSON object.
//
// Peeking replaces resp.Body with a buffered reader that still yields every byte.
func isBinary(resp *http.Response, wantBinary bool) bool {
	if wantBinary && isAttachment(resp) {
		return true
	}
	ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	ct = strings.ToLower(ct)
	if ct == "application/json" || strings.HasSuffix(ct, "+json") {
		return false
	}
	if wantBinary {
		return true
	}
	return !startsWithObject(resp)
}

func isAttachment(resp *http.Response) bool {
	disp, _, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	return err == nil && disp == "attachment"
}

// startsWithObject peeks the first non-space byte of the body.
func startsWithObject(resp *http.Response) bool {
	if resp.Body == nil || resp.Body == http.NoBody {
		return false
	}
	br := bufio.NewReaderSize(resp.Body, sniffLimit)
	resp.Body = peekedBody{Reader: br, Closer: resp.Body}
	for i := 1; i <= sniffLimit; i++ {
		b, _ := br.Peek(i)
		if len(b) < i {
			return false
		}
		switch c := b[i-1]; c {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return c == '{'
		}
	}
	return false
}

type peekedBody struct {
	io.Reader
	io.Closer
}
