package response

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ErrClosed is returned by Read after Close.
var ErrClosed = errors.New("response: read on closed body")

// Response is a canned HTTP response. The payload never changes after
// construction; the read position is per instance, so use Copy to replay
// the same response for another request.
type Response struct {
	StatusCode int
	Reason     string
	Header     http.Header

	payload   []byte
	reader    *bytes.Reader
	closed    bool
	preloaded bool
}

// New creates a response. Header names are canonicalized.
func New(payload []byte, status int, headers map[string]string) *Response {
	h := make(http.Header, len(headers))
	for k, v := range headers {
		h.Set(k, v)
	}
	return &Response{
		StatusCode: status,
		Reason:     ReasonPhrase(status),
		Header:     h,
		payload:    payload,
		reader:     bytes.NewReader(payload),
	}
}

// ReasonPhrase returns the upper-cased status text for code, or "" when
// the code is unknown.
func ReasonPhrase(code int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(code), "_", " "))
}

// Copy returns an independent response with the read position reset.
func (r *Response) Copy() *Response {
	return &Response{
		StatusCode: r.StatusCode,
		Reason:     r.Reason,
		Header:     r.Header.Clone(),
		payload:    r.payload,
		reader:     bytes.NewReader(r.payload),
	}
}

// Read implements io.Reader, continuing from the previous read.
func (r *Response) Read(p []byte) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	return r.reader.Read(p)
}

// ReadChunk reads up to n bytes. A negative n reads everything left.
// It returns io.EOF once the payload is exhausted.
func (r *Response) ReadChunk(n int) ([]byte, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if n < 0 {
		n = r.reader.Len()
		if n == 0 {
			return nil, io.EOF
		}
	}
	buf := make([]byte, n)
	read, err := r.reader.Read(buf)
	return buf[:read], err
}

// Preload buffers the unread remainder of the payload and detaches the
// response from its source, the way a client eagerly consumes a body for
// a non-streaming request. Reads keep working after Preload.
func (r *Response) Preload() error {
	if r.closed {
		return ErrClosed
	}
	rest, err := io.ReadAll(r.reader)
	if err != nil {
		return errors.Wrap(err, "preload response body")
	}
	r.payload = rest
	r.reader = bytes.NewReader(rest)
	r.preloaded = true
	return nil
}

// Preloaded reports whether Preload has run.
func (r *Response) Preloaded() bool {
	return r.preloaded
}

// Close frees the buffer. Further reads return ErrClosed.
func (r *Response) Close() error {
	r.closed = true
	r.reader = nil
	r.payload = nil
	return nil
}

// Closed reports whether Close has been called.
func (r *Response) Closed() bool {
	return r.closed
}

// ReleaseConn closes the response.
func (r *Response) ReleaseConn() {
	_ = r.Close()
}

// Info returns the response itself, which also serves as its header message.
func (r *Response) Info() *Response {
	return r
}

// GetAll returns the values of header name, or def if it is not set.
func (r *Response) GetAll(name string, def []string) []string {
	vals := r.Header.Values(name)
	if len(vals) == 0 {
		return def
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// GetHeaders returns the values of header name, or an empty slice.
func (r *Response) GetHeaders(name string) []string {
	return r.GetAll(name, []string{})
}

// Bytes returns a copy of the full payload regardless of the read position.
func (r *Response) Bytes() []byte {
	return bytes.Clone(r.payload)
}

// String returns the full payload as text.
func (r *Response) String() string {
	return string(r.payload)
}

// JSON looks up a gjson path in the payload.
func (r *Response) JSON(path string) gjson.Result {
	if path == "" {
		return gjson.ParseBytes(r.payload)
	}
	return gjson.GetBytes(r.payload, path)
}

// ContentType returns the Content-Type header.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// IsJSON reports whether the Content-Type is application/json.
func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType(), "application/json")
}

// Build wraps r in an *http.Response for req. The body is r itself.
func (r *Response) Build(req *http.Request) *http.Response {
	status := fmt.Sprintf("%d", r.StatusCode)
	if text := http.StatusText(r.StatusCode); text != "" {
		status += " " + text
	}
	return &http.Response{
		Status:        status,
		StatusCode:    r.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        r.Header.Clone(),
		Body:          r,
		ContentLength: int64(len(r.payload)),
		Request:       req,
	}
}
