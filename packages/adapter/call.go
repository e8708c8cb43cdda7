package adapter

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/abdul-hamid-achik/fauxhttp/packages/registry"
)

// Call records one dispatched request.
type Call struct {
	ID      string
	Time    time.Time
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
	Key     registry.Key
	Request *http.Request
}

// newCall captures req. The request body is read and closed, as the
// RoundTripper contract requires.
func newCall(req *http.Request) (*Call, error) {
	if req.URL == nil {
		closeBody(req)
		return nil, errors.New("request has no URL")
	}

	var body []byte
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		closeBody(req)
		if err != nil {
			return nil, errors.Wrap(err, "read request body")
		}
		body = data
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	rawURL := req.URL.String()
	return &Call{
		ID:      uuid.New().String(),
		Time:    time.Now(),
		Method:  method,
		URL:     rawURL,
		Header:  req.Header.Clone(),
		Body:    body,
		Key:     registry.ParseKey(rawURL, method, nil),
		Request: req,
	}, nil
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
