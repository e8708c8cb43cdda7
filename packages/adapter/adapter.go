package adapter

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/abdul-hamid-achik/fauxhttp/packages/logging"
	"github.com/abdul-hamid-achik/fauxhttp/packages/registry"
	"github.com/abdul-hamid-achik/fauxhttp/packages/response"
)

const (
	// DefaultURLPattern leaves registered URLs untouched.
	DefaultURLPattern = "%s"
	// DefaultStatus is used when a registration sets no status code.
	DefaultStatus = http.StatusOK
	// ContentTypeJSON is set by RegisterJSON.
	ContentTypeJSON = "application/json"
)

// Adapter is an http.RoundTripper that answers requests from registered
// canned responses and never touches the network. Requests that match no
// registration fail with a *registry.UnregisteredURLError.
//
// An Adapter is meant to be driven by a single test goroutine.
type Adapter struct {
	registry   *registry.Registry
	urlPattern string
	logger     logrus.FieldLogger
	requests   []*Call
}

// Option is a functional option for Adapter
type Option func(*Adapter)

// WithURLPattern sets a template with one %s that registered URLs are
// interpolated into, e.g. "https://api.example.com%s". The pattern is only
// applied at registration time; dispatched requests must carry full URLs.
func WithURLPattern(pattern string) Option {
	return func(a *Adapter) {
		a.urlPattern = pattern
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// New creates an adapter with an empty registry.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		registry:   registry.New(),
		urlPattern: DefaultURLPattern,
		logger:     logging.Discard(),
		requests:   make([]*Call, 0),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register adds a canned response for url. body may be a string (sent as
// UTF-8), a []byte, an io.Reader or nil. Query parameters given as options
// must be present for a request to match, but requests may carry more.
func (a *Adapter) Register(url string, body any, opts ...RegisterOption) error {
	payload, err := EncodeBody(body)
	if err != nil {
		return err
	}

	full, err := a.interpolate(url)
	if err != nil {
		return err
	}

	reg := newRegistration(opts)
	key := registry.ParseKey(full, reg.method, reg.query)

	for _, other := range a.registry.Overlaps(key) {
		a.logger.WithFields(logrus.Fields{
			"url":   key.String(),
			"other": other.String(),
		}).Warn("registration overlaps an existing one, ambiguous requests go to the earlier one")
	}

	a.registry.Set(key, response.New(payload, reg.status, reg.headers))
	a.logger.WithFields(logrus.Fields{
		"url":    key.String(),
		"status": reg.status,
	}).Debug("registered")
	return nil
}

// RegisterJSON marshals v, sets the JSON content type and registers it.
func (a *Adapter) RegisterJSON(url string, v any, opts ...RegisterOption) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "marshal JSON response for %s", url)
	}
	opts = append(opts[:len(opts):len(opts)], WithHeader("Content-Type", ContentTypeJSON))
	return a.Register(url, data, opts...)
}

// RoundTrip implements http.RoundTripper.
func (a *Adapter) RoundTrip(req *http.Request) (*http.Response, error) {
	return a.Send(req, false)
}

// Send answers req from the registry. Unless stream is set the body is
// buffered before returning. Each call gets its own copy of the stored
// response, so every request reads the full payload.
func (a *Adapter) Send(req *http.Request, stream bool) (*http.Response, error) {
	call, err := newCall(req)
	if err != nil {
		return nil, err
	}

	log := a.logger.WithFields(logrus.Fields{
		"method": call.Method,
		"url":    call.URL,
	})

	stored, err := a.registry.Get(call.Key)
	if err != nil {
		log.Debug("no registration matched")
		return nil, err
	}

	body := stored.Copy()
	resp := body.Build(req)

	if !stream {
		if err := body.Preload(); err != nil {
			return nil, err
		}
	}

	a.requests = append(a.requests, call)
	log.WithField("status", resp.StatusCode).Debug("dispatched")
	return resp, nil
}

// Clear drops every registration. The request log is kept.
func (a *Adapter) Clear() {
	a.registry.Clear()
}

// Requests returns every request dispatched so far, oldest first.
func (a *Adapter) Requests() []*Call {
	out := make([]*Call, len(a.requests))
	copy(out, a.requests)
	return out
}

// CallCount returns how many dispatched requests match method and url,
// using the same superset rule as registrations.
func (a *Adapter) CallCount(method, url string) int {
	want := registry.ParseKey(url, method, nil)
	n := 0
	for _, c := range a.requests {
		if c.Key.SupersetOf(want) {
			n++
		}
	}
	return n
}

// Registered returns the registered keys in insertion order.
func (a *Adapter) Registered() []registry.Key {
	return a.registry.Keys()
}

// Len returns the number of registrations.
func (a *Adapter) Len() int {
	return a.registry.Len()
}

// Lookup returns the stored response that would answer method and url,
// without logging a request.
func (a *Adapter) Lookup(method, url string) (*response.Response, error) {
	stored, err := a.registry.Get(registry.ParseKey(url, method, nil))
	if err != nil {
		return nil, err
	}
	return stored.Copy(), nil
}

func (a *Adapter) interpolate(url string) (string, error) {
	if strings.Count(a.urlPattern, "%s") != 1 {
		return "", errors.Errorf("URL pattern %q must contain exactly one %%s", a.urlPattern)
	}
	return strings.Replace(a.urlPattern, "%s", url, 1), nil
}

// EncodeBody converts a registration body into bytes.
func EncodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return []byte{}, nil
	case string:
		return []byte(b), nil
	case []byte:
		return b, nil
	case io.Reader:
		data, err := io.ReadAll(b)
		if err != nil {
			return nil, errors.Wrap(err, "read response body")
		}
		return data, nil
	default:
		return nil, errors.Errorf("unsupported response body type %T", body)
	}
}

var _ http.RoundTripper = (*Adapter)(nil)
