package adapter

import (
	"net/http"

	"github.com/abdul-hamid-achik/fauxhttp/packages/registry"
)

type registration struct {
	status  int
	method  string
	headers map[string]string
	query   map[string]registry.Value
}

// RegisterOption configures a single registration.
type RegisterOption func(*registration)

func newRegistration(opts []RegisterOption) *registration {
	reg := &registration{
		status:  DefaultStatus,
		method:  http.MethodGet,
		headers: make(map[string]string),
		query:   make(map[string]registry.Value),
	}
	for _, opt := range opts {
		opt(reg)
	}
	return reg
}

// WithStatus sets the response status code.
func WithStatus(code int) RegisterOption {
	return func(r *registration) {
		r.status = code
	}
}

// WithMethod sets the HTTP method the registration answers. Default GET.
func WithMethod(method string) RegisterOption {
	return func(r *registration) {
		r.method = method
	}
}

// WithHeaders adds response headers.
func WithHeaders(headers map[string]string) RegisterOption {
	return func(r *registration) {
		for k, v := range headers {
			r.headers[http.CanonicalHeaderKey(k)] = v
		}
	}
}

// WithHeader adds a single response header. Later options override
// earlier ones regardless of name case.
func WithHeader(key, value string) RegisterOption {
	return func(r *registration) {
		r.headers[http.CanonicalHeaderKey(key)] = value
	}
}

// WithQuery requires a query parameter. Values already present in the
// registered URL win.
func WithQuery(name, value string) RegisterOption {
	return func(r *registration) {
		r.query[name] = registry.Single(value)
	}
}

// WithQueryValues requires a multi-valued query parameter.
func WithQueryValues(name string, values ...string) RegisterOption {
	return func(r *registration) {
		r.query[name] = registry.Set(values...)
	}
}
