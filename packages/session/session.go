package session

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/abdul-hamid-achik/fauxhttp/packages/adapter"
	"github.com/abdul-hamid-achik/fauxhttp/packages/logging"
)

// Kind tells plain registrations from JSON ones.
type Kind string

const (
	KindPlain Kind = "plain"
	KindJSON  Kind = "json"
)

// Registration is a pending registration, replayed into every adapter the
// Server starts.
type Registration struct {
	Kind    Kind
	URL     string
	Body    any
	Options []adapter.RegisterOption
}

// Factory creates the adapter for each activation.
type Factory func(opts ...adapter.Option) *adapter.Adapter

// Server installs an adapter in place of the real transport for the span
// between Start and Stop. Registrations made on the Server survive across
// activations; registrations made on the adapter returned by Start do not.
type Server struct {
	urlPattern string
	logger     logrus.FieldLogger
	factory    Factory
	target     Target

	registrations []Registration
	index         map[string]int

	active *adapter.Adapter
}

// Option is a functional option for Server
type Option func(*Server)

// WithURLPattern sets the URL pattern passed to each adapter.
func WithURLPattern(pattern string) Option {
	return func(s *Server) {
		s.urlPattern = pattern
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithFactory replaces adapter.New as the adapter constructor.
func WithFactory(factory Factory) Option {
	return func(s *Server) {
		s.factory = factory
	}
}

// WithClient installs into client instead of http.DefaultTransport.
func WithClient(client *http.Client) Option {
	return func(s *Server) {
		s.target = &clientTarget{client: client}
	}
}

// WithTarget sets where the adapter gets installed.
func WithTarget(target Target) Option {
	return func(s *Server) {
		s.target = target
	}
}

// New creates a Server. By default it replaces http.DefaultTransport.
func New(opts ...Option) *Server {
	s := &Server{
		urlPattern:    adapter.DefaultURLPattern,
		logger:        logging.Discard(),
		factory:       adapter.New,
		target:        &defaultTransportTarget{},
		registrations: make([]Registration, 0),
		index:         make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register stores a pending registration for url. body accepts the same
// types as adapter.Adapter.Register; readers are drained now so the body
// can be replayed. Registering the same url again replaces the earlier one.
func (s *Server) Register(url string, body any, opts ...adapter.RegisterOption) error {
	payload, err := adapter.EncodeBody(body)
	if err != nil {
		return err
	}
	s.store(Registration{Kind: KindPlain, URL: url, Body: payload, Options: opts})
	return nil
}

// RegisterJSON stores a pending JSON registration for url.
func (s *Server) RegisterJSON(url string, v any, opts ...adapter.RegisterOption) error {
	if _, err := json.Marshal(v); err != nil {
		return errors.Wrapf(err, "marshal JSON response for %s", url)
	}
	s.store(Registration{Kind: KindJSON, URL: url, Body: v, Options: opts})
	return nil
}

func (s *Server) store(reg Registration) {
	if i, ok := s.index[reg.URL]; ok {
		s.registrations[i] = reg
		return
	}
	s.index[reg.URL] = len(s.registrations)
	s.registrations = append(s.registrations, reg)
}

// Registrations returns the pending registrations in insertion order.
func (s *Server) Registrations() []Registration {
	out := make([]Registration, len(s.registrations))
	copy(out, s.registrations)
	return out
}

// Start creates a fresh adapter, replays the pending registrations into
// it and installs it. Calling Start while active returns the live adapter.
func (s *Server) Start() (*adapter.Adapter, error) {
	if s.active != nil {
		return s.active, nil
	}

	a := s.factory(
		adapter.WithURLPattern(s.urlPattern),
		adapter.WithLogger(s.logger),
	)

	for _, reg := range s.registrations {
		var err error
		if reg.Kind == KindJSON {
			err = a.RegisterJSON(reg.URL, reg.Body, reg.Options...)
		} else {
			err = a.Register(reg.URL, reg.Body, reg.Options...)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "replay registration for %s", reg.URL)
		}
	}

	s.target.Install(a)
	s.active = a
	s.logger.WithField("registrations", a.Len()).Debug("adapter installed")
	return a, nil
}

// Stop uninstalls the adapter and restores the previous transport.
// It is safe to call when not started.
func (s *Server) Stop() {
	if s.active == nil {
		return
	}
	s.target.Uninstall()
	s.active = nil
	s.logger.Debug("adapter uninstalled")
}

// Active returns the installed adapter, or nil.
func (s *Server) Active() *adapter.Adapter {
	return s.active
}

// Do runs fn with the adapter installed. The adapter is uninstalled when
// fn returns, fails or panics.
func (s *Server) Do(fn func(a *adapter.Adapter) error) error {
	a, err := s.Start()
	if err != nil {
		return err
	}
	defer s.Stop()
	return fn(a)
}

// Activate starts the Server for the duration of a test and registers
// Stop as a cleanup. A replay failure fails the test immediately.
func (s *Server) Activate(t testing.TB) *adapter.Adapter {
	t.Helper()
	a, err := s.Start()
	if err != nil {
		t.Fatalf("fauxhttp: %v", err)
	}
	t.Cleanup(s.Stop)
	return a
}
