// Package mock serves registered responses over a real HTTP listener.
package mock

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/fauxhttp/packages/adapter"
	"github.com/abdul-hamid-achik/fauxhttp/packages/journal"
	"github.com/abdul-hamid-achik/fauxhttp/packages/logging"
	"github.com/abdul-hamid-achik/fauxhttp/packages/registry"
)

// Server answers HTTP requests from an adapter's registrations.
type Server struct {
	mu      sync.Mutex
	adapter *adapter.Adapter

	port    int
	baseURL string
	delay   time.Duration
	verbose bool
	limiter *rate.Limiter
	journal *journal.Journal
	logger  logrus.FieldLogger
	stats   *latency
}

// Option is a functional option for Server
type Option func(*Server)

// WithPort sets the server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithBaseURL sets the prefix put in front of each incoming request path
// before matching, e.g. "https://api.example.com".
func WithBaseURL(baseURL string) Option {
	return func(s *Server) {
		s.baseURL = baseURL
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

// WithVerbose logs every request at info level
func WithVerbose(verbose bool) Option {
	return func(s *Server) {
		s.verbose = verbose
	}
}

// WithRate limits the server to rps requests per second. Zero disables it.
func WithRate(rps float64) Option {
	return func(s *Server) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithJournal records every request in j
func WithJournal(j *journal.Journal) Option {
	return func(s *Server) {
		s.journal = j
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a mock server backed by a.
func NewServer(a *adapter.Adapter, opts ...Option) *Server {
	s := &Server{
		adapter: a,
		port:    3000,
		logger:  logging.Discard(),
		stats:   newLatency(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reload swaps in a new adapter, e.g. after fixture files changed.
func (s *Server) Reload(a *adapter.Adapter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adapter = a
	s.logger.WithField("routes", a.Len()).Info("routes reloaded")
}

// Routes returns the registered keys.
func (s *Server) Routes() []registry.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adapter.Registered()
}

// Requests returns the requests the current adapter has answered.
func (s *Server) Requests() []*adapter.Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adapter.Requests()
}

// Stats returns request counts and latency percentiles.
func (s *Server) Stats() Stats {
	return s.stats.snapshot()
}

// Handler returns the HTTP handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	return mux
}

// Start starts the mock server
func (s *Server) Start() error {
	return s.StartWithContext(context.Background())
}

// StartWithContext starts the server with context for graceful shutdown
func (s *Server) StartWithContext(ctx context.Context) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	routes := s.Routes()
	s.logger.WithFields(logrus.Fields{
		"addr":   fmt.Sprintf("http://localhost:%d", s.port),
		"routes": len(routes),
	}).Info("mock server starting")

	if s.verbose {
		for _, key := range routes {
			s.logger.Info("  " + key.String())
		}
	}

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if s.limiter != nil {
		if err := s.limiter.Wait(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	target := s.baseURL + r.URL.RequestURI()
	out, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	out.Header = r.Header.Clone()

	s.mu.Lock()
	resp, err := s.adapter.Send(out, false)
	var callID string
	if err == nil {
		calls := s.adapter.Requests()
		callID = calls[len(calls)-1].ID
	}
	s.mu.Unlock()

	log := s.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"url":    target,
	})

	status := http.StatusNotFound
	if err != nil {
		if !registry.IsUnregistered(err) {
			status = http.StatusInternalServerError
		}
		http.Error(w, err.Error(), status)
		callID = uuid.New().String()
	} else {
		status = resp.StatusCode
		for k, vals := range resp.Header {
			for _, v := range vals {
				w.Header().Add(k, v)
			}
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			log.WithError(err).Warn("writing response body failed")
		}
		_ = resp.Body.Close()
	}

	elapsed := time.Since(start)
	s.stats.record(elapsed, err == nil)

	if s.journal != nil {
		jerr := s.journal.Record(journal.Entry{
			ID:       callID,
			Time:     start,
			Method:   r.Method,
			URL:      target,
			Status:   status,
			Matched:  err == nil,
			Duration: elapsed,
		})
		if jerr != nil {
			log.WithError(jerr).Warn("journal write failed")
		}
	}

	entry := log.WithFields(logrus.Fields{
		"status":   status,
		"duration": elapsed,
	})
	if s.verbose {
		entry.Info("request")
	} else {
		entry.Debug("request")
	}
}
