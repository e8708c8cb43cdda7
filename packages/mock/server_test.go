package mock

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/fauxhttp/packages/adapter"
	"github.com/abdul-hamid-achik/fauxhttp/packages/journal"
)

func newAdapter(t *testing.T) *adapter.Adapter {
	t.Helper()
	a := adapter.New(adapter.WithURLPattern("http://api.test%s"))
	require.NoError(t, a.RegisterJSON("/users", []string{"ada"}, adapter.WithQuery("page", "1")))
	require.NoError(t, a.Register("/users", "created",
		adapter.WithMethod("POST"),
		adapter.WithStatus(http.StatusCreated),
		adapter.WithHeader("Location", "/users/2"),
	))
	return a
}

func do(t *testing.T, srv *httptest.Server, method, path string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestServer_ServesRegisteredResponses(t *testing.T) {
	s := NewServer(newAdapter(t), WithBaseURL("http://api.test"))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, body := do(t, srv, http.MethodGet, "/users?page=1&sort=asc")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, adapter.ContentTypeJSON, resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `["ada"]`, body)

	resp, body = do(t, srv, http.MethodPost, "/users")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/users/2", resp.Header.Get("Location"))
	assert.Equal(t, "created", body)

	assert.Len(t, s.Requests(), 2)
}

func TestServer_UnmatchedReturns404WithDiagnostics(t *testing.T) {
	s := NewServer(newAdapter(t), WithBaseURL("http://api.test"))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, body := do(t, srv, http.MethodGet, "/users?page=2")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "No registered URL matches the request.")
	assert.Contains(t, body, "GET http://api.test/users?page=1")
	assert.Contains(t, body, "POST http://api.test/users")
	assert.Contains(t, body, "GET http://api.test/users?page=2")

	stats := s.Stats()
	assert.Equal(t, int64(1), stats.Requests)
	assert.Equal(t, int64(1), stats.Unmatched)
}

func TestServer_Journal(t *testing.T) {
	j, err := journal.Open("sqlite://" + filepath.Join(t.TempDir(), "calls.db"))
	require.NoError(t, err)
	defer j.Close()

	s := NewServer(newAdapter(t), WithBaseURL("http://api.test"), WithJournal(j))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	do(t, srv, http.MethodGet, "/users?page=1")
	do(t, srv, http.MethodDelete, "/users")

	entries, err := j.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "GET", entries[0].Method)
	assert.Equal(t, "http://api.test/users?page=1", entries[0].URL)
	assert.Equal(t, http.StatusOK, entries[0].Status)
	assert.True(t, entries[0].Matched)
	assert.Equal(t, s.Requests()[0].ID, entries[0].ID)

	assert.Equal(t, http.StatusNotFound, entries[1].Status)
	assert.False(t, entries[1].Matched)
	assert.NotEmpty(t, entries[1].ID)
}

func TestServer_Reload(t *testing.T) {
	s := NewServer(newAdapter(t), WithBaseURL("http://api.test"))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	next := adapter.New()
	require.NoError(t, next.Register("http://api.test/new", "fresh"))
	s.Reload(next)

	require.Len(t, s.Routes(), 1)
	resp, body := do(t, srv, http.MethodGet, "/new")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "fresh", body)

	resp, _ = do(t, srv, http.MethodGet, "/users?page=1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Delay(t *testing.T) {
	s := NewServer(newAdapter(t), WithBaseURL("http://api.test"), WithDelay(20*time.Millisecond))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	start := time.Now()
	do(t, srv, http.MethodGet, "/users?page=1")
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.GreaterOrEqual(t, s.Stats().P50, 20*time.Millisecond)
}

func TestServer_RateLimit(t *testing.T) {
	s := NewServer(newAdapter(t), WithBaseURL("http://api.test"), WithRate(20))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	start := time.Now()
	for i := 0; i < 3; i++ {
		do(t, srv, http.MethodGet, "/users?page=1")
	}
	// Burst of one: the second and third requests wait 50ms each.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestServer_StatsEmpty(t *testing.T) {
	s := NewServer(newAdapter(t))
	assert.Equal(t, Stats{}, s.Stats())
}

func TestServer_StartWithContext(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	s := NewServer(newAdapter(t), WithPort(port), WithBaseURL("http://api.test"))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.StartWithContext(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(port) + "/users?page=1")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
