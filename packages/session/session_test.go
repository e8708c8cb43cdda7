package session

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/fauxhttp/packages/adapter"
	"github.com/abdul-hamid-achik/fauxhttp/packages/registry"
)

func get(t *testing.T, client *http.Client, url string) (string, error) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data), nil
}

func TestServer_ReplaysRegistrations(t *testing.T) {
	client := &http.Client{}
	s := New(WithClient(client), WithURLPattern("http://api.test%s"))
	require.NoError(t, s.Register("/plain", "text"))
	require.NoError(t, s.RegisterJSON("/json", map[string]int{"n": 1}))

	a, err := s.Start()
	require.NoError(t, err)
	defer s.Stop()

	assert.Equal(t, 2, a.Len())
	body, err := get(t, client, "http://api.test/plain")
	require.NoError(t, err)
	assert.Equal(t, "text", body)

	body, err = get(t, client, "http://api.test/json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, body)
}

func TestServer_AdHocRegistrationsDoNotPersist(t *testing.T) {
	client := &http.Client{}
	s := New(WithClient(client))
	require.NoError(t, s.Register("http://api.test/kept", "kept"))

	a, err := s.Start()
	require.NoError(t, err)
	require.NoError(t, a.Register("http://api.test/adhoc", "adhoc"))

	_, err = get(t, client, "http://api.test/adhoc")
	require.NoError(t, err)
	s.Stop()

	_, err = s.Start()
	require.NoError(t, err)
	defer s.Stop()

	_, err = get(t, client, "http://api.test/adhoc")
	assert.True(t, registry.IsUnregistered(err))

	body, err := get(t, client, "http://api.test/kept")
	require.NoError(t, err)
	assert.Equal(t, "kept", body)
}

func TestServer_ReaderBodyReplaysAcrossActivations(t *testing.T) {
	client := &http.Client{}
	s := New(WithClient(client))
	require.NoError(t, s.Register("http://api.test/r", strings.NewReader("once")))

	for i := 0; i < 2; i++ {
		require.NoError(t, s.Do(func(*adapter.Adapter) error {
			body, err := get(t, client, "http://api.test/r")
			require.NoError(t, err)
			assert.Equal(t, "once", body)
			return nil
		}))
	}
}

func TestServer_RegisterSameURLReplaces(t *testing.T) {
	s := New()
	require.NoError(t, s.Register("/a", "first"))
	require.NoError(t, s.Register("/b", "b"))
	require.NoError(t, s.RegisterJSON("/a", []int{1}))

	regs := s.Registrations()
	require.Len(t, regs, 2)
	assert.Equal(t, "/a", regs[0].URL)
	assert.Equal(t, KindJSON, regs[0].Kind)
	assert.Equal(t, KindPlain, regs[1].Kind)
}

func TestServer_RegisterErrors(t *testing.T) {
	s := New()
	assert.Error(t, s.Register("/a", 12))
	assert.Error(t, s.RegisterJSON("/a", func() {}))
	assert.Empty(t, s.Registrations())
}

func TestServer_StopRestoresTransport(t *testing.T) {
	orig := &http.Transport{}
	client := &http.Client{Transport: orig}
	s := New(WithClient(client))

	a, err := s.Start()
	require.NoError(t, err)
	assert.Same(t, a, client.Transport)
	assert.Same(t, a, s.Active())

	again, err := s.Start()
	require.NoError(t, err)
	assert.Same(t, a, again, "Start while active returns the live adapter")

	s.Stop()
	assert.Same(t, orig, client.Transport)
	assert.Nil(t, s.Active())

	s.Stop()
	assert.Same(t, orig, client.Transport)
}

func TestServer_DefaultTransport(t *testing.T) {
	orig := http.DefaultTransport
	s := New()
	require.NoError(t, s.Register("http://api.test/default", "via default client"))

	err := s.Do(func(a *adapter.Adapter) error {
		assert.Same(t, a, http.DefaultTransport)
		body, err := get(t, http.DefaultClient, "http://api.test/default")
		require.NoError(t, err)
		assert.Equal(t, "via default client", body)
		return nil
	})
	require.NoError(t, err)
	assert.Same(t, orig, http.DefaultTransport)
}

func TestServer_DoStopsOnError(t *testing.T) {
	client := &http.Client{}
	s := New(WithClient(client))
	boom := errors.New("boom")

	err := s.Do(func(*adapter.Adapter) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, client.Transport)
	assert.Nil(t, s.Active())
}

func TestServer_DoStopsOnPanic(t *testing.T) {
	client := &http.Client{}
	s := New(WithClient(client))

	assert.Panics(t, func() {
		_ = s.Do(func(*adapter.Adapter) error { panic("boom") })
	})
	assert.Nil(t, client.Transport)
}

func TestServer_ReplayFailure(t *testing.T) {
	client := &http.Client{}
	s := New(WithClient(client), WithURLPattern("no placeholder"))
	require.NoError(t, s.Register("/a", ""))

	_, err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/a")
	assert.Nil(t, client.Transport)
	assert.Nil(t, s.Active())
}

func TestServer_Activate(t *testing.T) {
	client := &http.Client{}
	s := New(WithClient(client))
	require.NoError(t, s.Register("http://api.test/x", "x"))

	t.Run("active inside", func(t *testing.T) {
		a := s.Activate(t)
		assert.Same(t, a, client.Transport)
	})

	assert.Nil(t, client.Transport, "cleanup uninstalls")
}

func TestServer_WithFactory(t *testing.T) {
	var built int
	s := New(WithTarget(&clientTarget{client: &http.Client{}}), WithFactory(func(opts ...adapter.Option) *adapter.Adapter {
		built++
		return adapter.New(opts...)
	}))

	require.NoError(t, s.Do(func(*adapter.Adapter) error { return nil }))
	require.NoError(t, s.Do(func(*adapter.Adapter) error { return nil }))
	assert.Equal(t, 2, built)
}
