package session

import (
	"net/http"
)

// Target is the place an adapter gets installed into.
type Target interface {
	Install(rt http.RoundTripper)
	Uninstall()
}

// defaultTransportTarget swaps the process-wide http.DefaultTransport,
// which http.DefaultClient and every client without its own Transport use.
type defaultTransportTarget struct {
	saved http.RoundTripper
}

func (t *defaultTransportTarget) Install(rt http.RoundTripper) {
	t.saved = http.DefaultTransport
	http.DefaultTransport = rt
}

func (t *defaultTransportTarget) Uninstall() {
	http.DefaultTransport = t.saved
	t.saved = nil
}

type clientTarget struct {
	client *http.Client
	saved  http.RoundTripper
}

func (t *clientTarget) Install(rt http.RoundTripper) {
	t.saved = t.client.Transport
	t.client.Transport = rt
}

func (t *clientTarget) Uninstall() {
	t.client.Transport = t.saved
	t.saved = nil
}
