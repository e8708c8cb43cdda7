// Package session installs an adapter in place of the real HTTP transport
// for a bounded scope.
//
// A Server keeps registrations that apply to every activation. Each Start
// builds a new adapter, replays those registrations and swaps it in; Stop
// puts the original transport back. Activate ties Stop to a test's cleanup
// and Do guarantees it with defer:
//
//	srv := session.New()
//	_ = srv.RegisterJSON("https://api.example.com/health", map[string]string{"status": "ok"})
//
//	func TestHealth(t *testing.T) {
//		a := srv.Activate(t)
//		resp, err := http.Get("https://api.example.com/health")
//		...
//		assert.Equal(t, 1, a.CallCount("GET", "https://api.example.com/health"))
//	}
package session
