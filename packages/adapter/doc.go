// Package adapter intercepts HTTP requests at the transport layer.
//
// An Adapter implements http.RoundTripper. Install it as the Transport of an
// http.Client, register canned responses, and every request the client makes
// is answered from the registry instead of the network:
//
//	a := adapter.New(adapter.WithURLPattern("https://api.example.com%s"))
//	_ = a.RegisterJSON("/users", []string{"ada"}, adapter.WithQuery("page", "1"))
//	client := &http.Client{Transport: a}
//	resp, err := client.Get("https://api.example.com/users?page=1&limit=10")
//
// Requests are logged and can be inspected with Requests and CallCount.
package adapter
