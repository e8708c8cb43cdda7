// Package response holds canned HTTP responses.
//
// A Response is a byte payload with a status code and headers. It reads
// like a body stream, with a read position that belongs to the instance,
// and it can build the *http.Response a client expects. Helpers cover
// header lookups and JSON payloads.
package response
