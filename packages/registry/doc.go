// Package registry matches outgoing requests against registered URLs.
//
// A Key is a method, a path and a set of required query parameters. The
// Registry looks a request up by exact key first and then by superset: a
// request matches a registration when it has the same method and path and
// carries at least the registered parameters with equal values.
//
// Lookups that match nothing fail with an *UnregisteredURLError, which
// satisfies errors.Is(err, ErrUnregisteredURL) so tests can tell a missing
// mock apart from other failures.
package registry
