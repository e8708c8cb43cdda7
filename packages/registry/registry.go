package registry

import (
	"github.com/abdul-hamid-achik/fauxhttp/packages/response"
)

type entry struct {
	key  Key
	resp *response.Response
}

// Registry maps keys to canned responses. Lookups fall back to superset
// matching, so a registration can under-specify query parameters and still
// match requests that carry more of them. Entries keep insertion order,
// which is also the tie-break order when several registrations match.
type Registry struct {
	entries []entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make([]entry, 0),
	}
}

// Set stores resp under key, replacing an existing entry with an equal key.
func (r *Registry) Set(key Key, resp *response.Response) {
	for i := range r.entries {
		if r.entries[i].key.Equal(key) {
			r.entries[i].resp = resp
			return
		}
	}
	r.entries = append(r.entries, entry{key: key, resp: resp})
}

// Get returns the response for key, which may be a raw URL string or a Key.
//
// An exact match wins. A raw string is first compared with the canonical
// form of every stored key. Otherwise the first stored key that the
// request is an exact superset of is used. If nothing matches the error is
// an *UnregisteredURLError.
func (r *Registry) Get(key any) (*response.Response, error) {
	if raw, ok := key.(string); ok {
		for _, e := range r.entries {
			if e.key.String() == raw {
				return e.resp, nil
			}
		}
	}

	k, err := Coerce(key)
	if err != nil {
		return nil, err
	}

	for _, e := range r.entries {
		if e.key.Equal(k) {
			return e.resp, nil
		}
	}

	for _, e := range r.entries {
		if k.SupersetOf(e.key) {
			return e.resp, nil
		}
	}

	registered := make([]string, len(r.entries))
	for i, e := range r.entries {
		registered[i] = e.key.String()
	}
	return nil, &UnregisteredURLError{
		Registered: registered,
		Requested:  k.String(),
	}
}

// Overlaps returns the stored keys that differ from key but would compete
// with it during superset matching.
func (r *Registry) Overlaps(key Key) []Key {
	var out []Key
	for _, e := range r.entries {
		if e.key.Equal(key) {
			continue
		}
		if e.key.SupersetOf(key) || key.SupersetOf(e.key) {
			out = append(out, e.key)
		}
	}
	return out
}

// Keys returns the registered keys in insertion order.
func (r *Registry) Keys() []Key {
	keys := make([]Key, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.key
	}
	return keys
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Clear removes every registration.
func (r *Registry) Clear() {
	r.entries = make([]entry, 0)
}
