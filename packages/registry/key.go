package registry

import (
	"net/url"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Value is a query parameter value: either a single string or a set of
// strings for a parameter that appears more than once.
type Value struct {
	vals []string
	set  bool
}

// Single returns a single-valued parameter.
func Single(v string) Value {
	return Value{vals: []string{v}}
}

// Set returns a multi-valued parameter. Duplicates are dropped.
func Set(vs ...string) Value {
	seen := make(map[string]bool, len(vs))
	vals := make([]string, 0, len(vs))
	for _, v := range vs {
		if seen[v] {
			continue
		}
		seen[v] = true
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return Value{vals: vals, set: true}
}

// IsSet reports whether the value is multi-valued.
func (v Value) IsSet() bool {
	return v.set
}

// Values returns the value(s) in ascending order.
func (v Value) Values() []string {
	out := make([]string, len(v.vals))
	copy(out, v.vals)
	return out
}

// Equal compares values. A single value never equals a one-element set.
func (v Value) Equal(other Value) bool {
	if v.set != other.set || len(v.vals) != len(other.vals) {
		return false
	}
	for i := range v.vals {
		if v.vals[i] != other.vals[i] {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	if !v.set {
		if len(v.vals) == 0 {
			return ""
		}
		return v.vals[0]
	}
	return "{" + strings.Join(v.vals, ", ") + "}"
}

// Key identifies a registration: method, path (everything before the first
// '?') and the required query parameters.
type Key struct {
	Method string
	Path   string
	Query  map[string]Value
}

// ParseKey builds a Key from a raw URL. Query parameters found in the URL
// take precedence over the ones in extra. An empty method means GET.
//
// Parameters with blank values are dropped and malformed pairs are skipped,
// so "?a=&b=1" yields only b.
func ParseKey(rawURL, method string, extra map[string]Value) Key {
	query := make(map[string]Value, len(extra))
	path := rawURL

	if idx := strings.IndexByte(rawURL, '?'); idx >= 0 {
		path = rawURL[:idx]
		parsed, _ := url.ParseQuery(rawURL[idx+1:])
		for name, vals := range parsed {
			nonBlank := vals[:0:0]
			for _, v := range vals {
				if v != "" {
					nonBlank = append(nonBlank, v)
				}
			}
			switch len(nonBlank) {
			case 0:
				continue
			case 1:
				query[name] = Single(nonBlank[0])
			default:
				query[name] = Set(nonBlank...)
			}
		}
	}

	for name, v := range extra {
		if _, ok := query[name]; !ok {
			query[name] = v
		}
	}

	if method == "" {
		method = "GET"
	}

	return Key{
		Method: strings.ToUpper(method),
		Path:   path,
		Query:  query,
	}
}

// Coerce converts v into a Key. Strings are parsed as GET URLs.
func Coerce(v any) (Key, error) {
	switch k := v.(type) {
	case Key:
		return k, nil
	case *Key:
		if k != nil {
			return *k, nil
		}
	case string:
		return ParseKey(k, "GET", nil), nil
	case []byte:
		return ParseKey(string(k), "GET", nil), nil
	}
	return Key{}, errors.Wrapf(ErrTypeMismatch, "cannot compare URL with %T", v)
}

// Equal reports whether both keys have the same method, path and query.
func (k Key) Equal(other Key) bool {
	if k.Method != other.Method || k.Path != other.Path || len(k.Query) != len(other.Query) {
		return false
	}
	for name, v := range k.Query {
		ov, ok := other.Query[name]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Equals is Equal for anything Coerce accepts.
func (k Key) Equals(other any) (bool, error) {
	o, err := Coerce(other)
	if err != nil {
		return false, err
	}
	return k.Equal(o), nil
}

// SupersetOf reports whether k matches other: same path and method, and
// every parameter of other is present in k with an equal value. Extra
// parameters in k are ignored.
func (k Key) SupersetOf(other Key) bool {
	if k.Path != other.Path {
		return false
	}
	if !strings.EqualFold(k.Method, other.Method) {
		return false
	}
	for name, want := range other.Query {
		got, ok := k.Query[name]
		if !ok || !got.Equal(want) {
			return false
		}
	}
	return true
}

// IsExactSupersetOf is SupersetOf for anything Coerce accepts.
func (k Key) IsExactSupersetOf(other any) (bool, error) {
	o, err := Coerce(other)
	if err != nil {
		return false, err
	}
	return k.SupersetOf(o), nil
}

// String renders the canonical form, e.g. "GET /path?bar=baz&bar=eggs&spam=eggs".
// Parameter names are sorted, as are the values of multi-valued parameters.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(k.Method)
	b.WriteByte(' ')
	b.WriteString(k.Path)

	if len(k.Query) == 0 {
		return b.String()
	}

	names := make([]string, 0, len(k.Query))
	for name := range k.Query {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		for _, v := range k.Query[name].vals {
			pairs = append(pairs, name+"="+quote(v))
		}
	}

	b.WriteByte('?')
	b.WriteString(strings.Join(pairs, "&"))
	return b.String()
}

const upperhex = "0123456789ABCDEF"

// quote percent-encodes everything except unreserved characters and '/'.
func quote(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || c == '/' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}
