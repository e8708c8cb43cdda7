package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		method string
		extra  map[string]Value
		want   Key
	}{
		{
			name:   "no query",
			url:    "http://example.com/path",
			method: "get",
			want:   Key{Method: "GET", Path: "http://example.com/path", Query: map[string]Value{}},
		},
		{
			name: "empty method defaults to GET",
			url:  "/path",
			want: Key{Method: "GET", Path: "/path", Query: map[string]Value{}},
		},
		{
			name:   "single and repeated parameters",
			url:    "/path?spam=eggs&bar=eggs&bar=baz",
			method: "GET",
			want: Key{Method: "GET", Path: "/path", Query: map[string]Value{
				"spam": Single("eggs"),
				"bar":  Set("baz", "eggs"),
			}},
		},
		{
			name:   "blank values are dropped",
			url:    "/path?a=&b=1",
			method: "GET",
			want:   Key{Method: "GET", Path: "/path", Query: map[string]Value{"b": Single("1")}},
		},
		{
			name:   "URL query wins over extra",
			url:    "/path?a=url",
			method: "POST",
			extra:  map[string]Value{"a": Single("extra"), "b": Single("2")},
			want: Key{Method: "POST", Path: "/path", Query: map[string]Value{
				"a": Single("url"),
				"b": Single("2"),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseKey(tt.url, tt.method, tt.extra)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestKey_String(t *testing.T) {
	k := ParseKey("/path?spam=eggs&bar=eggs&bar=baz", "GET", nil)
	assert.Equal(t, "GET /path?bar=baz&bar=eggs&spam=eggs", k.String())
}

func TestKey_StringQuotesValues(t *testing.T) {
	k := ParseKey("/search?q=a+b&path=/x/y", "GET", nil)
	assert.Equal(t, "GET /search?path=/x/y&q=a%20b", k.String())
}

func TestKey_StringWithoutQuery(t *testing.T) {
	assert.Equal(t, "DELETE /items/1", ParseKey("/items/1", "delete", nil).String())
}

func TestValue_SingleNeverEqualsSet(t *testing.T) {
	assert.False(t, Single("a").Equal(Set("a")))
	assert.True(t, Set("b", "a", "a").Equal(Set("a", "b")))
	assert.Equal(t, []string{"a", "b"}, Set("b", "a").Values())
	assert.Equal(t, "{a, b}", Set("b", "a").String())
	assert.Equal(t, "a", Single("a").String())
}

func TestKey_Equal(t *testing.T) {
	a := ParseKey("/path?x=1&y=2", "GET", nil)
	b := ParseKey("/path?y=2&x=1", "get", nil)
	assert.True(t, a.Equal(b))

	assert.False(t, a.Equal(ParseKey("/path?x=1", "GET", nil)))
	assert.False(t, a.Equal(ParseKey("/path?x=1&y=2", "POST", nil)))
	assert.False(t, a.Equal(ParseKey("/other?x=1&y=2", "GET", nil)))
}

func TestKey_Equals(t *testing.T) {
	k := ParseKey("/path?x=1", "GET", nil)

	ok, err := k.Equals("/path?x=1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = k.Equals(&k)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = k.Equals(42)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Contains(t, err.Error(), "int")
}

func TestKey_SupersetOf(t *testing.T) {
	registered := ParseKey("/path?a=1", "GET", nil)

	tests := []struct {
		name    string
		request Key
		want    bool
	}{
		{"identical", ParseKey("/path?a=1", "GET", nil), true},
		{"extra parameters", ParseKey("/path?a=1&b=2", "GET", nil), true},
		{"missing parameter", ParseKey("/path", "GET", nil), false},
		{"different value", ParseKey("/path?a=2", "GET", nil), false},
		{"set is not single", ParseKey("/path?a=1&a=2", "GET", nil), false},
		{"different path", ParseKey("/other?a=1", "GET", nil), false},
		{"different method", ParseKey("/path?a=1", "POST", nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.request.SupersetOf(registered))
		})
	}
}

func TestKey_IsExactSupersetOf(t *testing.T) {
	k := ParseKey("/path?a=1&b=2", "GET", nil)

	ok, err := k.IsExactSupersetOf("/path?b=2")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = k.IsExactSupersetOf(3.5)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestCoerce(t *testing.T) {
	k, err := Coerce([]byte("/path?a=1"))
	require.NoError(t, err)
	assert.Equal(t, "GET /path?a=1", k.String())

	var nilKey *Key
	_, err = Coerce(nilKey)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}
