// Package fixtures loads registrations from YAML or JSON files.
package fixtures

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/fauxhttp/packages/adapter"
)

// Extensions lists the file extensions treated as fixture files.
var Extensions = []string{".yaml", ".yml", ".json"}

// Registrar accepts registrations. Both *adapter.Adapter and
// *session.Server satisfy it.
type Registrar interface {
	Register(url string, body any, opts ...adapter.RegisterOption) error
	RegisterJSON(url string, v any, opts ...adapter.RegisterOption) error
}

// File is a parsed fixture file.
type File struct {
	Path    string            `yaml:"-"`
	BaseURL string            `yaml:"baseUrl"`
	Headers map[string]string `yaml:"headers"`
	Routes  []*Route          `yaml:"routes"`
}

// Route is one canned response.
type Route struct {
	Name    string            `yaml:"name"`
	URL     string            `yaml:"url"`
	Method  string            `yaml:"method"`
	Status  int               `yaml:"status"`
	Headers map[string]string `yaml:"headers"`
	Query   map[string]any    `yaml:"query"`
	Body    *string           `yaml:"body"`
	JSON    any               `yaml:"json"`
}

// IsFixtureFile reports whether path has a fixture extension.
func IsFixtureFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Load reads, validates and parses a fixture file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read fixture file %s", path)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "fixture file %s", path)
	}
	f.Path = path
	return f, nil
}

// LoadFiles loads several fixture files, stopping at the first error.
func LoadFiles(paths []string) ([]*File, error) {
	files := make([]*File, 0, len(paths))
	for _, path := range paths {
		f, err := Load(path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Parse validates data against the fixture schema and decodes it. JSON
// input is accepted since it is valid YAML.
func Parse(data []byte) (*File, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decode fixtures")
	}
	return &f, nil
}

// Apply registers every route of f on r.
func (f *File) Apply(r Registrar) error {
	for i, route := range f.Routes {
		if err := route.apply(r, f.BaseURL, f.Headers); err != nil {
			return errors.Wrapf(err, "route %d (%s)", i, route.Label())
		}
	}
	return nil
}

// Label names a route for listings.
func (r *Route) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("%s %s", r.method(), r.URL)
}

func (r *Route) method() string {
	if r.Method == "" {
		return "GET"
	}
	return strings.ToUpper(r.Method)
}

func (r *Route) apply(reg Registrar, baseURL string, headers map[string]string) error {
	opts := []adapter.RegisterOption{
		adapter.WithMethod(r.method()),
		adapter.WithHeaders(headers),
		adapter.WithHeaders(r.Headers),
	}
	if r.Status != 0 {
		opts = append(opts, adapter.WithStatus(r.Status))
	}

	names := make([]string, 0, len(r.Query))
	for name := range r.Query {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		switch v := r.Query[name].(type) {
		case []any:
			vals := distinct(v)
			if len(vals) == 1 {
				// A request carrying the parameter once parses as a single value.
				opts = append(opts, adapter.WithQuery(name, vals[0]))
				continue
			}
			opts = append(opts, adapter.WithQueryValues(name, vals...))
		default:
			opts = append(opts, adapter.WithQuery(name, fmt.Sprint(v)))
		}
	}

	url := baseURL + r.URL
	if r.JSON != nil {
		return reg.RegisterJSON(url, normalize(r.JSON), opts...)
	}

	body := ""
	if r.Body != nil {
		body = *r.Body
	}
	return reg.Register(url, body, opts...)
}

// distinct renders items as strings, dropping repeats.
func distinct(items []any) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		v := fmt.Sprint(item)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// normalize turns the map[any]any values nested YAML can produce into
// map[string]any so encoding/json can marshal them.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}

// toJSON re-encodes a YAML document as JSON for schema validation.
func toJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode fixtures")
	}
	out, err := json.Marshal(normalize(doc))
	if err != nil {
		return nil, errors.Wrap(err, "encode fixtures as JSON")
	}
	return out, nil
}
