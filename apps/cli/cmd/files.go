package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/abdul-hamid-achik/fauxhttp/packages/adapter"
	"github.com/abdul-hamid-achik/fauxhttp/packages/core/config"
	"github.com/abdul-hamid-achik/fauxhttp/packages/fixtures"
)

// fixtureArgs falls back to the config's fixture list when no paths were
// given on the command line.
func fixtureArgs(args []string, cfg *config.Config) ([]string, error) {
	if len(args) == 0 {
		args = cfg.Fixtures
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("no fixture files given and none configured")
	}

	files, err := collectFiles(args)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .yaml, .yml or .json fixture files found")
	}
	return files, nil
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && fixtures.IsFixtureFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if fixtures.IsFixtureFile(arg) {
			files = append(files, arg)
		}
	}

	return files, nil
}

// buildAdapter loads every fixture file into a fresh adapter. Config
// headers are applied under each file's own headers.
func buildAdapter(files []string, cfg *config.Config, logger logrus.FieldLogger) (*adapter.Adapter, []*fixtures.File, error) {
	loaded, err := fixtures.LoadFiles(files)
	if err != nil {
		return nil, nil, err
	}

	opts := []adapter.Option{adapter.WithLogger(logger)}
	if cfg.URLPattern != "" {
		opts = append(opts, adapter.WithURLPattern(cfg.URLPattern))
	}
	a := adapter.New(opts...)
	for _, f := range loaded {
		f.Headers = mergeHeaders(cfg.Headers, f.Headers)
		if err := f.Apply(a); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", f.Path, err)
		}
	}
	return a, loaded, nil
}

// baseURLMismatches returns the fixture files whose baseUrl differs from the
// prefix the server puts in front of incoming paths. Their routes can never
// be reached through the server.
func baseURLMismatches(loaded []*fixtures.File, serverBaseURL string) []*fixtures.File {
	var out []*fixtures.File
	for _, f := range loaded {
		if f.BaseURL != "" && f.BaseURL != serverBaseURL {
			out = append(out, f)
		}
	}
	return out
}

func mergeHeaders(base, override map[string]string) map[string]string {
	if len(base) == 0 {
		return override
	}
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
