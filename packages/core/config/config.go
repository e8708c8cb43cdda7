package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config represents the fauxhttp configuration
type Config struct {
	URLPattern string            `json:"urlPattern,omitempty"`
	BaseURL    string            `json:"baseUrl,omitempty"`
	Port       int               `json:"port,omitempty"`
	Delay      string            `json:"delay,omitempty"` // duration, e.g. "100ms"
	Rate       float64           `json:"rate,omitempty"`  // requests per second, 0 = unlimited
	Fixtures   []string          `json:"fixtures,omitempty"`
	Journal    string            `json:"journal,omitempty"`
	LogLevel   string            `json:"logLevel,omitempty"`
	LogFormat  string            `json:"logFormat,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"` // Added to every fixture response
	Verbose    *bool             `json:"verbose,omitempty"`
	NoColor    *bool             `json:"noColor,omitempty"`
	Watch      *bool             `json:"watch,omitempty"`
}

// Environment variables read by ApplyEnv.
const (
	EnvPort       = "FAUXHTTP_PORT"
	EnvDelay      = "FAUXHTTP_DELAY"
	EnvRate       = "FAUXHTTP_RATE"
	EnvURLPattern = "FAUXHTTP_URL_PATTERN"
	EnvBaseURL    = "FAUXHTTP_BASE_URL"
	EnvJournal    = "FAUXHTTP_JOURNAL"
	EnvLogLevel   = "FAUXHTTP_LOG_LEVEL"
	EnvLogFormat  = "FAUXHTTP_LOG_FORMAT"
)

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetWatch returns the watch setting, defaulting to false
func (c *Config) GetWatch() bool {
	return getBool(c.Watch, false)
}

// GetDelay parses Delay. An empty or "0" delay is zero.
func (c *Config) GetDelay() (time.Duration, error) {
	if c.Delay == "" || c.Delay == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Delay)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid delay value %q", c.Delay)
	}
	return d, nil
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".fauxhttp.json",
	"fauxhttp.json",
	".fauxhttprc",
}

// LoadConfig loads configuration from the specified path or searches the
// current directory, then applies the environment.
func LoadConfig(path string) (*Config, error) {
	var (
		cfg *Config
		err error
		dir = "."
	)
	if path != "" {
		cfg, err = loadConfigFromFile(path)
		dir = filepath.Dir(path)
	} else {
		cfg, err = FindAndLoadConfig(dir)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(dir); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	return config, nil
}

// ApplyEnv loads dir/.env if present, without overriding variables that are
// already set, and then applies the FAUXHTTP_* overrides.
func (c *Config) ApplyEnv(dir string) error {
	envFile := filepath.Join(dir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return errors.Wrapf(err, "error loading environment from %s", envFile)
		}
	}

	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvPort)
		}
		c.Port = port
	}
	if v := os.Getenv(EnvRate); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvRate)
		}
		c.Rate = rps
	}
	if v := os.Getenv(EnvDelay); v != "" {
		c.Delay = v
	}
	if v := os.Getenv(EnvURLPattern); v != "" {
		c.URLPattern = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvJournal); v != "" {
		c.Journal = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.LogFormat = v
	}
	return nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.URLPattern != "" {
		result.URLPattern = other.URLPattern
	}
	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if other.Port > 0 {
		result.Port = other.Port
	}
	if other.Delay != "" {
		result.Delay = other.Delay
	}
	if other.Rate > 0 {
		result.Rate = other.Rate
	}
	if other.Journal != "" {
		result.Journal = other.Journal
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		result.LogFormat = other.LogFormat
	}
	if len(other.Fixtures) > 0 {
		result.Fixtures = other.Fixtures
	}

	// Boolean flags - only override if explicitly set in other config
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	if other.Watch != nil {
		result.Watch = other.Watch
	}

	// Merge headers
	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(other.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
