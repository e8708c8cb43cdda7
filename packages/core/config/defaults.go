package config

import "github.com/abdul-hamid-achik/fauxhttp/packages/adapter"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		URLPattern: adapter.DefaultURLPattern,
		BaseURL:    "",
		Port:       3000,
		Delay:      "0",
		Rate:       0,
		Fixtures:   nil,
		Journal:    "",
		LogLevel:   "info",
		LogFormat:  "text",
		Headers:    nil,
		Verbose:    BoolPtr(false),
		NoColor:    BoolPtr(false),
		Watch:      BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.URLPattern == defaults.URLPattern &&
		c.BaseURL == defaults.BaseURL &&
		c.Port == defaults.Port &&
		c.Delay == defaults.Delay &&
		c.Rate == defaults.Rate &&
		len(c.Fixtures) == 0 &&
		c.Journal == defaults.Journal &&
		c.LogLevel == defaults.LogLevel &&
		c.LogFormat == defaults.LogFormat &&
		len(c.Headers) == 0 &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor() &&
		c.GetWatch() == defaults.GetWatch()
}
