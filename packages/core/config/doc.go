// Package config handles configuration loading and management for fauxhttp.
//
// It provides functionality for:
//   - Loading configuration from .fauxhttp.json, fauxhttp.json or .fauxhttprc
//   - Default configuration values
//   - Loading a .env file and FAUXHTTP_* environment overrides
package config
