// Package config holds runtime settings for the capsule CLI.
package config

import "time"

// Config holds runtime settings for the client.
//
// Fields:
//   - ServerURL: base URL of the backend HTTP API.
//   - RequestTimeout: per-request deadline applied to every API call.
//   - DataDir: directory for local state (credential database). Empty means
//     ~/.capsule, resolved by the caller.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	DataDir        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 10 * time.Second
	c.DataDir = ""
}

// Load constructs a Config: defaults first, then values from the JSON file
// at path if path is non-empty. Command-line flag overrides are applied by
// the command layer on top of the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}
