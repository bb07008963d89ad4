package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. Timeouts are
// given in whole seconds. Zero values leave the corresponding Config field
// untouched, so a file can override a single setting.
type jsonConfig struct {
	ServerURL             string `json:"server_url"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
	DataDir               string `json:"data_dir"`
}

// parseJSON overlays cfg with values loaded from the JSON file at path.
// An empty path means no file is configured and is not an error.
func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeoutSeconds) * time.Second
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	return nil
}
