package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the server settings, loaded from a YAML file.
type Config struct {
	// HTTPAddr is the listen address for the REST API (e.g. ":9091").
	HTTPAddr string `yaml:"http_addr"`

	// AuthToken, when set, is required as "Authorization: Bearer <token>"
	// on every request except /healthz and /metrics.
	AuthToken string `yaml:"auth_token"`

	// SnapshotPath is the .kgr file loaded at startup and written by
	// POST /system/save.
	SnapshotPath string `yaml:"snapshot_path"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		HTTPAddr: ":9091",
	}
}

// LoadConfig reads the YAML config at path. A missing file is not an error;
// it falls back to DefaultConfig so the server can run with flags alone.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":9091"
	}
	return cfg, nil
}
