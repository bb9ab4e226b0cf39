package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file. Environment variables in
// the file body are expanded before parsing.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *AppConfig {
	var cfg AppConfig
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Archive.BaseURL == "" {
		cfg.Archive.BaseURL = "https://archive.org"
	}
	if cfg.Archive.RequestsPerSecond <= 0 {
		cfg.Archive.RequestsPerSecond = 1
	}
	if cfg.Archive.MaxRetries <= 0 {
		cfg.Archive.MaxRetries = 3
	}
	if cfg.Archive.Timeout <= 0 {
		cfg.Archive.Timeout = 30
	}

	if cfg.Connectivity.Target == "" {
		cfg.Connectivity.Target = "archive.org:443"
	}
	if cfg.Connectivity.CheckInterval <= 0 {
		cfg.Connectivity.CheckInterval = 5
	}
	if cfg.Connectivity.ProbeTimeout <= 0 {
		cfg.Connectivity.ProbeTimeout = 3
	}

	if cfg.Retry.MaxRetries <= 0 {
		cfg.Retry.MaxRetries = 3
	}
	if cfg.Retry.BaseDelay <= 0 {
		cfg.Retry.BaseDelay = 1
	}
	if cfg.Retry.MaxDelay < cfg.Retry.BaseDelay {
		cfg.Retry.MaxDelay = 30
	}
}
