package config

import (
	"time"

	redisclient "github.com/vietddude/tapedeck/internal/infra/redis"
)

// AppConfig represents the top-level configuration. All tuning knobs
// are plain numbers; durations are expressed in seconds.
type AppConfig struct {
	Server       ServerConfig       `yaml:"server"`
	Archive      ArchiveConfig      `yaml:"archive"`
	Connectivity ConnectivityConfig `yaml:"connectivity"`
	Retry        RetryConfig        `yaml:"retry"`
	Redis        redisclient.Config `yaml:"redis"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds status server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ArchiveConfig holds settings for the upstream archive client.
type ArchiveConfig struct {
	BaseURL           string  `yaml:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	MaxRetries        int     `yaml:"max_retries"`
	Timeout           float64 `yaml:"timeout"` // seconds
}

// ConnectivityConfig holds settings for the reachability monitor.
type ConnectivityConfig struct {
	Target        string  `yaml:"target"`
	CheckInterval float64 `yaml:"check_interval"` // seconds
	ProbeTimeout  float64 `yaml:"timeout"`        // seconds
}

// RetryConfig holds the backoff settings shared by archive calls.
type RetryConfig struct {
	MaxRetries int     `yaml:"max_retries"`
	BaseDelay  float64 `yaml:"base_delay"` // seconds
	MaxDelay   float64 `yaml:"max_delay"`  // seconds
}

// Seconds converts a numeric seconds value to a duration.
func Seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
