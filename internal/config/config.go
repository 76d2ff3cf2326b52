// Package config defines service configuration structures and loading hooks.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory result submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of workers applying submissions.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the submission deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// FixturesPath optionally preloads phases from a YAML fixture file.
	FixturesPath string `koanf:"fixtures_path"`

	// CORSAllowedOrigins lists origins allowed to call the API from a browser.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// SubmitRateLimit caps POST /results per client IP, in requests per second.
	// Zero disables the limiter.
	SubmitRateLimit float64 `koanf:"submit_rate_limit"`

	// SubmitBurst is the limiter bucket size.
	SubmitBurst int `koanf:"submit_burst"`

	// ShutdownTimeout bounds graceful HTTP shutdown and queue draining.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		QueueSize:          10_000,
		WorkerCount:        runtime.NumCPU(),
		DedupeSize:         100_000,
		CORSAllowedOrigins: []string{"*"},
		SubmitRateLimit:    50,
		SubmitBurst:        100,
		ShutdownTimeout:    10 * time.Second,
	}
}

// Validate reports the first invalid field, wrapped with ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case c.QueueSize <= 0:
		return invalid("queue_size must be positive")
	case c.WorkerCount <= 0:
		return invalid("worker_count must be positive")
	case c.DedupeSize <= 0:
		return invalid("dedupe_size must be positive")
	case c.LogFormat != "text" && c.LogFormat != "json":
		return invalid("log_format must be text or json")
	case c.SubmitRateLimit < 0:
		return invalid("submit_rate_limit must not be negative")
	case c.SubmitRateLimit > 0 && c.SubmitBurst <= 0:
		return invalid("submit_burst must be positive when rate limiting")
	case c.ShutdownTimeout <= 0:
		return invalid("shutdown_timeout must be positive")
	}
	return nil
}
