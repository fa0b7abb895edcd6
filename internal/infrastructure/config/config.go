package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all process configuration.
type Config struct {
	Logging   LogConfig
	Profiles  ProfilesConfig
	Transport TransportConfig
	RateLimit RateLimitConfig
	Breaker   BreakerConfig
	Metrics   MetricsConfig
	Tracing   TracingConfig
	Auth      AuthConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// ProfilesConfig locates the global config collection.
type ProfilesConfig struct {
	Path         string `envconfig:"REQFLOW_PROFILES" default:"reqflow.yaml"`
	DefaultIndex int    `envconfig:"REQFLOW_DEFAULT_INDEX" default:"0"`
}

// TransportConfig holds host transport settings.
type TransportConfig struct {
	UserAgent    string        `envconfig:"REQFLOW_USER_AGENT" default:"reqflow/1.0"`
	RetryMax     int           `envconfig:"REQFLOW_RETRY_MAX" default:"2"`
	RetryWaitMin time.Duration `envconfig:"REQFLOW_RETRY_WAIT_MIN" default:"200ms"`
	RetryWaitMax time.Duration `envconfig:"REQFLOW_RETRY_WAIT_MAX" default:"5s"`
}

// RateLimitConfig holds outbound rate limiting configuration. Zero RPS means unlimited.
type RateLimitConfig struct {
	RequestsPerSecond float64 `envconfig:"RATE_LIMIT_RPS" default:"0"`
	Burst             int     `envconfig:"RATE_LIMIT_BURST" default:"10"`
}

// BreakerConfig holds circuit breaker configuration.
type BreakerConfig struct {
	Enabled             bool          `envconfig:"BREAKER_ENABLED" default:"true"`
	ConsecutiveFailures uint32        `envconfig:"BREAKER_CONSECUTIVE_FAILURES" default:"10"`
	Timeout             time.Duration `envconfig:"BREAKER_TIMEOUT" default:"30s"`
}

// MetricsConfig holds Prometheus configuration.
type MetricsConfig struct {
	Enabled   bool   `envconfig:"METRICS_ENABLED" default:"false"`
	Namespace string `envconfig:"METRICS_NAMESPACE" default:"reqflow"`
}

// TracingConfig controls client span logging and trace header propagation.
type TracingConfig struct {
	Enabled bool   `envconfig:"TRACING_ENABLED" default:"false"`
	Service string `envconfig:"TRACING_SERVICE" default:"reqflow"`
}

// AuthConfig holds credentials attached to outgoing calls.
type AuthConfig struct {
	Token string `envconfig:"REQFLOW_TOKEN"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Profiles: ProfilesConfig{
			Path:         "reqflow.yaml",
			DefaultIndex: 0,
		},
		Transport: TransportConfig{
			UserAgent:    "reqflow/1.0",
			RetryMax:     2,
			RetryWaitMin: 200 * time.Millisecond,
			RetryWaitMax: 5 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 0,
			Burst:             10,
		},
		Breaker: BreakerConfig{
			Enabled:             true,
			ConsecutiveFailures: 10,
			Timeout:             30 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "reqflow",
		},
		Tracing: TracingConfig{
			Enabled: false,
			Service: "reqflow",
		},
	}
}

// Validate rejects values the transport cannot work with.
func (c *Config) Validate() error {
	if c.Profiles.DefaultIndex < 0 {
		return fmt.Errorf("REQFLOW_DEFAULT_INDEX must not be negative, got %d", c.Profiles.DefaultIndex)
	}
	if c.Transport.RetryMax < 0 {
		return fmt.Errorf("REQFLOW_RETRY_MAX must not be negative, got %d", c.Transport.RetryMax)
	}
	if c.Transport.RetryWaitMin > c.Transport.RetryWaitMax {
		return fmt.Errorf("REQFLOW_RETRY_WAIT_MIN (%s) exceeds REQFLOW_RETRY_WAIT_MAX (%s)",
			c.Transport.RetryWaitMin, c.Transport.RetryWaitMax)
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %g", c.RateLimit.RequestsPerSecond)
	}
	return nil
}
