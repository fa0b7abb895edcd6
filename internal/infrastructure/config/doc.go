// Package config provides 12-factor configuration for reqflow processes.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables.
//
// Configuration Sections:
//   - Logging: Log level and output format
//   - Profiles: Global config profile file and default index
//   - Transport: User agent and transport-level retries
//   - RateLimit: Outbound token bucket
//   - Breaker: Circuit breaker around the host transport
//   - Metrics: Prometheus collection
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	globals, err := profiles.Load(cfg.Profiles.Path)
//
// Environment Variables:
//   - LOG_LEVEL, LOG_DEV
//   - REQFLOW_PROFILES, REQFLOW_DEFAULT_INDEX
//   - REQFLOW_USER_AGENT, REQFLOW_RETRY_MAX, REQFLOW_RETRY_WAIT_MIN, REQFLOW_RETRY_WAIT_MAX
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST
//   - BREAKER_ENABLED, BREAKER_CONSECUTIVE_FAILURES, BREAKER_TIMEOUT
//   - METRICS_ENABLED, METRICS_NAMESPACE
package config
