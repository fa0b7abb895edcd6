// Command reqflow issues HTTP calls through the request pipeline.
//
// Usage:
//
//	reqflow [flags] METHOD URI [DATA]
//	reqflow [flags] upload URI GLOB...
//
// URI is appended to the base URL of the selected profile. DATA is a JSON
// document sent as the call body (query string for GET). Upload expands each
// GLOB with doublestar patterns such as "shots/**/*.png" and posts every
// matching file concurrently.
//
// Process settings come from the environment (LOG_LEVEL, REQFLOW_PROFILES,
// REQFLOW_RETRY_MAX, RATE_LIMIT_RPS, BREAKER_ENABLED, METRICS_ENABLED,
// TRACING_ENABLED, REQFLOW_TOKEN, ...). The response is printed to stdout as JSON.
//
// Example:
//
//	REQFLOW_PROFILES=api.yaml reqflow -H 'Accept: application/json' GET /users '{"page":2}'
//	reqflow -base https://upload.example.com -form '{"album":"7"}' upload /files 'shots/**/*.png'
package main
