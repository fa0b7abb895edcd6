// Package app assembles a ready-to-use request client from process config.
//
// It wires the pieces the library leaves to its host:
//   - transport stack (rate limit, breaker, retries) from config
//   - Prometheus metrics when enabled
//   - global configs loaded from the profile file
//   - the interceptor set selected by Options
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	a, err := app.New(cfg, logger, app.Options{FailOnStatus: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resp, err := a.Client.Get(ctx, "/users", nil)
package app
