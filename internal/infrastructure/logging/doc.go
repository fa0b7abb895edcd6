// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Loggers are named per component (request, transport, interceptors) so that
// the call pipeline can be filtered in aggregated logs. Header maps are logged
// through Headers, which masks credentials.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	client := request.New(tr, request.WithLogger(logger.Named("request")))
//	logger.Info("Profiles loaded", zap.Int("count", len(globals)))
package logging
