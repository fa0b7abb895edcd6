/*
Package monitoring provides Prometheus metrics for the reqflow call pipeline.

# Overview

Metrics implements request.Recorder, so a Client reports every call, upload,
finalizer run and task registration without depending on Prometheus itself.
The host transport's per-host circuit breakers report their state through
SetBreakerState.

# Metrics

  - <ns>_calls_total{method,outcome}
  - <ns>_call_duration_seconds{method}
  - <ns>_uploads_total{outcome}
  - <ns>_upload_files_total{outcome}
  - <ns>_finalizers_run_total
  - <ns>_tasks_registered_total
  - <ns>_transport_breaker_state{host}

# Usage

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer, "reqflow")
	client := request.New(tr, request.WithRecorder(metrics))

	// JSON-friendly view
	snap := metrics.Snapshot()
*/
package monitoring
