package monitoring

import (
	"sync"
	"time"

	"github.com/GriffinCanCode/reqflow/internal/infrastructure/resilience"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors of the call pipeline
type Metrics struct {
	// Call metrics
	CallsTotal   *prometheus.CounterVec
	CallDuration *prometheus.HistogramVec

	// Upload metrics
	UploadsTotal     *prometheus.CounterVec
	UploadFilesTotal *prometheus.CounterVec

	// Pipeline metrics
	FinalizersRun   prometheus.Counter
	TasksRegistered prometheus.Counter

	// Transport metrics
	BreakerState *prometheus.GaugeVec

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current totals for JSON output
type Snapshot struct {
	Calls         int64   `json:"calls"`
	Failures      int64   `json:"failures"`
	Uploads       int64   `json:"uploads"`
	Finalizers    int64   `json:"finalizers"`
	Tasks         int64   `json:"tasks"`
	TotalDuration float64 `json:"total_duration_seconds"`
}

// NewMetrics creates and registers the collectors on reg under namespace
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_total",
				Help:      "Total number of dispatched calls by outcome",
			},
			[]string{"method", "outcome"},
		),
		CallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "call_duration_seconds",
				Help:      "Call duration in seconds, interceptors included",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		UploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_total",
				Help:      "Total number of upload batches by outcome",
			},
			[]string{"outcome"},
		),
		UploadFilesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upload_files_total",
				Help:      "Total number of files in upload batches by outcome",
			},
			[]string{"outcome"},
		),
		FinalizersRun: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "finalizers_run_total",
				Help:      "Total number of finalizer invocations",
			},
		),
		TasksRegistered: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_registered_total",
				Help:      "Total number of transport tasks stored under a name",
			},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "transport_breaker_state",
				Help:      "Circuit breaker state per upstream host (0=closed, 1=half-open, 2=open)",
			},
			[]string{"host"},
		),
	}
}

// ObserveCall records a finished call
func (m *Metrics) ObserveCall(method, outcome string, duration time.Duration) {
	m.CallsTotal.WithLabelValues(method, outcome).Inc()
	m.CallDuration.WithLabelValues(method).Observe(duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.Calls++
	if outcome != "ok" {
		m.snapshot.Failures++
	}
	m.snapshot.TotalDuration += duration.Seconds()
}

// ObserveUpload records a finished upload batch
func (m *Metrics) ObserveUpload(outcome string, files int, duration time.Duration) {
	m.UploadsTotal.WithLabelValues(outcome).Inc()
	m.UploadFilesTotal.WithLabelValues(outcome).Add(float64(files))
	m.CallDuration.WithLabelValues("UPLOAD").Observe(duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.Uploads++
	if outcome != "ok" {
		m.snapshot.Failures++
	}
	m.snapshot.TotalDuration += duration.Seconds()
}

// ObserveFinalizers records one run of the finalizer list
func (m *Metrics) ObserveFinalizers(count int) {
	m.FinalizersRun.Add(float64(count))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.Finalizers += int64(count)
}

// ObserveTaskRegistered records tasks stored in the registry
func (m *Metrics) ObserveTaskRegistered(tasks int) {
	m.TasksRegistered.Add(float64(tasks))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.Tasks += int64(tasks)
}

// SetBreakerState publishes a breaker state change. Its signature matches
// resilience.Settings.OnStateChange.
func (m *Metrics) SetBreakerState(name string, _ resilience.State, to resilience.State) {
	m.BreakerState.WithLabelValues(name).Set(float64(to))
}

// Snapshot returns the current totals
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
