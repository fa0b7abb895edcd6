package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/GriffinCanCode/reqflow/internal/infrastructure/config"
	"github.com/GriffinCanCode/reqflow/internal/infrastructure/logging"
	"github.com/GriffinCanCode/reqflow/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/reqflow/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/reqflow/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/reqflow/internal/interceptors"
	"github.com/GriffinCanCode/reqflow/internal/profiles"
	"github.com/GriffinCanCode/reqflow/internal/request"
	"github.com/GriffinCanCode/reqflow/internal/transport"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Options selects the interceptors installed on the client.
type Options struct {
	// BaseURL backs a single global config when the profile file does not exist.
	BaseURL string
	// Headers are defaults for every call.
	Headers map[string]string
	// Loading installs the loading indicator interceptor.
	Loading bool
	// Scripts are JavaScript interceptor files, run in order.
	Scripts []string
	// Envelope unwraps enveloped JSON replies when set.
	Envelope *interceptors.EnvelopeOptions
	// FailOnStatus rejects responses with a status of 400 or above.
	FailOnStatus bool
}

// App holds the assembled components.
type App struct {
	Config    *config.Config
	Logger    *logging.Logger
	Client    *request.Client
	Transport *transport.Transport
	// Metrics and Registry are nil unless metrics are enabled.
	Metrics  *monitoring.Metrics
	Registry *prometheus.Registry
	// Tracer is nil unless tracing is enabled.
	Tracer    *tracing.Tracer
	Indicator *interceptors.LogIndicator
}

// New builds an App from cfg.
func New(cfg *config.Config, logger *logging.Logger, opts Options) (_ *App, err error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	a := &App{Config: cfg, Logger: logger}

	var recorder request.Recorder
	var onBreakerChange func(name string, from, to resilience.State)
	if cfg.Metrics.Enabled {
		a.Registry = prometheus.NewRegistry()
		a.Metrics = monitoring.NewMetrics(a.Registry, cfg.Metrics.Namespace)
		recorder = a.Metrics
		onBreakerChange = a.Metrics.SetBreakerState
	}

	tc := transportConfig(cfg, logger.Component("transport"), onBreakerChange)
	if cfg.Tracing.Enabled {
		a.Tracer = tracing.New(cfg.Tracing.Service, logger.Component("tracing"))
		tc.Tracer = a.Tracer
		defer func() {
			if err != nil {
				a.Tracer.Close()
			}
		}()
	}
	a.Transport = transport.New(tc)

	clientOpts := []request.Option{request.WithLogger(logger.Component("request"))}
	if recorder != nil {
		clientOpts = append(clientOpts, request.WithRecorder(recorder))
	}
	a.Client = request.New(a.Transport, clientOpts...)

	globals, err := loadGlobals(cfg.Profiles.Path, opts.BaseURL)
	if err != nil {
		return nil, err
	}
	if err := a.Client.SetGlobalConfig(globals); err != nil {
		return nil, err
	}
	if err := a.Client.SetDefaultConfigIndex(cfg.Profiles.DefaultIndex); err != nil {
		return nil, err
	}

	chain, err := a.interceptors(opts)
	if err != nil {
		return nil, err
	}
	if err := a.Client.AddInterceptor(chain...); err != nil {
		return nil, err
	}

	logger.Info("client ready",
		zap.String("profiles", cfg.Profiles.Path),
		zap.Int("globals", len(globals)),
		zap.Int("interceptors", len(chain)),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Bool("tracing", cfg.Tracing.Enabled))

	return a, nil
}

// interceptors builds the chain in registration order. Response handlers run
// in reverse, so the status check sees the response before the envelope does.
func (a *App) interceptors(opts Options) ([]request.Interceptor, error) {
	chain := []request.Interceptor{interceptors.Logger(a.Logger.Component("calls"))}

	if opts.Loading {
		a.Indicator = interceptors.NewLogIndicator(a.Logger.Component("loading"))
		chain = append(chain, interceptors.Loading(a.Indicator))
	}
	if len(opts.Headers) > 0 {
		chain = append(chain, interceptors.Headers(opts.Headers))
	}
	if token := a.Config.Auth.Token; token != "" {
		chain = append(chain, interceptors.BearerToken(func(context.Context) (string, error) {
			return token, nil
		}))
	}
	for _, path := range opts.Scripts {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		ic, err := interceptors.Script(string(src), interceptors.ScriptConfig{
			Name:   path,
			Logger: a.Logger.Component("script"),
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		chain = append(chain, ic)
	}
	if opts.Envelope != nil {
		chain = append(chain, interceptors.Envelope(*opts.Envelope))
	}
	if opts.FailOnStatus {
		chain = append(chain, interceptors.StatusCheck())
	}
	return chain, nil
}

func loadGlobals(path, baseURL string) ([]request.GlobalConfig, error) {
	globals, err := profiles.Load(path)
	if err == nil {
		return globals, nil
	}
	if errors.Is(err, os.ErrNotExist) && baseURL != "" {
		return []request.GlobalConfig{{BaseURL: baseURL}}, nil
	}
	return nil, err
}

func transportConfig(cfg *config.Config, logger *zap.Logger, onBreakerChange func(name string, from, to resilience.State)) transport.Config {
	tc := transport.Config{
		UserAgent:    cfg.Transport.UserAgent,
		RetryMax:     cfg.Transport.RetryMax,
		RetryWaitMin: cfg.Transport.RetryWaitMin,
		RetryWaitMax: cfg.Transport.RetryWaitMax,
		RateLimit:    cfg.RateLimit.RequestsPerSecond,
		Burst:        cfg.RateLimit.Burst,
		Logger:       logger,
	}
	if cfg.Breaker.Enabled {
		tc.Breaker = transport.BreakerSettings(cfg.Breaker.ConsecutiveFailures, cfg.Breaker.Timeout, onBreakerChange)
	}
	return tc
}

// Close drains queued spans and flushes the logger.
func (a *App) Close() error {
	if a.Tracer != nil {
		a.Tracer.Close()
	}
	_ = a.Logger.Sync()
	return nil
}
