package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/GriffinCanCode/reqflow/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/reqflow/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/reqflow/internal/request"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config configures the transport stack.
type Config struct {
	UserAgent    string
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimit is the sustained operations per second. Zero or less is unlimited.
	RateLimit float64
	Burst     int
	// Breaker guards every operation when set, with one breaker per upstream host.
	Breaker *resilience.Settings
	// Tracer records a client span per operation when set.
	Tracer *tracing.Tracer
	Logger *zap.Logger
}

// DefaultConfig returns a transport without rate limiting that retries twice.
func DefaultConfig() Config {
	return Config{
		UserAgent:    "reqflow/1.0",
		RetryMax:     2,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
		Burst:        10,
		Breaker:      BreakerSettings(10, 30*time.Second, nil),
	}
}

// BreakerSettings builds breaker settings that trip after the given number of
// consecutive transport failures. Canceled operations are not failures.
func BreakerSettings(failures uint32, timeout time.Duration, onStateChange func(name string, from, to resilience.State)) *resilience.Settings {
	if failures == 0 {
		failures = 1
	}
	return &resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: onStateChange,
	}
}

// Transport implements request.Transport over HTTP.
type Transport struct {
	verify   *resty.Client
	insecure *resty.Client
	limiter  *rate.Limiter
	breakers *resilience.Group
	tracer   *tracing.Tracer
	logger   *zap.Logger
}

var _ request.Transport = (*Transport)(nil)

// New creates a transport from cfg.
func New(cfg Config) *Transport {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &Transport{
		verify:   newRestyClient(cfg, logger, false),
		insecure: newRestyClient(cfg, logger, true),
		limiter:  rate.NewLimiter(rate.Inf, 0),
		tracer:   cfg.Tracer,
		logger:   logger,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if cfg.Breaker != nil {
		t.breakers = resilience.NewGroup(*cfg.Breaker)
	}
	return t
}

func newRestyClient(cfg Config, logger *zap.Logger, insecure bool) *resty.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = retryLogger{logger.Sugar()}
	if insecure {
		if ht, ok := retryClient.HTTPClient.Transport.(*http.Transport); ok {
			ht.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // per-call opt-out
		}
	}

	client := resty.New().
		SetTransport(&retryablehttp.RoundTripper{Client: retryClient}).
		SetLogger(logger.Sugar())
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	return client
}

// Breakers returns the per-host circuit breakers, or nil when disabled.
func (t *Transport) Breakers() *resilience.Group {
	return t.breakers
}

// Send issues one request.
func (t *Transport) Send(ctx context.Context, req *request.SendRequest) request.Task {
	ctx, cancel := withTimeout(ctx, req.Timeout)
	task := request.NewAsyncTask(cancel)
	go func() {
		defer cancel()
		task.Complete(t.send(ctx, req))
	}()
	return task
}

// Upload posts one file as multipart form data.
func (t *Transport) Upload(ctx context.Context, req *request.UploadRequest) request.Task {
	ctx, cancel := context.WithCancel(ctx)
	task := request.NewAsyncTask(cancel)
	go func() {
		defer cancel()
		task.Complete(t.upload(ctx, req))
	}()
	return task
}

func (t *Transport) send(ctx context.Context, req *request.SendRequest) (*request.Response, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	ctx, span := t.startSpan(ctx, req.Method, req.URL, req.Header)
	r := t.client(req.VerifyTLS).R().SetContext(ctx).SetHeaders(traceHeaders(ctx, req.Header))
	if err := encodeBody(r, req.Method, req.DataType, req.Data); err != nil {
		t.endSpan(span, nil, err)
		return nil, err
	}

	start := time.Now()
	resp, err := t.execute(req.URL, func() (*resty.Response, error) {
		return r.Execute(req.Method, req.URL)
	})
	t.endSpan(span, resp, err)
	if err != nil {
		t.logger.Debug("transport request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL),
			zap.Duration("duration", time.Since(start)),
			tracing.Field(ctx),
			zap.Error(err))
		return nil, err
	}

	t.logger.Debug("transport request",
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", time.Since(start)),
		tracing.Field(ctx))

	return decode(resp, req.DataType, req.ResponseType)
}

func (t *Transport) execute(url string, fn func() (*resty.Response, error)) (*resty.Response, error) {
	if t.breakers == nil {
		return fn()
	}
	return resilience.Do(t.breakers.For(url), fn)
}

// startSpan opens a client span. A trace named by the caller's headers is
// joined rather than replaced.
func (t *Transport) startSpan(ctx context.Context, method, url string, header map[string]string) (context.Context, *tracing.Span) {
	if t.tracer == nil {
		return ctx, nil
	}
	span, ctx := t.tracer.StartSpan(tracing.Extract(ctx, header), method+" "+url)
	span.SetTag("http.method", method)
	span.SetTag("http.url", url)
	return ctx, span
}

func (t *Transport) endSpan(span *tracing.Span, resp *resty.Response, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.SetError(err)
	} else if resp != nil {
		span.SetStatus(resp.StatusCode())
	}
	span.Finish()
	t.tracer.Submit(span)
}

// traceHeaders returns header plus the trace identity of ctx. The caller's
// map is not modified.
func traceHeaders(ctx context.Context, header map[string]string) map[string]string {
	if tracing.TraceIDFrom(ctx) == "" {
		return header
	}
	out := make(map[string]string, len(header)+2)
	for k, v := range header {
		if !tracing.IsTraceHeader(k) {
			out[k] = v
		}
	}
	tracing.Inject(ctx, out)
	return out
}

func (t *Transport) client(verifyTLS bool) *resty.Client {
	if verifyTLS {
		return t.verify
	}
	return t.insecure
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// retryLogger adapts zap to retryablehttp.LeveledLogger.
type retryLogger struct {
	s *zap.SugaredLogger
}

func (l retryLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
