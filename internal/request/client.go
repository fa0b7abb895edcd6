package request

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/GriffinCanCode/reqflow/internal/shared/id"
	"go.uber.org/zap"
)

// Client dispatches calls through the interceptor pipeline to a Transport. One
// Client is shared by the whole application; it is safe for concurrent use.
type Client struct {
	transport Transport
	pipeline  *Pipeline
	tasks     *Registry
	logger    *zap.Logger
	recorder  Recorder

	mu           sync.RWMutex
	globals      []GlobalConfig
	defaultIndex int
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder sets the statistics sink.
func WithRecorder(rec Recorder) Option {
	return func(c *Client) {
		if rec != nil {
			c.recorder = rec
		}
	}
}

// New creates a client over transport.
func New(transport Transport, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		tasks:     NewRegistry(),
		logger:    zap.NewNop(),
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.pipeline = NewPipeline(c.recorder)
	return c
}

// SetGlobalConfig replaces the global config collection. The configs are
// copied, later changes by the caller have no effect.
func (c *Client) SetGlobalConfig(configs []GlobalConfig) error {
	if configs == nil {
		return ErrNotSequence
	}
	globals := make([]GlobalConfig, len(configs))
	for i, g := range configs {
		globals[i] = g.Clone()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.globals = globals
	return nil
}

// SetDefaultConfigIndex selects the global config used by calls that do not
// pass WithGlobalIndex. The index is checked against the collection per call.
func (c *Client) SetDefaultConfigIndex(index int) error {
	if index < 0 {
		return ErrBadIndex
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultIndex = index
	return nil
}

// AddInterceptor appends interceptors to the pipeline.
func (c *Client) AddInterceptor(interceptors ...Interceptor) error {
	return c.pipeline.Add(interceptors)
}

// ClearFinalizers drops the finalizers accumulated by previous calls.
func (c *Client) ClearFinalizers() {
	c.pipeline.ClearFinalizers()
}

// GetRequestTask returns the task(s) of the latest call named name. Upload
// calls register a TaskSet.
func (c *Client) GetRequestTask(name string) (Handle, bool) {
	return c.tasks.Lookup(name)
}

// Pipeline exposes the interceptor pipeline, mainly for inspection.
func (c *Client) Pipeline() *Pipeline {
	return c.pipeline
}

type callSettings struct {
	local    LocalConfig
	index    int
	hasIndex bool
	name     string
}

// CallOption customizes a single call.
type CallOption func(*callSettings)

// WithConfig overrides the selected global config for this call.
func WithConfig(local LocalConfig) CallOption {
	return func(s *callSettings) { s.local = local }
}

// WithGlobalIndex selects the global config by index for this call.
func WithGlobalIndex(index int) CallOption {
	return func(s *callSettings) {
		s.index = index
		s.hasIndex = true
	}
}

// WithName registers the call's task(s) under name.
func WithName(name string) CallOption {
	return func(s *callSettings) { s.name = name }
}

// resolve applies opts and resolves the call's config under the read lock.
func (c *Client) resolve(opts []CallOption) (*callSettings, *MergedConfig, GlobalConfig, error) {
	settings := &callSettings{}
	for _, opt := range opts {
		opt(settings)
	}

	c.mu.RLock()
	if !settings.hasIndex {
		settings.index = c.defaultIndex
	}
	merged, global, err := NewResolver(c.globals).Resolve(settings.local, settings.index)
	c.mu.RUnlock()
	if err != nil {
		return nil, nil, GlobalConfig{}, err
	}
	if c.transport == nil {
		return nil, nil, GlobalConfig{}, ErrNoTransport
	}
	return settings, merged, global, nil
}

func (c *Client) finalize() {
	c.pipeline.RunFinalizers()
}

func (c *Client) register(name string, h Handle, tasks int) {
	if name == "" {
		return
	}
	c.tasks.Register(name, h)
	c.recorder.ObserveTaskRegistered(tasks)
}

func (c *Client) dispatch(ctx context.Context, method, uri string, data any, opts []CallOption) (*Response, error) {
	start := time.Now()
	callID := id.NewCallID()
	logger := c.logger.With(zap.String("call_id", callID.String()), zap.String("method", method), zap.String("uri", uri))

	resp, err := c.send(ctx, logger, method, uri, data, opts)

	c.recorder.ObserveCall(method, KindOf(err), time.Since(start))
	if err != nil {
		logger.Warn("Call failed", zap.String("outcome", KindOf(err)), zap.Error(err))
		return nil, err
	}
	logger.Debug("Call completed", zap.Int("status", resp.StatusCode), zap.Duration("duration", time.Since(start)))
	return resp, nil
}

func (c *Client) send(ctx context.Context, logger *zap.Logger, method, uri string, data any, opts []CallOption) (*Response, error) {
	settings, merged, global, err := c.resolve(opts)
	if err != nil {
		return nil, err
	}

	chain, err := c.pipeline.RunRequestPhase(ctx, merged)
	if err != nil {
		return nil, err
	}

	req := &SendRequest{
		URL:          merged.BaseURL + uri,
		Method:       method,
		Data:         EffectiveData(global.Data, data),
		Header:       cloneHeader(merged.Header),
		DataType:     merged.DataTypeOrDefault(),
		ResponseType: merged.ResponseTypeOrDefault(),
		Timeout:      merged.TimeoutOrDefault(),
		VerifyTLS:    merged.VerifyTLSOrDefault(),
	}
	logger.Debug("Sending request", zap.String("url", req.URL), zap.Int("handlers", len(chain)))

	task := c.transport.Send(ctx, req)
	c.register(settings.name, task, 1)

	raw, err := task.Wait(ctx)
	if err != nil {
		if errors.Is(err, ctx.Err()) {
			task.Abort()
		}
		c.finalize()
		return nil, &TransportError{Method: method, URL: req.URL, Err: err}
	}

	resp, err := c.pipeline.RunResponsePhase(ctx, chain, raw)
	if err != nil {
		return nil, err
	}
	c.finalize()
	return resp, nil
}
