package request

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

type pipelineState int

const (
	stateBuilding pipelineState = iota
	stateFrozen
)

// Pipeline holds the interceptors, the response handler chain they produce and
// the finalizers they register. It is safe for concurrent use.
type Pipeline struct {
	recorder Recorder

	mu           sync.Mutex
	interceptors []Interceptor
	handlers     []ResponseHandler
	state        pipelineState
	finalizers   []Finalizer
}

// NewPipeline creates an empty pipeline in the building state. rec may be nil.
func NewPipeline(rec Recorder) *Pipeline {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Pipeline{recorder: rec}
}

// Add appends interceptors in order. Nothing is added when any entry is nil.
func (p *Pipeline) Add(interceptors []Interceptor) error {
	if interceptors == nil {
		return ErrNotSequence
	}
	for i, ic := range interceptors {
		if ic == nil {
			return fmt.Errorf("%w: entry %d", ErrNotInvocable, i+1)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.interceptors = append(p.interceptors, interceptors...)
	return nil
}

// AddFinalizer pushes f to the front of the finalizer list.
func (p *Pipeline) AddFinalizer(f Finalizer) error {
	if f == nil {
		return &ConfigError{Message: "finalizer is not invocable"}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.finalizers = slices.Insert(p.finalizers, 0, f)
	return nil
}

// ClearFinalizers drops every registered finalizer.
func (p *Pipeline) ClearFinalizers() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finalizers = nil
}

// Frozen reports whether the response handler chain has been sealed.
func (p *Pipeline) Frozen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == stateFrozen
}

// Handlers returns a copy of the frozen chain, or nil while building.
func (p *Pipeline) Handlers() []ResponseHandler {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != stateFrozen {
		return nil
	}
	return slices.Clone(p.handlers)
}

// RunRequestPhase runs every interceptor against cfg in registration order and
// returns the response handler chain for this call. On rejection the
// finalizers have run and a *PipelineError is returned.
func (p *Pipeline) RunRequestPhase(ctx context.Context, cfg *MergedConfig) ([]ResponseHandler, error) {
	p.mu.Lock()
	interceptors := slices.Clone(p.interceptors)
	building := p.state == stateBuilding
	p.mu.Unlock()

	var collected []ResponseHandler
	for _, ic := range interceptors {
		out := ic(ctx, cfg, p.AddFinalizer)
		switch out.kind {
		case outcomeContinue, outcomeSkip:
		case outcomeHandler:
			if building {
				collected = slices.Insert(collected, 0, out.handler)
			}
		case outcomePending:
			if err := out.await(ctx); err != nil {
				p.RunFinalizers()
				return nil, &PipelineError{Phase: PhaseRequest, Err: err}
			}
		case outcomeAbort:
			p.RunFinalizers()
			return nil, &PipelineError{Phase: PhaseRequest, Err: out.err}
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == stateBuilding {
		p.handlers = collected
		p.state = stateFrozen
	}
	return slices.Clone(p.handlers), nil
}

// RunResponsePhase runs chain against resp and returns the final response. On
// rejection the finalizers have run and a *PipelineError is returned.
func (p *Pipeline) RunResponsePhase(ctx context.Context, chain []ResponseHandler, resp *Response) (*Response, error) {
	for _, h := range chain {
		out := h(ctx, resp)
		switch out.kind {
		case handlerKeep:
		case handlerReplace:
			resp = out.resp
		case handlerAwait:
			if err := out.await(ctx); err != nil {
				p.RunFinalizers()
				return nil, &PipelineError{Phase: PhaseResponse, Err: err}
			}
		case handlerReject:
			p.RunFinalizers()
			return nil, &PipelineError{Phase: PhaseResponse, Err: out.err}
		}
	}
	return resp, nil
}

// RunFinalizers runs the whole finalizer list once, most recent first, and
// returns how many ran.
func (p *Pipeline) RunFinalizers() int {
	p.mu.Lock()
	finalizers := slices.Clone(p.finalizers)
	p.mu.Unlock()

	for _, f := range finalizers {
		f()
	}
	p.recorder.ObserveFinalizers(len(finalizers))
	return len(finalizers)
}
