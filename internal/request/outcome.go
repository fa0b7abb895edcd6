package request

import (
	"context"
	"errors"
)

// Awaitable is a pending step of the pipeline. A non-nil error rejects the call.
type Awaitable func(ctx context.Context) error

// Finalizer runs once per call after the call settles, whatever the outcome.
type Finalizer func()

// AddFinalizer registers a finalizer from inside an interceptor.
type AddFinalizer func(Finalizer) error

// Interceptor runs before the transport is invoked. It may mutate cfg, register
// finalizers and steer the pipeline through its Outcome.
type Interceptor func(ctx context.Context, cfg *MergedConfig, addFinalizer AddFinalizer) Outcome

// ResponseHandler runs after the transport succeeded and may rewrite the response.
type ResponseHandler func(ctx context.Context, resp *Response) HandlerOutcome

type outcomeKind int

const (
	outcomeContinue outcomeKind = iota
	outcomeSkip
	outcomeAbort
	outcomeHandler
	outcomePending
)

// Outcome is the result of an interceptor. Build it with Continue, Skip, Abort,
// RegisterHandler or Pending.
type Outcome struct {
	kind    outcomeKind
	handler ResponseHandler
	await   Awaitable
	err     error
}

var errAborted = errors.New("interceptor aborted the call")

// Continue lets the call proceed with no further effect.
func Continue() Outcome { return Outcome{kind: outcomeContinue} }

// Skip declines without aborting the call.
func Skip() Outcome { return Outcome{kind: outcomeSkip} }

// Abort rejects the call with err.
func Abort(err error) Outcome {
	if err == nil {
		err = errAborted
	}
	return Outcome{kind: outcomeAbort, err: err}
}

// RegisterHandler contributes h to the response handler chain. Once the chain
// is frozen the handler is ignored.
func RegisterHandler(h ResponseHandler) Outcome {
	if h == nil {
		return Continue()
	}
	return Outcome{kind: outcomeHandler, handler: h}
}

// Pending suspends the request phase until a settles.
func Pending(a Awaitable) Outcome {
	if a == nil {
		return Continue()
	}
	return Outcome{kind: outcomePending, await: a}
}

func (o Outcome) String() string {
	switch o.kind {
	case outcomeSkip:
		return "skip"
	case outcomeAbort:
		return "abort"
	case outcomeHandler:
		return "handler"
	case outcomePending:
		return "pending"
	default:
		return "continue"
	}
}

// Err returns the abort reason, or nil for other outcomes.
func (o Outcome) Err() error { return o.err }

type handlerKind int

const (
	handlerKeep handlerKind = iota
	handlerReplace
	handlerAwait
	handlerReject
)

// HandlerOutcome is the result of a response handler. Build it with Keep,
// Replace, Await or Reject.
type HandlerOutcome struct {
	kind  handlerKind
	resp  *Response
	await Awaitable
	err   error
}

// Keep leaves the response unchanged.
func Keep() HandlerOutcome { return HandlerOutcome{kind: handlerKeep} }

// Replace substitutes resp for the current response. A nil resp keeps it.
func Replace(resp *Response) HandlerOutcome {
	if resp == nil {
		return Keep()
	}
	return HandlerOutcome{kind: handlerReplace, resp: resp}
}

// Await suspends the response phase until a settles; the response is unchanged.
func Await(a Awaitable) HandlerOutcome {
	if a == nil {
		return Keep()
	}
	return HandlerOutcome{kind: handlerAwait, await: a}
}

// Reject fails the call with err.
func Reject(err error) HandlerOutcome {
	if err == nil {
		err = errAborted
	}
	return HandlerOutcome{kind: handlerReject, err: err}
}

func (o HandlerOutcome) String() string {
	switch o.kind {
	case handlerReplace:
		return "replace"
	case handlerAwait:
		return "await"
	case handlerReject:
		return "reject"
	default:
		return "keep"
	}
}

// Response returns the replacement response, or nil for other outcomes.
func (o HandlerOutcome) Response() *Response { return o.resp }

// Err returns the rejection reason, or nil for other outcomes.
func (o HandlerOutcome) Err() error { return o.err }
