package request

import (
	"errors"
	"fmt"
)

// Error kinds reported by Kind methods and used as metric outcome labels.
const (
	KindConfig     = "config_error"
	KindPipeline   = "rejected"
	KindTransport  = "transport_error"
	KindValidation = "validation_error"
)

// Pipeline phases
const (
	PhaseRequest  = "request"
	PhaseResponse = "response"
)

// ConfigError reports a misconfigured client or call. It is returned before
// any interceptor or transport work happens.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "reqflow: " + e.Message
}

// Kind returns KindConfig.
func (e *ConfigError) Kind() string { return KindConfig }

// Sentinel configuration errors, matched with errors.Is.
var (
	ErrNoGlobalConfig    = &ConfigError{Message: "no global config registered"}
	ErrIndexOutOfRange   = &ConfigError{Message: "index out of range"}
	ErrDataInLocalConfig = &ConfigError{Message: "data forbidden in local config"}
	ErrNotSequence       = &ConfigError{Message: "argument must be a list"}
	ErrNotInvocable      = &ConfigError{Message: "interceptor is not invocable"}
	ErrBadIndex          = &ConfigError{Message: "default config index must be a non-negative number"}
	ErrNoTransport       = &ConfigError{Message: "no transport configured"}
)

// ErrAborted is the result of a task aborted before it completed.
var ErrAborted = errors.New("reqflow: task aborted")

// PipelineError reports a rejection raised by an interceptor or a response handler.
// Finalizers have already run when it is returned.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("reqflow: %s phase rejected: %v", e.Phase, e.Err)
}

// Unwrap returns the rejection reason.
func (e *PipelineError) Unwrap() error { return e.Err }

// Kind returns KindPipeline.
func (e *PipelineError) Kind() string { return KindPipeline }

// TransportError reports a failure of the host transport.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("reqflow: %s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the transport failure.
func (e *TransportError) Unwrap() error { return e.Err }

// Kind returns KindTransport.
func (e *TransportError) Kind() string { return KindTransport }

// ValidationError reports invalid call arguments.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("reqflow: invalid %s: %s", e.Field, e.Message)
}

// Kind returns KindValidation.
func (e *ValidationError) Kind() string { return KindValidation }

// KindOf returns the kind of err, "ok" for nil and "unknown" for foreign errors.
func KindOf(err error) string {
	if err == nil {
		return "ok"
	}
	var kinded interface{ Kind() string }
	if errors.As(err, &kinded) {
		return kinded.Kind()
	}
	return "unknown"
}
