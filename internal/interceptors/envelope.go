package interceptors

import (
	"context"
	"fmt"
	"slices"

	"github.com/GriffinCanCode/reqflow/internal/request"
	"github.com/tidwall/gjson"
)

// EnvelopeOptions locates the parts of an API envelope with gjson paths.
type EnvelopeOptions struct {
	// DataPath selects the payload. Defaults to "data".
	DataPath string
	// CodePath selects the business status code. Empty disables the check.
	CodePath string
	// MessagePath selects the error message. Defaults to "message".
	MessagePath string
	// SuccessCodes lists the accepted codes. Defaults to 0.
	SuccessCodes []int64
}

// EnvelopeError is the rejection for an envelope reporting a failure code.
type EnvelopeError struct {
	Code    int64
	Message string
}

func (e *EnvelopeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("envelope code %d", e.Code)
	}
	return fmt.Sprintf("envelope code %d: %s", e.Code, e.Message)
}

// Envelope replaces the data of JSON responses with the value at DataPath and
// rejects responses whose code is not a success code. Non-JSON bodies and
// bodies without the data path are kept.
func Envelope(opts EnvelopeOptions) request.Interceptor {
	if opts.DataPath == "" {
		opts.DataPath = "data"
	}
	if opts.MessagePath == "" {
		opts.MessagePath = "message"
	}
	if len(opts.SuccessCodes) == 0 {
		opts.SuccessCodes = []int64{0}
	}

	handler := func(_ context.Context, resp *request.Response) request.HandlerOutcome {
		if !gjson.ValidBytes(resp.Raw) {
			return request.Keep()
		}

		if opts.CodePath != "" {
			if code := gjson.GetBytes(resp.Raw, opts.CodePath); code.Exists() && !slices.Contains(opts.SuccessCodes, code.Int()) {
				return request.Reject(&EnvelopeError{
					Code:    code.Int(),
					Message: gjson.GetBytes(resp.Raw, opts.MessagePath).String(),
				})
			}
		}

		data := gjson.GetBytes(resp.Raw, opts.DataPath)
		if !data.Exists() {
			return request.Keep()
		}
		unwrapped := *resp
		unwrapped.Data = data.Value()
		return request.Replace(&unwrapped)
	}

	return func(context.Context, *request.MergedConfig, request.AddFinalizer) request.Outcome {
		return request.RegisterHandler(handler)
	}
}
