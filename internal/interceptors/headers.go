package interceptors

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/GriffinCanCode/reqflow/internal/request"
)

// Headers sets each static header the call does not already carry. Names
// compare case-insensitively.
func Headers(static map[string]string) request.Interceptor {
	defaults := make(map[string]string, len(static))
	for k, v := range static {
		defaults[k] = v
	}

	return func(_ context.Context, cfg *request.MergedConfig, _ request.AddFinalizer) request.Outcome {
		if cfg.Header == nil {
			cfg.Header = make(map[string]string, len(defaults))
		}
		for k, v := range defaults {
			if !hasHeader(cfg.Header, k) {
				cfg.Header[k] = v
			}
		}
		return request.Continue()
	}
}

// TokenSource returns a bearer token.
type TokenSource func(ctx context.Context) (string, error)

// BearerToken sets Authorization from source unless the call already has one.
// The call waits for the token.
func BearerToken(source TokenSource) request.Interceptor {
	return func(_ context.Context, cfg *request.MergedConfig, _ request.AddFinalizer) request.Outcome {
		if hasHeader(cfg.Header, "Authorization") {
			return request.Continue()
		}
		return request.Pending(func(ctx context.Context) error {
			token, err := source(ctx)
			if err != nil {
				return fmt.Errorf("fetch bearer token: %w", err)
			}
			if cfg.Header == nil {
				cfg.Header = make(map[string]string, 1)
			}
			cfg.Header["Authorization"] = "Bearer " + token
			return nil
		})
	}
}

// StatusError is the rejection produced by StatusCheck.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// StatusCheck rejects responses with a status of 400 or above.
func StatusCheck() request.Interceptor {
	handler := func(_ context.Context, resp *request.Response) request.HandlerOutcome {
		if resp.StatusCode >= http.StatusBadRequest {
			return request.Reject(&StatusError{StatusCode: resp.StatusCode})
		}
		return request.Keep()
	}
	return func(context.Context, *request.MergedConfig, request.AddFinalizer) request.Outcome {
		return request.RegisterHandler(handler)
	}
}

func hasHeader(header map[string]string, name string) bool {
	for k := range header {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}
