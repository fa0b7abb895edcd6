package interceptors

import (
	"context"

	"github.com/GriffinCanCode/reqflow/internal/infrastructure/logging"
	"github.com/GriffinCanCode/reqflow/internal/request"
	"go.uber.org/zap"
)

// Logger logs each outgoing config, credentials masked, and, through a
// response handler, each status.
func Logger(logger *zap.Logger) request.Interceptor {
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := func(_ context.Context, resp *request.Response) request.HandlerOutcome {
		logger.Info("response", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(resp.Raw)))
		return request.Keep()
	}

	return func(_ context.Context, cfg *request.MergedConfig, _ request.AddFinalizer) request.Outcome {
		logger.Info("request",
			zap.String("base_url", cfg.BaseURL),
			zap.String("data_type", cfg.DataTypeOrDefault()),
			zap.String("response_type", cfg.ResponseTypeOrDefault()),
			zap.Duration("timeout", cfg.TimeoutOrDefault()),
			logging.Headers("header", cfg.Header))
		return request.RegisterHandler(handler)
	}
}
