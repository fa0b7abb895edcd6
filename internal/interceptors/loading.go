package interceptors

import (
	"context"
	"sync/atomic"

	"github.com/GriffinCanCode/reqflow/internal/request"
	"go.uber.org/zap"
)

// LoadingKey is the Extra entry read by Loading.
const LoadingKey = "isLoading"

// ErrLoadingFlag is returned by Loading when the first call it sees has no
// boolean LoadingKey entry.
var ErrLoadingFlag = &request.ConfigError{Message: `global config must set extra "isLoading" to a bool`}

// Indicator is a busy indicator.
type Indicator interface {
	Show()
	Hide()
}

// Loading shows ind while calls with Extra["isLoading"] == true are in flight.
// The flag must be a bool on the first call; later calls treat anything else
// as false. Hide runs from a finalizer, so every terminal path reaches it.
func Loading(ind Indicator) request.Interceptor {
	var checked atomic.Bool

	return func(_ context.Context, cfg *request.MergedConfig, addFinalizer request.AddFinalizer) request.Outcome {
		if err := addFinalizer(func() {
			if on, _ := cfg.Extra[LoadingKey].(bool); on {
				ind.Hide()
			}
		}); err != nil {
			return request.Abort(err)
		}

		on, ok := cfg.Extra[LoadingKey].(bool)
		if !ok && !checked.Load() {
			return request.Abort(ErrLoadingFlag)
		}
		checked.Store(true)

		if on {
			ind.Show()
		}
		return request.Continue()
	}
}

// LogIndicator is an Indicator that logs transitions. Show and Hide are
// idempotent.
type LogIndicator struct {
	logger *zap.Logger
	active atomic.Bool
}

// NewLogIndicator creates a LogIndicator writing to logger.
func NewLogIndicator(logger *zap.Logger) *LogIndicator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogIndicator{logger: logger}
}

// Show logs "loading" unless the indicator is already showing.
func (l *LogIndicator) Show() {
	if l.active.CompareAndSwap(false, true) {
		l.logger.Info("loading")
	}
}

// Hide logs "loaded" when the indicator is showing.
func (l *LogIndicator) Hide() {
	if l.active.CompareAndSwap(true, false) {
		l.logger.Info("loaded")
	}
}

// Active reports whether the indicator is showing.
func (l *LogIndicator) Active() bool {
	return l.active.Load()
}
