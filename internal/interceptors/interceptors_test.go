package interceptors

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/GriffinCanCode/reqflow/internal/request"
	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockIndicator struct {
	mock.Mock
}

func (m *mockIndicator) Show() { m.Called() }
func (m *mockIndicator) Hide() { m.Called() }

type finalizers []request.Finalizer

func (f *finalizers) add(fn request.Finalizer) error {
	*f = append(*f, fn)
	return nil
}

func (f finalizers) run() {
	for _, fn := range f {
		fn()
	}
}

func newConfig(extra map[string]any) *request.MergedConfig {
	return &request.MergedConfig{
		BaseURL: "https://api.example.com",
		Header:  map[string]string{},
		Extra:   extra,
	}
}

func chainFor(t *testing.T, ic request.Interceptor) []request.ResponseHandler {
	t.Helper()
	p := request.NewPipeline(nil)
	require.NoError(t, p.Add([]request.Interceptor{ic}))
	chain, err := p.RunRequestPhase(context.Background(), newConfig(nil))
	require.NoError(t, err)
	require.Len(t, chain, 1)
	return chain
}

func TestLoading(t *testing.T) {
	t.Run("first call without flag aborts", func(t *testing.T) {
		ind := new(mockIndicator)
		ic := Loading(ind)

		var fins finalizers
		out := ic(context.Background(), newConfig(nil), fins.add)
		assert.Equal(t, "abort", out.String())
		assert.ErrorIs(t, out.Err(), ErrLoadingFlag)

		require.Len(t, fins, 1)
		fins.run()
		ind.AssertNotCalled(t, "Show")
		ind.AssertNotCalled(t, "Hide")
	})

	t.Run("flag true shows and finalizer hides", func(t *testing.T) {
		ind := new(mockIndicator)
		ind.On("Show").Once()
		ind.On("Hide").Once()
		ic := Loading(ind)

		var fins finalizers
		out := ic(context.Background(), newConfig(map[string]any{LoadingKey: true}), fins.add)
		assert.Equal(t, "continue", out.String())

		fins.run()
		ind.AssertExpectations(t)
	})

	t.Run("flag only checked on first use", func(t *testing.T) {
		ind := new(mockIndicator)
		ic := Loading(ind)

		var fins finalizers
		out := ic(context.Background(), newConfig(map[string]any{LoadingKey: false}), fins.add)
		assert.Equal(t, "continue", out.String())

		out = ic(context.Background(), newConfig(map[string]any{LoadingKey: "yes"}), fins.add)
		assert.Equal(t, "continue", out.String())

		fins.run()
		ind.AssertNotCalled(t, "Show")
		ind.AssertNotCalled(t, "Hide")
	})

	t.Run("finalizer registration failure aborts", func(t *testing.T) {
		ind := new(mockIndicator)
		boom := errors.New("boom")

		out := Loading(ind)(context.Background(), newConfig(map[string]any{LoadingKey: true}), func(request.Finalizer) error {
			return boom
		})
		assert.ErrorIs(t, out.Err(), boom)
		ind.AssertNotCalled(t, "Show")
	})
}

func TestLogIndicator(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ind := NewLogIndicator(zap.New(core))

	ind.Show()
	ind.Show()
	assert.True(t, ind.Active())
	ind.Hide()
	ind.Hide()
	assert.False(t, ind.Active())

	assert.Equal(t, 1, logs.FilterMessage("loading").Len())
	assert.Equal(t, 1, logs.FilterMessage("loaded").Len())
}

func TestHeaders(t *testing.T) {
	ic := Headers(map[string]string{"Accept": "application/json", "X-Client": "reqflow"})

	cfg := newConfig(nil)
	cfg.Header["x-client"] = "custom"

	out := ic(context.Background(), cfg, nil)
	assert.Equal(t, "continue", out.String())
	assert.Equal(t, map[string]string{"Accept": "application/json", "x-client": "custom"}, cfg.Header)

	cfg = &request.MergedConfig{}
	ic(context.Background(), cfg, nil)
	assert.Equal(t, "reqflow", cfg.Header["X-Client"])
}

func TestBearerToken(t *testing.T) {
	t.Run("sets authorization after awaiting token", func(t *testing.T) {
		p := request.NewPipeline(nil)
		require.NoError(t, p.Add([]request.Interceptor{BearerToken(func(context.Context) (string, error) {
			return "abc", nil
		})}))

		cfg := newConfig(nil)
		_, err := p.RunRequestPhase(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, "Bearer abc", cfg.Header["Authorization"])
	})

	t.Run("keeps existing authorization", func(t *testing.T) {
		cfg := newConfig(nil)
		cfg.Header["authorization"] = "Basic xyz"

		out := BearerToken(func(context.Context) (string, error) {
			t.Fatal("token source should not be called")
			return "", nil
		})(context.Background(), cfg, nil)
		assert.Equal(t, "continue", out.String())
	})

	t.Run("token failure rejects the call", func(t *testing.T) {
		denied := errors.New("denied")
		p := request.NewPipeline(nil)
		require.NoError(t, p.Add([]request.Interceptor{BearerToken(func(context.Context) (string, error) {
			return "", denied
		})}))

		_, err := p.RunRequestPhase(context.Background(), newConfig(nil))
		var perr *request.PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, request.PhaseRequest, perr.Phase)
		assert.ErrorIs(t, err, denied)
	})
}

func TestStatusCheck(t *testing.T) {
	chain := chainFor(t, StatusCheck())

	out := chain[0](context.Background(), &request.Response{StatusCode: http.StatusOK})
	assert.Equal(t, "keep", out.String())

	out = chain[0](context.Background(), &request.Response{StatusCode: http.StatusNotFound})
	assert.Equal(t, "reject", out.String())
	var serr *StatusError
	require.ErrorAs(t, out.Err(), &serr)
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
}

func TestEnvelope(t *testing.T) {
	chain := chainFor(t, Envelope(EnvelopeOptions{CodePath: "code"}))
	handler := chain[0]

	tests := []struct {
		name     string
		raw      string
		outcome  string
		expected any
		code     int64
	}{
		{name: "unwraps data", raw: `{"code":0,"data":{"id":7}}`, outcome: "replace", expected: map[string]any{"id": float64(7)}},
		{name: "rejects failure code", raw: `{"code":401,"message":"login required"}`, outcome: "reject", code: 401},
		{name: "keeps non json", raw: `<html></html>`, outcome: "keep"},
		{name: "keeps body without data", raw: `{"code":0,"ok":true}`, outcome: "keep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &request.Response{StatusCode: http.StatusOK, Raw: []byte(tt.raw), Data: "original"}
			out := handler(context.Background(), resp)
			assert.Equal(t, tt.outcome, out.String())

			switch tt.outcome {
			case "replace":
				assert.Equal(t, tt.expected, out.Response().Data)
				assert.Equal(t, "original", resp.Data)
			case "reject":
				var eerr *EnvelopeError
				require.ErrorAs(t, out.Err(), &eerr)
				assert.Equal(t, tt.code, eerr.Code)
				assert.Equal(t, "login required", eerr.Message)
			}
		})
	}
}

func TestScript(t *testing.T) {
	t.Run("mutates config", func(t *testing.T) {
		ic, err := Script(`
			function intercept(config) {
				config.header["X-Trace"] = "on";
				delete config.header["X-Drop"];
				config.extra.seen = true;
				config.timeoutMs = 500;
			}`, ScriptConfig{})
		require.NoError(t, err)

		cfg := newConfig(map[string]any{"isLoading": false})
		cfg.Header["X-Drop"] = "1"

		out := ic(context.Background(), cfg, nil)
		assert.Equal(t, "continue", out.String())
		assert.Equal(t, map[string]string{"X-Trace": "on"}, cfg.Header)
		assert.Equal(t, true, cfg.Extra["seen"])
		assert.Equal(t, false, cfg.Extra["isLoading"])
		assert.Equal(t, 500*time.Millisecond, cfg.Timeout)
	})

	t.Run("false skips", func(t *testing.T) {
		ic, err := Script(`function intercept(config) { return config.baseUrl === ""; }`, ScriptConfig{})
		require.NoError(t, err)

		out := ic(context.Background(), &request.MergedConfig{}, nil)
		assert.Equal(t, "continue", out.String())

		ic, err = Script(`function intercept() { return false; }`, ScriptConfig{})
		require.NoError(t, err)
		out = ic(context.Background(), newConfig(nil), nil)
		assert.Equal(t, "skip", out.String())
	})

	t.Run("throw aborts", func(t *testing.T) {
		ic, err := Script(`function intercept() { throw new Error("no way"); }`, ScriptConfig{})
		require.NoError(t, err)

		out := ic(context.Background(), newConfig(nil), nil)
		assert.Equal(t, "abort", out.String())
		assert.Contains(t, out.Err().Error(), "no way")
	})

	t.Run("runaway script is interrupted", func(t *testing.T) {
		ic, err := Script(`function intercept() { for (;;) {} }`, ScriptConfig{Timeout: 20 * time.Millisecond})
		require.NoError(t, err)

		out := ic(context.Background(), newConfig(nil), nil)
		var interrupted *goja.InterruptedError
		assert.ErrorAs(t, out.Err(), &interrupted)
	})

	t.Run("missing entry aborts", func(t *testing.T) {
		ic, err := Script(`var x = 1;`, ScriptConfig{})
		require.NoError(t, err)

		out := ic(context.Background(), newConfig(nil), nil)
		assert.ErrorIs(t, out.Err(), ErrNoEntry)
	})

	t.Run("syntax error fails compile", func(t *testing.T) {
		_, err := Script(`function intercept( {`, ScriptConfig{})
		assert.Error(t, err)
	})

	t.Run("console goes to logger", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		ic, err := Script(`function intercept(config) { console.log("calling", config.baseUrl); }`, ScriptConfig{Logger: zap.New(core)})
		require.NoError(t, err)

		ic(context.Background(), newConfig(nil), nil)
		assert.Equal(t, 1, logs.FilterMessage("calling https://api.example.com").Len())
	})
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ic := Logger(zap.New(core))

	cfg := newConfig(nil)
	cfg.Header["Authorization"] = "Bearer secret"
	cfg.Header["Accept"] = "application/json"

	p := request.NewPipeline(nil)
	require.NoError(t, p.Add([]request.Interceptor{ic}))
	chain, err := p.RunRequestPhase(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, chain, 1)

	chain[0](context.Background(), &request.Response{StatusCode: http.StatusCreated, Raw: []byte("{}")})

	requests := logs.FilterMessage("request").All()
	require.Len(t, requests, 1)
	assert.Equal(t, map[string]any{"Authorization": "[redacted]", "Accept": "application/json"}, requests[0].ContextMap()["header"])
	entries := logs.FilterMessage("response").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(http.StatusCreated), entries[0].ContextMap()["status"])
}
