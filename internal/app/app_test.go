package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/GriffinCanCode/reqflow/internal/infrastructure/config"
	"github.com/GriffinCanCode/reqflow/internal/interceptors"
	"github.com/GriffinCanCode/reqflow/internal/request"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/users/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"code": 0,
			"data": gin.H{"id": c.Param("id"), "auth": c.GetHeader("Authorization"), "client": c.GetHeader("X-Client")},
		})
	})
	router.GET("/trace", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"trace": c.GetHeader("X-Trace-ID")})
	})
	router.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": 404})
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, profile string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Transport.RetryMax = 0
	cfg.Metrics.Enabled = true
	cfg.Metrics.Namespace = "apptest"
	cfg.Profiles.Path = filepath.Join(t.TempDir(), "reqflow.yaml")
	if profile != "" {
		require.NoError(t, os.WriteFile(cfg.Profiles.Path, []byte(profile), 0o600))
	}
	return cfg
}

func TestNewWiresClient(t *testing.T) {
	srv := newUpstream(t)
	cfg := testConfig(t, "profiles:\n  - baseUrl: "+srv.URL+"\n")
	cfg.Auth.Token = "secret"

	a, err := New(cfg, nil, Options{
		Headers:      map[string]string{"X-Client": "reqflow"},
		Envelope:     &interceptors.EnvelopeOptions{CodePath: "code"},
		FailOnStatus: true,
	})
	require.NoError(t, err)
	defer a.Close()

	resp, err := a.Client.Get(context.Background(), "/users/7", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "7", "auth": "Bearer secret", "client": "reqflow"}, resp.Data)

	_, err = a.Client.Get(context.Background(), "/missing", nil)
	var serr *interceptors.StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)

	require.NotNil(t, a.Metrics)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Metrics.CallsTotal.WithLabelValues(http.MethodGet, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Metrics.CallsTotal.WithLabelValues(http.MethodGet, request.KindPipeline)))
}

func TestNewFallsBackToBaseURL(t *testing.T) {
	srv := newUpstream(t)
	cfg := testConfig(t, "")

	a, err := New(cfg, nil, Options{BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := a.Client.Get(context.Background(), "/users/1", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewTracing(t *testing.T) {
	srv := newUpstream(t)
	cfg := testConfig(t, "")
	cfg.Tracing.Enabled = true

	a, err := New(cfg, nil, Options{BaseURL: srv.URL})
	require.NoError(t, err)
	require.NotNil(t, a.Tracer)

	resp, err := a.Client.Get(context.Background(), "/trace", nil)
	require.NoError(t, err)
	assert.Regexp(t, "^trc_", resp.Data.(map[string]any)["trace"])
	assert.NoError(t, a.Close())
}

func TestNewMissingProfiles(t *testing.T) {
	_, err := New(testConfig(t, ""), nil, Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewLoadingAndScripts(t *testing.T) {
	srv := newUpstream(t)
	cfg := testConfig(t, "profiles:\n  - baseUrl: "+srv.URL+"\n    extra:\n      isLoading: true\n")

	script := filepath.Join(t.TempDir(), "hook.js")
	require.NoError(t, os.WriteFile(script, []byte(`function intercept(config) { config.header["X-Client"] = "script"; }`), 0o600))

	a, err := New(cfg, nil, Options{Loading: true, Scripts: []string{script}})
	require.NoError(t, err)
	require.NotNil(t, a.Indicator)

	resp, err := a.Client.Get(context.Background(), "/users/3", nil)
	require.NoError(t, err)
	assert.False(t, a.Indicator.Active())

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	inner, ok := data["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "script", inner["client"])
}

func TestNewBadScript(t *testing.T) {
	srv := newUpstream(t)
	cfg := testConfig(t, "profiles:\n  - baseUrl: "+srv.URL+"\n")

	_, err := New(cfg, nil, Options{Scripts: []string{filepath.Join(t.TempDir(), "none.js")}})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
