package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/GriffinCanCode/reqflow/internal/infrastructure/monitoring"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderFlag(t *testing.T) {
	h := headerFlag{}
	require.NoError(t, h.Set("Accept: application/json"))
	require.NoError(t, h.Set(" X-Trace :on"))
	assert.Equal(t, headerFlag{"Accept": "application/json", "X-Trace": "on"}, h)
	assert.Equal(t, "Accept: application/json, X-Trace: on", h.String())

	assert.Error(t, h.Set("no-colon"))
	assert.Error(t, h.Set(": empty"))
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png", "nested/c.png", "nested/d.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	}

	paths, err := expand([]string{
		filepath.Join(dir, "**", "*.png"),
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "literal.bin"),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "nested", "c.png"),
		filepath.Join(dir, "literal.bin"),
	}, paths)
	assert.Equal(t, filepath.Join(dir, "literal.bin"), paths[len(paths)-1])

	_, err = expand([]string{filepath.Join(dir, "*.gif")})
	assert.EqualError(t, err, "no files matched")
}

func TestStripHeaders(t *testing.T) {
	single := &output{Status: 200, Header: map[string][]string{"A": {"1"}}}
	stripHeaders(single)
	assert.Nil(t, single.Header)

	many := []*output{{Header: map[string][]string{"A": {"1"}}}, {Header: map[string][]string{"B": {"2"}}}}
	stripHeaders(many)
	assert.Nil(t, many[0].Header)
	assert.Nil(t, many[1].Header)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestWriteMetrics(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMetrics(&buf, monitoring.Snapshot{Calls: 3, Failures: 1}))

	var got map[string]any
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &got))
	assert.EqualValues(t, 3, got["calls"])
	assert.EqualValues(t, 1, got["failures"])

	assert.EqualError(t, writeMetrics(failingWriter{}, monitoring.Snapshot{}), "closed pipe")
}
