package sidecar

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/greenweb/ecoscan/browser"
	"github.com/greenweb/ecoscan/collector"
	"github.com/greenweb/ecoscan/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"launch", &browser.LaunchError{Path: "/chrome"}, "BROWSER_LAUNCH_FAILED"},
		{"timeout", &collector.NavigationTimeoutError{Stage: "render", Timeout: time.Second}, "NAVIGATION_TIMEOUT"},
		{"network", &collector.NetworkError{URL: "https://a.test"}, "NETWORK_ERROR"},
		{"metrics", &collector.MetricsError{Op: "dom count"}, "METRICS_COLLECTION_FAILED"},
		{"spawn", &SpawnError{Binary: "x"}, "SIDECAR_SPAWN_FAILED"},
		{"comm", &CommunicationError{}, "SIDECAR_COMM_FAILED"},
		{"parse", &ParseError{}, "SIDECAR_PARSE_FAILED"},
		{"analysis", &AnalysisError{ErrCode: "NAVIGATION_TIMEOUT"}, "NAVIGATION_TIMEOUT"},
		{"untyped", assert.AnError, UnknownErrorCode},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestWriteErrorEnvelope(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := WriteError(&buf, &collector.NavigationTimeoutError{Stage: "render", Timeout: 45 * time.Second})
	require.NoError(t, err)

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Error)
	assert.Equal(t, "NAVIGATION_TIMEOUT", env.Code)
	assert.Contains(t, env.Message, "render")
}

func TestDecodeResult(t *testing.T) {
	t.Parallel()

	t.Run("success_document", func(t *testing.T) {
		t.Parallel()
		doc := `{"url":"https://a.test","timestamp":"2024-06-01T10:30:00Z","ecoindex":{"score":85,"grade":"A","ghg":2.3,"water":3.45,"domElements":120,"requests":12,"sizeKb":450.5}}`
		result, err := decodeResult([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, "https://a.test", result.URL)
		assert.Equal(t, 85.0, result.EcoIndex.Score)
	})

	t.Run("error_envelope", func(t *testing.T) {
		t.Parallel()
		doc := `{"error":true,"code":"NETWORK_ERROR","message":"unreachable"}`
		_, err := decodeResult([]byte(doc))
		var aerr *AnalysisError
		require.ErrorAs(t, err, &aerr)
		assert.Equal(t, "NETWORK_ERROR", aerr.ErrCode)
		assert.Equal(t, "unreachable", aerr.Message)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		_, err := decodeResult([]byte("not json at all"))
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
	})
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-sidecar.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestRunnerSuccess(t *testing.T) {
	t.Parallel()

	bin := writeScript(t, `echo '{"url":"https://a.test","timestamp":"2024-06-01T10:30:00Z","ecoindex":{"score":72,"grade":"B","ghg":2.56,"water":3.84,"domElements":300,"requests":40,"sizeKb":1200}}'`)
	r := NewRunner(bin, log.NullLogger())

	result, err := r.Run(context.Background(), "https://a.test", "/usr/bin/chromium", false)
	require.NoError(t, err)
	assert.Equal(t, "https://a.test", result.URL)
	assert.Equal(t, 72.0, result.EcoIndex.Score)
}

func TestRunnerAnalysisFailure(t *testing.T) {
	t.Parallel()

	bin := writeScript(t, `echo '{"error":true,"code":"NAVIGATION_TIMEOUT","message":"render timed out"}'; exit 1`)
	r := NewRunner(bin, log.NullLogger())

	_, err := r.Run(context.Background(), "https://a.test", "/usr/bin/chromium", false)
	var aerr *AnalysisError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "NAVIGATION_TIMEOUT", aerr.ErrCode)
}

func TestRunnerCommunicationFailure(t *testing.T) {
	t.Parallel()

	bin := writeScript(t, `echo "boom" >&2; exit 3`)
	r := NewRunner(bin, log.NullLogger())

	_, err := r.Run(context.Background(), "https://a.test", "/usr/bin/chromium", false)
	var cerr *CommunicationError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Stderr, "boom")
}

func TestRunnerSpawnFailure(t *testing.T) {
	t.Parallel()

	r := NewRunner(filepath.Join(t.TempDir(), "missing-binary"), log.NullLogger())
	_, err := r.Run(context.Background(), "https://a.test", "/usr/bin/chromium", false)
	var serr *SpawnError
	require.ErrorAs(t, err, &serr)
}
