package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("render aborted") }

func TestLocalFilePersister(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		existing string
		data     string
	}{
		{
			name: "flat_path",
			path: "report.html",
			data: "<html>report</html>",
		},
		{
			name: "creates_directory",
			path: "reports/nested/report.html",
			data: "<html>report</html>",
		},
		{
			name:     "replaces_existing",
			path:     "report.html",
			existing: "<html>old</html>",
			data:     "<html>new</html>",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := filepath.Join(t.TempDir(), tt.path)
			if tt.existing != "" {
				require.NoError(t, os.WriteFile(p, []byte(tt.existing), 0o600))
			}

			var l LocalFilePersister
			require.NoError(t, l.Persist(context.Background(), p, strings.NewReader(tt.data)))

			got, err := os.ReadFile(p)
			require.NoError(t, err)
			assert.Equal(t, tt.data, string(got))
		})
	}
}

func TestLocalFilePersisterKeepsExistingOnReadFailure(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, os.WriteFile(p, []byte("<html>old</html>"), 0o600))

	var l LocalFilePersister
	err := l.Persist(context.Background(), p, brokenReader{})
	require.Error(t, err)

	// A failed render must not clobber the previous artifact.
	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "<html>old</html>", string(got))
}

func TestDirCleanup(t *testing.T) {
	t.Parallel()

	d, err := NewDir(t.TempDir())
	require.NoError(t, err)

	_, err = os.Stat(d.Dir)
	require.NoError(t, err)

	require.NoError(t, d.Cleanup())
	_, err = os.Stat(d.Dir)
	assert.True(t, os.IsNotExist(err))

	// Idempotent.
	assert.NoError(t, d.Cleanup())
}
