package storage

import (
	"fmt"
	"os"
	"sync"
)

// Dir manages the temporary directory a browser process keeps its user data
// in. Each run owns its own Dir, so concurrent runs never share state.
type Dir struct {
	Dir string // path to the data directory

	remove      bool
	cleanupOnce sync.Once
}

// NewDir creates a new temporary directory under tmpDir (os.TempDir when
// empty).
func NewDir(tmpDir string) (*Dir, error) {
	dir, err := os.MkdirTemp(tmpDir, "ecoscan-chromium-data-*")
	if err != nil {
		return nil, fmt.Errorf("making a temporary user data directory: %w", err)
	}

	return &Dir{Dir: dir, remove: true}, nil
}

// Cleanup removes the data directory. Safe to call multiple times.
func (d *Dir) Cleanup() (err error) {
	if !d.remove {
		return nil
	}
	d.cleanupOnce.Do(func() {
		err = os.RemoveAll(d.Dir)
	})
	return err
}
