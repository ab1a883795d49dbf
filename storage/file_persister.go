package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FilePersister writes a report artifact to its destination. The analyzer
// depends on the interface so a failing destination can be simulated.
type FilePersister interface {
	Persist(ctx context.Context, path string, data io.Reader) error
}

// LocalFilePersister writes report artifacts to the local disk, creating the
// destination directory as needed.
type LocalFilePersister struct{}

// Persist writes data to path. Reports are rendered in memory and small, so
// the whole artifact is read before touching the destination; an existing
// file is replaced only when the render succeeded end to end.
func (l *LocalFilePersister) Persist(_ context.Context, path string, data io.Reader) error {
	cp := filepath.Clean(path)

	artifact, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("reading report artifact for %q: %w", cp, err)
	}

	dir := filepath.Dir(cp)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report directory %q: %w", dir, err)
	}
	if err := os.WriteFile(cp, artifact, 0o600); err != nil {
		return fmt.Errorf("writing report %q: %w", cp, err)
	}

	return nil
}
