package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Local writes snapshots into a directory of an afero filesystem, the
// agent's equivalent of a browser download.
type Local struct {
	fs  afero.Fs
	dir string
}

var _ Provider = (*Local)(nil)

func NewLocal(fs afero.Fs, dir string) *Local {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Local{fs: fs, dir: dir}
}

func (l *Local) CheckReady(_ context.Context) error {
	if err := l.fs.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir %s: %w", l.dir, err)
	}
	return nil
}

// Save writes data to dir/name. An existing file of the same name is kept
// and an error returned.
func (l *Local) Save(ctx context.Context, name string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid snapshot name %q", name)
	}
	if err := l.CheckReady(ctx); err != nil {
		return "", err
	}

	path := filepath.Join(l.dir, name)
	f, err := l.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}
