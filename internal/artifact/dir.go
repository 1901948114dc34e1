package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirSink writes artifacts as files in a local directory.
type DirSink struct {
	dir string
}

// NewDirSink returns a sink writing into dir. The directory is created on
// first use.
func NewDirSink(dir string) *DirSink {
	return &DirSink{dir: dir}
}

// Put writes data to dir/name, replacing any existing file. The file is
// written under a temporary name and renamed into place.
func (d *DirSink) Put(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	path := filepath.Join(d.dir, name)

	tmp, err := os.CreateTemp(d.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name()) // No-op after rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
