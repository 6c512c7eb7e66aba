// Package fs implements the filesystem capability on the local disk.
package fs

import (
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.FS = (*Local)(nil)

// Local implements ports.FS using the os package.
type Local struct{}

// NewLocal creates a new local filesystem adapter.
func NewLocal() *Local {
	return &Local{}
}

// ModTime returns the modification time of the file at path in UnixNano.
func (l *Local) ModTime(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.ModTime().UnixNano(), nil
}

// ReadFile reads the file at path.
func (l *Local) ReadFile(path string) ([]byte, error) {
	//nolint:gosec // paths come from validated cache layout or config
	return os.ReadFile(path)
}

// WriteFile writes data to path, creating parent directories as needed.
func (l *Local) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return err
	}
	//nolint:gosec // paths come from validated cache layout
	return os.WriteFile(path, data, domain.FilePerm)
}

// EmptyDir removes the directory at path with all its contents and
// recreates it. A missing directory is not an error; it is created.
func (l *Local) EmptyDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return err
	}
	return os.MkdirAll(path, domain.DirPerm)
}
