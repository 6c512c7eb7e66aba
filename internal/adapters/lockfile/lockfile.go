// Package lockfile guards the cache root against concurrent kiln processes.
package lockfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Lock holds the exclusive cache root lock for the process lifetime.
// Entries live in memory and the on-disk layout assumes one writer, so
// only one process may own a cache root at a time.
type Lock struct {
	fl     *flock.Flock
	logger ports.Logger
}

// Acquire takes the cache root lock, failing fast if another kiln process
// holds it. The cache root directory is created if needed.
func Acquire(_ context.Context, cacheRoot string, logger ports.Logger) (*Lock, error) {
	lockPath := domain.LockPath(cacheRoot)
	if err := os.MkdirAll(filepath.Dir(lockPath), domain.DirPerm); err != nil {
		return nil, errors.Join(domain.ErrCacheDirFailed, zerr.Wrap(err, "failed to create cache root"))
	}

	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.Join(
			domain.ErrCacheLocked,
			zerr.With(zerr.Wrap(err, "failed to acquire cache lock"), "path", lockPath),
		)
	}
	if !locked {
		return nil, errors.Join(domain.ErrCacheLocked, zerr.With(zerr.New("cache root is in use by another process"), "path", lockPath))
	}

	return &Lock{fl: fl, logger: logger}, nil
}

// Release releases the lock. The lock file is intentionally left on disk
// to avoid a race where removing it could invalidate a lock concurrently
// acquired by another process.
func (l *Lock) Release() {
	if l == nil || l.fl == nil {
		return
	}
	if err := l.fl.Close(); err != nil {
		l.logger.Warn("failed to release cache lock: " + err.Error())
	}
}
