package cache

import (
	"errors"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// computeFreshness returns the maximum modification time (UnixNano) across
// the given dependency paths.
//
// A dependency other than the primary source that fails to stat is treated
// as "this dependency no longer exists" and excluded from the maximum:
// removed files or renamed imports must not block rebuilds of the
// remaining valid work. Only the primary source's absence is fatal, since
// it is the thing being requested. An empty dependency list yields the
// sentinel minimum 0.
func computeFreshness(fsys ports.FS, primary string, deps []string) (int64, error) {
	var freshness int64
	for _, dep := range deps {
		mtime, err := fsys.ModTime(dep)
		if err != nil {
			if dep == primary {
				return 0, errors.Join(
					domain.ErrSourceNotFound,
					zerr.With(zerr.Wrap(err, "failed to stat source"), "source", primary),
				)
			}
			continue
		}
		if mtime > freshness {
			freshness = mtime
		}
	}
	return freshness, nil
}
