package watcher

import (
	"context"
	"time"

	"go.trai.ch/kiln/internal/core/ports"
)

// debounceWindow is how long the rebuilder waits after the last event
// before rebuilding. Long enough to swallow editor save bursts, short
// enough that the next request almost always hits a warm cache.
const debounceWindow = 150 * time.Millisecond

// Rebuilder consumes watch events and eagerly re-looks-up the entries
// whose dependency sets intersect the changed paths. It is purely an
// optimization: correctness rests on the cache's own mtime checks.
type Rebuilder struct {
	watcher ports.Watcher
	lookup  ports.BundleLookup
	logger  ports.Logger
}

// NewRebuilder creates a rebuilder draining the given watcher.
func NewRebuilder(watcher ports.Watcher, lookup ports.BundleLookup, logger ports.Logger) *Rebuilder {
	return &Rebuilder{
		watcher: watcher,
		lookup:  lookup,
		logger:  logger,
	}
}

// Run watches root until the context is canceled.
func (r *Rebuilder) Run(ctx context.Context, root string) error {
	debouncer := NewDebouncer(debounceWindow, func(paths []string) {
		r.rebuild(ctx, paths)
	})

	if err := r.watcher.Start(ctx, root); err != nil {
		return err
	}
	defer func() { _ = r.watcher.Stop() }()

	for event := range r.watcher.Events() {
		debouncer.Add(event.Path)
	}

	debouncer.Flush()
	return nil
}

// rebuild warms every entry affected by the changed paths.
func (r *Rebuilder) rebuild(ctx context.Context, paths []string) {
	for _, target := range r.lookup.DependentsOf(paths) {
		if _, err := r.lookup.Lookup(ctx, target.SourcePath, target.ComponentID); err != nil {
			// Surface the failure now; the next request will retry anyway.
			r.logger.Error(err)
		}
	}
}
