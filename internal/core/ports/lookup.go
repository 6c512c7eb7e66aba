package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// BundleLookup is the public entry point of the compile cache, invoked
// once per serving request for a given component.
//
//go:generate mockgen -source=lookup.go -destination=mocks/mock_lookup.go -package=mocks
type BundleLookup interface {
	// Lookup returns the bundle for the component source at sourcePath,
	// compiling it if no cached output is at least as fresh as the
	// current dependency mtimes. componentID namespaces the on-disk
	// cache layout and diagnostics.
	Lookup(ctx context.Context, sourcePath, componentID string) ([]byte, error)

	// DependentsOf returns the entries whose dependency sets intersect
	// the given changed paths. Used by the watcher to rebuild eagerly.
	DependentsOf(paths []string) []domain.RebuildTarget
}
