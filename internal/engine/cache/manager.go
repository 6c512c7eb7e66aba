// Package cache implements the single-flight compile cache: per-source
// entries with an exclusive FIFO task queue, mtime-based freshness, and
// on-disk bundle storage.
package cache

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.BundleLookup = (*Manager)(nil)

// Manager owns the cache entry store and orchestrates lookups. All
// process-scoped cache state lives here; construct one per process and
// use Reset for test teardown.
type Manager struct {
	fsys     ports.FS
	compiler ports.Compiler
	records  ports.EntryRecordStore
	tracer   ports.Tracer
	logger   ports.Logger

	cacheRoot string
	entries   *xsync.MapOf[string, *entry]
}

// NewManager creates a new cache Manager writing bundles under cacheRoot.
func NewManager(
	fsys ports.FS,
	compiler ports.Compiler,
	records ports.EntryRecordStore,
	tracer ports.Tracer,
	logger ports.Logger,
	cacheRoot string,
) *Manager {
	return &Manager{
		fsys:      fsys,
		compiler:  compiler,
		records:   records,
		tracer:    tracer,
		logger:    logger,
		cacheRoot: cacheRoot,
		entries:   xsync.NewMapOf[string, *entry](),
	}
}

// Lookup returns the bundle for the component source at sourcePath,
// compiling at most once per distinct freshness of its inputs. Concurrent
// lookups for the same source are serialized through the entry's queue;
// lookups for unrelated sources never block each other.
func (m *Manager) Lookup(ctx context.Context, sourcePath, componentID string) ([]byte, error) {
	if err := domain.ValidateComponentID(componentID); err != nil {
		return nil, zerr.With(err, "component", componentID)
	}

	ent := m.entryFor(sourcePath, componentID)

	// Freshness is computed over the entry's current dependency list,
	// which may predate the latest source edits; the queue worker
	// re-checks it against the entry at the task's own turn.
	deps, _ := ent.snapshot()
	target, err := computeFreshness(m.fsys, sourcePath, deps)
	if err != nil {
		return nil, err
	}

	t := &task{
		source:      sourcePath,
		componentID: componentID,
		target:      target,
		bundlePath:  domain.BundlePath(m.cacheRoot, componentID, target),
		done:        make(chan struct{}),
	}
	ent.enqueue(m, t)

	// No cancellation: once enqueued the task always runs to completion
	// or failure, so the wait is unconditional.
	<-t.done
	return t.bundle, t.err
}

// DependentsOf returns the entries whose dependency sets intersect the
// given changed paths.
func (m *Manager) DependentsOf(paths []string) []domain.RebuildTarget {
	changed := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		changed[p] = struct{}{}
	}

	var targets []domain.RebuildTarget
	m.entries.Range(func(source string, ent *entry) bool {
		deps, componentID := ent.snapshot()
		for _, dep := range deps {
			if _, ok := changed[dep]; ok {
				targets = append(targets, domain.RebuildTarget{
					SourcePath:  source,
					ComponentID: componentID,
				})
				break
			}
		}
		return true
	})
	return targets
}

// Reset drops all in-memory entries. Bundles and records on disk are left
// alone; entries are re-seeded lazily on the next lookup.
func (m *Manager) Reset() {
	m.entries.Clear()
}

// entryFor finds or creates the entry for a source path. LoadOrCompute
// runs the compute func at most once per missing key, so under concurrent
// lookups only one entry is ever created and seeded per path.
func (m *Manager) entryFor(sourcePath, componentID string) *entry {
	ent, _ := m.entries.LoadOrCompute(sourcePath, func() *entry {
		ent := newEntry(sourcePath, componentID)
		m.seed(ent)
		return ent
	})
	return ent
}

// seed populates a fresh entry from a persisted record, if one exists,
// so still-fresh bundles written by a previous process are reused. The
// record is advisory: the freshness gate re-validates against current
// mtimes and the broken-hit eviction path still applies.
func (m *Manager) seed(ent *entry) {
	record, err := m.records.Get(m.cacheRoot, ent.source)
	if err != nil {
		m.logger.Warn("ignoring unreadable entry record for " + ent.source)
		return
	}
	if record == nil || record.ComponentID != ent.componentID {
		return
	}

	ent.freshness = record.Freshness
	ent.deps = record.Dependencies
	ent.bundlePath = record.BundlePath
	if len(ent.deps) == 0 {
		ent.deps = []string{ent.source}
	}
}

// persist writes the entry's post-compile state as a record. Failures are
// logged, not returned: persistence only affects warm starts, never the
// correctness of this process.
func (m *Manager) persist(ent *entry) {
	ent.mu.Lock()
	record := domain.EntryRecord{
		SourcePath:   ent.source,
		ComponentID:  ent.componentID,
		Freshness:    ent.freshness,
		Dependencies: ent.deps,
		BundlePath:   ent.bundlePath,
		Timestamp:    time.Now(),
	}
	ent.mu.Unlock()

	if err := m.records.Put(m.cacheRoot, record); err != nil {
		m.logger.Warn("failed to persist entry record for " + ent.source)
	}
}

// evict removes the entry and its record entirely. The next lookup for
// the source starts from scratch, including dependency rediscovery.
func (m *Manager) evict(sourcePath string) {
	m.entries.Delete(sourcePath)
	if err := m.records.Delete(m.cacheRoot, sourcePath); err != nil {
		m.logger.Warn("failed to delete entry record for " + sourcePath)
	}
}
