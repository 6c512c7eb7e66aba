package cache

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// task is one lookup request travelling through an entry's queue. It is
// mutated exactly once, by the queue worker, and discarded after its
// result is delivered through done.
type task struct {
	source      string
	componentID string
	// target is the freshness the requester observed at lookup time.
	target int64
	// bundlePath is the candidate output location, namespaced by
	// component and target freshness.
	bundlePath string

	bundle []byte
	err    error
	done   chan struct{}
}

// entry is the per-source bookkeeping record of the cache. freshness,
// deps and bundlePath are only ever written by the entry's queue worker;
// the mutex makes those writes visible to concurrent readers and guards
// the queue itself.
type entry struct {
	source string

	mu          sync.Mutex
	componentID string
	freshness   int64
	deps        []string
	bundlePath  string
	queue       []*task
	running     bool
}

func newEntry(source, componentID string) *entry {
	return &entry{
		source:      source,
		componentID: componentID,
		deps:        []string{source},
	}
}

// snapshot returns the entry's current dependency list and component id.
// The dependency list may still be the seed or a prior compile's view;
// that is intentional, it bootstraps the freshness comparison before the
// true dependencies are known.
func (e *entry) snapshot() (deps []string, componentID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.deps), e.componentID
}

// enqueue appends the task in arrival order and starts the worker if it
// is not already draining the queue. At most one worker runs per entry,
// which is the single-flight guarantee.
func (e *entry) enqueue(m *Manager, t *task) {
	e.mu.Lock()
	e.queue = append(e.queue, t)
	if !e.running {
		e.running = true
		go e.work(m)
	}
	e.mu.Unlock()
}

// work drains the queue strictly in FIFO order and exits when it is
// empty. Each task's freshness gate is evaluated at its own turn, not at
// enqueue time, so tasks queued behind a compile are satisfied by its
// result instead of compiling again.
func (e *entry) work(m *Manager) {
	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.running = false
			e.mu.Unlock()
			return
		}
		t := e.queue[0]
		e.queue = e.queue[1:]
		e.mu.Unlock()

		e.run(m, t)
		close(t.done)
	}
}

// run executes a single task against the entry's current state.
func (e *entry) run(m *Manager, t *task) {
	// Tasks run to completion once admitted; cancellation of the original
	// request must not abort a compile that other queued requesters may
	// be satisfied by.
	ctx, span := m.tracer.Start(context.Background(), "lookup "+t.componentID)
	defer span.End()
	span.SetAttribute("kiln.source", t.source)

	e.mu.Lock()
	freshness, bundlePath := e.freshness, e.bundlePath
	e.mu.Unlock()

	if freshness >= t.target {
		// A compile at least as fresh as this request has already
		// completed; serve its output.
		span.SetAttribute("kiln.cached", true)
		data, err := m.fsys.ReadFile(bundlePath)
		if err != nil {
			// The cached bundle is gone or unreadable. Evict the whole
			// entry so the next lookup performs a full rebuild including
			// dependency rediscovery.
			m.evict(e.source)
			t.err = errors.Join(
				domain.ErrCacheReadFailed,
				zerr.With(zerr.Wrap(err, "cached bundle unreadable"), "bundle", bundlePath),
			)
			span.RecordError(t.err)
			return
		}
		t.bundle = data
		return
	}

	res, err := m.compiler.Compile(ctx, t.source)
	if err != nil {
		// The entry is left untouched: the next lookup retries the
		// compile under the same freshness baseline instead of falling
		// back to stale output.
		t.err = errors.Join(
			domain.ErrCompileFailed,
			zerr.With(zerr.Wrap(err, "bundler failed"), "source", t.source),
		)
		span.RecordError(t.err)
		return
	}

	dir := filepath.Dir(t.bundlePath)
	if err := m.fsys.EmptyDir(dir); err != nil {
		t.err = errors.Join(
			domain.ErrCacheDirFailed,
			zerr.With(zerr.Wrap(err, "failed to prepare bundle directory"), "dir", dir),
		)
		span.RecordError(t.err)
		return
	}
	if err := m.fsys.WriteFile(t.bundlePath, res.Bundle); err != nil {
		t.err = errors.Join(
			domain.ErrCacheWriteFailed,
			zerr.With(zerr.Wrap(err, "failed to write bundle"), "bundle", t.bundlePath),
		)
		span.RecordError(t.err)
		return
	}

	e.mu.Lock()
	e.componentID = t.componentID
	e.freshness = t.target
	e.bundlePath = t.bundlePath
	e.deps = slices.Clone(res.Dependencies)
	e.mu.Unlock()

	m.persist(e)
	t.bundle = res.Bundle
}
