package cache_test

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/cache"
	"go.uber.org/mock/gomock"
)

const testCacheRoot = "/tmp/kiln-cache"

type cacheTestMocks struct {
	fsys     *mocks.MockFS
	compiler *mocks.MockCompiler
	records  *mocks.MockEntryRecordStore
	tracer   *mocks.MockTracer
	logger   *mocks.MockLogger
}

// setupCacheTest creates a manager and common mocks. Record store
// expectations are left to each test; tracer and logger are silenced.
func setupCacheTest(t *testing.T) (*cache.Manager, cacheTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := cacheTestMocks{
		fsys:     mocks.NewMockFS(ctrl),
		compiler: mocks.NewMockCompiler(ctrl),
		records:  mocks.NewMockEntryRecordStore(ctrl),
		tracer:   mocks.NewMockTracer(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
	}

	mockSpan := mocks.NewMockSpan(ctrl)
	mockSpan.EXPECT().End().AnyTimes()
	mockSpan.EXPECT().RecordError(gomock.Any()).AnyTimes()
	mockSpan.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()

	m.tracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Span) {
			return ctx, mockSpan
		},
	).AnyTimes()

	m.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	m.logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	m.logger.EXPECT().Error(gomock.Any()).AnyTimes()

	mgr := cache.NewManager(m.fsys, m.compiler, m.records, m.tracer, m.logger, testCacheRoot)
	return mgr, m
}

// allowRecords wires the record store to accept anything. Tests that
// assert on persistence set explicit expectations instead.
func allowRecords(m cacheTestMocks) {
	m.records.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	m.records.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.records.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func compileResult(bundle string, deps ...string) *domain.CompileResult {
	return &domain.CompileResult{
		Bundle:       []byte(bundle),
		Dependencies: deps,
	}
}

func TestManager_CompileThenHit(t *testing.T) {
	t.Parallel()
	mgr, m := setupCacheTest(t)
	allowRecords(m)

	src := "/proj/card.sfc"
	bundlePath := domain.BundlePath(testCacheRoot, "card", 100)

	m.fsys.EXPECT().ModTime(src).Return(int64(100), nil).AnyTimes()
	m.compiler.EXPECT().Compile(gomock.Any(), src).Return(compileResult("out", src), nil).Times(1)
	m.fsys.EXPECT().EmptyDir(testCacheRoot+"/card").Return(nil).Times(1)
	m.fsys.EXPECT().WriteFile(bundlePath, []byte("out")).Return(nil).Times(1)

	got, err := mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)
	assert.Equal(t, []byte("out"), got)

	// Unchanged inputs: the second lookup must serve the stored bundle
	// without invoking the compiler again.
	m.fsys.EXPECT().ReadFile(bundlePath).Return([]byte("out"), nil).Times(1)

	got, err = mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)
	assert.Equal(t, []byte("out"), got)
}

func TestManager_SingleFlight(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		mgr, m := setupCacheTest(t)

		src := "/proj/card.sfc"
		bundlePath := domain.BundlePath(testCacheRoot, "card", 100)

		// Entry creation is atomic: even with every lookup racing on a
		// cold cache the record store is consulted exactly once.
		m.records.EXPECT().Get(testCacheRoot, src).Return(nil, nil).Times(1)
		m.records.EXPECT().Put(testCacheRoot, gomock.Any()).Return(nil).Times(1)

		m.fsys.EXPECT().ModTime(src).Return(int64(100), nil).AnyTimes()

		// The compile blocks long enough for every concurrent lookup to
		// join the queue behind it. Exactly one compile may happen; the
		// rest are satisfied by its output via the freshness gate.
		m.compiler.EXPECT().Compile(gomock.Any(), src).DoAndReturn(
			func(context.Context, string) (*domain.CompileResult, error) {
				time.Sleep(time.Second)
				return compileResult("out", src), nil
			},
		).Times(1)
		m.fsys.EXPECT().EmptyDir(gomock.Any()).Return(nil).Times(1)
		m.fsys.EXPECT().WriteFile(bundlePath, []byte("out")).Return(nil).Times(1)
		m.fsys.EXPECT().ReadFile(bundlePath).Return([]byte("out"), nil).Times(7)

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := mgr.Lookup(context.Background(), src, "card")
				assert.NoError(t, err)
				assert.Equal(t, []byte("out"), got)
			}()
		}
		wg.Wait()
	})
}

func TestManager_RebuildOnSourceChange(t *testing.T) {
	t.Parallel()
	mgr, m := setupCacheTest(t)
	allowRecords(m)

	src := "/proj/card.sfc"

	var mu sync.Mutex
	mtime := int64(100)
	m.fsys.EXPECT().ModTime(src).DoAndReturn(func(string) (int64, error) {
		mu.Lock()
		defer mu.Unlock()
		return mtime, nil
	}).AnyTimes()

	m.compiler.EXPECT().Compile(gomock.Any(), src).Return(compileResult("v1", src), nil).Times(1)
	m.fsys.EXPECT().EmptyDir(testCacheRoot+"/card").Return(nil).Times(1)
	m.fsys.EXPECT().WriteFile(domain.BundlePath(testCacheRoot, "card", 100), []byte("v1")).Return(nil).Times(1)

	got, err := mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	// Touch the source. The next lookup observes a higher freshness and
	// recompiles; the component directory is emptied so the old bundle
	// file disappears.
	mu.Lock()
	mtime = 150
	mu.Unlock()

	m.compiler.EXPECT().Compile(gomock.Any(), src).Return(compileResult("v2", src), nil).Times(1)
	m.fsys.EXPECT().EmptyDir(testCacheRoot+"/card").Return(nil).Times(1)
	m.fsys.EXPECT().WriteFile(domain.BundlePath(testCacheRoot, "card", 150), []byte("v2")).Return(nil).Times(1)

	got, err = mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestManager_DependencyChangeTriggersRebuild(t *testing.T) {
	t.Parallel()
	mgr, m := setupCacheTest(t)
	allowRecords(m)

	src := "/proj/card.sfc"
	theme := "/proj/theme.css"

	m.fsys.EXPECT().ModTime(src).Return(int64(100), nil).AnyTimes()
	m.fsys.EXPECT().ModTime(theme).Return(int64(150), nil).AnyTimes()

	// The first compile discovers the import of theme.css.
	m.compiler.EXPECT().Compile(gomock.Any(), src).Return(compileResult("v1", src, theme), nil).Times(1)
	m.fsys.EXPECT().EmptyDir(gomock.Any()).Return(nil).Times(1)
	m.fsys.EXPECT().WriteFile(domain.BundlePath(testCacheRoot, "card", 100), []byte("v1")).Return(nil).Times(1)

	_, err := mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)

	// The second lookup folds theme.css (mtime 150) into the freshness
	// computation, beating the cached 100 and forcing a recompile.
	m.compiler.EXPECT().Compile(gomock.Any(), src).Return(compileResult("v2", src, theme), nil).Times(1)
	m.fsys.EXPECT().EmptyDir(gomock.Any()).Return(nil).Times(1)
	m.fsys.EXPECT().WriteFile(domain.BundlePath(testCacheRoot, "card", 150), []byte("v2")).Return(nil).Times(1)

	got, err := mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestManager_MissingSource(t *testing.T) {
	t.Parallel()
	mgr, m := setupCacheTest(t)
	allowRecords(m)

	src := "/proj/gone.sfc"
	m.fsys.EXPECT().ModTime(src).Return(int64(0), assert.AnError).Times(1)

	_, err := mgr.Lookup(context.Background(), src, "gone")
	require.ErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestManager_MissingDependencyIsExcluded(t *testing.T) {
	t.Parallel()
	mgr, m := setupCacheTest(t)
	allowRecords(m)

	src := "/proj/card.sfc"
	ghost := "/proj/deleted.css"
	bundlePath := domain.BundlePath(testCacheRoot, "card", 100)

	m.fsys.EXPECT().ModTime(src).Return(int64(100), nil).AnyTimes()
	m.compiler.EXPECT().Compile(gomock.Any(), src).Return(compileResult("out", src, ghost), nil).Times(1)
	m.fsys.EXPECT().EmptyDir(gomock.Any()).Return(nil).Times(1)
	m.fsys.EXPECT().WriteFile(bundlePath, []byte("out")).Return(nil).Times(1)

	_, err := mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)

	// The discovered dependency has since been deleted. Its stat failure
	// must not fail the lookup or force a rebuild; the maximum is taken
	// over the surviving paths only.
	m.fsys.EXPECT().ModTime(ghost).Return(int64(0), assert.AnError).AnyTimes()
	m.fsys.EXPECT().ReadFile(bundlePath).Return([]byte("out"), nil).Times(1)

	got, err := mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)
	assert.Equal(t, []byte("out"), got)
}

func TestManager_BrokenHitEvicts(t *testing.T) {
	t.Parallel()
	mgr, m := setupCacheTest(t)

	src := "/proj/card.sfc"
	bundlePath := domain.BundlePath(testCacheRoot, "card", 100)

	m.records.EXPECT().Get(testCacheRoot, src).Return(nil, nil).Times(2)
	m.records.EXPECT().Put(testCacheRoot, gomock.Any()).Return(nil).Times(2)

	m.fsys.EXPECT().ModTime(src).Return(int64(100), nil).AnyTimes()
	m.compiler.EXPECT().Compile(gomock.Any(), src).Return(compileResult("out", src), nil).Times(2)
	m.fsys.EXPECT().EmptyDir(gomock.Any()).Return(nil).Times(2)
	m.fsys.EXPECT().WriteFile(bundlePath, []byte("out")).Return(nil).Times(2)

	_, err := mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)

	// Someone deleted the bundle file out from under the cache. The hit
	// fails, the entry and its record are evicted, and the lookup errors.
	m.fsys.EXPECT().ReadFile(bundlePath).Return(nil, assert.AnError).Times(1)
	m.records.EXPECT().Delete(testCacheRoot, src).Return(nil).Times(1)

	_, err = mgr.Lookup(context.Background(), src, "card")
	require.ErrorIs(t, err, domain.ErrCacheReadFailed)

	// The next lookup starts from scratch: record re-read, full recompile.
	got, err := mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)
	assert.Equal(t, []byte("out"), got)
}

func TestManager_CompileFailureLeavesEntryUntouched(t *testing.T) {
	t.Parallel()
	mgr, m := setupCacheTest(t)
	allowRecords(m)

	src := "/proj/card.sfc"
	bundlePath := domain.BundlePath(testCacheRoot, "card", 100)

	m.fsys.EXPECT().ModTime(src).Return(int64(100), nil).AnyTimes()
	m.compiler.EXPECT().Compile(gomock.Any(), src).Return(nil, assert.AnError).Times(1)

	_, err := mgr.Lookup(context.Background(), src, "card")
	require.ErrorIs(t, err, domain.ErrCompileFailed)

	// The failure did not poison the entry: the retry compiles again
	// under the same freshness baseline and succeeds.
	m.compiler.EXPECT().Compile(gomock.Any(), src).Return(compileResult("out", src), nil).Times(1)
	m.fsys.EXPECT().EmptyDir(gomock.Any()).Return(nil).Times(1)
	m.fsys.EXPECT().WriteFile(bundlePath, []byte("out")).Return(nil).Times(1)

	got, err := mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)
	assert.Equal(t, []byte("out"), got)
}

func TestManager_CompileFailureDoesNotAffectOtherEntries(t *testing.T) {
	t.Parallel()
	mgr, m := setupCacheTest(t)
	allowRecords(m)

	good := "/proj/card.sfc"
	bad := "/proj/broken.sfc"
	goodBundle := domain.BundlePath(testCacheRoot, "card", 100)

	m.fsys.EXPECT().ModTime(good).Return(int64(100), nil).AnyTimes()
	m.fsys.EXPECT().ModTime(bad).Return(int64(100), nil).AnyTimes()

	m.compiler.EXPECT().Compile(gomock.Any(), good).Return(compileResult("good", good), nil).Times(1)
	m.fsys.EXPECT().EmptyDir(testCacheRoot+"/card").Return(nil).Times(1)
	m.fsys.EXPECT().WriteFile(goodBundle, []byte("good")).Return(nil).Times(1)

	_, err := mgr.Lookup(context.Background(), good, "card")
	require.NoError(t, err)

	m.compiler.EXPECT().Compile(gomock.Any(), bad).Return(nil, assert.AnError).Times(1)

	_, err = mgr.Lookup(context.Background(), bad, "broken")
	require.ErrorIs(t, err, domain.ErrCompileFailed)

	// The failure is confined to its own entry: the healthy component
	// still serves a pure cache hit, no compile, no eviction.
	m.fsys.EXPECT().ReadFile(goodBundle).Return([]byte("good"), nil).Times(1)

	got, err := mgr.Lookup(context.Background(), good, "card")
	require.NoError(t, err)
	assert.Equal(t, []byte("good"), got)

	// And the failed entry retries cleanly on its next lookup.
	m.compiler.EXPECT().Compile(gomock.Any(), bad).Return(compileResult("fixed", bad), nil).Times(1)
	m.fsys.EXPECT().EmptyDir(testCacheRoot+"/broken").Return(nil).Times(1)
	m.fsys.EXPECT().WriteFile(domain.BundlePath(testCacheRoot, "broken", 100), []byte("fixed")).Return(nil).Times(1)

	got, err = mgr.Lookup(context.Background(), bad, "broken")
	require.NoError(t, err)
	assert.Equal(t, []byte("fixed"), got)
}

func TestManager_FreshnessNeverDecreases(t *testing.T) {
	t.Parallel()
	mgr, m := setupCacheTest(t)
	allowRecords(m)

	src := "/proj/card.sfc"
	theme := "/proj/theme.css"

	m.fsys.EXPECT().ModTime(src).Return(int64(100), nil).AnyTimes()

	// First compile discovers the newer theme.css import; the second folds
	// it into the freshness computation and recompiles at 150.
	m.compiler.EXPECT().Compile(gomock.Any(), src).Return(compileResult("v1", src, theme), nil).Times(1)
	m.fsys.EXPECT().EmptyDir(gomock.Any()).Return(nil).Times(1)
	m.fsys.EXPECT().WriteFile(domain.BundlePath(testCacheRoot, "card", 100), []byte("v1")).Return(nil).Times(1)

	_, err := mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)

	m.fsys.EXPECT().ModTime(theme).Return(int64(150), nil).Times(1)
	m.compiler.EXPECT().Compile(gomock.Any(), src).Return(compileResult("v2", src, theme), nil).Times(1)
	m.fsys.EXPECT().EmptyDir(gomock.Any()).Return(nil).Times(1)
	m.fsys.EXPECT().WriteFile(domain.BundlePath(testCacheRoot, "card", 150), []byte("v2")).Return(nil).Times(1)

	_, err = mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)

	// theme.css is deleted, so the observed freshness drops back to the
	// source's 100. The stored 150 still satisfies the gate: a hit, not
	// a recompile at a lower freshness.
	m.fsys.EXPECT().ModTime(theme).Return(int64(0), assert.AnError).Times(1)
	m.fsys.EXPECT().ReadFile(domain.BundlePath(testCacheRoot, "card", 150)).Return([]byte("v2"), nil).Times(1)

	got, err := mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestManager_InvalidComponentID(t *testing.T) {
	t.Parallel()
	mgr, _ := setupCacheTest(t)

	_, err := mgr.Lookup(context.Background(), "/proj/card.sfc", "../escape")
	require.ErrorIs(t, err, domain.ErrInvalidComponentID)
}

func TestManager_DependentsOf(t *testing.T) {
	t.Parallel()
	mgr, m := setupCacheTest(t)
	allowRecords(m)

	src := "/proj/card.sfc"
	theme := "/proj/theme.css"

	m.fsys.EXPECT().ModTime(src).Return(int64(100), nil).AnyTimes()
	m.compiler.EXPECT().Compile(gomock.Any(), src).Return(compileResult("out", src, theme), nil).Times(1)
	m.fsys.EXPECT().EmptyDir(gomock.Any()).Return(nil).Times(1)
	m.fsys.EXPECT().WriteFile(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	_, err := mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)

	targets := mgr.DependentsOf([]string{theme})
	require.Len(t, targets, 1)
	assert.Equal(t, src, targets[0].SourcePath)
	assert.Equal(t, "card", targets[0].ComponentID)

	assert.Empty(t, mgr.DependentsOf([]string{"/proj/unrelated.css"}))
}

func TestManager_SeedFromRecord(t *testing.T) {
	t.Parallel()
	mgr, m := setupCacheTest(t)

	src := "/proj/card.sfc"
	bundlePath := domain.BundlePath(testCacheRoot, "card", 100)

	// A previous process persisted this entry. With unchanged mtimes the
	// very first lookup of this process is already a hit.
	m.records.EXPECT().Get(testCacheRoot, src).Return(&domain.EntryRecord{
		SourcePath:   src,
		ComponentID:  "card",
		Freshness:    100,
		Dependencies: []string{src},
		BundlePath:   bundlePath,
	}, nil).Times(1)

	m.fsys.EXPECT().ModTime(src).Return(int64(100), nil).AnyTimes()
	m.fsys.EXPECT().ReadFile(bundlePath).Return([]byte("warm"), nil).Times(1)

	got, err := mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)
	assert.Equal(t, []byte("warm"), got)
}

func TestManager_Reset(t *testing.T) {
	t.Parallel()
	mgr, m := setupCacheTest(t)

	src := "/proj/card.sfc"
	bundlePath := domain.BundlePath(testCacheRoot, "card", 100)

	// Entry creation re-reads the record after Reset, so Get is hit
	// twice: first cold, then seeded with what Put persisted.
	var (
		mu     sync.Mutex
		stored *domain.EntryRecord
	)
	m.records.EXPECT().Get(testCacheRoot, src).DoAndReturn(func(string, string) (*domain.EntryRecord, error) {
		mu.Lock()
		defer mu.Unlock()
		return stored, nil
	}).Times(2)
	m.records.EXPECT().Put(testCacheRoot, gomock.Any()).DoAndReturn(func(_ string, record domain.EntryRecord) error {
		mu.Lock()
		defer mu.Unlock()
		stored = &record
		return nil
	}).Times(1)

	m.fsys.EXPECT().ModTime(src).Return(int64(100), nil).AnyTimes()
	m.compiler.EXPECT().Compile(gomock.Any(), src).Return(compileResult("out", src), nil).Times(1)
	m.fsys.EXPECT().EmptyDir(gomock.Any()).Return(nil).Times(1)
	m.fsys.EXPECT().WriteFile(bundlePath, []byte("out")).Return(nil).Times(1)

	_, err := mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)

	mgr.Reset()

	// The bundle on disk survives a reset, so the rebuilt entry still
	// serves it once freshness checks out.
	m.fsys.EXPECT().ReadFile(bundlePath).Return([]byte("out"), nil).Times(1)

	got, err := mgr.Lookup(context.Background(), src, "card")
	require.NoError(t, err)
	assert.Equal(t, []byte("out"), got)
}
