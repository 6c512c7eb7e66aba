// Package app implements the application layer for kiln.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"go.trai.ch/kiln/internal/adapters/bundler"
	"go.trai.ch/kiln/internal/adapters/httpserver"
	"go.trai.ch/kiln/internal/adapters/lockfile"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	watch "go.trai.ch/kiln/internal/adapters/watcher"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/cache"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	fsys         ports.FS
	records      ports.EntryRecordStore
	watcher      ports.Watcher
	logger       ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	fsys ports.FS,
	records ports.EntryRecordStore,
	watcher ports.Watcher,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		fsys:         fsys,
		records:      records,
		watcher:      watcher,
		logger:       log,
	}
}

// ServeOptions configuration for the Serve method.
type ServeOptions struct {
	// Addr overrides the configured listen address when non-empty.
	Addr string
	// JSONLogs switches the logger to JSON output for non-interactive runs.
	JSONLogs bool
}

// Serve runs the dev server until the context is canceled: the HTTP
// component endpoint and the watcher-driven eager rebuilder, sharing one
// cache manager.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	if opts.JSONLogs {
		if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
			l.SetJSON(true)
		}
	}

	// 1. Load the project
	project, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	if opts.Addr != "" {
		project.ServerAddr = opts.Addr
	}

	// 2. Take exclusive ownership of the cache root
	lock, err := lockfile.Acquire(ctx, project.CacheRoot, a.logger)
	if err != nil {
		return err
	}
	defer lock.Release()

	// 3. Telemetry: compile spans surface as timing lines in the log
	tp := telemetry.Setup(a.logger)
	defer func() {
		_ = tp.Shutdown(context.Background())
	}()
	tracer := telemetry.NewOTelTracer("kiln")

	// 4. Assemble the cache pipeline
	manager := a.newManager(project, tracer)
	server := httpserver.NewServer(manager, project, a.logger)
	rebuilder := watch.NewRebuilder(a.watcher, manager, a.logger)

	a.logger.Info(fmt.Sprintf("serving %d component(s) on http://%s", len(project.Components), project.ServerAddr))

	// 5. Run server and rebuilder concurrently
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(ctx)
	})
	g.Go(func() error {
		return rebuilder.Run(ctx, project.Root)
	})
	return g.Wait()
}

// Build compiles the named components once and exits. With no names it
// builds every configured component, so CI can warm or verify the cache
// without a server.
func (a *App) Build(ctx context.Context, componentIDs []string) error {
	project, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	if len(componentIDs) == 0 {
		for id := range project.Components {
			componentIDs = append(componentIDs, id)
		}
		sort.Strings(componentIDs)
	}
	if len(componentIDs) == 0 {
		return domain.ErrComponentNotConfigured
	}

	lock, err := lockfile.Acquire(ctx, project.CacheRoot, a.logger)
	if err != nil {
		return err
	}
	defer lock.Release()

	tp := telemetry.Setup(a.logger)
	defer func() {
		_ = tp.Shutdown(context.Background())
	}()
	manager := a.newManager(project, telemetry.NewOTelTracer("kiln"))

	for _, id := range componentIDs {
		source, err := project.ComponentSource(id)
		if err != nil {
			return err
		}
		bundle, err := manager.Lookup(ctx, source, id)
		if err != nil {
			return zerr.Wrap(err, "failed to build "+id)
		}
		a.logger.Info(fmt.Sprintf("built %s (%d bytes)", id, len(bundle)))
	}
	return nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	// Records removes only the persisted entry records, keeping bundles.
	Records bool
}

// Clean removes cached bundles and entry records.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	project, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	var errs error
	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	if opts.Records {
		remove(domain.IndexPath(project.CacheRoot), "entry records")
		return errs
	}

	remove(project.CacheRoot, "bundle cache")
	return errs
}

func (a *App) newManager(project *domain.Project, tracer ports.Tracer) *cache.Manager {
	compiler := bundler.NewEsbuild(project.Bundler, project.BundlerArgs, a.logger)
	return cache.NewManager(a.fsys, compiler, a.records, tracer, a.logger, project.CacheRoot)
}
