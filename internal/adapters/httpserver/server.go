// Package httpserver serves compiled bundles over HTTP during development.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second

	componentPrefix = "/components/"
)

// Server exposes the compile cache at GET /components/<id>.js.
type Server struct {
	lookup  ports.BundleLookup
	project *domain.Project
	logger  ports.Logger

	httpServer *http.Server
}

// NewServer creates a dev server for the given project.
func NewServer(lookup ports.BundleLookup, project *domain.Project, logger ports.Logger) *Server {
	s := &Server{
		lookup:  lookup,
		project: project,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc(componentPrefix, s.handleComponent)

	s.httpServer = &http.Server{
		Addr:              project.ServerAddr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler returns the server's root handler. Used for testing.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe runs the server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return zerr.Wrap(err, domain.ErrServerFailed.Error())
	}

	s.logger.Info("serving components on http://" + listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return zerr.Wrap(err, domain.ErrServerFailed.Error())
	}
}

// handleComponent resolves /components/<id>.js to a cache lookup.
func (s *Server) handleComponent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, componentPrefix)
	id = strings.TrimSuffix(id, domain.BundleExt)

	source, err := s.project.ComponentSource(id)
	if err != nil {
		http.Error(w, "unknown component "+id, http.StatusNotFound)
		return
	}

	bundle, err := s.lookup.Lookup(r.Context(), source, id)
	if err != nil {
		s.writeError(w, id, err)
		return
	}

	etag := fmt.Sprintf("%q", fmt.Sprintf("%016x", xxhash.Sum64(bundle)))
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	_, _ = w.Write(bundle)
}

// writeError maps cache errors to HTTP statuses. Compile diagnostics are
// surfaced verbatim so the failure is actionable from the browser; other
// cache failures carry internal paths and only reach the log.
func (s *Server) writeError(w http.ResponseWriter, id string, err error) {
	s.logger.Error(err)

	switch {
	case errors.Is(err, domain.ErrSourceNotFound):
		http.Error(w, "component source not found: "+id, http.StatusNotFound)
	case errors.Is(err, domain.ErrCompileFailed):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, "cache failure for component "+id+", see server log", http.StatusInternalServerError)
	}
}
