// Package bundler implements the compiler capability by shelling out to
// an esbuild-compatible bundler binary.
package bundler

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Esbuild)(nil)

// Esbuild implements ports.Compiler by invoking a bundler binary with
// --bundle and --metafile, reading the bundle from a scratch directory
// and the dependency list from the metafile.
type Esbuild struct {
	binary string
	args   []string
	logger ports.Logger
}

// NewEsbuild creates a compiler invoking the given binary. Extra args are
// appended to every invocation.
func NewEsbuild(binary string, args []string, logger ports.Logger) *Esbuild {
	return &Esbuild{
		binary: binary,
		args:   args,
		logger: logger,
	}
}

// Compile bundles the given source file.
//
// Any failure reported by the bundler (non-zero exit) is an unambiguous
// error carrying the tool's diagnostics; there is no tolerated error
// count. The returned dependency list always includes the source itself.
func (e *Esbuild) Compile(ctx context.Context, sourcePath string) (*domain.CompileResult, error) {
	scratch, err := os.MkdirTemp("", "kiln-build-*")
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrBundlerStartFailed.Error())
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	outfile := filepath.Join(scratch, "bundle"+domain.BundleExt)
	metafile := filepath.Join(scratch, "meta.json")

	args := slices.Clone(e.args)
	args = append(args,
		sourcePath,
		"--bundle",
		"--outfile="+outfile,
		"--metafile="+metafile,
	)

	baseDir := filepath.Dir(sourcePath)

	var diagnostics bytes.Buffer
	stderrLog := &lineWriter{logger: e.logger}

	//nolint:gosec // binary and args come from the loaded configuration
	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Dir = baseDir
	cmd.Stderr = &teeWriter{a: &diagnostics, b: stderrLog}

	err = cmd.Run()
	_ = stderrLog.Close()
	if err != nil {
		return nil, zerr.With(
			zerr.Wrap(err, "bundler reported errors"),
			"diagnostics", strings.TrimSpace(diagnostics.String()),
		)
	}

	bundle, err := os.ReadFile(outfile)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read bundler output")
	}

	metaData, err := os.ReadFile(metafile)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read bundler metafile")
	}

	deps, err := parseMetafile(metaData, baseDir)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(deps, sourcePath) {
		deps = append(deps, sourcePath)
		slices.Sort(deps)
	}

	return &domain.CompileResult{
		Bundle:       bundle,
		Dependencies: deps,
	}, nil
}

// teeWriter duplicates writes to two writers, ignoring errors from the
// secondary log writer.
type teeWriter struct {
	a *bytes.Buffer
	b *lineWriter
}

func (w *teeWriter) Write(p []byte) (int, error) {
	w.a.Write(p)
	_, _ = w.b.Write(p)
	return len(p), nil
}

// lineWriter buffers bundler stderr and forwards it line-wise to the
// logger, so tool warnings show up interleaved with kiln's own output.
type lineWriter struct {
	logger ports.Logger
	buf    []byte
}

func (w *lineWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}

		line := w.buf[:i]
		w.logLine(line)

		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *lineWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *lineWriter) logLine(line []byte) {
	msg := strings.TrimSuffix(string(line), "\r")
	if msg == "" {
		return
	}
	w.logger.Warn(msg)
}
