package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/config"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newTestLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return config.NewLoader(log)
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte(content), 0o600))
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()
	loader := newTestLoader(t)
	tmpDir := t.TempDir()

	writeConfig(t, tmpDir, `
server:
  addr: "127.0.0.1:9000"
cache: .cache/bundles
bundler:
  command: esbuild
  args: ["--format=esm"]
components:
  card: src/card.sfc
  nav_bar: src/nav.sfc
`)

	project, err := loader.Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, tmpDir, project.Root)
	assert.Equal(t, "127.0.0.1:9000", project.ServerAddr)
	assert.Equal(t, filepath.Join(tmpDir, ".cache", "bundles"), project.CacheRoot)
	assert.Equal(t, "esbuild", project.Bundler)
	assert.Equal(t, []string{"--format=esm"}, project.BundlerArgs)
	assert.Equal(t, filepath.Join(tmpDir, "src", "card.sfc"), project.Components["card"])
	assert.Equal(t, filepath.Join(tmpDir, "src", "nav.sfc"), project.Components["nav_bar"])
}

func TestLoader_Defaults(t *testing.T) {
	t.Parallel()
	loader := newTestLoader(t)
	tmpDir := t.TempDir()

	writeConfig(t, tmpDir, `
components:
  card: card.sfc
`)

	project, err := loader.Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7878", project.ServerAddr)
	assert.Equal(t, "esbuild", project.Bundler)
	assert.Empty(t, project.BundlerArgs)
	assert.Equal(t, filepath.Join(tmpDir, ".kiln", "cache"), project.CacheRoot)
}

func TestLoader_WalksUpToFindConfig(t *testing.T) {
	t.Parallel()
	loader := newTestLoader(t)
	tmpDir := t.TempDir()

	writeConfig(t, tmpDir, `
components:
  card: card.sfc
`)

	nested := filepath.Join(tmpDir, "src", "components")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	project, err := loader.Load(nested)
	require.NoError(t, err)
	assert.Equal(t, tmpDir, project.Root)
}

func TestLoader_NotFound(t *testing.T) {
	t.Parallel()
	loader := newTestLoader(t)

	// A bare temp dir has no kiln.yaml anywhere up to its root.
	_, err := loader.Load(t.TempDir())
	require.ErrorIs(t, err, domain.ErrConfigNotFound)
}

func TestLoader_InvalidYAML(t *testing.T) {
	t.Parallel()
	loader := newTestLoader(t)
	tmpDir := t.TempDir()

	writeConfig(t, tmpDir, "components: [not: {a: map")

	_, err := loader.Load(tmpDir)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrConfigParseFailed.Error())
}

func TestLoader_InvalidComponentID(t *testing.T) {
	t.Parallel()
	loader := newTestLoader(t)
	tmpDir := t.TempDir()

	writeConfig(t, tmpDir, `
components:
  "../escape": card.sfc
`)

	_, err := loader.Load(tmpDir)
	require.ErrorIs(t, err, domain.ErrInvalidComponentID)
}
