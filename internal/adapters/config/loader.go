// Package config provides the configuration loader for kiln.
package config

import (
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

const (
	defaultServerAddr = "127.0.0.1:7878"
	defaultBundler    = "esbuild"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load discovers kiln.yaml by walking up from cwd and returns the
// resolved project with all paths absolute.
func (l *Loader) Load(cwd string) (*domain.Project, error) {
	configPath, err := l.findConfiguration(cwd)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // config path discovered from the working directory
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, zerr.With(
			zerr.Wrap(err, domain.ErrConfigReadFailed.Error()),
			"path", configPath,
		)
	}

	var file kilnfile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(
			zerr.Wrap(err, domain.ErrConfigParseFailed.Error()),
			"path", configPath,
		)
	}

	return l.resolve(configPath, &file)
}

// findConfiguration walks up from cwd until it finds a kiln.yaml.
func (l *Loader) findConfiguration(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrConfigNotFound.Error())
	}

	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

// resolve turns the raw file into a domain.Project with absolute paths
// and validated component ids.
func (l *Loader) resolve(configPath string, file *kilnfile) (*domain.Project, error) {
	baseDir := filepath.Dir(configPath)

	root := baseDir
	if file.Root != "" {
		if filepath.IsAbs(file.Root) {
			root = filepath.Clean(file.Root)
		} else {
			root = filepath.Join(baseDir, file.Root)
		}
	}

	cacheRoot := filepath.Join(root, domain.DefaultCachePath())
	if file.Cache != "" {
		if filepath.IsAbs(file.Cache) {
			cacheRoot = filepath.Clean(file.Cache)
		} else {
			cacheRoot = filepath.Join(root, file.Cache)
		}
	}

	addr := file.Server.Addr
	if addr == "" {
		addr = defaultServerAddr
	}

	bundlerBin := file.Bundler.Command
	if bundlerBin == "" {
		bundlerBin = defaultBundler
	}

	components := make(map[string]string, len(file.Components))
	for id, source := range file.Components {
		if err := domain.ValidateComponentID(id); err != nil {
			return nil, zerr.With(err, "component", id)
		}
		if !filepath.IsAbs(source) {
			source = filepath.Join(root, source)
		}
		components[id] = source
	}

	if len(components) == 0 {
		l.Logger.Warn("no components configured in " + domain.ConfigFileName)
	}

	return &domain.Project{
		Root:        root,
		ServerAddr:  addr,
		CacheRoot:   cacheRoot,
		Bundler:     bundlerBin,
		BundlerArgs: file.Bundler.Args,
		Components:  components,
	}, nil
}
