package domain

import "go.trai.ch/zerr"

// Project is the loaded kiln configuration: where sources live, where
// bundles are cached, how the bundler is invoked, and which components
// are served.
type Project struct {
	// Root is the absolute source root. The watcher observes this tree.
	Root string
	// ServerAddr is the dev server listen address.
	ServerAddr string
	// CacheRoot is the absolute bundle cache root.
	CacheRoot string
	// Bundler is the bundler binary to invoke.
	Bundler string
	// BundlerArgs are extra arguments passed to every bundler invocation.
	BundlerArgs []string
	// Components maps component ids to absolute source paths.
	Components map[string]string
}

// ComponentSource resolves a component id to its configured source path.
func (p *Project) ComponentSource(id string) (string, error) {
	source, ok := p.Components[id]
	if !ok {
		return "", zerr.With(ErrComponentNotConfigured, "component", id)
	}
	return source, nil
}
