package config

// kilnfile is the on-disk YAML schema of kiln.yaml.
type kilnfile struct {
	// Root is the source root, relative to the config file. Defaults to
	// the config file's directory.
	Root string `yaml:"root"`

	// Server holds dev server settings.
	Server serverConfig `yaml:"server"`

	// Cache is the bundle cache root, relative to the source root.
	Cache string `yaml:"cache"`

	// Bundler configures the compiler invocation.
	Bundler bundlerConfig `yaml:"bundler"`

	// Components maps component ids to source paths relative to the root.
	Components map[string]string `yaml:"components"`
}

type serverConfig struct {
	Addr string `yaml:"addr"`
}

type bundlerConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}
