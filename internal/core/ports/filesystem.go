package ports

// FS defines the filesystem primitives the cache consumes.
//
//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FS interface {
	// ModTime returns the modification time of the file at path in UnixNano.
	ModTime(path string) (int64, error)

	// ReadFile reads the file at path.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to path, creating parent directories as needed.
	WriteFile(path string, data []byte) error

	// EmptyDir removes the directory at path with all its contents and
	// recreates it. It does not fail if the directory does not exist yet.
	EmptyDir(path string) error
}
