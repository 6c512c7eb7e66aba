package domain

import "go.trai.ch/zerr"

var (
	// ErrSourceNotFound is returned when the requested component source file does not exist.
	ErrSourceNotFound = zerr.New("component source not found")

	// ErrCompileFailed is returned when the bundler reported a compilation failure.
	ErrCompileFailed = zerr.New("compilation failed")

	// ErrCacheReadFailed is returned when a cached bundle cannot be read back from disk.
	ErrCacheReadFailed = zerr.New("failed to read cached bundle")

	// ErrCacheWriteFailed is returned when a freshly compiled bundle cannot be written to disk.
	ErrCacheWriteFailed = zerr.New("failed to write bundle to cache")

	// ErrCacheDirFailed is returned when the bundle destination directory cannot be prepared.
	ErrCacheDirFailed = zerr.New("failed to prepare cache directory")

	// ErrInvalidComponentID is returned when a component id would escape the cache layout.
	ErrInvalidComponentID = zerr.New("component id can only contain alphanumeric characters, hyphens and underscores")

	// ErrComponentNotConfigured is returned when a requested component id has no source mapping.
	ErrComponentNotConfigured = zerr.New("component not configured")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when no kiln.yaml could be located.
	ErrConfigNotFound = zerr.New("could not find kiln.yaml")

	// ErrRecordReadFailed is returned when an entry record cannot be read.
	ErrRecordReadFailed = zerr.New("failed to read entry record")

	// ErrRecordUnmarshalFailed is returned when an entry record cannot be unmarshaled.
	ErrRecordUnmarshalFailed = zerr.New("failed to unmarshal entry record")

	// ErrRecordMarshalFailed is returned when an entry record cannot be marshaled.
	ErrRecordMarshalFailed = zerr.New("failed to marshal entry record")

	// ErrRecordWriteFailed is returned when an entry record cannot be written.
	ErrRecordWriteFailed = zerr.New("failed to write entry record")

	// ErrRecordStoreCreateFailed is returned when the record index directory cannot be created.
	ErrRecordStoreCreateFailed = zerr.New("failed to create entry record directory")

	// ErrCacheLocked is returned when another kiln process holds the cache root lock.
	ErrCacheLocked = zerr.New("cache directory is locked by another kiln process")

	// ErrBundlerStartFailed is returned when the bundler binary cannot be started.
	ErrBundlerStartFailed = zerr.New("failed to start bundler")

	// ErrMetafileParseFailed is returned when the bundler metafile cannot be parsed.
	ErrMetafileParseFailed = zerr.New("failed to parse bundler metafile")

	// ErrServerFailed is returned when the dev server terminates abnormally.
	ErrServerFailed = zerr.New("dev server failed")
)
