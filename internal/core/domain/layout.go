package domain

import (
	"path/filepath"
	"regexp"
	"strconv"
)

const (
	// KilnDirName is the name of the internal workspace directory.
	KilnDirName = ".kiln"

	// CacheDirName is the name of the bundle cache directory.
	CacheDirName = "cache"

	// IndexDirName is the name of the entry record index directory.
	IndexDirName = "index"

	// LockFileName is the name of the cache root lock file.
	LockFileName = "kiln.lock"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "kiln.yaml"

	// BundleExt is the file extension of compiled bundles.
	BundleExt = ".js"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

var validComponentIDRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// ValidateComponentID reports whether a component id is safe to use as a
// cache directory name.
func ValidateComponentID(id string) error {
	if !validComponentIDRegex.MatchString(id) {
		return ErrInvalidComponentID
	}
	return nil
}

// DefaultCachePath returns the default bundle cache root.
func DefaultCachePath() string {
	return filepath.Join(KilnDirName, CacheDirName)
}

// IndexPath returns the entry record index directory under the cache root.
func IndexPath(cacheRoot string) string {
	return filepath.Join(cacheRoot, IndexDirName)
}

// LockPath returns the lock file path under the cache root.
func LockPath(cacheRoot string) string {
	return filepath.Join(cacheRoot, LockFileName)
}

// BundlePath returns the on-disk location for a bundle of the given
// component at the given freshness. Distinct freshness values never
// collide: the freshness is part of the file name.
func BundlePath(cacheRoot, componentID string, freshness int64) string {
	return filepath.Join(cacheRoot, componentID, strconv.FormatInt(freshness, 10)+BundleExt)
}
