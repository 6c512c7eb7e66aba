package domain

import "time"

// EntryRecord is the persisted snapshot of a cache entry after a
// successful compile. A fresh process seeds its in-memory entries from
// these records so still-fresh bundles on disk survive restarts.
type EntryRecord struct {
	// SourcePath is the primary source file the entry is keyed by.
	SourcePath string `json:"source_path"`
	// ComponentID is the cache namespace the bundle was written under.
	ComponentID string `json:"component_id"`
	// Freshness is the max dependency mtime (UnixNano) the bundle was built at.
	Freshness int64 `json:"freshness"`
	// Dependencies is the dependency list reported by that compile.
	Dependencies []string `json:"dependencies"`
	// BundlePath is the on-disk location of the bundle.
	BundlePath string `json:"bundle_path"`
	// Timestamp is when the record was written.
	Timestamp time.Time `json:"timestamp"`
}
