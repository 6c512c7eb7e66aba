package domain

// RebuildTarget identifies a cache entry that should be rebuilt, carrying
// both the source path the entry is keyed by and the cache namespace it
// was last compiled under.
type RebuildTarget struct {
	SourcePath  string
	ComponentID string
}
