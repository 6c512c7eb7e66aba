package ports

import "go.trai.ch/kiln/internal/core/domain"

// EntryRecordStore defines the interface for persisting cache entry
// records across process restarts.
//
//go:generate mockgen -source=record_store.go -destination=mocks/mock_record_store.go -package=mocks
type EntryRecordStore interface {
	// Get retrieves the record for a given source path.
	// Returns nil, nil if not found.
	Get(cacheRoot, sourcePath string) (*domain.EntryRecord, error)

	// Put stores the record.
	Put(cacheRoot string, record domain.EntryRecord) error

	// Delete removes the record for a given source path, if present.
	Delete(cacheRoot, sourcePath string) error
}
