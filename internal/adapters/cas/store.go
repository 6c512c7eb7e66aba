// Package cas implements entry record storage using a file-per-source strategy.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.EntryRecordStore = (*Store)(nil)

// Store implements ports.EntryRecordStore. Records live under
// <cacheRoot>/index/<sha256(sourcePath)>.json.
type Store struct{}

// NewStore creates a new entry record store.
func NewStore() (*Store, error) {
	return &Store{}, nil
}

// Get retrieves the record for a given source path.
func (s *Store) Get(cacheRoot, sourcePath string) (*domain.EntryRecord, error) {
	filename := s.getFilename(cacheRoot, sourcePath)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrRecordReadFailed.Error())
	}

	var record domain.EntryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, zerr.Wrap(err, domain.ErrRecordUnmarshalFailed.Error())
	}

	return &record, nil
}

// Put stores the record.
func (s *Store) Put(cacheRoot string, record domain.EntryRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrRecordMarshalFailed.Error())
	}

	filename := s.getFilename(cacheRoot, record.SourcePath)
	if err := os.MkdirAll(filepath.Dir(filename), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrRecordStoreCreateFailed.Error())
	}

	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	if err := os.WriteFile(filename, data, domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrRecordWriteFailed.Error())
	}

	return nil
}

// Delete removes the record for a given source path, if present.
func (s *Store) Delete(cacheRoot, sourcePath string) error {
	err := os.Remove(s.getFilename(cacheRoot, sourcePath))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.Wrap(err, domain.ErrRecordWriteFailed.Error())
	}
	return nil
}

func (s *Store) getFilename(cacheRoot, sourcePath string) string {
	hash := sha256.Sum256([]byte(sourcePath))
	hexHash := hex.EncodeToString(hash[:])
	return filepath.Join(domain.IndexPath(cacheRoot), hexHash+".json")
}
