package storage

import (
	"fmt"
	"os"

	"github.com/peterbourgon/diskv/v3"
)

// DiskStore persists values as files under a base directory.
type DiskStore struct {
	d        *diskv.Diskv
	basePath string
}

// NewDiskStore creates a DiskStore rooted at basePath.
func NewDiskStore(basePath string) *DiskStore {
	return &DiskStore{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 1024 * 1024, // 1MB
			PathPerm:     0755,
			FilePerm:     0644,
		}),
		basePath: basePath,
	}
}

// Get reads the value for key.
func (s *DiskStore) Get(key string) ([]byte, error) {
	if !s.d.Has(key) {
		return nil, ErrNotFound
	}
	val, err := s.d.Read(key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return val, nil
}

// Set writes the value for key, replacing any previous value.
func (s *DiskStore) Set(key string, data []byte) error {
	if err := s.d.Write(key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// BasePath returns the directory the store writes to.
func (s *DiskStore) BasePath() string {
	return s.basePath
}
