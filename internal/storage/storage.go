// Package storage provides the durable key/value layer behind the watchlist.
package storage

import "errors"

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Persistence is a minimal synchronous key/value store.
type Persistence interface {
	Get(key string) ([]byte, error)
	Set(key string, data []byte) error
}

// Backend names a Persistence implementation selectable from configuration.
type Backend string

const (
	BackendDisk   Backend = "disk"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// Open returns the Persistence for backend rooted at dir. The returned close
// function releases any resources held by the store.
func Open(backend Backend, dir string) (Persistence, func() error, error) {
	noop := func() error { return nil }
	switch backend {
	case BackendSQLite:
		s, err := NewSQLiteStore(dir)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case BackendMemory:
		return NewMemoryStore(), noop, nil
	case BackendDisk, "":
		return NewDiskStore(dir), noop, nil
	default:
		return nil, noop, errors.New("storage: unknown backend " + string(backend))
	}
}
