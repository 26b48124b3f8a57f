package store

import (
	"fmt"

	"sitesearch/internal/domain"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open returns the KVStore for backend at path.
func Open(backend, path string) (domain.KVStore, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(path)
	case BackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q: %w", backend, domain.ErrInvalidInput)
	}
}
