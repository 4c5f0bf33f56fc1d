package storage

import (
	"context"
	"errors"
	"fmt"
)

// Store is a small key-value store. The share codec and the retention sweep
// receive one of these instead of reaching for ambient global state.
// Implementations include a local directory, a bounded in-memory LRU and SQLite.
type Store interface {
	// Get returns the value for key and whether it exists
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set creates or overwrites the value for key
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns every key currently stored
	Keys(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store
	Close() error
}

// Backend names accepted by Open
const (
	BackendLocal  = "local"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// DefaultMemoryEntries bounds the in-memory store opened by Open
const DefaultMemoryEntries = 1024

// ErrInvalidKey is returned for empty or oversized keys
var ErrInvalidKey = errors.New("invalid key")

const maxKeyLength = 128

// ValidateKey checks that key can be stored by every backend
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key is empty", ErrInvalidKey)
	}
	if len(key) > maxKeyLength {
		return fmt.Errorf("%w: key exceeds %d bytes", ErrInvalidKey, maxKeyLength)
	}
	return nil
}

// Open creates the store named by backend. path is the directory for the
// local backend and the database file for sqlite; it is ignored for memory.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendLocal:
		return NewLocal(path)
	case BackendMemory:
		return NewMemory(DefaultMemoryEntries)
	case BackendSQLite:
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s (use: local, memory, sqlite)", backend)
	}
}
