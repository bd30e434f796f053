// Package kv provides the persistent key-value surface the state repository is built on.
package kv

import (
	"context"
	"fmt"
)

// Store is a string-keyed, string-valued persistent map.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set creates or replaces the value for key.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys returns all keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendDir    = "dir"
	BackendSQLite = "sqlite"
)

// Open creates a Store for the named backend. path is a directory for the dir
// backend and a database file for sqlite; memory ignores it.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendDir:
		return OpenDir(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// ValidateKey rejects keys that cannot be stored portably by every backend.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	if key[0] == '.' {
		return fmt.Errorf("invalid key %q: leading dot", key)
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		ok := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-' || c == '.'
		if !ok {
			return fmt.Errorf("invalid key %q: character %q", key, c)
		}
	}
	return nil
}
