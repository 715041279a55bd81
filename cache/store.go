package cache

import "context"

// Store is a binary key-value store for processed artifacts.
// Implementations must return ErrNotFound for absent keys.
type Store interface {
	// Get returns the value stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any existing entry.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases store resources.
	Close() error
}
