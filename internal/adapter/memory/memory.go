// Package memory implements an in-memory key-value store for development and testing.
package memory

import (
	"context"
	"sync"

	"armonia/internal/domain"
)

// DB implements domain.KVStore on a mutex-guarded map.
type DB struct {
	mu   sync.RWMutex
	data map[string]string
}

// New creates a new in-memory store.
func New() *DB {
	return &DB{data: make(map[string]string)}
}

// Ensure interfaces are met.
var _ domain.KVStore = (*DB)(nil)

// Get returns the value stored under key.
func (db *DB) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()

	v, ok := db.data[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

// Set stores value under key.
func (db *DB) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[key] = value
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (db *DB) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.data, key)
	return nil
}
