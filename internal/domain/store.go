package domain

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates that no record exists under the requested key.
	ErrNotFound = errors.New("not found")
	// ErrMalformedState indicates that a stored record could not be decoded or validated.
	ErrMalformedState = errors.New("malformed state")
	// ErrConflict indicates that a record with the same unique key already exists.
	ErrConflict = errors.New("already exists")
)

// KVStore is the port for the string key-value persistence substrate. Every
// per-user record is stored as one JSON document under a scoped key.
type KVStore interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value in one write.
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
