package datastore

import (
	"context"
	"errors"
	"fmt"
)

// Common errors returned by store operations.
var (
	// ErrNotFound is returned when a requested key does not exist in the store.
	ErrNotFound = errors.New("datastore: key not found")

	// ErrInvalidKey is returned when a key is empty.
	ErrInvalidKey = errors.New("datastore: invalid key")

	// ErrStorageFailed is returned when the underlying storage backend fails.
	ErrStorageFailed = errors.New("datastore: storage operation failed")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("datastore: store closed")

	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("datastore: unknown backend")
)

// Store is a durable key/value store.
type Store interface {
	// Load returns the value stored under key.
	// Returns ErrNotFound if the key does not exist.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save stores value under key, replacing any previous value.
	// Returns ErrInvalidKey if the key is empty.
	Save(ctx context.Context, key string, value []byte) error

	// Delete removes the value stored under key.
	// Returns ErrNotFound if the key does not exist.
	Delete(ctx context.Context, key string) error

	// Close releases the resources held by the store.
	Close() error
}

// Pinger is implemented by stores that can report whether their backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func checkKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}

// storageError wraps a backend failure so that it matches both ErrStorageFailed and
// the underlying cause.
func storageError(op, key string, err error) error {
	return fmt.Errorf("%w: failed to %s key %s: %w", ErrStorageFailed, op, key, err)
}
