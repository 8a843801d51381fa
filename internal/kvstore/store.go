package kvstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent from the store.
var ErrNotFound = errors.New("key not found")

// Store is a flat namespace of string keys, the external key-value
// store backing the result cache. Implementations may additionally
// expire entries after ttl as a safety net; the cache layer still
// enforces its own max-age on read.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key. A positive ttl lets the backend
	// expire the entry on its own; zero means no backend expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys returns all keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
