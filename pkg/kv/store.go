// Package kv provides the string key-value medium the session is persisted
// to. Backends: in-process memory, Redis and SQLite.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for a key that was never set or was deleted.
var ErrNotFound = errors.New("kv: key not found")

// Store is a flat string key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	// Clear removes every key the store owns.
	Clear(ctx context.Context) error
	Close() error
}
