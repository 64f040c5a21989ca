// Package kv provides the process-external key-value persistence the
// reader keeps its local state in.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNotFound = errors.New("key not found")
	ErrClosed   = errors.New("kv store is closed")
)

// Fixed keys used by the reader.
const (
	KeyBookmarks = "bookmarks"
	KeyDarkMode  = "darkMode"
)

// KV is a durable string-keyed blob store.
type KV interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying resources.
	Close() error
}

// Drivers accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Options selects and configures a KV backend.
type Options struct {
	Driver    string
	Path      string
	RedisAddr string
	RedisDB   int
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		return NewSQLite(opts.Path)
	case DriverRedis:
		return NewRedis(ctx, opts.RedisAddr, opts.RedisDB)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
