// Package cache provides the interface description cache: a set of pluggable Store backends composed into a
// TieredCache that owns the coherency policy between them.
package cache

import (
	"context"

	"github.com/pkg/errors"
)

// ErrCacheMiss is returned by a Store when it holds no value for a key.
var ErrCacheMiss = errors.New("not found in cache")

// Store is one tier of the cache. Values are opaque JSON documents. Implementations must be safe for concurrent use.
type Store interface {
	// Name identifies the tier in logs and metrics.
	Name() string

	// Get returns the value for key, or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value. Readers must never observe a partial value.
	Put(ctx context.Context, key string, value []byte) error

	// Clear removes every value held by the store.
	Clear(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
