// Package cache stores raw API response pages between runs.
//
// A [Store] answers one question, "is the entry for this key fresh?", and
// reads or overwrites whole entries. Freshness is a fixed time-to-live:
//
//   - [FileStore]: one file per key; fresh while the file's modification
//     time is within the TTL of now. This is the default backend and keeps
//     pages at /tmp/<repo>-downloads-<page>.json.
//   - [RedisStore]: one redis string per key, stored with an expiry equal
//     to the TTL; fresh while the key exists.
//   - [NullStore]: never fresh, discards writes. Used by --no-cache.
//
// Stores are not goroutine-safe and take no locks: a single process is
// assumed to own the entries for the duration of a run.
package cache

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is how long a cached page stays fresh.
const DefaultTTL = 24 * time.Hour

// ErrNotFound is returned by Read when no entry exists for the key.
var ErrNotFound = errors.New("cache entry not found")

// Store is a keyed byte store with TTL-based freshness.
type Store interface {
	// IsFresh reports whether an entry exists for key and is within the TTL.
	IsFresh(ctx context.Context, key string) (bool, error)

	// Read returns the full contents stored under key.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write overwrites the entry for key with data, resetting its age.
	Write(ctx context.Context, key string, data []byte) error

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
