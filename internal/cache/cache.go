// Package cache provides the TTL memoization layer for expensive reports.
// Values are opaque byte payloads; callers own the encoding. No write path in
// the system invalidates entries, so a cached report may lag storage by up to
// its TTL.
package cache

import (
	"context"
	"time"
)

// Cache is a concurrent-safe key/value store with per-entry expiry.
// Get reports a miss for absent or expired keys. Racing Sets on the same key
// are resolved last-write-wins; readers never observe a torn value.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
