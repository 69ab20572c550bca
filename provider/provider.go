// Package provider defines the byte stores that back repository.KV.
//
// A Provider is the storage half of a repository: it moves opaque records in
// and out of some keyspace and knows nothing about codecs or the cache in
// front of it. Implementations MUST be byte-for-byte transparent: Get returns
// exactly the []byte last passed to Set for the key, with no metadata added
// and no re-encoding. Records written by repository.KV carry their own
// envelope; foreign bytes under a KV namespace are reported as corrupt.
package provider

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by providers used after Close.
var ErrClosed = errors.New("provider: closed")

// Provider is a minimal byte store with TTLs. Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL; ttl <= 0 means no expiry.
	// cost is a hint for admission-based stores and may be ignored.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key. Removing a missing key is not an error.
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
