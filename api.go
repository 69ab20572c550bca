package throughcache

import (
	"context"
)

// Repository is the uniform contract a backing store exposes to the cache.
// Implementations must be safe for concurrent use.
type Repository[K comparable, V any] interface {
	// Get returns (value, true, nil) on hit and (zero, false, nil) when the
	// store has nothing for key. Any store failure is returned as err.
	Get(ctx context.Context, key K) (V, bool, error)
	// Put creates or replaces the value stored under key.
	Put(ctx context.Context, key K, value V) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key K) error
}

// TransformFunc computes a new value for key from the caller supplied input and
// is responsible for persisting it through repo. It runs under the key lock.
type TransformFunc[K comparable, V any] func(ctx context.Context, repo Repository[K, V], key K, value V) (V, error)

// Cache is the policy-driven cache-aside API. The repository is passed on every
// call instead of being bound at construction.
type Cache[K comparable, V any] interface {
	// Get serves key from memory, falling back to repo on a miss when the
	// read policy is ReadThrough. Absent values are never cached.
	Get(ctx context.Context, repo Repository[K, V], key K) (v V, ok bool, err error)
	// Put stores value in memory and mirrors it to repo per the write policy.
	Put(ctx context.Context, repo Repository[K, V], key K, value V) (V, error)
	// Remove drops key from memory and then from repo.
	Remove(ctx context.Context, repo Repository[K, V], key K) error
	// Execute runs fn for key while holding the key lock and caches its result.
	Execute(ctx context.Context, repo Repository[K, V], key K, input V, fn TransformFunc[K, V]) (V, error)

	Len() int
	Clear()
	Stats() Stats
	Config() Config
	Close(context.Context) error
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
}

// Options tune a Cache. Only Config is required; DefaultConfig is a sane start.
type Options[V any] struct {
	Config Config

	Name   string // label for logs and hooks; "" => "default"
	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks

	// Clone, when set, copies values on their way into and out of the cache
	// so callers never share memory with cached entries.
	Clone func(V) V
}

func New[K comparable, V any](opts Options[V]) (Cache[K, V], error) {
	return newCache[K, V](opts)
}
