// Package eviction decides which resident key leaves the cache when it is full.
//
// Policies only track keys; the cache owns the values. Policies are not safe
// for concurrent use: the cache calls them while holding its own lock.
package eviction

import (
	"errors"
	"fmt"
)

// Strategy names a supported eviction policy.
type Strategy string

const (
	// LRU evicts the key with the oldest access (read hit or write).
	LRU Strategy = "LRU"
	// FIFO evicts the oldest inserted key regardless of access.
	FIFO Strategy = "FIFO"
)

var ErrUnknownStrategy = errors.New("eviction: unknown strategy")

// Policy tracks resident keys and picks eviction victims.
type Policy[K comparable] interface {
	// OnGet records a read hit on a resident key.
	OnGet(K)
	// OnPut records a write. New keys start being tracked; for known keys
	// the policy decides whether a rewrite counts as an access.
	OnPut(K)
	// Remove forgets a key that left the cache for any reason other than Evict.
	Remove(K)
	// Evict picks a victim and stops tracking it. ok is false when empty.
	Evict() (key K, ok bool)
	Len() int
	// Reset forgets every key.
	Reset()
}

// New builds the policy for s. The empty strategy means LRU.
func New[K comparable](s Strategy) (Policy[K], error) {
	switch s {
	case LRU, "":
		return newLRU[K](), nil
	case FIFO:
		return newFIFO[K](), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, string(s))
	}
}

// Valid reports whether New accepts s.
func (s Strategy) Valid() bool {
	return s == LRU || s == FIFO || s == ""
}
