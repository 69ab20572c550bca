package throughcache

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by callers that require a value the repository does not have.
	ErrNotFound = errors.New("throughcache: not found")
	// ErrAdapterFailure matches every *AdapterError.
	ErrAdapterFailure = errors.New("throughcache: adapter failure")
	// ErrConcurrentModification is returned when Execute is re-entered for a key
	// whose lock the calling transform already holds.
	ErrConcurrentModification = errors.New("throughcache: concurrent modification")
	// ErrInvalidConfiguration matches every *ConfigError.
	ErrInvalidConfiguration = errors.New("throughcache: invalid configuration")
	// ErrCanceled is returned when a context ends while waiting on a key lock
	// or on the write-behind queue.
	ErrCanceled = errors.New("throughcache: operation canceled")
	// ErrClosed is returned by operations on a closed cache.
	ErrClosed = errors.New("throughcache: cache closed")
)

// AdapterError reports a failed repository call.
type AdapterError struct {
	Op  string // "get", "put" or "remove"
	Key any
	Err error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("throughcache: repository %s %v: %v", e.Op, e.Key, e.Err)
}

func (e *AdapterError) Unwrap() []error {
	return []error{ErrAdapterFailure, e.Err}
}

// ConfigError reports a rejected configuration value.
type ConfigError struct {
	Field string
	Value any
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("throughcache: invalid configuration: %s=%v", e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

type canceledError struct{ cause error }

func (e canceledError) Error() string { return "throughcache: operation canceled: " + e.cause.Error() }

func (e canceledError) Unwrap() []error { return []error{ErrCanceled, e.cause} }

func adapterErr(op string, key any, err error) error {
	if err == nil {
		return nil
	}
	return &AdapterError{Op: op, Key: key, Err: err}
}
