package throughcache

import "time"

// Hooks are lightweight callbacks for cache events.
// Implementations MUST be cheap and non-blocking; they run on hot paths,
// some of them while a key lock is held.
type Hooks interface {
	// Hit and Miss are reported once per Get.
	Hit(name string)
	Miss(name string)

	// An entry was dropped to make room for another key.
	Evicted(name string, key any)

	// A synchronous repository call failed. op ∈ {"get", "put", "remove"}.
	AdapterFailed(name, op string, key any, err error)

	// A queued write-behind operation failed in the background worker.
	WriteBehindFailed(name, op string, key any, err error)

	// A caller blocked for wait on a contended key lock.
	LockWaited(name string, key any, wait time.Duration)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                                   {}
func (NopHooks) Miss(string)                                  {}
func (NopHooks) Evicted(string, any)                          {}
func (NopHooks) AdapterFailed(string, string, any, error)     {}
func (NopHooks) WriteBehindFailed(string, string, any, error) {}
func (NopHooks) LockWaited(string, any, time.Duration)        {}
