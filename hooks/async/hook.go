// Package asynchook moves Hooks calls off the caller's goroutine. Cache hooks
// run on the request path, some while a key lock is held; wrap slow sinks
// (network exporters, verbose loggers) with this.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{HitMissEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := throughcache.New[string, bookstore.Book](throughcache.Options[bookstore.Book]{
//	    Config: throughcache.DefaultConfig(),
//	    Hooks:  hooks,
//	})
package asynchook

import (
	"sync"
	"sync/atomic"
	"time"

	tc "github.com/unkn0wn-root/throughcache"
)

// Hooks queues events for a pool of workers. Events are dropped, never
// blocked on, when the queue is full.
type Hooks struct {
	inner   tc.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ tc.Hooks = (*Hooks)(nil)

func New(inner tc.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close delivers queued events and stops the workers. Events sent after
// Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped is the number of events lost to a full queue or a closed hook.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Hit(name string)              { h.try(func() { h.inner.Hit(name) }) }
func (h *Hooks) Miss(name string)             { h.try(func() { h.inner.Miss(name) }) }
func (h *Hooks) Evicted(name string, key any) { h.try(func() { h.inner.Evicted(name, key) }) }
func (h *Hooks) AdapterFailed(name, op string, key any, err error) {
	h.try(func() { h.inner.AdapterFailed(name, op, key, err) })
}
func (h *Hooks) WriteBehindFailed(name, op string, key any, err error) {
	h.try(func() { h.inner.WriteBehindFailed(name, op, key, err) })
}
func (h *Hooks) LockWaited(name string, key any, wait time.Duration) {
	h.try(func() { h.inner.LockWaited(name, key, wait) })
}
