package throughcache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// keyLock is a FIFO mutex: semaphore.Weighted serves blocked Acquire calls in
// arrival order, and TryAcquire never jumps ahead of queued waiters.
type keyLock struct {
	sem  *semaphore.Weighted
	refs int // holders + waiters, guarded by keyLocks.mu
}

// keyLocks hands out one lock per key and drops it when nobody references it,
// so the table only holds keys with in-flight work.
type keyLocks[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*keyLock
}

func newKeyLocks[K comparable]() *keyLocks[K] {
	return &keyLocks[K]{locks: make(map[K]*keyLock)}
}

// acquire blocks until key is free or ctx ends. waited is zero when the lock
// was free on arrival.
func (l *keyLocks[K]) acquire(ctx context.Context, key K) (release func(), waited time.Duration, err error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{sem: semaphore.NewWeighted(1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	if !kl.sem.TryAcquire(1) {
		start := time.Now()
		if err := kl.sem.Acquire(ctx, 1); err != nil {
			l.unref(key, kl)
			return nil, 0, canceledError{cause: err}
		}
		waited = time.Since(start)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			kl.sem.Release(1)
			l.unref(key, kl)
		})
	}, waited, nil
}

func (l *keyLocks[K]) unref(key K, kl *keyLock) {
	l.mu.Lock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}

// size is the number of keys with a holder or waiter.
func (l *keyLocks[K]) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

type heldCtxKey struct{}

// held is the chain of key locks owned by the goroutine running a transform.
// A ctx can outlive the transform it was handed to, so each link is marked
// released before its lock is.
type held struct {
	owner    any
	key      any
	parent   *held
	released atomic.Bool
}

func (h *held) release() { h.released.Store(true) }

func withHeld(ctx context.Context, owner, key any) (context.Context, *held) {
	parent, _ := ctx.Value(heldCtxKey{}).(*held)
	h := &held{owner: owner, key: key, parent: parent}
	return context.WithValue(ctx, heldCtxKey{}, h), h
}

func holds(ctx context.Context, owner, key any) bool {
	for h, _ := ctx.Value(heldCtxKey{}).(*held); h != nil; h = h.parent {
		if h.owner == owner && h.key == key && !h.released.Load() {
			return true
		}
	}
	return false
}
