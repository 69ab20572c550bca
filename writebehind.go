package throughcache

import (
	"context"
	"sync"
)

const (
	opGet    = "get"
	opPut    = "put"
	opRemove = "remove"
)

// pendingWrite is one repository mutation waiting for the worker.
type pendingWrite[K comparable, V any] struct {
	ctx   context.Context
	op    string
	repo  Repository[K, V]
	key   K
	value V
}

// backlog counts a key's writes that are queued or being applied. drained is
// closed when the count reaches zero.
type backlog struct {
	n       int
	drained chan struct{}
}

// writeBehind applies queued writes with a single worker, so writes reach each
// repository in the order they were enqueued. The queue is bounded; enqueue
// blocks when it is full instead of dropping writes.
type writeBehind[K comparable, V any] struct {
	q     chan pendingWrite[K, V]
	done  chan struct{}
	stop  chan struct{} // closed first, releases enqueuers blocked on a full queue
	onErr func(op string, key K, err error)

	mu       sync.RWMutex
	closed   bool
	stopOnce sync.Once

	keysMu sync.Mutex
	keys   map[K]*backlog
}

func newWriteBehind[K comparable, V any](size int, onErr func(op string, key K, err error)) *writeBehind[K, V] {
	w := &writeBehind[K, V]{
		q:     make(chan pendingWrite[K, V], size),
		done:  make(chan struct{}),
		stop:  make(chan struct{}),
		onErr: onErr,
		keys:  make(map[K]*backlog),
	}
	go w.worker()
	return w
}

// enqueue hands the write to the worker. The write runs with ctx's values but
// not its cancellation: once queued, a write is applied even if the caller
// has gone away.
func (w *writeBehind[K, V]) enqueue(ctx context.Context, pw pendingWrite[K, V]) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrClosed
	}
	pw.ctx = context.WithoutCancel(ctx)
	w.track(pw.key)
	select {
	case w.q <- pw:
		return nil
	case <-w.stop:
		w.untrack(pw.key)
		return ErrClosed
	case <-ctx.Done():
		w.untrack(pw.key)
		return canceledError{cause: ctx.Err()}
	}
}

// settle blocks until every write queued for key has been applied, or ctx
// ends. Callers hold the key lock, so no new write for key can join meanwhile.
func (w *writeBehind[K, V]) settle(ctx context.Context, key K) error {
	w.keysMu.Lock()
	b, ok := w.keys[key]
	w.keysMu.Unlock()
	if !ok {
		return nil
	}
	select {
	case <-b.drained:
		return nil
	case <-ctx.Done():
		return canceledError{cause: ctx.Err()}
	}
}

func (w *writeBehind[K, V]) track(key K) {
	w.keysMu.Lock()
	b, ok := w.keys[key]
	if !ok {
		b = &backlog{drained: make(chan struct{})}
		w.keys[key] = b
	}
	b.n++
	w.keysMu.Unlock()
}

func (w *writeBehind[K, V]) untrack(key K) {
	w.keysMu.Lock()
	if b, ok := w.keys[key]; ok {
		b.n--
		if b.n == 0 {
			delete(w.keys, key)
			close(b.drained)
		}
	}
	w.keysMu.Unlock()
}

func (w *writeBehind[K, V]) worker() {
	defer close(w.done)
	for pw := range w.q {
		var err error
		switch pw.op {
		case opPut:
			err = pw.repo.Put(pw.ctx, pw.key, pw.value)
		case opRemove:
			err = pw.repo.Remove(pw.ctx, pw.key)
		}
		if err != nil {
			w.onErr(pw.op, pw.key, err)
		}
		w.untrack(pw.key)
	}
}

// close stops intake and waits for queued writes to drain or ctx to end.
// The worker keeps draining in the background if ctx ends first.
func (w *writeBehind[K, V]) close(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.stop) })
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.q)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return canceledError{cause: ctx.Err()}
	}
}

// pending is the number of queued writes not yet picked up by the worker.
func (w *writeBehind[K, V]) pending() int { return len(w.q) }

// inFlight is the number of keys with writes not yet applied.
func (w *writeBehind[K, V]) inFlight() int {
	w.keysMu.Lock()
	defer w.keysMu.Unlock()
	return len(w.keys)
}
