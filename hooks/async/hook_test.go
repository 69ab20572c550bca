package asynchook

import (
	"sync"
	"testing"
	"time"

	tc "github.com/unkn0wn-root/throughcache"
)

type countHooks struct {
	tc.NopHooks
	mu      sync.Mutex
	hits    int
	evicted []any
	gate    chan struct{}
}

func (c *countHooks) Hit(string) {
	if c.gate != nil {
		<-c.gate
	}
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *countHooks) Evicted(_ string, k any) {
	c.mu.Lock()
	c.evicted = append(c.evicted, k)
	c.mu.Unlock()
}

func TestAsyncDeliversOnClose(t *testing.T) {
	inner := &countHooks{}
	h := New(inner, 2, 16)
	for i := 0; i < 10; i++ {
		h.Hit("c")
	}
	h.Evicted("c", "k")
	h.Close()

	if inner.hits != 10 || len(inner.evicted) != 1 {
		t.Fatalf("hits=%d evicted=%v", inner.hits, inner.evicted)
	}
	if h.Dropped() != 0 {
		t.Fatalf("dropped=%d want 0", h.Dropped())
	}
}

func TestAsyncDropsWhenFull(t *testing.T) {
	inner := &countHooks{gate: make(chan struct{})}
	h := New(inner, 1, 1)

	h.Hit("c") // picked up by the worker, blocks on gate
	time.Sleep(10 * time.Millisecond)
	h.Hit("c") // fills the queue

	done := make(chan struct{})
	go func() {
		h.Hit("c") // must not block
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("hook call blocked on a full queue")
	}
	if h.Dropped() == 0 {
		t.Fatalf("expected a dropped event")
	}
	close(inner.gate)
	h.Close()
}

func TestAsyncAfterClose(t *testing.T) {
	h := New(&countHooks{}, 1, 1)
	h.Close()
	h.Close()
	h.Miss("c") // must not panic on the closed queue
	if h.Dropped() != 1 {
		t.Fatalf("dropped=%d want 1", h.Dropped())
	}
}
