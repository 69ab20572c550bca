package throughcache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestKeyLocksReleaseDropsEntry(t *testing.T) {
	l := newKeyLocks[string]()
	release, waited, err := l.acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if waited != 0 {
		t.Fatalf("uncontended acquire reported wait %v", waited)
	}
	if l.size() != 1 {
		t.Fatalf("size=%d want 1", l.size())
	}
	release()
	release() // second call is a no-op
	if l.size() != 0 {
		t.Fatalf("size=%d want 0 after release", l.size())
	}
}

func TestKeyLocksWaiterReportsWait(t *testing.T) {
	l := newKeyLocks[string]()
	release, _, _ := l.acquire(context.Background(), "a")

	got := make(chan time.Duration, 1)
	go func() {
		r, waited, err := l.acquire(context.Background(), "a")
		if err != nil {
			t.Errorf("acquire: %v", err)
			got <- 0
			return
		}
		r()
		got <- waited
	}()

	waitFor(t, func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.locks["a"].refs == 2
	})
	time.Sleep(5 * time.Millisecond)
	release()

	if w := <-got; w <= 0 {
		t.Fatalf("waiter should report a positive wait, got %v", w)
	}
	if l.size() != 0 {
		t.Fatalf("lock table not empty: %d", l.size())
	}
}

func TestKeyLocksCanceledWaiterUnrefs(t *testing.T) {
	l := newKeyLocks[string]()
	release, _, _ := l.acquire(context.Background(), "a")
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := l.acquire(ctx, "a")
	if !errors.Is(err, ErrCanceled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}

	l.mu.Lock()
	refs := l.locks["a"].refs
	l.mu.Unlock()
	if refs != 1 {
		t.Fatalf("canceled waiter left refs=%d want 1", refs)
	}
}

func TestHeldChain(t *testing.T) {
	ownerA, ownerB := newKeyLocks[string](), newKeyLocks[string]()
	ctx, _ := withHeld(context.Background(), ownerA, "x")
	ctx, hy := withHeld(ctx, ownerA, "y")

	if !holds(ctx, ownerA, "x") || !holds(ctx, ownerA, "y") {
		t.Fatalf("chain should hold x and y for owner A")
	}
	if holds(ctx, ownerB, "x") {
		t.Fatalf("locks from another cache must not match")
	}
	if holds(context.Background(), ownerA, "x") {
		t.Fatalf("bare context holds nothing")
	}

	hy.release()
	if holds(ctx, ownerA, "y") {
		t.Fatalf("released link still reported as held")
	}
	if !holds(ctx, ownerA, "x") {
		t.Fatalf("releasing y must not affect x")
	}
}
