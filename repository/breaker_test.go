package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

type flakyRepo struct {
	calls atomic.Int32
	err   atomic.Value // error
}

func (r *flakyRepo) fail(err error) { r.err.Store(&err) }

func (r *flakyRepo) result() error {
	r.calls.Add(1)
	if p, _ := r.err.Load().(*error); p != nil {
		return *p
	}
	return nil
}

func (r *flakyRepo) Get(context.Context, string) (int, bool, error) {
	if err := r.result(); err != nil {
		return 0, false, err
	}
	return 0, false, nil
}
func (r *flakyRepo) Put(context.Context, string, int) error { return r.result() }
func (r *flakyRepo) Remove(context.Context, string) error   { return r.result() }

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	repo := &flakyRepo{}
	boom := errors.New("connection reset")
	repo.fail(boom)
	b := WithBreaker[string, int](repo, BreakerConfig{Name: "books", Failures: 3, Timeout: time.Hour})

	for i := 0; i < 3; i++ {
		if err := b.Put(ctx, "k", 1); !errors.Is(err, boom) {
			t.Fatalf("call %d: err=%v want backend error", i, err)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state=%v want open", b.State())
	}

	_, _, err := b.Get(ctx, "k")
	if !errors.Is(err, ErrOpen) || !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("open breaker err=%v", err)
	}
	if n := repo.calls.Load(); n != 3 {
		t.Fatalf("open breaker reached the backend: calls=%d", n)
	}
}

func TestBreakerIgnoresMissesAndCancellation(t *testing.T) {
	ctx := context.Background()
	repo := &flakyRepo{}
	b := WithBreaker[string, int](repo, BreakerConfig{Failures: 1, Timeout: time.Hour})

	if _, ok, err := b.Get(ctx, "absent"); err != nil || ok {
		t.Fatalf("miss: ok=%v err=%v", ok, err)
	}
	repo.fail(context.Canceled)
	_ = b.Remove(ctx, "k")
	if b.State() != gobreaker.StateClosed {
		t.Fatalf("misses and cancellation must not trip the breaker, state=%v", b.State())
	}
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	ctx := context.Background()
	repo := &flakyRepo{}
	repo.fail(errors.New("down"))
	b := WithBreaker[string, int](repo, BreakerConfig{Failures: 1, Timeout: 10 * time.Millisecond})

	_ = b.Put(ctx, "k", 1)
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state=%v want open", b.State())
	}

	repo.fail(nil)
	time.Sleep(20 * time.Millisecond)
	if err := b.Put(ctx, "k", 1); err != nil {
		t.Fatalf("probe should pass: %v", err)
	}
	if b.State() != gobreaker.StateClosed {
		t.Fatalf("state=%v want closed after a successful probe", b.State())
	}
}
