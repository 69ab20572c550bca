package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	tc "github.com/unkn0wn-root/throughcache"
)

// ErrOpen matches calls refused because the breaker is open or half-open and
// already probing.
var ErrOpen = errors.New("repository: circuit open")

type BreakerConfig struct {
	Name string
	// Failures is the number of consecutive failed calls that opens the
	// breaker. 0 => 5.
	Failures uint32
	// Timeout is how long the breaker stays open before letting a probe
	// through. 0 => 30s.
	Timeout time.Duration
	// Probes is the number of calls allowed while half-open. 0 => 1.
	Probes uint32

	Logger tc.Logger
}

// Breaker wraps a Repository so a failing backend is cut off instead of
// being hammered by every cache miss and write. Absent keys and canceled
// contexts are not failures.
type Breaker[K comparable, V any] struct {
	next tc.Repository[K, V]
	cb   *gobreaker.CircuitBreaker
}

var _ tc.Repository[string, struct{}] = (*Breaker[string, struct{}])(nil)

func WithBreaker[K comparable, V any](next tc.Repository[K, V], cfg BreakerConfig) *Breaker[K, V] {
	log := cfg.Logger
	if log == nil {
		log = tc.NopLogger{}
	}
	failures := cfg.Failures
	if failures == 0 {
		failures = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.Probes,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			f := tc.Fields{"breaker": name, "from": from.String(), "to": to.String()}
			if to == gobreaker.StateOpen {
				log.Warn("repository breaker opened", f)
				return
			}
			log.Info("repository breaker state change", f)
		},
	}
	return &Breaker[K, V]{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

type getResult[V any] struct {
	v  V
	ok bool
}

func (b *Breaker[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		v, ok, err := b.next.Get(ctx, key)
		return getResult[V]{v: v, ok: ok}, err
	})
	if err != nil {
		var zero V
		return zero, false, b.refused(err)
	}
	r := res.(getResult[V])
	return r.v, r.ok, nil
}

func (b *Breaker[K, V]) Put(ctx context.Context, key K, value V) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Put(ctx, key, value)
	})
	return b.refused(err)
}

func (b *Breaker[K, V]) Remove(ctx context.Context, key K) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Remove(ctx, key)
	})
	return b.refused(err)
}

// State reports the breaker state: closed, half-open or open.
func (b *Breaker[K, V]) State() gobreaker.State { return b.cb.State() }

func (b *Breaker[K, V]) refused(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrOpen, err)
	}
	return err
}
