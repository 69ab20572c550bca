// Package ristretto is an in-process Provider over dgraph-io/ristretto.
//
// Ristretto applies writes asynchronously and may refuse them under its
// admission policy. With Config.Sync set, Set waits for the write to be
// applied and reports a refused write as ok=false, which repository.KV turns
// into ErrRejected. Without it a successful Set is only a hint.
package ristretto

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	rc "github.com/dgraph-io/ristretto"

	pr "github.com/unkn0wn-root/throughcache/provider"
)

type Provider struct {
	c      *rc.Cache
	sync   bool
	closed atomic.Bool
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
	// Sync makes Set wait until the write is visible to Get.
	Sync bool
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{c: c, sync: cfg.Sync}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	if p.closed.Load() {
		return nil, false, pr.ErrClosed
	}
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		p.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, cost int64, ttl time.Duration) (bool, error) {
	if p.closed.Load() {
		return false, pr.ErrClosed
	}
	if ttl < 0 {
		ttl = 0
	}
	if !p.c.SetWithTTL(key, value, cost, ttl) {
		return false, nil
	}
	if !p.sync {
		return true, nil
	}
	p.c.Wait()
	// admitted into the buffer but dropped by the policy
	_, ok := p.c.Get(key)
	return ok, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	if p.closed.Load() {
		return pr.ErrClosed
	}
	p.c.Del(key)
	if p.sync {
		p.c.Wait()
	}
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	if p.closed.Swap(true) {
		return nil
	}
	p.c.Wait()
	p.c.Close()
	return nil
}

// Metrics exposes ristretto's counters; nil unless Config.Metrics is set.
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
