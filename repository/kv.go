// Package repository provides Repository adapters that are not tied to a
// particular application schema: KV stores encoded values in any provider,
// and Breaker guards another repository with a circuit breaker.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	tc "github.com/unkn0wn-root/throughcache"
	"github.com/unkn0wn-root/throughcache/codec"
	"github.com/unkn0wn-root/throughcache/internal/util"
	"github.com/unkn0wn-root/throughcache/internal/wire"
	"github.com/unkn0wn-root/throughcache/provider"
)

var (
	// ErrRejected is returned when a provider refuses a write under pressure.
	ErrRejected = errors.New("repository: write rejected by provider")
	// ErrCorrupt matches reads of bytes that are not a record written by KV.
	ErrCorrupt = wire.ErrCorrupt
)

type KVConfig[V any] struct {
	// Namespace isolates this repository's keys inside the provider. Required.
	Namespace string
	Provider  provider.Provider
	Codec     codec.Codec[V]

	// TTL bounds record age; 0 keeps records until removed. Enforced on read
	// from the record's write time as well as passed to the provider, so it
	// holds on providers without per-entry expiry.
	TTL time.Duration

	Logger tc.Logger
	Now    func() time.Time // defaults to time.Now
}

// KV is a Repository[string, V] over a byte store. Values are encoded with
// the configured codec and framed in a timestamped record envelope.
type KV[V any] struct {
	ns    string
	p     provider.Provider
	codec codec.Codec[V]
	ttl   time.Duration
	log   tc.Logger
	now   func() time.Time
}

var _ tc.Repository[string, struct{}] = (*KV[struct{}])(nil)

func NewKV[V any](cfg KVConfig[V]) (*KV[V], error) {
	if !util.ValidNamespace(cfg.Namespace) {
		return nil, fmt.Errorf("repository: invalid namespace %q", cfg.Namespace)
	}
	if cfg.Provider == nil {
		return nil, errors.New("repository: nil provider")
	}
	if cfg.Codec == nil {
		return nil, errors.New("repository: nil codec")
	}
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("repository: negative TTL %v", cfg.TTL)
	}
	r := &KV[V]{
		ns:    cfg.Namespace,
		p:     cfg.Provider,
		codec: cfg.Codec,
		ttl:   cfg.TTL,
		log:   cfg.Logger,
		now:   cfg.Now,
	}
	if r.log == nil {
		r.log = tc.NopLogger{}
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r, nil
}

func (r *KV[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	sk := util.RecordKey(r.ns, key)
	raw, ok, err := r.p.Get(ctx, sk)
	if err != nil || !ok {
		return zero, false, err
	}

	rec, err := wire.DecodeRecord(raw)
	if err != nil {
		r.log.Warn("corrupt record", logFields(r.ns, key, nil))
		return zero, false, fmt.Errorf("repository: %s/%s: %w", r.ns, key, err)
	}
	if r.expired(rec.Written) {
		// best-effort: the provider may not expire it on its own
		if err := r.p.Del(ctx, sk); err != nil {
			r.log.Debug("expired record not deleted", logFields(r.ns, key, err))
		}
		return zero, false, nil
	}

	v, err := r.codec.Decode(rec.Payload)
	if err != nil {
		r.log.Warn("record decode failed", logFields(r.ns, key, err))
		return zero, false, fmt.Errorf("repository: decode %s/%s: %w", r.ns, key, err)
	}
	return v, true, nil
}

func (r *KV[V]) Put(ctx context.Context, key string, value V) error {
	payload, err := r.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("repository: encode %s/%s: %w", r.ns, key, err)
	}
	rec := wire.EncodeRecord(r.now(), payload)
	ok, err := r.p.Set(ctx, util.RecordKey(r.ns, key), rec, int64(len(rec)), r.ttl)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRejected
	}
	return nil
}

func (r *KV[V]) Remove(ctx context.Context, key string) error {
	return r.p.Del(ctx, util.RecordKey(r.ns, key))
}

// Close closes the underlying provider.
func (r *KV[V]) Close(ctx context.Context) error { return r.p.Close(ctx) }

func (r *KV[V]) expired(written time.Time) bool {
	return r.ttl > 0 && r.now().Sub(written) >= r.ttl
}

// logFields builds the log fields shared by repository adapters.
func logFields(ns string, key any, err error) tc.Fields {
	f := tc.Fields{"namespace": ns, "key": key}
	if err != nil {
		f["err"] = err
	}
	return f
}
