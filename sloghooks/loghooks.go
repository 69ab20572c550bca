// Package sloghooks logs cache events with log/slog. Hit/miss/evict events
// are high volume and sampled; failures are always logged. Keys are redacted
// by default since they often carry user data.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	tc "github.com/unkn0wn-root/throughcache"
)

type Options struct {
	// Sampling to avoid floods; 0 = never log, 1 = log all.
	HitMissEvery uint64
	EvictEvery   uint64
	// LockWaitAbove logs lock waits longer than this; 0 = never.
	LockWaitAbove time.Duration
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitMissCtr atomic.Uint64
	evictCtr   atomic.Uint64
}

var _ tc.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k any) string {
	s := fmt.Sprint(k)
	if h.opts.Redact != nil {
		return h.opts.Redact(s)
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 {
		return false
	}
	return n == 1 || ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(name string) {
	if h.l == nil || !sample(h.opts.HitMissEvery, &h.hitMissCtr) {
		return
	}
	h.l.Debug("throughcache.hit", "cache", name)
}

func (h *Hooks) Miss(name string) {
	if h.l == nil || !sample(h.opts.HitMissEvery, &h.hitMissCtr) {
		return
	}
	h.l.Debug("throughcache.miss", "cache", name)
}

func (h *Hooks) Evicted(name string, key any) {
	if h.l == nil || !sample(h.opts.EvictEvery, &h.evictCtr) {
		return
	}
	h.l.Debug("throughcache.evicted",
		"cache", name,
		"key", h.redact(key))
}

func (h *Hooks) AdapterFailed(name, op string, key any, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("throughcache.adapter_failed",
		"cache", name,
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) WriteBehindFailed(name, op string, key any, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("throughcache.write_behind_failed",
		"cache", name,
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) LockWaited(name string, key any, wait time.Duration) {
	if h.l == nil || h.opts.LockWaitAbove <= 0 || wait <= h.opts.LockWaitAbove {
		return
	}
	h.l.Info("throughcache.lock_contended",
		"cache", name,
		"key", h.redact(key),
		"wait", wait)
}
