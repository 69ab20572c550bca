package throughcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/throughcache/eviction"
)

var errNilTransform = errors.New("throughcache: nil transform")

type entry[K comparable, V any] struct {
	key   K
	value V
}

type cache[K comparable, V any] struct {
	name  string
	cfg   Config
	log   Logger
	hooks Hooks
	clone func(V) V

	// mu guards entries and policy together; never held across repository I/O.
	mu      sync.Mutex
	entries map[K]*entry[K, V]
	policy  eviction.Policy[K]

	locks *keyLocks[K]
	wb    *writeBehind[K, V] // nil unless WritePolicy is WriteBehind

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func newCache[K comparable, V any](opts Options[V]) (*cache[K, V], error) {
	cfg := opts.Config.normalized()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	policy, err := eviction.New[K](cfg.EvictionStrategy)
	if err != nil {
		return nil, &ConfigError{Field: "evictionStrategy", Value: cfg.EvictionStrategy}
	}

	c := &cache[K, V]{
		name:    coalesce(opts.Name, "default"),
		cfg:     cfg,
		entries: make(map[K]*entry[K, V], cfg.MaxSize),
		policy:  policy,
		locks:   newKeyLocks[K](),
	}
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	if opts.Clone != nil {
		c.clone = opts.Clone
	} else {
		c.clone = identity[V]
	}

	if cfg.WritePolicy == WriteBehind {
		c.wb = newWriteBehind[K, V](cfg.WriteBehindQueue, c.writeBehindFailed)
	}

	c.log.Info("cache initialized", Fields{
		"name":     c.name,
		"maxSize":  cfg.MaxSize,
		"eviction": cfg.EvictionStrategy,
		"read":     cfg.ReadPolicy,
		"write":    cfg.WritePolicy,
	})
	return c, nil
}

func (c *cache[K, V]) Get(ctx context.Context, repo Repository[K, V], key K) (V, bool, error) {
	var zero V
	if c.closed.Load() {
		return zero, false, ErrClosed
	}
	if v, ok := c.lookup(key); ok {
		c.hits.Add(1)
		c.hooks.Hit(c.name)
		return v, true, nil
	}
	c.misses.Add(1)
	c.hooks.Miss(c.name)
	if c.cfg.ReadPolicy == ReadOnly {
		return zero, false, nil
	}

	release, err := c.lock(ctx, key)
	if err != nil {
		return zero, false, err
	}
	defer release()

	// a concurrent loader or writer may have filled key while we waited
	if v, ok := c.lookup(key); ok {
		return v, true, nil
	}
	// queued writes for key must land first or the repository read is stale
	if err := c.settle(ctx, key); err != nil {
		return zero, false, err
	}

	v, ok, err := repo.Get(ctx, key)
	if err != nil {
		return zero, false, c.adapterFailed(opGet, key, err)
	}
	if !ok {
		return zero, false, nil
	}
	c.store(key, v)
	return c.clone(v), true, nil
}

func (c *cache[K, V]) Put(ctx context.Context, repo Repository[K, V], key K, value V) (V, error) {
	if c.closed.Load() {
		return value, ErrClosed
	}
	release, err := c.lock(ctx, key)
	if err != nil {
		return value, err
	}
	defer release()

	c.store(key, value)
	// the entry stays in memory even when the repository write fails
	if err := c.persist(ctx, repo, opPut, key, value); err != nil {
		return value, err
	}
	return value, nil
}

func (c *cache[K, V]) Remove(ctx context.Context, repo Repository[K, V], key K) error {
	if c.closed.Load() {
		return ErrClosed
	}
	release, err := c.lock(ctx, key)
	if err != nil {
		return err
	}
	defer release()

	c.drop(key)
	var zero V
	return c.persist(ctx, repo, opRemove, key, zero)
}

func (c *cache[K, V]) Execute(ctx context.Context, repo Repository[K, V], key K, input V, fn TransformFunc[K, V]) (V, error) {
	var zero V
	if c.closed.Load() {
		return zero, ErrClosed
	}
	if fn == nil {
		return zero, errNilTransform
	}
	if holds(ctx, c.locks, key) {
		return zero, ErrConcurrentModification
	}
	release, err := c.lock(ctx, key)
	if err != nil {
		return zero, err
	}
	defer release()
	// the transform may write through repo directly, so earlier queued writes
	// for key are applied before it runs
	if err := c.settle(ctx, key); err != nil {
		return zero, err
	}

	hctx, h := withHeld(ctx, c.locks, key)
	defer h.release()
	out, err := fn(hctx, repo, key, c.clone(input))
	if err != nil {
		return zero, err
	}
	c.store(key, out)
	return c.clone(out), nil
}

func (c *cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry from memory. Repositories are not touched.
func (c *cache[K, V]) Clear() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[K]*entry[K, V], c.cfg.MaxSize)
	c.policy.Reset()
	c.mu.Unlock()
	c.log.Debug("cache cleared", Fields{"name": c.name, "removed": n})
}

func (c *cache[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.Len(),
	}
}

func (c *cache[K, V]) Config() Config { return c.cfg }

// Close rejects new operations, drains pending write-behind work (bounded by
// ctx) and releases memory. Safe to call more than once.
func (c *cache[K, V]) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.wb != nil {
			c.closeErr = c.wb.close(ctx)
		}
		c.Clear()
		c.log.Info("cache closed", Fields{"name": c.name})
	})
	return c.closeErr
}

// lock takes the key lock unless ctx already carries it from Execute.
func (c *cache[K, V]) lock(ctx context.Context, key K) (func(), error) {
	if holds(ctx, c.locks, key) {
		return func() {}, nil
	}
	release, waited, err := c.locks.acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	if waited > 0 {
		c.hooks.LockWaited(c.name, key, waited)
	}
	return release, nil
}

// settle waits for write-behind work queued for key. The caller holds key.
func (c *cache[K, V]) settle(ctx context.Context, key K) error {
	if c.wb == nil {
		return nil
	}
	return c.wb.settle(ctx, key)
}

// lookup returns a copy of the cached value and refreshes its recency.
func (c *cache[K, V]) lookup(key K) (V, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	c.policy.OnGet(key)
	v := e.value
	c.mu.Unlock()
	return c.clone(v), true
}

// store inserts or overwrites key, evicting first when a new key would exceed MaxSize.
func (c *cache[K, V]) store(key K, value V) {
	value = c.clone(value)

	var evicted []K
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.value = value
		c.policy.OnPut(key)
		c.mu.Unlock()
		return
	}
	for len(c.entries) >= c.cfg.MaxSize {
		victim, ok := c.policy.Evict()
		if !ok {
			break
		}
		delete(c.entries, victim)
		evicted = append(evicted, victim)
	}
	c.entries[key] = &entry[K, V]{key: key, value: value}
	c.policy.OnPut(key)
	c.mu.Unlock()

	for _, k := range evicted {
		c.evictions.Add(1)
		c.hooks.Evicted(c.name, k)
		c.log.Debug("cache evicted entry", Fields{"name": c.name, "key": k})
	}
}

func (c *cache[K, V]) drop(key K) {
	c.mu.Lock()
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.policy.Remove(key)
	}
	c.mu.Unlock()
}

// persist mirrors a mutation to repo according to the write policy.
func (c *cache[K, V]) persist(ctx context.Context, repo Repository[K, V], op string, key K, value V) error {
	if c.wb != nil {
		return c.wb.enqueue(ctx, pendingWrite[K, V]{op: op, repo: repo, key: key, value: value})
	}
	var err error
	switch op {
	case opPut:
		err = repo.Put(ctx, key, value)
	case opRemove:
		err = repo.Remove(ctx, key)
	}
	if err != nil {
		return c.adapterFailed(op, key, err)
	}
	return nil
}

func (c *cache[K, V]) adapterFailed(op string, key K, err error) error {
	c.hooks.AdapterFailed(c.name, op, key, err)
	c.log.Warn("repository call failed", Fields{"name": c.name, "op": op, "key": key, "err": err})
	return adapterErr(op, key, err)
}

func (c *cache[K, V]) writeBehindFailed(op string, key K, err error) {
	c.hooks.WriteBehindFailed(c.name, op, key, err)
	c.log.Error("write-behind failed", Fields{"name": c.name, "op": op, "key": key, "err": err})
}
