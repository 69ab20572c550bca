// Package promhook exports cache events as Prometheus metrics.
package promhook

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	tc "github.com/unkn0wn-root/throughcache"
)

// Hooks implements throughcache.Hooks on Prometheus collectors. All series
// carry a "cache" label with the cache's Options.Name.
type Hooks struct {
	hits                *prometheus.CounterVec
	misses              *prometheus.CounterVec
	evictions           *prometheus.CounterVec
	adapterFailures     *prometheus.CounterVec
	writeBehindFailures *prometheus.CounterVec
	lockWait            *prometheus.HistogramVec
}

var _ tc.Hooks = (*Hooks)(nil)

// New registers the collectors on reg under namespace (default
// "throughcache"). Collectors already registered by an earlier New on the
// same registry are reused, so several caches can share one registry.
func New(reg prometheus.Registerer, namespace string) (*Hooks, error) {
	if reg == nil {
		return nil, errors.New("promhook: nil registerer")
	}
	if namespace == "" {
		namespace = "throughcache"
	}
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, append([]string{"cache"}, labels...))
	}

	h := &Hooks{
		hits:                counter("hits_total", "Cache lookups served from memory."),
		misses:              counter("misses_total", "Cache lookups not found in memory."),
		evictions:           counter("evictions_total", "Entries evicted to stay within MaxSize."),
		adapterFailures:     counter("adapter_failures_total", "Failed synchronous repository calls.", "op"),
		writeBehindFailures: counter("write_behind_failures_total", "Failed queued repository writes.", "op"),
		lockWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for a contended key lock.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"cache"}),
	}

	var err error
	if h.hits, err = register(reg, h.hits); err != nil {
		return nil, err
	}
	if h.misses, err = register(reg, h.misses); err != nil {
		return nil, err
	}
	if h.evictions, err = register(reg, h.evictions); err != nil {
		return nil, err
	}
	if h.adapterFailures, err = register(reg, h.adapterFailures); err != nil {
		return nil, err
	}
	if h.writeBehindFailures, err = register(reg, h.writeBehindFailures); err != nil {
		return nil, err
	}
	if h.lockWait, err = register(reg, h.lockWait); err != nil {
		return nil, err
	}
	return h, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Init creates the zero-valued series for name so they are scraped before
// the first event.
func (h *Hooks) Init(name string) {
	h.hits.WithLabelValues(name)
	h.misses.WithLabelValues(name)
	h.evictions.WithLabelValues(name)
	for _, op := range []string{"get", "put", "remove"} {
		h.adapterFailures.WithLabelValues(name, op)
	}
	for _, op := range []string{"put", "remove"} {
		h.writeBehindFailures.WithLabelValues(name, op)
	}
}

func (h *Hooks) Hit(name string)            { h.hits.WithLabelValues(name).Inc() }
func (h *Hooks) Miss(name string)           { h.misses.WithLabelValues(name).Inc() }
func (h *Hooks) Evicted(name string, _ any) { h.evictions.WithLabelValues(name).Inc() }

func (h *Hooks) AdapterFailed(name, op string, _ any, _ error) {
	h.adapterFailures.WithLabelValues(name, op).Inc()
}

func (h *Hooks) WriteBehindFailed(name, op string, _ any, _ error) {
	h.writeBehindFailures.WithLabelValues(name, op).Inc()
}

func (h *Hooks) LockWaited(name string, _ any, wait time.Duration) {
	h.lockWait.WithLabelValues(name).Observe(wait.Seconds())
}
