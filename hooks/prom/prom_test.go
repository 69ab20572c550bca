package promhook

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	tc "github.com/unkn0wn-root/throughcache"
)

type nullRepo struct{ putErr error }

func (nullRepo) Get(context.Context, string) (int, bool, error) { return 0, false, nil }
func (r nullRepo) Put(context.Context, string, int) error       { return r.putErr }
func (nullRepo) Remove(context.Context, string) error           { return nil }

func TestHooksCountCacheEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := New(reg, "")
	if err != nil {
		t.Fatal(err)
	}

	cfg := tc.DefaultConfig()
	cfg.MaxSize = 1
	cc, err := tc.New[string, int](tc.Options[int]{Config: cfg, Name: "books", Hooks: h})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	defer cc.Close(ctx)

	_, _ = cc.Put(ctx, nullRepo{}, "a", 1)
	_, _, _ = cc.Get(ctx, nullRepo{}, "a")
	_, _, _ = cc.Get(ctx, nullRepo{}, "b")
	_, _ = cc.Put(ctx, nullRepo{putErr: errors.New("down")}, "c", 3)

	if v := testutil.ToFloat64(h.hits.WithLabelValues("books")); v != 1 {
		t.Fatalf("hits=%v want 1", v)
	}
	if v := testutil.ToFloat64(h.misses.WithLabelValues("books")); v != 1 {
		t.Fatalf("misses=%v want 1", v)
	}
	if v := testutil.ToFloat64(h.evictions.WithLabelValues("books")); v != 1 {
		t.Fatalf("evictions=%v want 1", v)
	}
	if v := testutil.ToFloat64(h.adapterFailures.WithLabelValues("books", "put")); v != 1 {
		t.Fatalf("adapter failures=%v want 1", v)
	}
}

func TestLockWaitHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, _ := New(reg, "app")
	h.LockWaited("books", "k", 3*time.Millisecond)

	if n := testutil.CollectAndCount(h.lockWait, "app_lock_wait_seconds"); n != 1 {
		t.Fatalf("series=%d want 1", n)
	}
}

func TestNewReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New(reg, "")
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(reg, "")
	if err != nil {
		t.Fatalf("second New on the same registry: %v", err)
	}
	a.Hit("x")
	b.Hit("x")
	if v := testutil.ToFloat64(a.hits.WithLabelValues("x")); v != 2 {
		t.Fatalf("shared counter=%v want 2", v)
	}
}

func TestInitExposesZeroSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, _ := New(reg, "")
	h.Init("books")

	expected := `
# HELP throughcache_misses_total Cache lookups not found in memory.
# TYPE throughcache_misses_total counter
throughcache_misses_total{cache="books"} 0
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "throughcache_misses_total"); err != nil {
		t.Fatal(err)
	}
}

func TestNewNilRegisterer(t *testing.T) {
	if _, err := New(nil, ""); err == nil {
		t.Fatalf("expected error")
	}
}
