package bigcache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestBigcacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, Config{LifeWindow: time.Minute, Shards: 16, MaxEntriesInWindow: 100})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = p.Close(ctx) })

	if _, ok, err := p.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("Get on empty: ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, "k", []byte("v1"), 0, time.Second); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	b, ok, err := p.Get(ctx, "k")
	if err != nil || !ok || !bytes.Equal(b, []byte("v1")) {
		t.Fatalf("Get: b=%q ok=%v err=%v", b, ok, err)
	}
	if p.Len() != 1 {
		t.Fatalf("Len=%d want 1", p.Len())
	}

	if err := p.Del(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del of a missing key: %v", err)
	}
}

func TestBigcacheRejectsZeroLifeWindow(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for zero LifeWindow")
	}
}
