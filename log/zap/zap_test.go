package zap

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	tc "github.com/unkn0wn-root/throughcache"
)

func TestZapLoggerLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	l.Debug("cache evicted entry", tc.Fields{"name": "books", "key": "k1"})
	l.Warn("repository call failed", tc.Fields{"op": "put", "err": errors.New("down")})
	l.Info("no fields", nil)

	entries := logs.AllUntimed()
	if len(entries) != 3 {
		t.Fatalf("entries=%d want 3", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[0].ContextMap()["key"] != "k1" {
		t.Fatalf("debug entry=%+v", entries[0])
	}
	if entries[1].Level != zapcore.WarnLevel || entries[1].ContextMap()["err"] != "down" {
		t.Fatalf("warn entry=%+v", entries[1].ContextMap())
	}
	if len(entries[2].Context) != 0 {
		t.Fatalf("nil fields produced %v", entries[2].Context)
	}
}

func TestZapFieldsSorted(t *testing.T) {
	fs := zf(tc.Fields{"b": 1, "a": 2, "c": 3})
	if fs[0].Key != "a" || fs[1].Key != "b" || fs[2].Key != "c" {
		t.Fatalf("fields not sorted: %v", fs)
	}
}

func TestNewNilLogger(t *testing.T) {
	New(nil).Error("dropped", tc.Fields{"k": 1})
}
