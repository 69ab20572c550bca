package throughcache

import (
	"errors"
	"strings"
	"testing"

	"github.com/unkn0wn-root/throughcache/eviction"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(100, "lru", "readthrough", "WRITEALWAYS")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("cfg=%+v want %+v", cfg, DefaultConfig())
	}

	cfg, err = ParseConfig(10, "FIFO", "ReadOnly", "WriteBehind")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.EvictionStrategy != eviction.FIFO || cfg.ReadPolicy != ReadOnly || cfg.WritePolicy != WriteBehind {
		t.Fatalf("unexpected cfg %+v", cfg)
	}
}

func TestParseConfigRejects(t *testing.T) {
	cases := []struct {
		name            string
		size            int
		ev, read, write string
		field           string
	}{
		{"zero size", 0, "LRU", "ReadThrough", "WriteAlways", "maxSize"},
		{"unknown eviction", 10, "MRU", "ReadThrough", "WriteAlways", "evictionStrategy"},
		{"empty eviction", 10, "", "ReadThrough", "WriteAlways", "evictionStrategy"},
		{"unknown read", 10, "LRU", "ReadAround", "WriteAlways", "readPolicy"},
		{"empty write", 10, "LRU", "ReadThrough", "", "writePolicy"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig(tc.size, tc.ev, tc.read, tc.write)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) || ce.Field != tc.field {
				t.Fatalf("field=%v want %s", ce, tc.field)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader("maxSize: 500\nwritePolicy: writebehind\nwriteBehindQueue: 16\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MaxSize != 500 || cfg.WritePolicy != WriteBehind || cfg.WriteBehindQueue != 16 {
		t.Fatalf("unexpected cfg %+v", cfg)
	}
	if cfg.EvictionStrategy != eviction.LRU || cfg.ReadPolicy != ReadThrough {
		t.Fatalf("unset fields should keep defaults: %+v", cfg)
	}
}

func TestLoadConfigEmptyDocument(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("empty document should yield defaults, got %+v", cfg)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	for _, doc := range []string{
		"maxSize: 0\n",
		"maxsize: 10\n", // unknown key
		"readPolicy: Sometimes\n",
		"maxSize: [1]\n",
	} {
		if _, err := LoadConfig(strings.NewReader(doc)); !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("doc %q: expected ErrInvalidConfiguration, got %v", doc, err)
		}
	}
}

func TestWithDefaultsQueue(t *testing.T) {
	cfg := Config{MaxSize: 1, WritePolicy: WriteBehind}.withDefaults()
	if cfg.WriteBehindQueue != defaultWriteBehindQueue {
		t.Fatalf("queue=%d want %d", cfg.WriteBehindQueue, defaultWriteBehindQueue)
	}
	cfg = Config{MaxSize: 1}.withDefaults()
	if cfg.WriteBehindQueue != 0 {
		t.Fatalf("queue should stay unset under WriteAlways, got %d", cfg.WriteBehindQueue)
	}
}
