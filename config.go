package throughcache

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/throughcache/eviction"
)

// ReadPolicy decides what Get does on a miss.
type ReadPolicy string

const (
	// ReadThrough loads misses from the repository and caches hits.
	ReadThrough ReadPolicy = "ReadThrough"
	// ReadOnly serves memory only; misses never reach the repository.
	ReadOnly ReadPolicy = "ReadOnly"
)

// WritePolicy decides when Put and Remove reach the repository.
type WritePolicy string

const (
	// WriteAlways mirrors every write synchronously before returning.
	WriteAlways WritePolicy = "WriteAlways"
	// WriteBehind queues writes for a background worker, in issue order.
	WriteBehind WritePolicy = "WriteBehind"
)

const (
	defaultMaxSize          = 100
	defaultWriteBehindQueue = 1024
)

// Config is fixed for the lifetime of a cache.
type Config struct {
	MaxSize          int               `yaml:"maxSize"`
	EvictionStrategy eviction.Strategy `yaml:"evictionStrategy"`
	ReadPolicy       ReadPolicy        `yaml:"readPolicy"`
	WritePolicy      WritePolicy       `yaml:"writePolicy"`
	// WriteBehindQueue bounds pending background writes; 0 => 1024.
	// Ignored unless WritePolicy is WriteBehind.
	WriteBehindQueue int `yaml:"writeBehindQueue"`
}

// DefaultConfig returns 100 entries, LRU, ReadThrough, WriteAlways.
func DefaultConfig() Config {
	return Config{
		MaxSize:          defaultMaxSize,
		EvictionStrategy: eviction.LRU,
		ReadPolicy:       ReadThrough,
		WritePolicy:      WriteAlways,
	}
}

// ParseConfig builds a Config from its string form, e.g.
// ParseConfig(100, "LRU", "ReadThrough", "WriteAlways"). Names are matched
// case-insensitively.
func ParseConfig(maxSize int, evictionStrategy, readPolicy, writePolicy string) (Config, error) {
	cfg := Config{
		MaxSize:          maxSize,
		EvictionStrategy: eviction.Strategy(evictionStrategy),
		ReadPolicy:       ReadPolicy(readPolicy),
		WritePolicy:      WritePolicy(writePolicy),
	}
	if evictionStrategy == "" {
		return Config{}, &ConfigError{Field: "evictionStrategy", Value: evictionStrategy}
	}
	if readPolicy == "" {
		return Config{}, &ConfigError{Field: "readPolicy", Value: readPolicy}
	}
	if writePolicy == "" {
		return Config{}, &ConfigError{Field: "writePolicy", Value: writePolicy}
	}
	cfg = cfg.normalized()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig decodes a YAML document over DefaultConfig. Unknown keys are
// rejected so typos do not silently fall back to defaults.
//
//	maxSize: 500
//	evictionStrategy: LRU
//	readPolicy: ReadThrough
//	writePolicy: WriteBehind
//	writeBehindQueue: 4096
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	cfg = cfg.normalized()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid field as a *ConfigError.
// Empty policy names are accepted and mean the defaults.
func (c Config) Validate() error {
	if c.MaxSize <= 0 {
		return &ConfigError{Field: "maxSize", Value: c.MaxSize}
	}
	if !c.EvictionStrategy.Valid() {
		return &ConfigError{Field: "evictionStrategy", Value: c.EvictionStrategy}
	}
	switch c.ReadPolicy {
	case ReadThrough, ReadOnly, "":
	default:
		return &ConfigError{Field: "readPolicy", Value: c.ReadPolicy}
	}
	switch c.WritePolicy {
	case WriteAlways, WriteBehind, "":
	default:
		return &ConfigError{Field: "writePolicy", Value: c.WritePolicy}
	}
	if c.WriteBehindQueue < 0 {
		return &ConfigError{Field: "writeBehindQueue", Value: c.WriteBehindQueue}
	}
	return nil
}

// normalized maps names to their canonical spelling; unknown names pass
// through unchanged for Validate to reject.
func (c Config) normalized() Config {
	c.EvictionStrategy = eviction.Strategy(canonical(string(c.EvictionStrategy),
		string(eviction.LRU), string(eviction.FIFO)))
	c.ReadPolicy = ReadPolicy(canonical(string(c.ReadPolicy),
		string(ReadThrough), string(ReadOnly)))
	c.WritePolicy = WritePolicy(canonical(string(c.WritePolicy),
		string(WriteAlways), string(WriteBehind)))
	return c
}

// withDefaults fills empty names and sizes.
func (c Config) withDefaults() Config {
	c.EvictionStrategy = coalesce(c.EvictionStrategy, eviction.LRU)
	c.ReadPolicy = coalesce(c.ReadPolicy, ReadThrough)
	c.WritePolicy = coalesce(c.WritePolicy, WriteAlways)
	if c.WritePolicy == WriteBehind {
		c.WriteBehindQueue = coalesce(c.WriteBehindQueue, defaultWriteBehindQueue)
	}
	return c
}

func canonical(v string, names ...string) string {
	for _, n := range names {
		if strings.EqualFold(v, n) {
			return n
		}
	}
	return v
}
