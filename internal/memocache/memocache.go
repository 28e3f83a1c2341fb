// Package memocache adapts sturdyc as the in-process read-through layer
// used by responsecache.CachedTable. Unlike a general repository cache the
// memoized value type is fixed, so the adapter is fully typed.
package memocache

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/viccon/sturdyc"
)

// Sentinel errors re-exported for callers that enable missing-record
// storage: a fetch function returns ErrNotFound to record a miss, and
// GetOrFetch reports a remembered miss as ErrMissingRecord.
var (
	ErrNotFound      = sturdyc.ErrNotFound
	ErrMissingRecord = sturdyc.ErrMissingRecord
)

// Config holds the sturdyc options the memo layer exposes.
type Config struct {
	// Capacity is the maximum number of memoized entries. Must be > 0.
	Capacity int

	// NumShards determines how many shards back the cache. Must be > 0.
	NumShards int

	// TTL is how long a memoized entry stays fresh. Must be > 0.
	TTL time.Duration

	// EvictionPercentage is the share of entries evicted when the cache
	// reaches capacity, between 1 and 100.
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are collected.
	// Zero uses sturdyc's default.
	EvictionInterval time.Duration

	// MissingRecordStorage remembers keys that had no backing record so
	// repeated lookups of absent entries skip the store.
	MissingRecordStorage bool
}

// DefaultConfig returns a Config with defaults suitable for point lookups.
func DefaultConfig() Config {
	return Config{
		Capacity:             10000,
		NumShards:            64,
		TTL:                  time.Minute,
		EvictionPercentage:   10,
		MissingRecordStorage: true,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

func (c Config) options() []sturdyc.Option {
	var opts []sturdyc.Option
	if c.MissingRecordStorage {
		opts = append(opts, sturdyc.WithMissingRecordStorage())
	}
	if c.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return opts
}

// Entry is the memoized shape of a point lookup: the serialized payload
// plus the fields Get is allowed to expose. Details are never memoized.
type Entry struct {
	Payload    []byte
	HTTPStatus int
	ErrorCode  string
}

// Cache wraps a sturdyc client keyed by table-scoped entry keys.
type Cache struct {
	client *sturdyc.Client[Entry]
}

// New validates the configuration and builds the memo cache.
func New(cfg Config) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := sturdyc.New[Entry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.options()...,
	)
	return &Cache{client: client}, nil
}

// GetOrFetch returns the memoized entry for key, calling fetch on a miss
// and memoizing its result.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (Entry, error)) (Entry, error) {
	return c.client.GetOrFetch(ctx, key, fetch)
}

// Delete drops a single memoized key.
func (c *Cache) Delete(key string) {
	c.client.Delete(key)
}

// DeleteByPrefix drops every memoized key starting with prefix. Used by
// write paths to invalidate whole key-prefix scopes.
func (c *Cache) DeleteByPrefix(prefix string) {
	for _, key := range c.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			c.client.Delete(key)
		}
	}
}
