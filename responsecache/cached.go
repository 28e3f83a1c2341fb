package responsecache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-response-cache/internal/memocache"
	"github.com/goliatone/go-response-cache/store"
)

// keySeparator delimits the segments of memoization keys. Writes
// invalidate by prefix, so every segment is separator-terminated to keep
// "d" from shadowing "dd".
const keySeparator = "::"

// CacheConfig exposes the memoization options for CachedTable.
type CacheConfig struct {
	// Capacity is the maximum number of memoized entries.
	Capacity int

	// NumShards determines how many shards back the memo cache.
	NumShards int

	// TTL is how long a memoized entry stays fresh.
	TTL time.Duration

	// EvictionPercentage is the share of entries evicted when the cache
	// reaches capacity, between 1 and 100.
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are collected.
	// Zero uses the backend default.
	EvictionInterval time.Duration

	// MissingRecordStorage remembers misses, so repeated Get calls for an
	// absent entry return ErrDoesNotExist without hitting the store.
	MissingRecordStorage bool
}

// DefaultCacheConfig returns a CacheConfig with sensible defaults.
func DefaultCacheConfig() CacheConfig {
	return fromInternalConfig(memocache.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c CacheConfig) Validate() error {
	return c.toInternal().Validate()
}

func (c CacheConfig) toInternal() memocache.Config {
	return memocache.Config{
		Capacity:             c.Capacity,
		NumShards:            c.NumShards,
		TTL:                  c.TTL,
		EvictionPercentage:   c.EvictionPercentage,
		EvictionInterval:     c.EvictionInterval,
		MissingRecordStorage: c.MissingRecordStorage,
	}
}

func fromInternalConfig(cfg memocache.Config) CacheConfig {
	return CacheConfig{
		Capacity:             cfg.Capacity,
		NumShards:            cfg.NumShards,
		TTL:                  cfg.TTL,
		EvictionPercentage:   cfg.EvictionPercentage,
		EvictionInterval:     cfg.EvictionInterval,
		MissingRecordStorage: cfg.MissingRecordStorage,
	}
}

// CachedTable decorates a Table with in-process read-through memoization
// of point lookups. Get is served from memory within the TTL; Upsert,
// Delete and MarkStale pass through to the base table and invalidate every
// memoized key under the written prefix. Report and histogram queries are
// never memoized.
//
// The memo layer is an optional optimization: a CachedTable observes the
// same semantics as its base table, except that Get may briefly return a
// value superseded by a writer on another process sharing the store.
type CachedTable[K Key] struct {
	*Table[K]
	memo *memocache.Cache
}

// NewCachedTable wraps base with a memoization layer built from cfg.
func NewCachedTable[K Key](base *Table[K], cfg CacheConfig) (*CachedTable[K], error) {
	memo, err := memocache.New(cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return &CachedTable[K]{Table: base, memo: memo}, nil
}

// Get returns the memoized entry for key, fetching it from the store on a
// miss. Absent entries surface as ErrDoesNotExist and, with missing-record
// storage enabled, are remembered so repeated lookups skip the store.
func (c *CachedTable[K]) Get(ctx context.Context, key K) (Document, int, string, error) {
	if !key.complete() {
		return nil, 0, "", ErrInvalidKey
	}

	sc := key.scope()
	entry, err := c.memo.GetOrFetch(ctx, c.memoKey(sc), func(ctx context.Context) (memocache.Entry, error) {
		rec, err := c.store.FindOne(ctx, c.table, sc)
		if err != nil {
			return memocache.Entry{}, err
		}
		if rec == nil {
			return memocache.Entry{}, memocache.ErrNotFound
		}
		return memocache.Entry{
			Payload:    rec.Payload,
			HTTPStatus: rec.HTTPStatus,
			ErrorCode:  rec.ErrorCode,
		}, nil
	})
	if err != nil {
		if errors.Is(err, memocache.ErrNotFound) || errors.Is(err, memocache.ErrMissingRecord) {
			return nil, 0, "", ErrDoesNotExist
		}
		return nil, 0, "", err
	}

	payload, err := decodeDocument(entry.Payload)
	if err != nil {
		return nil, 0, "", err
	}
	return payload, entry.HTTPStatus, entry.ErrorCode, nil
}

// Upsert writes through to the base table and invalidates the memoized
// entry for the key.
func (c *CachedTable[K]) Upsert(ctx context.Context, key K, payload Document, httpStatus int, errorCode string, details *ErrorDetails) error {
	err := c.Table.Upsert(ctx, key, payload, httpStatus, errorCode, details)
	if err == nil {
		c.memo.DeleteByPrefix(c.memoPrefix(key.scope()))
	}
	return err
}

// Delete writes through to the base table and invalidates every memoized
// entry under the prefix.
func (c *CachedTable[K]) Delete(ctx context.Context, prefix K) error {
	err := c.Table.Delete(ctx, prefix)
	if err == nil {
		c.memo.DeleteByPrefix(c.memoPrefix(prefix.scope()))
	}
	return err
}

// MarkStale writes through to the base table. The stale flag is not part
// of what Get exposes, but the memoized miss markers could mask a later
// recomputation, so the prefix is invalidated all the same.
func (c *CachedTable[K]) MarkStale(ctx context.Context, prefix K) error {
	err := c.Table.MarkStale(ctx, prefix)
	if err == nil {
		c.memo.DeleteByPrefix(c.memoPrefix(prefix.scope()))
	}
	return err
}

// memoKey builds the memo key for a complete scope. Every segment is
// separator-terminated so that memoPrefix of a complete scope equals the
// exact key.
func (c *CachedTable[K]) memoKey(sc store.Scope) string {
	var b strings.Builder
	b.WriteString(c.table)
	b.WriteString(keySeparator)
	b.WriteString(sc.Dataset)
	b.WriteString(keySeparator)
	b.WriteString(sc.Config)
	b.WriteString(keySeparator)
	b.WriteString(sc.Split)
	b.WriteString(keySeparator)
	return b.String()
}

// memoPrefix builds the invalidation prefix for a possibly partial scope.
func (c *CachedTable[K]) memoPrefix(sc store.Scope) string {
	var b strings.Builder
	b.WriteString(c.table)
	b.WriteString(keySeparator)
	b.WriteString(sc.Dataset)
	b.WriteString(keySeparator)
	if sc.Config != "" {
		b.WriteString(sc.Config)
		b.WriteString(keySeparator)
		if sc.Split != "" {
			b.WriteString(sc.Split)
			b.WriteString(keySeparator)
		}
	}
	return b.String()
}
