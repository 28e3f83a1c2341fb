package di

import (
	"context"

	"github.com/goliatone/go-response-cache/cursor"
	"github.com/goliatone/go-response-cache/responsecache"
	"github.com/goliatone/go-response-cache/store"
)

// Container wires the response cache components over one shared store
// handle with an explicit lifecycle: NewContainer connects, Close tears
// down. It manages singleton instances of the store, the cursor codec,
// both cache tables and the validity index.
type Container struct {
	store       store.Store
	codec       cursor.Codec
	splits      *responsecache.Table[responsecache.SplitsKey]
	firstRows   *responsecache.Table[responsecache.FirstRowsKey]
	validity    *responsecache.ValidityIndex
	cacheConfig responsecache.CacheConfig
}

// NewContainer connects to the configured storage backend and wires the
// cache components around it.
func NewContainer(ctx context.Context, cfg store.Config) (*Container, error) {
	return NewContainerWithCache(ctx, cfg, responsecache.DefaultCacheConfig())
}

// NewContainerWithCache is NewContainer with an explicit memoization
// configuration for cached tables created through this container.
func NewContainerWithCache(ctx context.Context, cfg store.Config, cacheCfg responsecache.CacheConfig) (*Container, error) {
	if err := cacheCfg.Validate(); err != nil {
		return nil, err
	}

	st, err := responsecache.OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	codec := cursor.NewDefaultCodec()
	return &Container{
		store:       st,
		codec:       codec,
		splits:      responsecache.NewSplitsTable(st, codec),
		firstRows:   responsecache.NewFirstRowsTable(st, codec),
		validity:    responsecache.NewValidityIndex(st),
		cacheConfig: cacheCfg,
	}, nil
}

// Splits returns the singleton splits cache table.
func (c *Container) Splits() *responsecache.Table[responsecache.SplitsKey] {
	return c.splits
}

// FirstRows returns the singleton first-rows cache table.
func (c *Container) FirstRows() *responsecache.Table[responsecache.FirstRowsKey] {
	return c.firstRows
}

// Validity returns the singleton validity index.
func (c *Container) Validity() *responsecache.ValidityIndex {
	return c.validity
}

// Store returns the shared store handle for advanced use cases.
func (c *Container) Store() store.Store {
	return c.store
}

// Codec returns the singleton cursor codec.
func (c *Container) Codec() cursor.Codec {
	return c.codec
}

// Close releases the underlying store connections.
func (c *Container) Close() error {
	return c.store.Close()
}

// NewCachedTable wraps one of the container's tables with the read-through
// memoization layer, using the container's cache configuration.
//
// Since Go methods cannot have type parameters, this is provided as a
// package-level function: NewCachedTable(container, container.Splits()).
func NewCachedTable[K responsecache.Key](c *Container, base *responsecache.Table[K]) (*responsecache.CachedTable[K], error) {
	return responsecache.NewCachedTable(base, c.cacheConfig)
}
