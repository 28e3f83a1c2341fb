package responsecache

import (
	"context"

	"github.com/goliatone/go-response-cache/internal/bunstore"
	"github.com/goliatone/go-response-cache/store"
)

// OpenStore connects the default storage backend with the provided
// configuration, creating the response tables if missing. The returned
// store is shared by the tables and the validity index and must be closed
// by the caller when done.
func OpenStore(ctx context.Context, cfg store.Config) (store.Store, error) {
	return bunstore.Open(ctx, cfg)
}
