package responsecache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-response-cache/cursor"
	"github.com/goliatone/go-response-cache/pkg/testsupport"
	"github.com/goliatone/go-response-cache/responsecache"
	"github.com/goliatone/go-response-cache/store"
)

// countingStore wraps a Store and counts point lookups, so the tests can
// assert which Get calls were served from the memo layer.
type countingStore struct {
	store.Store
	findOneCalls int
}

func (c *countingStore) FindOne(ctx context.Context, table string, sc store.Scope) (*store.Record, error) {
	c.findOneCalls++
	return c.Store.FindOne(ctx, table, sc)
}

func testCacheConfig() responsecache.CacheConfig {
	return responsecache.CacheConfig{
		Capacity:             100,
		NumShards:            2,
		TTL:                  time.Minute,
		EvictionPercentage:   10,
		MissingRecordStorage: true,
	}
}

func newCachedFixture(t *testing.T) (*responsecache.CachedTable[responsecache.FirstRowsKey], *countingStore) {
	t.Helper()
	counting := &countingStore{Store: testsupport.OpenStore(t)}
	base := responsecache.NewFirstRowsTable(counting, cursor.NewDefaultCodec())
	cached, err := responsecache.NewCachedTable(base, testCacheConfig())
	if err != nil {
		t.Fatalf("new cached table failed: %v", err)
	}
	return cached, counting
}

func TestCachedGetMemoizes(t *testing.T) {
	cached, counting := newCachedFixture(t)
	ctx := context.Background()
	key := responsecache.FirstRowsKey{Dataset: "d", Config: "c", Split: "s"}
	doc := responsecache.Document{"key": "value"}

	if err := cached.Upsert(ctx, key, doc, 200, "", nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		payload, status, _, err := cached.Get(ctx, key)
		if err != nil {
			t.Fatalf("get %d failed: %v", i, err)
		}
		if payload["key"] != "value" || status != 200 {
			t.Fatalf("get %d returned %v, %d", i, payload, status)
		}
	}
	if counting.findOneCalls != 1 {
		t.Errorf("expected a single store lookup for repeated gets, got %d", counting.findOneCalls)
	}
}

func TestCachedUpsertInvalidates(t *testing.T) {
	cached, counting := newCachedFixture(t)
	ctx := context.Background()
	key := responsecache.FirstRowsKey{Dataset: "d", Config: "c", Split: "s"}

	if err := cached.Upsert(ctx, key, responsecache.Document{"v": "1"}, 200, "", nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if _, _, _, err := cached.Get(ctx, key); err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if err := cached.Upsert(ctx, key, responsecache.Document{"v": "2"}, 200, "", nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	payload, _, _, err := cached.Get(ctx, key)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if payload["v"] != "2" {
		t.Errorf("expected the replacement to be visible, got %v", payload)
	}
	if counting.findOneCalls != 2 {
		t.Errorf("expected the second get to refetch, got %d lookups", counting.findOneCalls)
	}
}

func TestCachedDeleteInvalidatesPrefix(t *testing.T) {
	cached, counting := newCachedFixture(t)
	ctx := context.Background()
	doc := responsecache.Document{}

	keyA := responsecache.FirstRowsKey{Dataset: "d", Config: "c", Split: "a"}
	keyB := responsecache.FirstRowsKey{Dataset: "d", Config: "c", Split: "b"}
	keyOther := responsecache.FirstRowsKey{Dataset: "d2", Config: "c", Split: "a"}
	for _, key := range []responsecache.FirstRowsKey{keyA, keyB, keyOther} {
		if err := cached.Upsert(ctx, key, doc, 200, "", nil); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
		if _, _, _, err := cached.Get(ctx, key); err != nil {
			t.Fatalf("warmup get failed: %v", err)
		}
	}
	warm := counting.findOneCalls

	// Deleting the whole dataset drops its memoized entries.
	if err := cached.Delete(ctx, responsecache.FirstRowsKey{Dataset: "d"}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, _, _, err := cached.Get(ctx, keyA); !errors.Is(err, responsecache.ErrDoesNotExist) {
		t.Errorf("expected ErrDoesNotExist after delete, got %v", err)
	}
	if _, _, _, err := cached.Get(ctx, keyB); !errors.Is(err, responsecache.ErrDoesNotExist) {
		t.Errorf("expected ErrDoesNotExist after delete, got %v", err)
	}
	if counting.findOneCalls != warm+2 {
		t.Errorf("expected both deleted keys to refetch, got %d extra lookups", counting.findOneCalls-warm)
	}

	// A key in another dataset stays memoized.
	if _, _, _, err := cached.Get(ctx, keyOther); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if counting.findOneCalls != warm+2 {
		t.Errorf("expected the other dataset to stay memoized, got %d extra lookups", counting.findOneCalls-warm)
	}
}

func TestCachedGetRemembersMisses(t *testing.T) {
	cached, counting := newCachedFixture(t)
	ctx := context.Background()
	key := responsecache.FirstRowsKey{Dataset: "missing", Config: "c", Split: "s"}

	for i := 0; i < 3; i++ {
		if _, _, _, err := cached.Get(ctx, key); !errors.Is(err, responsecache.ErrDoesNotExist) {
			t.Fatalf("get %d: expected ErrDoesNotExist, got %v", i, err)
		}
	}
	if counting.findOneCalls != 1 {
		t.Errorf("expected the miss to be remembered after one lookup, got %d", counting.findOneCalls)
	}

	// An upsert clears the remembered miss.
	if err := cached.Upsert(ctx, key, responsecache.Document{"key": "value"}, 200, "", nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if _, _, _, err := cached.Get(ctx, key); err != nil {
		t.Errorf("expected the entry after upsert, got %v", err)
	}
}

func TestCachedMarkStaleInvalidates(t *testing.T) {
	cached, counting := newCachedFixture(t)
	ctx := context.Background()
	key := responsecache.FirstRowsKey{Dataset: "d", Config: "c", Split: "s"}

	if err := cached.Upsert(ctx, key, responsecache.Document{}, 200, "", nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if _, _, _, err := cached.Get(ctx, key); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	warm := counting.findOneCalls

	if err := cached.MarkStale(ctx, key); err != nil {
		t.Fatalf("mark stale failed: %v", err)
	}
	if _, _, _, err := cached.Get(ctx, key); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if counting.findOneCalls != warm+1 {
		t.Errorf("expected mark stale to invalidate the memo, got %d extra lookups", counting.findOneCalls-warm)
	}
}

func TestCachedRejectsIncompleteKey(t *testing.T) {
	cached, _ := newCachedFixture(t)

	if _, _, _, err := cached.Get(context.Background(), responsecache.FirstRowsKey{Dataset: "d"}); !errors.Is(err, responsecache.ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}
