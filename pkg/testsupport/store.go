// Package testsupport bootstraps isolated storage for tests. Each test
// gets its own SQLite database under t.TempDir, so packages can run their
// tests in parallel without sharing table state.
package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-response-cache/internal/bunstore"
	"github.com/goliatone/go-response-cache/store"
)

// OpenStore opens a fresh SQLite-backed store for the test and registers
// its teardown.
func OpenStore(t *testing.T) store.Store {
	t.Helper()
	return OpenStoreWithCeiling(t, store.DefaultMaxEntryBytes)
}

// OpenStoreWithCeiling is OpenStore with an explicit serialized-size
// ceiling, for exercising oversized-write rejection with small payloads.
func OpenStoreWithCeiling(t *testing.T, maxEntryBytes int) store.Store {
	t.Helper()

	cfg := store.Config{
		Driver:        store.DriverSQLite,
		DSN:           "file:" + filepath.Join(t.TempDir(), "response_cache.db"),
		MaxEntryBytes: maxEntryBytes,
	}

	st, err := bunstore.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}

	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("failed to close test store: %v", err)
		}
	})
	return st
}
