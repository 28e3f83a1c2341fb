// Package store defines the storage-layer contract the response cache is
// built on: atomic single-record upserts keyed by a unique column set,
// indexed reads, prefix-scoped bulk operations, and a hard per-record size
// ceiling. The default implementation lives in internal/bunstore and is
// reached through responsecache.OpenStore or pkg/di.
package store

import (
	"context"
	"time"
)

// Table names for the two response kinds. Both tables share the same
// record shape; the splits table simply leaves config_name and split_name
// empty.
const (
	SplitsTable    = "splits_responses"
	FirstRowsTable = "first_rows_responses"
)

// Record is one cached response as the storage layer sees it. Payload and
// Details are opaque serialized documents; the store never inspects them.
//
// ID is assigned by the store at first insertion, is strictly increasing
// over time, is never reused, and is never changed by later upserts of the
// same key.
type Record struct {
	ID         uint64
	Dataset    string
	Config     string
	Split      string
	Payload    []byte
	HTTPStatus int
	ErrorCode  string
	Details    []byte
	Stale      bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Scope selects records by key prefix. Dataset is the leading key field;
// an empty Config (or Split) leaves that field unconstrained, so
// Scope{Dataset: "d"} covers every record under dataset "d" while a fully
// populated Scope names exactly one record. Prefixes are contiguous:
// Split is only meaningful when Config is set.
type Scope struct {
	Dataset string
	Config  string
	Split   string
}

// StatusFilter narrows queries to successful (2xx) or failing records.
type StatusFilter int

const (
	StatusSuccess StatusFilter = iota
	StatusFailure
)

// Store is the contract the cache requires from its storage engine. Every
// method is a single synchronous request; per-record operations are atomic
// and the store never coordinates across records.
type Store interface {
	// Upsert inserts the record for its key columns or fully replaces the
	// existing one, preserving ID and CreatedAt and resetting Stale.
	// Oversized records fail with ErrEntryTooLarge before any row is
	// touched.
	Upsert(ctx context.Context, table string, rec *Record) error

	// FindOne returns the record matching the scope, or nil when none does.
	FindOne(ctx context.Context, table string, sc Scope) (*Record, error)

	// DeleteMany removes every record in scope. Matching nothing is not an
	// error.
	DeleteMany(ctx context.Context, table string, sc Scope) error

	// MarkStaleMany sets stale=true on every record in scope and changes
	// nothing else. Matching nothing is not an error.
	MarkStaleMany(ctx context.Context, table string, sc Scope) error

	// CountByStatus returns a histogram of records per HTTP status code.
	// Statuses with no records are absent from the map.
	CountByStatus(ctx context.Context, table string) (map[int]int, error)

	// ListAfter returns up to limit records with ID greater than afterID,
	// ordered by ascending ID. afterID zero starts from the beginning.
	ListAfter(ctx context.Context, table string, afterID uint64, limit int) ([]Record, error)

	// DistinctDatasets returns the sorted distinct dataset names having at
	// least one record matching the status filter.
	DistinctDatasets(ctx context.Context, table string, filter StatusFilter) ([]string, error)

	// Close releases the underlying connections.
	Close() error
}
