// Package responsecache persists the last computed response of each
// logical computation in a dataset-processing pipeline, together with its
// HTTP-style status and error detail, so that consumers can skip
// recomputation, report pipeline health, and page through failures.
//
// # Overview
//
// Two structurally identical tables exist, one per response kind:
//
//   - the splits table, keyed by dataset name (SplitsKey)
//   - the first-rows table, keyed by dataset, config and split names
//     (FirstRowsKey)
//
// Both are instances of the generic Table, which owns upserts, point
// lookups, prefix deletion, stale marking, status histograms and the
// cursor-paginated report. ValidityIndex joins the two tables on dataset
// name for the aggregate health views.
//
// # Basic Usage
//
//	st, err := responsecache.OpenStore(ctx, store.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer st.Close()
//
//	codec := cursor.NewDefaultCodec()
//	splits := responsecache.NewSplitsTable(st, codec)
//
//	err = splits.Upsert(ctx, responsecache.SplitsKey{Dataset: "glue"},
//		responsecache.Document{"splits": []any{"train", "test"}},
//		http.StatusOK, "", nil)
//
//	payload, status, errorCode, err := splits.Get(ctx,
//		responsecache.SplitsKey{Dataset: "glue"})
//
// For wiring with shared singletons, see the pkg/di package.
//
// # Write Semantics
//
// Upsert is idempotent and keyed: at most one entry exists per key, a
// second upsert fully replaces the first, and the entry's pagination
// identifier never changes. Delete and MarkStale accept key prefixes
// (for FirstRowsKey, a bare dataset or dataset+config) and are silent
// no-ops when nothing matches. Entries above the storage size ceiling are
// rejected atomically with store.ErrEntryTooLarge.
//
// # Pagination
//
// ListReportsPage streams every entry of a table in insertion order. The
// caller holds no state beyond the opaque NextCursor token; an empty token
// starts from the beginning and an empty returned token means the end was
// reached. Over a static table, pagination is deterministic and yields
// each entry exactly once.
//
// # Consistency
//
// Every operation is a single synchronous storage request. Operations on
// one key are atomic; nothing coordinates across keys or across the two
// tables, so ValidityIndex may observe a torn snapshot under concurrent
// writers.
package responsecache
