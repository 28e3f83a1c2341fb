package responsecache

import (
	"context"
	"fmt"

	"github.com/goliatone/go-response-cache/cursor"
	"github.com/goliatone/go-response-cache/store"
)

// Table is the cache for one response kind, keyed by K. The two response
// kinds share this implementation; NewSplitsTable and NewFirstRowsTable
// bind it to the concrete table and key shape.
type Table[K Key] struct {
	store      store.Store
	table      string
	codec      cursor.Codec
	fromRecord func(store.Record) K
}

// NewSplitsTable creates the cache table for splits responses, keyed by
// dataset name.
func NewSplitsTable(st store.Store, codec cursor.Codec) *Table[SplitsKey] {
	return &Table[SplitsKey]{
		store: st,
		table: store.SplitsTable,
		codec: codec,
		fromRecord: func(rec store.Record) SplitsKey {
			return SplitsKey{Dataset: rec.Dataset}
		},
	}
}

// NewFirstRowsTable creates the cache table for first-rows responses,
// keyed by dataset, config and split names.
func NewFirstRowsTable(st store.Store, codec cursor.Codec) *Table[FirstRowsKey] {
	return &Table[FirstRowsKey]{
		store: st,
		table: store.FirstRowsTable,
		codec: codec,
		fromRecord: func(rec store.Record) FirstRowsKey {
			return FirstRowsKey{Dataset: rec.Dataset, Config: rec.Config, Split: rec.Split}
		},
	}
}

// Upsert inserts or fully replaces the entry for key. Repeated calls with
// identical arguments leave an observably identical entry, and the entry's
// pagination identifier never changes across replacements. The errorCode
// and details arguments are persisted only when httpStatus is a failure,
// so the error fields stay present exactly when the status is non-2xx.
//
// Entries whose serialized form exceeds the storage ceiling fail with
// store.ErrEntryTooLarge; the write is rejected atomically and any prior
// entry for the key is left intact.
func (t *Table[K]) Upsert(ctx context.Context, key K, payload Document, httpStatus int, errorCode string, details *ErrorDetails) error {
	if !key.complete() {
		return fmt.Errorf("%w: upsert requires a fully qualified key", ErrInvalidKey)
	}

	body, err := encodeDocument(payload)
	if err != nil {
		return err
	}

	sc := key.scope()
	rec := &store.Record{
		Dataset:    sc.Dataset,
		Config:     sc.Config,
		Split:      sc.Split,
		Payload:    body,
		HTTPStatus: httpStatus,
	}
	if !isSuccess(httpStatus) {
		rec.ErrorCode = errorCode
		if rec.Details, err = encodeDetails(details); err != nil {
			return err
		}
	}
	return t.store.Upsert(ctx, t.table, rec)
}

// Get returns the payload, HTTP status and error code of the entry for
// key, or ErrDoesNotExist when there is none. Error details are
// report-only and never returned here.
func (t *Table[K]) Get(ctx context.Context, key K) (Document, int, string, error) {
	if !key.complete() {
		return nil, 0, "", fmt.Errorf("%w: get requires a fully qualified key", ErrInvalidKey)
	}

	rec, err := t.store.FindOne(ctx, t.table, key.scope())
	if err != nil {
		return nil, 0, "", err
	}
	if rec == nil {
		return nil, 0, "", ErrDoesNotExist
	}

	payload, err := decodeDocument(rec.Payload)
	if err != nil {
		return nil, 0, "", err
	}
	return payload, rec.HTTPStatus, rec.ErrorCode, nil
}

// Delete removes every entry whose key matches the given prefix. Matching
// nothing is a silent no-op.
func (t *Table[K]) Delete(ctx context.Context, prefix K) error {
	return t.store.DeleteMany(ctx, t.table, prefix.scope())
}

// MarkStale flags every entry whose key matches the given prefix as
// needing recomputation, without touching any other field. Matching
// nothing is a silent no-op.
func (t *Table[K]) MarkStale(ctx context.Context, prefix K) error {
	return t.store.MarkStaleMany(ctx, t.table, prefix.scope())
}

// CountByStatus returns a histogram of entries per HTTP status code.
// Statuses with no entries are absent from the map.
func (t *Table[K]) CountByStatus(ctx context.Context) (map[int]int, error) {
	return t.store.CountByStatus(ctx, t.table)
}

// ListReportsPage returns one page of the entry report, ordered by the
// entries' insertion identifiers. An empty cur starts from the beginning;
// otherwise cur must be the NextCursor of a previous page and the page
// resumes strictly after the entry it references. The returned NextCursor
// is empty once the end of the data is reached.
//
// Because identifiers are stable and never mutated by upserts, repeated
// pagination over a static table is deterministic and yields every entry
// exactly once.
func (t *Table[K]) ListReportsPage(ctx context.Context, cur string, limit int) (Page[K], error) {
	if limit <= 0 {
		return Page[K]{}, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	var afterID uint64
	if cur != "" {
		var err error
		if afterID, err = t.codec.Decode(cur); err != nil {
			return Page[K]{}, err
		}
	}

	records, err := t.store.ListAfter(ctx, t.table, afterID, limit)
	if err != nil {
		return Page[K]{}, err
	}

	page := Page[K]{Reports: make([]Report[K], 0, len(records))}
	for _, rec := range records {
		report, err := t.shapeReport(rec)
		if err != nil {
			return Page[K]{}, err
		}
		page.Reports = append(page.Reports, report)
	}
	if len(records) == limit {
		page.NextCursor = t.codec.Encode(records[len(records)-1].ID)
	}
	return page, nil
}

func (t *Table[K]) shapeReport(rec store.Record) (Report[K], error) {
	report := Report[K]{Key: t.fromRecord(rec), HTTPStatus: rec.HTTPStatus}
	if isSuccess(rec.HTTPStatus) {
		return report, nil
	}

	details, err := decodeDetails(rec.Details)
	if err != nil {
		return Report[K]{}, err
	}
	report.Error = newReportError(rec.ErrorCode, details)
	return report, nil
}
