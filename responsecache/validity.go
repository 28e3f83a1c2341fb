package responsecache

import (
	"context"

	"github.com/goliatone/go-response-cache/store"
)

// ValidityIndex computes cross-table aggregate views keyed by dataset
// name. The aggregates are recomputed from current table state on every
// call; nothing is cached.
//
// The two tables are read with independent queries and no transaction
// spans them, so a concurrent writer can produce a torn snapshot. That
// read skew is accepted rather than corrected.
type ValidityIndex struct {
	store store.Store
}

// NewValidityIndex creates a validity index over the given store.
func NewValidityIndex(st store.Store) *ValidityIndex {
	return &ValidityIndex{store: st}
}

// ValidDatasetNames returns, sorted, the datasets that have at least one
// successful splits entry and at least one successful first-rows entry.
func (v *ValidityIndex) ValidDatasetNames(ctx context.Context) ([]string, error) {
	splits, err := v.store.DistinctDatasets(ctx, store.SplitsTable, store.StatusSuccess)
	if err != nil {
		return nil, err
	}
	firstRows, err := v.store.DistinctDatasets(ctx, store.FirstRowsTable, store.StatusSuccess)
	if err != nil {
		return nil, err
	}
	return intersectSorted(splits, firstRows), nil
}

// DatasetsWithSomeError returns, sorted, the datasets that have at least
// one failing entry in either table. A dataset can be both valid and
// erroring at the same time; the two sets are not mutually exclusive.
func (v *ValidityIndex) DatasetsWithSomeError(ctx context.Context) ([]string, error) {
	splits, err := v.store.DistinctDatasets(ctx, store.SplitsTable, store.StatusFailure)
	if err != nil {
		return nil, err
	}
	firstRows, err := v.store.DistinctDatasets(ctx, store.FirstRowsTable, store.StatusFailure)
	if err != nil {
		return nil, err
	}
	return unionSorted(splits, firstRows), nil
}

// intersectSorted merges two sorted, deduplicated slices into their sorted
// intersection.
func intersectSorted(a, b []string) []string {
	out := make([]string, 0)
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// unionSorted merges two sorted, deduplicated slices into their sorted
// union.
func unionSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		default:
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
