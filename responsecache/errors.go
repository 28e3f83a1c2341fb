package responsecache

import "errors"

// Error kinds surfaced by the cache. All are caller errors or propagated
// resource limits; the cache never retries or recovers from them locally.
//
// ErrInvalidCursor lives in the cursor package and ErrEntryTooLarge in the
// store package; both propagate through unchanged and match errors.Is.
var (
	// ErrDoesNotExist is returned by Get when no entry exists for the key.
	// Delete and MarkStale never return it; they are no-ops on no match.
	ErrDoesNotExist = errors.New("responsecache: entry does not exist")

	// ErrInvalidLimit is returned by paginated report calls when the
	// requested page size is zero or negative.
	ErrInvalidLimit = errors.New("responsecache: invalid limit")

	// ErrInvalidKey is returned by Upsert and Get when the key is not
	// fully qualified for its table.
	ErrInvalidKey = errors.New("responsecache: invalid key")
)
