package store

import (
	"errors"
	"fmt"
)

// ErrEntryTooLarge is returned by Upsert when a record's serialized form
// exceeds the store's size ceiling. The write is rejected atomically; any
// prior record for the key is left intact. Callers should treat it as
// fatal for that write, not transient.
var ErrEntryTooLarge = errors.New("store: entry exceeds maximum serialized size")

// EntrySizeError carries the measured and allowed sizes of a rejected
// write. It matches ErrEntryTooLarge under errors.Is.
type EntrySizeError struct {
	Size  int
	Limit int
}

func (e *EntrySizeError) Error() string {
	return fmt.Sprintf("store: entry of %d bytes exceeds maximum serialized size of %d bytes", e.Size, e.Limit)
}

func (e *EntrySizeError) Unwrap() error {
	return ErrEntryTooLarge
}
