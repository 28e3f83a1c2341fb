package cursor

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidCursor is returned when a pagination token cannot be decoded
// back into an entry identifier.
var ErrInvalidCursor = errors.New("cursor: invalid cursor")

// encodingBase is the numeric base used by the default codec. Base 36 keeps
// tokens short, lower-case, and URL-safe without extra escaping.
const encodingBase = 36

// Codec converts storage-assigned entry identifiers to and from the opaque
// pagination tokens handed to callers. Implementations must be stable: the
// same identifier always encodes to the same token across runs.
//
// The empty string is not a token; it denotes "start from the beginning"
// and is handled by callers before Decode is reached.
type Codec interface {
	Encode(id uint64) string
	Decode(token string) (uint64, error)
}

// defaultCodec encodes identifiers in base 36. The token format is
// deliberately decoupled from any storage engine's native id type; it only
// assumes the identifier fits in a uint64.
type defaultCodec struct{}

// NewDefaultCodec creates the default pagination token codec.
func NewDefaultCodec() Codec {
	return defaultCodec{}
}

func (defaultCodec) Encode(id uint64) string {
	return strconv.FormatUint(id, encodingBase)
}

// Decode parses a token produced by Encode. Any string that does not parse
// as a base-36 identifier, including the empty string, fails with
// ErrInvalidCursor.
func (defaultCodec) Decode(token string) (uint64, error) {
	if token == "" {
		return 0, fmt.Errorf("%w: empty token", ErrInvalidCursor)
	}
	id, err := strconv.ParseUint(token, encodingBase, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCursor, token)
	}
	return id, nil
}
