package mapping

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned for an index at or beyond a container's size.
	ErrOutOfBounds = errors.New("mapping: index out of bounds")
	// ErrNullPointer is returned when dereferencing an offset pointer that holds the null offset.
	ErrNullPointer = errors.New("mapping: null offset pointer")
	// ErrOutOfSpace is returned when the backing region cannot grow any further.
	// The context stays usable for reads; the requested growth did not happen.
	ErrOutOfSpace = errors.New("mapping: out of space")
	// ErrForeignContext is returned when pointing at a body that lives in another context.
	ErrForeignContext = errors.New("mapping: reference belongs to another context")
	// ErrInvalidSize is returned for zero-byte allocations.
	ErrInvalidSize = errors.New("mapping: invalid allocation size")
	// ErrClosed is returned by operations on a closed context.
	ErrClosed = errors.New("mapping: context is closed")
	// ErrBadMagic is returned when opening a region that was never formatted.
	ErrBadMagic = errors.New("mapping: bad magic")
	// ErrUnsupportedVersion is returned for regions written by a newer layout version.
	ErrUnsupportedVersion = errors.New("mapping: unsupported layout version")
	// ErrCorrupt is returned when the header contradicts the region.
	ErrCorrupt = errors.New("mapping: corrupt region")
)

// IndexError reports an out-of-bounds access.
// It matches ErrOutOfBounds with errors.Is.
type IndexError struct {
	Index uint64
	Size  uint64
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("mapping: index %d out of bounds for size %d", e.Index, e.Size)
}

func (e *IndexError) Unwrap() error { return ErrOutOfBounds }

// CheckIndex returns an *IndexError unless i < size.
func CheckIndex(i, size uint64) error {
	if i >= size {
		return &IndexError{Index: i, Size: size}
	}
	return nil
}
