// Package region provides the growable byte regions that mapped structures
// live in.
//
// A Region is "bytes I can read, write, and extend": a stable base for the
// lifetime of a mapping, a way to grow (which may move the base), and a way to
// persist. Memory keeps the bytes on the Go heap; File maps a file read-write.
package region

import (
	"errors"
	"os"
)

var (
	// ErrClosed is returned by operations on a closed region.
	ErrClosed = errors.New("region: closed")
	// ErrLimit is returned when a region cannot grow past its ceiling.
	ErrLimit = errors.New("region: size limit reached")
)

// Region is a growable byte region.
type Region interface {
	// Bytes returns the whole region. The slice is invalidated by Grow and Close.
	Bytes() []byte
	// Len returns the current size of the region in bytes.
	Len() uint64
	// Grow makes the region at least n bytes long. New bytes are zero.
	Grow(n uint64) error
	// Flush persists the region to its backing storage, if it has one.
	Flush() error
	// Close releases the region.
	Close() error
}

// DirtyTracker is implemented by regions that persist only the pages
// that were written since the last Flush.
type DirtyTracker interface {
	MarkDirty(off, n uint64)
}

// pageSize is the growth granularity of every region.
var pageSize = uint64(os.Getpagesize())

// nextSize returns the size a region of cur bytes grows to when it must hold
// at least need bytes: doubling, page rounded, capped at limit (0 = no limit).
func nextSize(cur, need, limit uint64) (uint64, error) {
	if limit > 0 && need > limit {
		return 0, ErrLimit
	}

	size := max(cur*2, need, pageSize)
	if rem := size % pageSize; rem != 0 {
		size += pageSize - rem
	}
	if limit > 0 && size > limit {
		size = limit
	}

	return size, nil
}
