package intvec

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWidth is returned for unsupported entry widths and for
	// vectors used before their width was set.
	ErrInvalidWidth = errors.New("intvec: invalid width")
	// ErrWidthOverflow is returned when a value needs more bits than the entry width.
	ErrWidthOverflow = errors.New("intvec: value exceeds entry width")
	// ErrInvalidPageSize is returned for a zero page size.
	ErrInvalidPageSize = errors.New("intvec: invalid page size")
)

// OverflowError reports a value that does not fit the entry width.
// The stored entry is left unchanged.
type OverflowError struct {
	Value uint64
	Width uint
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("intvec: value %d does not fit in %d bits", e.Value, e.Width)
}

func (e *OverflowError) Unwrap() error { return ErrWidthOverflow }

func checkFits(v uint64, width uint) error {
	if width < 64 && v>>width != 0 {
		return &OverflowError{Value: v, Width: width}
	}
	return nil
}

// BitsFor returns the smallest width able to hold v.
func BitsFor(v uint64) uint {
	w := uint(1)
	for v>>w != 0 && w < 64 {
		w++
	}
	return w
}

func mask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return 1<<width - 1
}
