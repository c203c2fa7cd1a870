package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is wrapped by every failed conversion.
var ErrOverflow = errors.New("integer overflow")

func overflow(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrOverflow}, args...)...)
}

// Uint64ToInt converts a size read from a region into an int usable for slicing.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, overflow("%d does not fit in int", v)
	}
	return int(v), nil
}

// Uint64ToInt64 converts v for APIs that count bytes in int64.
func Uint64ToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, overflow("%d does not fit in int64", v)
	}
	return int64(v), nil
}

// IntToUint32 converts v into a 32-bit on-disk field.
func IntToUint32(v int) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, overflow("%d does not fit in uint32", v)
	}
	return uint32(v), nil
}

// MulUint64 multiplies a and b, failing instead of wrapping around.
func MulUint64(a, b uint64) (uint64, error) {
	if a != 0 && b > math.MaxUint64/a {
		return 0, overflow("%d * %d", a, b)
	}
	return a * b, nil
}

// AddUint64 adds a and b, failing instead of wrapping around.
func AddUint64(a, b uint64) (uint64, error) {
	if b > math.MaxUint64-a {
		return 0, overflow("%d + %d", a, b)
	}
	return a + b, nil
}
