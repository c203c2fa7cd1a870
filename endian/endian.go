// Package endian encodes fixed-width integers in the one byte order used for
// everything written to a mapped region.
//
// The order is big-endian and never changes: a region written on one
// architecture decodes identically on any other.
package endian

import (
	"encoding/binary"
	"errors"
	"unsafe"
)

// ErrShortBuffer is returned when a buffer is too small to hold the value.
// Inside a mapped region this means the region is truncated or corrupt.
var ErrShortBuffer = errors.New("endian: buffer too short")

// Integer is the set of integer types that can be stored in a region.
// Platform-sized int and uint are deliberately absent.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Order is the byte order of every multi-byte scalar in a region.
var Order = binary.BigEndian

// Size returns the encoded size of T in bytes.
func Size[T Integer]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Put writes v into the first Size[T]() bytes of b.
// It panics if b is too short.
func Put[T Integer](b []byte, v T) {
	switch Size[T]() {
	case 1:
		b[0] = byte(v)
	case 2:
		Order.PutUint16(b, uint16(v))
	case 4:
		Order.PutUint32(b, uint32(v))
	default:
		Order.PutUint64(b, uint64(v))
	}
}

// Get reads a T from the first Size[T]() bytes of b.
// It panics if b is too short.
func Get[T Integer](b []byte) T {
	switch Size[T]() {
	case 1:
		return T(b[0])
	case 2:
		return T(Order.Uint16(b))
	case 4:
		return T(Order.Uint32(b))
	default:
		return T(Order.Uint64(b))
	}
}

// Encode returns the encoded form of v.
func Encode[T Integer](v T) []byte {
	b := make([]byte, Size[T]())
	Put(b, v)
	return b
}

// Decode decodes a T from b.
func Decode[T Integer](b []byte) (T, error) {
	if len(b) < Size[T]() {
		var zero T
		return zero, ErrShortBuffer
	}
	return Get[T](b), nil
}

// Append appends the encoded form of v to b.
func Append[T Integer](b []byte, v T) []byte {
	n := len(b)
	b = append(b, make([]byte, Size[T]())...)
	Put(b[n:], v)
	return b
}
