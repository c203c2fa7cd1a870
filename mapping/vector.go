package mapping

import (
	"fmt"
	"iter"

	"github.com/hupe1980/mapstruct/internal/conv"
)

// Vector body layout.
const (
	vectorOffsetLength = 0
	vectorOffsetFirst  = 8

	// VectorBodySize is the size of a Vector body.
	VectorBodySize = 16
)

// Vector is a growable sequence of R bodies stored contiguously in a context.
//
// The body holds the logical length and an offset pointer to the first
// element. Elements are zero when they first become visible. Shrinking only
// changes the length; the bytes are reclaimed by Context.Reset.
//
// A Vector is itself a Ref, so vectors nest. Resize may relocate the element
// run: element references obtained before a Resize must not be used after it.
type Vector[R Ref[R]] struct {
	Base
}

// NewVector allocates an empty vector in ctx.
func NewVector[R Ref[R]](ctx *Context) (Vector[R], error) {
	return Alloc[Vector[R]](ctx)
}

func (Vector[R]) BodySize() uint64 { return VectorBodySize }

func (Vector[R]) Bind(ctx *Context, off uint64) Vector[R] {
	return Vector[R]{Base{ctx: ctx, off: off}}
}

// Size returns the number of elements.
func (v Vector[R]) Size() uint64 {
	return Load[uint64](v.ctx, v.off+vectorOffsetLength)
}

// Len is Size as an int, for range loops.
func (v Vector[R]) Len() int {
	n, err := conv.Uint64ToInt(v.Size())
	if err != nil {
		panic(err)
	}
	return n
}

func (v Vector[R]) first() Ptr {
	return Wrap[Ptr](v.ctx, v.off+vectorOffsetFirst)
}

// Resize sets the number of elements to n. Growing keeps the existing
// elements and zeroes the new ones; it fails with ErrOutOfSpace if the
// context cannot grow, leaving the vector unchanged.
func (v Vector[R]) Resize(n uint64) error {
	size := v.Size()
	if n <= size {
		Store(v.ctx, v.off+vectorOffsetLength, n)
		return nil
	}

	item := BodySize[R]()
	oldBytes, err := conv.MulUint64(size, item)
	if err != nil {
		return err
	}
	newBytes, err := conv.MulUint64(n, item)
	if err != nil {
		return fmt.Errorf("%w: %d elements of %d bytes", ErrOutOfSpace, n, item)
	}

	slot := v.first()
	start := Load[uint64](v.ctx, slot.off)

	moved, err := v.ctx.GrowRun(start, oldBytes, newBytes)
	if err != nil {
		return err
	}

	slot.SetTarget(moved)
	Store(v.ctx, v.off+vectorOffsetLength, n)

	return nil
}

// At returns a reference to element i.
func (v Vector[R]) At(i uint64) (R, error) {
	if err := CheckIndex(i, v.Size()); err != nil {
		var zero R
		return zero, err
	}
	start := Load[uint64](v.ctx, v.off+vectorOffsetFirst)
	return Wrap[R](v.ctx, start+i*BodySize[R]()), nil
}

// Append grows the vector by one and returns the new, zeroed element.
func (v Vector[R]) Append() (R, error) {
	n := v.Size()
	if err := v.Resize(n + 1); err != nil {
		var zero R
		return zero, err
	}
	return v.At(n)
}

// All iterates over the elements in index order.
// The vector must not be resized during iteration.
func (v Vector[R]) All() iter.Seq2[uint64, R] {
	return func(yield func(uint64, R) bool) {
		n := v.Size()
		if n == 0 {
			return
		}
		start := Load[uint64](v.ctx, v.off+vectorOffsetFirst)
		item := BodySize[R]()
		for i := range n {
			if !yield(i, Wrap[R](v.ctx, start+i*item)) {
				return
			}
		}
	}
}
