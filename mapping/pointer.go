package mapping

import (
	"github.com/hupe1980/mapstruct/endian"
)

// PtrSize is the size of an offset slot.
const PtrSize = 8

// Ptr references an 8-byte slot holding a context-relative offset.
// The zero offset is null.
type Ptr struct {
	Base
}

func (Ptr) BodySize() uint64 { return PtrSize }

func (Ptr) Bind(ctx *Context, off uint64) Ptr {
	return Ptr{Base{ctx: ctx, off: off}}
}

// IsNull reports whether the slot holds the null offset.
func (p Ptr) IsNull() bool {
	return Load[uint64](p.ctx, p.off) == 0
}

// Target returns the stored offset, or ErrNullPointer.
func (p Ptr) Target() (uint64, error) {
	t := Load[uint64](p.ctx, p.off)
	if t == 0 {
		return 0, ErrNullPointer
	}
	return t, nil
}

// SetTarget stores off in the slot.
func (p Ptr) SetTarget(off uint64) {
	Store(p.ctx, p.off, off)
}

// Clear stores the null offset.
func (p Ptr) Clear() {
	p.SetTarget(0)
}

func checkSameContext(p, target *Context) error {
	if p != target {
		return ErrForeignContext
	}
	return nil
}

// OffsetPtr is a slot pointing at a scalar in the same context.
type OffsetPtr[T endian.Integer] struct {
	Ptr
}

func (OffsetPtr[T]) BodySize() uint64 { return PtrSize }

func (OffsetPtr[T]) Bind(ctx *Context, off uint64) OffsetPtr[T] {
	return OffsetPtr[T]{Ptr{Base{ctx: ctx, off: off}}}
}

// Deref returns the pointed-at value, or ErrNullPointer.
func (p OffsetPtr[T]) Deref() (Value[T], error) {
	t, err := p.Target()
	if err != nil {
		return Value[T]{}, err
	}
	return Wrap[Value[T]](p.ctx, t), nil
}

// Set points the slot at v.
func (p OffsetPtr[T]) Set(v Value[T]) error {
	if err := checkSameContext(p.ctx, v.ctx); err != nil {
		return err
	}
	p.SetTarget(v.off)
	return nil
}

// OffsetTo is a slot pointing at an R body in the same context.
type OffsetTo[R Ref[R]] struct {
	Ptr
}

func (OffsetTo[R]) BodySize() uint64 { return PtrSize }

func (OffsetTo[R]) Bind(ctx *Context, off uint64) OffsetTo[R] {
	return OffsetTo[R]{Ptr{Base{ctx: ctx, off: off}}}
}

// Get returns the pointed-at reference, or ErrNullPointer.
func (p OffsetTo[R]) Get() (R, error) {
	t, err := p.Target()
	if err != nil {
		var zero R
		return zero, err
	}
	return Wrap[R](p.ctx, t), nil
}

// Set points the slot at r.
func (p OffsetTo[R]) Set(r R) error {
	if err := checkSameContext(p.ctx, r.Context()); err != nil {
		return err
	}
	p.SetTarget(r.Offset())
	return nil
}
