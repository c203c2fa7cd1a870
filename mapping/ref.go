package mapping

import (
	"fmt"

	"github.com/hupe1980/mapstruct/endian"
)

// Base is the state every reference carries: the context it resolves through
// and the offset of its body. Reference types embed it.
//
// References are values. Copying one never copies the body it points at.
type Base struct {
	ctx *Context
	off uint64
}

// NewBase returns a Base for the body at off in ctx.
func NewBase(ctx *Context, off uint64) Base {
	return Base{ctx: ctx, off: off}
}

// Context returns the context the reference resolves through.
func (b Base) Context() *Context {
	return b.ctx
}

// Offset returns the offset of the body.
func (b Base) Offset() uint64 {
	return b.off
}

// Field returns the offset of the field delta bytes into the body.
func (b Base) Field(delta uint64) uint64 {
	return b.off + delta
}

// IsZero reports whether the reference is unbound.
func (b Base) IsZero() bool {
	return b.ctx == nil
}

// Ref is the protocol every mapped reference type satisfies.
//
// BodySize and Bind must work on the zero value of R: they describe the
// layout of R and produce a bound reference from a raw offset.
type Ref[R any] interface {
	BodySize() uint64
	Bind(ctx *Context, off uint64) R
	Context() *Context
	Offset() uint64
}

// BodySize returns the size in bytes of an R body.
func BodySize[R Ref[R]]() uint64 {
	var zero R
	return zero.BodySize()
}

// Alloc allocates a zeroed R body in ctx and returns a reference to it.
func Alloc[R Ref[R]](ctx *Context) (R, error) {
	var zero R
	off, err := ctx.Allocate(zero.BodySize())
	if err != nil {
		return zero, err
	}
	return zero.Bind(ctx, off), nil
}

// Wrap returns a reference to the R body already at off.
func Wrap[R Ref[R]](ctx *Context, off uint64) R {
	var zero R
	return zero.Bind(ctx, off)
}

// Value references a single big-endian integer stored in a context.
type Value[T endian.Integer] struct {
	Base
}

// Scalar references.
type (
	Int8Ref   = Value[int8]
	Int16Ref  = Value[int16]
	Int32Ref  = Value[int32]
	Int64Ref  = Value[int64]
	Uint8Ref  = Value[uint8]
	Uint16Ref = Value[uint16]
	Uint32Ref = Value[uint32]
	Uint64Ref = Value[uint64]
)

func (Value[T]) BodySize() uint64 {
	return uint64(endian.Size[T]())
}

func (Value[T]) Bind(ctx *Context, off uint64) Value[T] {
	return Value[T]{Base{ctx: ctx, off: off}}
}

// Get decodes the value.
func (v Value[T]) Get() T {
	return Load[T](v.ctx, v.off)
}

// Set encodes x in place.
func (v Value[T]) Set(x T) {
	Store(v.ctx, v.off, x)
}

func (v Value[T]) String() string {
	if v.IsZero() {
		return "<unbound>"
	}
	return fmt.Sprint(v.Get())
}
