package intvec

import (
	"fmt"

	"github.com/hupe1980/mapstruct/internal/conv"
	"github.com/hupe1980/mapstruct/mapping"
)

// IntVector body layout.
const (
	intOffsetLength = 0
	intOffsetWidth  = 8
	intOffsetData   = 16

	// IntVectorBodySize is the size of an IntVector body.
	IntVectorBodySize = 24
)

// IntVector stores unsigned integers in fixed byte-aligned slots of 8, 16, 32
// or 64 bits, big-endian. It trades space for the cheapest possible access.
type IntVector struct {
	mapping.Base
}

// NewIntVector allocates an empty vector with entries of width bits.
func NewIntVector(ctx *mapping.Context, width uint) (IntVector, error) {
	v, err := mapping.Alloc[IntVector](ctx)
	if err != nil {
		return IntVector{}, err
	}
	if err := v.Init(width); err != nil {
		return IntVector{}, err
	}
	return v, nil
}

func (IntVector) BodySize() uint64 { return IntVectorBodySize }

func (IntVector) Bind(ctx *mapping.Context, off uint64) IntVector {
	return IntVector{mapping.NewBase(ctx, off)}
}

// Init sets the entry width of an empty vector.
func (v IntVector) Init(width uint) error {
	switch width {
	case 8, 16, 32, 64:
	default:
		return fmt.Errorf("%w: %d bits is not byte aligned", ErrInvalidWidth, width)
	}
	if v.Size() > 0 {
		return fmt.Errorf("%w: vector is not empty", ErrInvalidWidth)
	}
	mapping.Store(v.Context(), v.Field(intOffsetWidth), uint64(width))
	return nil
}

// Width returns the entry width in bits.
func (v IntVector) Width() uint {
	return uint(mapping.Load[uint64](v.Context(), v.Field(intOffsetWidth)))
}

// Size returns the number of entries.
func (v IntVector) Size() uint64 {
	return mapping.Load[uint64](v.Context(), v.Field(intOffsetLength))
}

func (v IntVector) data() uint64 {
	return mapping.Load[uint64](v.Context(), v.Field(intOffsetData))
}

func (v IntVector) stride() (uint64, error) {
	w := v.Width()
	if w == 0 {
		return 0, ErrInvalidWidth
	}
	return uint64(w / 8), nil
}

// Resize sets the number of entries. New entries read zero.
func (v IntVector) Resize(n uint64) error {
	stride, err := v.stride()
	if err != nil {
		return err
	}
	ctx := v.Context()
	size := v.Size()
	if n <= size {
		mapping.Store(ctx, v.Field(intOffsetLength), n)
		return nil
	}

	oldBytes, err := conv.MulUint64(size, stride)
	if err != nil {
		return err
	}
	newBytes, err := conv.MulUint64(n, stride)
	if err != nil {
		return fmt.Errorf("%w: %d entries", mapping.ErrOutOfSpace, n)
	}

	moved, err := ctx.GrowRun(v.data(), oldBytes, newBytes)
	if err != nil {
		return err
	}

	mapping.Store(ctx, v.Field(intOffsetData), moved)
	mapping.Store(ctx, v.Field(intOffsetLength), n)

	return nil
}

// Get returns entry i.
func (v IntVector) Get(i uint64) (uint64, error) {
	if err := mapping.CheckIndex(i, v.Size()); err != nil {
		return 0, err
	}
	ctx := v.Context()
	off := v.data() + i*uint64(v.Width()/8)

	switch v.Width() {
	case 8:
		return uint64(mapping.Load[uint8](ctx, off)), nil
	case 16:
		return uint64(mapping.Load[uint16](ctx, off)), nil
	case 32:
		return uint64(mapping.Load[uint32](ctx, off)), nil
	default:
		return mapping.Load[uint64](ctx, off), nil
	}
}

// Set stores x at entry i. Values wider than the entry are rejected.
func (v IntVector) Set(i, x uint64) error {
	if err := mapping.CheckIndex(i, v.Size()); err != nil {
		return err
	}
	w := v.Width()
	if err := checkFits(x, w); err != nil {
		return err
	}
	ctx := v.Context()
	off := v.data() + i*uint64(w/8)

	switch w {
	case 8:
		mapping.Store(ctx, off, uint8(x))
	case 16:
		mapping.Store(ctx, off, uint16(x))
	case 32:
		mapping.Store(ctx, off, uint32(x))
	default:
		mapping.Store(ctx, off, x)
	}
	return nil
}

// Append adds x as the last entry.
func (v IntVector) Append(x uint64) error {
	w := v.Width()
	if w == 0 {
		return ErrInvalidWidth
	}
	if err := checkFits(x, w); err != nil {
		return err
	}
	n := v.Size()
	if err := v.Resize(n + 1); err != nil {
		return err
	}
	return v.Set(n, x)
}
