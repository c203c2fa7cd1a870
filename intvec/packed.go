package intvec

import (
	"fmt"

	"github.com/hupe1980/mapstruct/mapping"
)

// PackedVector body layout.
const (
	packedOffsetLength   = 0
	packedOffsetWidth    = 8
	packedOffsetCapacity = 16
	packedOffsetData     = 24

	// PackedVectorBodySize is the size of a PackedVector body.
	PackedVectorBodySize = 32
)

// PackedVector stores unsigned integers of any width from 1 to 64 bits back
// to back in a bit stream.
//
// Capacity grows by doubling. Bits past Size are always zero, so entries
// that become visible again after a shrink read zero.
type PackedVector struct {
	mapping.Base
}

// NewPackedVector allocates an empty vector with entries of width bits.
func NewPackedVector(ctx *mapping.Context, width uint) (PackedVector, error) {
	v, err := mapping.Alloc[PackedVector](ctx)
	if err != nil {
		return PackedVector{}, err
	}
	if err := v.Init(width); err != nil {
		return PackedVector{}, err
	}
	return v, nil
}

func (PackedVector) BodySize() uint64 { return PackedVectorBodySize }

func (PackedVector) Bind(ctx *mapping.Context, off uint64) PackedVector {
	return PackedVector{mapping.NewBase(ctx, off)}
}

func validWidth(width uint) error {
	if width < 1 || width > 64 {
		return fmt.Errorf("%w: %d bits", ErrInvalidWidth, width)
	}
	return nil
}

// Init sets the entry width of an empty vector. Use Repack on a non-empty one.
func (v PackedVector) Init(width uint) error {
	if err := validWidth(width); err != nil {
		return err
	}
	if v.Size() > 0 {
		return fmt.Errorf("%w: vector is not empty", ErrInvalidWidth)
	}
	v.store(packedOffsetWidth, uint64(width))
	return nil
}

func (v PackedVector) load(field uint64) uint64 {
	return mapping.Load[uint64](v.Context(), v.Field(field))
}

func (v PackedVector) store(field, x uint64) {
	mapping.Store(v.Context(), v.Field(field), x)
}

// Width returns the entry width in bits.
func (v PackedVector) Width() uint {
	return uint(v.load(packedOffsetWidth))
}

// Size returns the number of entries.
func (v PackedVector) Size() uint64 {
	return v.load(packedOffsetLength)
}

// Capacity returns the number of entries the current run can hold.
func (v PackedVector) Capacity() uint64 {
	return v.load(packedOffsetCapacity)
}

// Resize sets the number of entries. New entries read zero; dropped entries
// are cleared.
func (v PackedVector) Resize(n uint64) error {
	w := v.Width()
	if w == 0 {
		return ErrInvalidWidth
	}
	size := v.Size()

	switch {
	case n < size:
		v.clear(n, size, w)
	case n > v.Capacity():
		if err := v.grow(n, w); err != nil {
			return err
		}
	}

	v.store(packedOffsetLength, n)
	return nil
}

func (v PackedVector) clear(from, to uint64, w uint) {
	startBit, endBit := from*uint64(w), to*uint64(w)
	first, last := startBit/8, (endBit-1)/8
	buf := v.Context().Writable(v.load(packedOffsetData)+first, last-first+1)
	clearBits(buf, startBit-first*8, endBit-first*8)
}

func (v PackedVector) grow(n uint64, w uint) error {
	capacity := v.Capacity()
	next := max(n, capacity*2)

	oldBytes, _ := bytesFor(capacity, w)
	newBytes, ok := bytesFor(next, w)
	if !ok {
		newBytes, ok = bytesFor(n, w)
		next = n
		if !ok {
			return fmt.Errorf("%w: %d entries of %d bits", mapping.ErrOutOfSpace, n, w)
		}
	}

	moved, err := v.Context().GrowRun(v.load(packedOffsetData), oldBytes, newBytes)
	if err != nil {
		return err
	}

	v.store(packedOffsetData, moved)
	v.store(packedOffsetCapacity, next)
	return nil
}

func (v PackedVector) get(i uint64, w uint) uint64 {
	return v.getAt(v.load(packedOffsetData), i, w)
}

func (v PackedVector) set(i uint64, w uint, x uint64) {
	bit := i * uint64(w)
	first, n := span(bit, w)
	buf := v.Context().Writable(v.load(packedOffsetData)+first, n)
	setBits(buf, uint(bit%8), w, x)
}

// Get returns entry i.
func (v PackedVector) Get(i uint64) (uint64, error) {
	if err := mapping.CheckIndex(i, v.Size()); err != nil {
		return 0, err
	}
	return v.get(i, v.Width()), nil
}

// Set stores x at entry i. A value wider than the entry width is rejected
// with an *OverflowError and the entry keeps its previous value.
func (v PackedVector) Set(i, x uint64) error {
	if err := mapping.CheckIndex(i, v.Size()); err != nil {
		return err
	}
	w := v.Width()
	if err := checkFits(x, w); err != nil {
		return err
	}
	v.set(i, w, x)
	return nil
}

// Append adds x as the last entry.
func (v PackedVector) Append(x uint64) error {
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
	v.set(n, w, x)
	return nil
}

// Repack rewrites the entries with a new width. Narrowing fails with an
// *OverflowError, leaving the vector untouched, if any entry does not fit.
func (v PackedVector) Repack(width uint) error {
	if err := validWidth(width); err != nil {
		return err
	}
	w := v.Width()
	if w == 0 {
		return v.Init(width)
	}
	if width == w {
		return nil
	}

	size := v.Size()
	if width < w {
		for i := range size {
			if err := checkFits(v.get(i, w), width); err != nil {
				return err
			}
		}
	}

	capacity := v.Capacity()
	if capacity == 0 {
		v.store(packedOffsetWidth, uint64(width))
		return nil
	}
	newBytes, ok := bytesFor(capacity, width)
	if !ok {
		return fmt.Errorf("%w: %d entries of %d bits", mapping.ErrOutOfSpace, capacity, width)
	}

	ctx := v.Context()
	moved, err := ctx.Allocate(newBytes)
	if err != nil {
		return err
	}

	old := v.load(packedOffsetData)
	for i := range size {
		x := v.getAt(old, i, w)
		bit := i * uint64(width)
		first, n := span(bit, width)
		setBits(ctx.Writable(moved+first, n), uint(bit%8), width, x)
	}

	v.store(packedOffsetData, moved)
	v.store(packedOffsetWidth, uint64(width))
	return nil
}

func (v PackedVector) getAt(data, i uint64, w uint) uint64 {
	bit := i * uint64(w)
	first, n := span(bit, w)
	return getBits(v.Context().Slice(data+first, n), uint(bit%8), w)
}
