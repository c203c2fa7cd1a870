package intvec

import (
	"github.com/hupe1980/mapstruct/mapping"
)

// Array is the common surface of the integer vectors.
type Array interface {
	Size() uint64
	Resize(n uint64) error
	Get(i uint64) (uint64, error)
	Set(i, v uint64) error
	// Width returns the entry width in bits.
	Width() uint
}

var (
	_ Array = IntVector{}
	_ Array = PackedVector{}
	_ Array = PagedVector{}
	_ Array = (*ArrayContext)(nil)
)

// ArrayContext hands out EntryRef proxies over an Array, so bit-packed
// entries can be passed around like any other reference.
type ArrayContext struct {
	a Array
}

// NewArrayContext wraps a.
func NewArrayContext(a Array) *ArrayContext {
	return &ArrayContext{a: a}
}

// Array returns the wrapped array.
func (c *ArrayContext) Array() Array { return c.a }

func (c *ArrayContext) Size() uint64 { return c.a.Size() }

// Resize resizes the wrapped array. Every EntryRef obtained before is invalid
// afterwards.
func (c *ArrayContext) Resize(n uint64) error { return c.a.Resize(n) }

func (c *ArrayContext) Get(i uint64) (uint64, error) { return c.a.Get(i) }

func (c *ArrayContext) Set(i, v uint64) error { return c.a.Set(i, v) }

func (c *ArrayContext) Width() uint { return c.a.Width() }

// At returns a proxy for entry i.
func (c *ArrayContext) At(i uint64) (EntryRef, error) {
	if err := mapping.CheckIndex(i, c.a.Size()); err != nil {
		return EntryRef{}, err
	}
	return EntryRef{ctx: c, index: i}, nil
}

// EntryRef stands in for one entry of a packed array. It is not an address:
// reads decode the entry and writes encode it through the array's packing.
//
// An EntryRef must not be used after the array is resized.
type EntryRef struct {
	ctx   *ArrayContext
	index uint64
}

// Index returns the entry index.
func (r EntryRef) Index() uint64 { return r.index }

// Get decodes the entry.
func (r EntryRef) Get() (uint64, error) {
	return r.ctx.a.Get(r.index)
}

// Set encodes v into the entry.
func (r EntryRef) Set(v uint64) error {
	return r.ctx.a.Set(r.index, v)
}

// Assign copies the value of other into r. The two may belong to different arrays.
func (r EntryRef) Assign(other EntryRef) error {
	v, err := other.Get()
	if err != nil {
		return err
	}
	return r.Set(v)
}
