package intvec

import (
	"fmt"

	"github.com/hupe1980/mapstruct/mapping"
)

// PagedVector body layout. The page table is an embedded mapping.Vector.
const (
	pagedOffsetLength   = 0
	pagedOffsetPageSize = 8
	pagedOffsetWidth    = 16
	pagedOffsetPages    = 24

	// PagedVectorBodySize is the size of a PagedVector body.
	PagedVectorBodySize = pagedOffsetPages + mapping.VectorBodySize
)

// DefaultPageSize is the number of entries per page used by NewPagedVector.
const DefaultPageSize = 256

// PagedVector splits its index space into fixed-size pages, each an
// independent PackedVector. Growing allocates whole pages only, so no single
// run ever exceeds one page and growth never copies existing entries.
//
// The last page may be partly used. Entries past Size in that page are not
// readable.
type PagedVector struct {
	mapping.Base
}

// NewPagedVector allocates an empty paged vector with DefaultPageSize pages.
func NewPagedVector(ctx *mapping.Context, width uint) (PagedVector, error) {
	return NewPagedVectorSize(ctx, width, DefaultPageSize)
}

// NewPagedVectorSize allocates an empty paged vector with pages of pageSize entries.
func NewPagedVectorSize(ctx *mapping.Context, width uint, pageSize uint64) (PagedVector, error) {
	v, err := mapping.Alloc[PagedVector](ctx)
	if err != nil {
		return PagedVector{}, err
	}
	if err := v.Init(width, pageSize); err != nil {
		return PagedVector{}, err
	}
	return v, nil
}

func (PagedVector) BodySize() uint64 { return PagedVectorBodySize }

func (PagedVector) Bind(ctx *mapping.Context, off uint64) PagedVector {
	return PagedVector{mapping.NewBase(ctx, off)}
}

// Init sets the entry width and page size of an empty vector.
func (v PagedVector) Init(width uint, pageSize uint64) error {
	if err := validWidth(width); err != nil {
		return err
	}
	if pageSize == 0 {
		return ErrInvalidPageSize
	}
	if v.Size() > 0 {
		return fmt.Errorf("%w: vector is not empty", ErrInvalidWidth)
	}
	v.store(pagedOffsetWidth, uint64(width))
	v.store(pagedOffsetPageSize, pageSize)
	return nil
}

func (v PagedVector) load(field uint64) uint64 {
	return mapping.Load[uint64](v.Context(), v.Field(field))
}

func (v PagedVector) store(field, x uint64) {
	mapping.Store(v.Context(), v.Field(field), x)
}

func (v PagedVector) pages() mapping.Vector[PackedVector] {
	return mapping.Wrap[mapping.Vector[PackedVector]](v.Context(), v.Field(pagedOffsetPages))
}

// Width returns the entry width in bits.
func (v PagedVector) Width() uint {
	return uint(v.load(pagedOffsetWidth))
}

// PageSize returns the number of entries per page.
func (v PagedVector) PageSize() uint64 {
	return v.load(pagedOffsetPageSize)
}

// Pages returns the number of allocated pages.
func (v PagedVector) Pages() uint64 {
	return v.pages().Size()
}

// Size returns the number of entries.
func (v PagedVector) Size() uint64 {
	return v.load(pagedOffsetLength)
}

// Resize sets the number of entries, adding or dropping whole pages.
// New entries read zero.
func (v PagedVector) Resize(n uint64) error {
	w, ps := v.Width(), v.PageSize()
	if w == 0 || ps == 0 {
		return ErrInvalidWidth
	}

	need := n / ps
	if n%ps != 0 {
		need++
	}

	pages := v.pages()
	have := pages.Size()

	// Remember the old last page so a failed grow can restore it.
	var (
		last     PackedVector
		lastSize uint64
	)
	if have > 0 {
		p, err := pages.At(have - 1)
		if err != nil {
			return err
		}
		last, lastSize = p, p.Size()
	}
	rollback := func(err error) error {
		if have > 0 {
			_ = last.Resize(lastSize)
		}
		_ = pages.Resize(have)
		return err
	}

	if err := pages.Resize(need); err != nil {
		return err
	}
	if need > have && have > 0 {
		// The page table may have moved.
		last, _ = pages.At(have - 1)
	}

	// Only the old last page and the new pages change size.
	from := min(have, need)
	if from > 0 {
		from--
	}
	for k := from; k < need; k++ {
		page, err := pages.At(k)
		if err != nil {
			return rollback(err)
		}
		if page.Width() == 0 {
			if err := page.Init(w); err != nil {
				return rollback(err)
			}
		}
		want := ps
		if k == need-1 && n%ps != 0 {
			want = n % ps
		}
		if err := page.Resize(want); err != nil {
			return rollback(err)
		}
	}

	v.store(pagedOffsetLength, n)
	return nil
}

func (v PagedVector) locate(i uint64) (PackedVector, uint64, error) {
	if err := mapping.CheckIndex(i, v.Size()); err != nil {
		return PackedVector{}, 0, err
	}
	ps := v.PageSize()
	page, err := v.pages().At(i / ps)
	if err != nil {
		return PackedVector{}, 0, err
	}
	return page, i % ps, nil
}

// Get returns entry i.
func (v PagedVector) Get(i uint64) (uint64, error) {
	page, j, err := v.locate(i)
	if err != nil {
		return 0, err
	}
	return page.Get(j)
}

// Set stores x at entry i.
func (v PagedVector) Set(i, x uint64) error {
	page, j, err := v.locate(i)
	if err != nil {
		return err
	}
	return page.Set(j, x)
}

// Append adds x as the last entry.
func (v PagedVector) Append(x uint64) error {
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
