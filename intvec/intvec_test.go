package intvec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mapstruct/mapping"
	"github.com/hupe1980/mapstruct/testutil"
)

func TestPackedVector_WidthEnforcement(t *testing.T) {
	ctx := testutil.NewContext(t)

	v, err := NewPackedVector(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, v.Resize(100))

	require.NoError(t, v.Set(50, 31))
	got, err := v.Get(50)
	require.NoError(t, err)
	assert.Equal(t, uint64(31), got)

	err = v.Set(50, 32)
	var oe *OverflowError
	require.ErrorAs(t, err, &oe)
	assert.ErrorIs(t, err, ErrWidthOverflow)
	assert.Equal(t, uint64(32), oe.Value)
	assert.Equal(t, uint(5), oe.Width)

	got, err = v.Get(50)
	require.NoError(t, err)
	assert.Equal(t, uint64(31), got)

	// Neighbours untouched.
	for _, i := range []uint64{49, 51} {
		got, err := v.Get(i)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), got)
	}
}

func TestPackedVector_Bounds(t *testing.T) {
	ctx := testutil.NewContext(t)

	v, err := NewPackedVector(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, v.Resize(10))

	_, err = v.Get(9)
	require.NoError(t, err)
	_, err = v.Get(10)
	assert.ErrorIs(t, err, mapping.ErrOutOfBounds)
	assert.ErrorIs(t, v.Set(10, 1), mapping.ErrOutOfBounds)
}

func TestPackedVector_InvalidWidth(t *testing.T) {
	ctx := testutil.NewContext(t)

	_, err := NewPackedVector(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidWidth)
	_, err = NewPackedVector(ctx, 65)
	assert.ErrorIs(t, err, ErrInvalidWidth)

	// A zero body has no width yet.
	raw, err := mapping.Alloc[PackedVector](ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, raw.Resize(1), ErrInvalidWidth)
	assert.ErrorIs(t, raw.Append(1), ErrInvalidWidth)
}

func TestPackedVector_AppendGrowsAndPreserves(t *testing.T) {
	ctx := testutil.NewContext(t)

	v, err := NewPackedVector(ctx, 13)
	require.NoError(t, err)
	// Interleave with other allocations so growth must relocate.
	other, err := NewPackedVector(ctx, 7)
	require.NoError(t, err)

	for i := range uint64(1000) {
		require.NoError(t, v.Append(i*7%8192))
		require.NoError(t, other.Append(i%128))
	}
	assert.Equal(t, uint64(1000), v.Size())
	assert.GreaterOrEqual(t, v.Capacity(), uint64(1000))

	for i := range uint64(1000) {
		got, err := v.Get(i)
		require.NoError(t, err)
		require.Equal(t, i*7%8192, got)
		got, err = other.Get(i)
		require.NoError(t, err)
		require.Equal(t, i%128, got)
	}
}

func TestPackedVector_ShrinkClears(t *testing.T) {
	ctx := testutil.NewContext(t)

	v, err := NewPackedVector(ctx, 9)
	require.NoError(t, err)
	require.NoError(t, v.Resize(20))
	for i := range uint64(20) {
		require.NoError(t, v.Set(i, 511))
	}

	require.NoError(t, v.Resize(5))
	require.NoError(t, v.Resize(20))
	for i := range uint64(20) {
		got, err := v.Get(i)
		require.NoError(t, err)
		if i < 5 {
			assert.Equal(t, uint64(511), got)
		} else {
			assert.Equal(t, uint64(0), got, "index %d", i)
		}
	}
}

func TestPackedVector_Repack(t *testing.T) {
	ctx := testutil.NewContext(t)

	v, err := NewPackedVector(ctx, 4)
	require.NoError(t, err)
	for _, x := range []uint64{1, 15, 7, 0, 9} {
		require.NoError(t, v.Append(x))
	}

	require.NoError(t, v.Repack(20))
	assert.Equal(t, uint(20), v.Width())
	require.NoError(t, v.Append(1<<19))

	err = v.Repack(4)
	assert.ErrorIs(t, err, ErrWidthOverflow)
	assert.Equal(t, uint(20), v.Width())

	require.NoError(t, v.Resize(5))
	require.NoError(t, v.Repack(4))

	var got []uint64
	for i := range v.Size() {
		x, err := v.Get(i)
		require.NoError(t, err)
		got = append(got, x)
	}
	assert.Equal(t, []uint64{1, 15, 7, 0, 9}, got)
}

func TestPackedVector_RandomWidths(t *testing.T) {
	ctx := testutil.NewContext(t)
	rng := testutil.NewRNG(7)

	for _, width := range []uint{1, 3, 8, 17, 31, 47, 63} {
		want := rng.Values(257, width)

		v, err := NewPackedVector(ctx, width)
		require.NoError(t, err)
		require.NoError(t, v.Resize(uint64(len(want))))
		for i := len(want) - 1; i >= 0; i-- {
			require.NoError(t, v.Set(uint64(i), want[i]))
		}
		for i, x := range want {
			got, err := v.Get(uint64(i))
			require.NoError(t, err)
			require.Equal(t, x, got, "width %d index %d", width, i)
		}
	}
}

func TestPackedVector_Width64(t *testing.T) {
	ctx := testutil.NewContext(t)

	v, err := NewPackedVector(ctx, 64)
	require.NoError(t, err)
	require.NoError(t, v.Append(^uint64(0)))
	require.NoError(t, v.Append(1))

	got, err := v.Get(0)
	require.NoError(t, err)
	assert.Equal(t, ^uint64(0), got)
}

func TestIntVector(t *testing.T) {
	ctx := testutil.NewContext(t)

	_, err := NewIntVector(ctx, 12)
	require.ErrorIs(t, err, ErrInvalidWidth)

	for _, width := range []uint{8, 16, 32, 64} {
		v, err := NewIntVector(ctx, width)
		require.NoError(t, err)
		assert.Equal(t, width, v.Width())

		top := mask(width)
		require.NoError(t, v.Append(top))
		require.NoError(t, v.Append(1))
		if width < 64 {
			assert.ErrorIs(t, v.Append(top+1), ErrWidthOverflow)
		}
		assert.Equal(t, uint64(2), v.Size())

		got, err := v.Get(0)
		require.NoError(t, err)
		assert.Equal(t, top, got)

		_, err = v.Get(2)
		assert.ErrorIs(t, err, mapping.ErrOutOfBounds)
	}
}

func TestIntVector_BigEndianEntries(t *testing.T) {
	ctx := testutil.NewContext(t)

	v, err := NewIntVector(ctx, 16)
	require.NoError(t, err)
	require.NoError(t, v.Append(0x0102))

	data := mapping.Load[uint64](ctx, v.Offset()+intOffsetData)
	assert.Equal(t, []byte{0x01, 0x02}, ctx.Slice(data, 2))
}

func TestPagedVector_PagesAndTail(t *testing.T) {
	ctx := testutil.NewContext(t)

	v, err := NewPagedVectorSize(ctx, 10, 64)
	require.NoError(t, err)
	assert.Equal(t, uint64(64), v.PageSize())

	require.NoError(t, v.Resize(130))
	assert.Equal(t, uint64(3), v.Pages())

	for i := range uint64(130) {
		require.NoError(t, v.Set(i, i*3))
	}
	for i := range uint64(130) {
		got, err := v.Get(i)
		require.NoError(t, err)
		require.Equal(t, i*3, got)
	}

	// The tail page has room for 62 more entries, but they are not readable.
	_, err = v.Get(130)
	assert.ErrorIs(t, err, mapping.ErrOutOfBounds)
	_, err = v.Get(191)
	assert.ErrorIs(t, err, mapping.ErrOutOfBounds)

	require.NoError(t, v.Resize(64))
	assert.Equal(t, uint64(1), v.Pages())
	_, err = v.Get(64)
	assert.ErrorIs(t, err, mapping.ErrOutOfBounds)

	require.NoError(t, v.Resize(200))
	assert.Equal(t, uint64(4), v.Pages())
	got, err := v.Get(63)
	require.NoError(t, err)
	assert.Equal(t, uint64(189), got)
	for _, i := range []uint64{64, 129, 199} {
		got, err := v.Get(i)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), got, "index %d", i)
	}
}

func TestPagedVector_AppendAndOverflow(t *testing.T) {
	ctx := testutil.NewContext(t)

	v, err := NewPagedVector(ctx, 8)
	require.NoError(t, err)
	for i := range uint64(600) {
		require.NoError(t, v.Append(i%256))
	}
	assert.Equal(t, uint64(3), v.Pages())
	assert.ErrorIs(t, v.Append(256), ErrWidthOverflow)
	assert.Equal(t, uint64(600), v.Size())

	got, err := v.Get(599)
	require.NoError(t, err)
	assert.Equal(t, uint64(599%256), got)

	_, err = NewPagedVectorSize(ctx, 8, 0)
	assert.ErrorIs(t, err, ErrInvalidPageSize)
}

func TestPackedVector_OutOfSpaceLeavesVector(t *testing.T) {
	ctx := testutil.NewContext(t, mapping.WithMaxSize(4096))

	v, err := NewPackedVector(ctx, 12)
	require.NoError(t, err)
	require.NoError(t, v.Resize(10))
	require.NoError(t, v.Set(9, 4000))

	require.ErrorIs(t, v.Resize(1<<20), mapping.ErrOutOfSpace)
	assert.Equal(t, uint64(10), v.Size())
	got, err := v.Get(9)
	require.NoError(t, err)
	assert.Equal(t, uint64(4000), got)

	require.NoError(t, v.Append(1))
	assert.Equal(t, uint64(11), v.Size())
}

func TestPagedVector_OutOfSpaceLeavesVector(t *testing.T) {
	ctx := testutil.NewContext(t, mapping.WithMaxSize(64<<10))

	v, err := NewPagedVectorSize(ctx, 64, 4096)
	require.NoError(t, err)
	require.NoError(t, v.Resize(100))
	require.NoError(t, v.Set(99, 7))

	// The old last page grows to a full page before the next page runs out.
	require.ErrorIs(t, v.Resize(3*4096), mapping.ErrOutOfSpace)
	assert.Equal(t, uint64(100), v.Size())
	assert.Equal(t, uint64(1), v.Pages())
	got, err := v.Get(99)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got)
	_, err = v.Get(100)
	assert.ErrorIs(t, err, mapping.ErrOutOfBounds)

	page, err := v.pages().At(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), page.Size())

	require.NoError(t, v.Resize(200))
	got, err = v.Get(150)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)
}

func TestPagedVector_Reopen(t *testing.T) {
	ctx := testutil.NewContext(t)

	v, err := NewPagedVectorSize(ctx, 17, 16)
	require.NoError(t, err)
	for i := range uint64(50) {
		require.NoError(t, v.Append(i<<10))
	}
	ctx.SetRoot(v.Offset())

	reopened := testutil.Reopen(t, ctx)
	again := mapping.Wrap[PagedVector](reopened, reopened.Root())
	assert.Equal(t, uint64(50), again.Size())
	got, err := again.Get(49)
	require.NoError(t, err)
	assert.Equal(t, uint64(49<<10), got)
}

func TestArrayContext_EntryRef(t *testing.T) {
	ctx := testutil.NewContext(t)

	packed, err := NewPackedVector(ctx, 6)
	require.NoError(t, err)
	paged, err := NewPagedVectorSize(ctx, 6, 4)
	require.NoError(t, err)

	a := NewArrayContext(packed)
	b := NewArrayContext(paged)
	require.NoError(t, a.Resize(10))
	require.NoError(t, b.Resize(10))
	assert.Equal(t, uint(6), a.Width())

	ra, err := a.At(7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), ra.Index())
	require.NoError(t, ra.Set(42))

	rb, err := b.At(9)
	require.NoError(t, err)
	require.NoError(t, rb.Assign(ra))

	got, err := paged.Get(9)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got)

	assert.ErrorIs(t, rb.Set(64), ErrWidthOverflow)
	got, err = rb.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got)

	_, err = a.At(10)
	assert.ErrorIs(t, err, mapping.ErrOutOfBounds)
}

func TestArrayContext_NestedInVector(t *testing.T) {
	ctx := testutil.NewContext(t)

	// Packed vectors are references, so they nest in mapped vectors.
	rows, err := mapping.NewVector[PackedVector](ctx)
	require.NoError(t, err)
	require.NoError(t, rows.Resize(2))

	for i := range uint64(2) {
		row, err := rows.At(i)
		require.NoError(t, err)
		require.NoError(t, row.Init(uint(i+2)))
		require.NoError(t, row.Append(i+1))
	}

	row, err := rows.At(1)
	require.NoError(t, err)
	assert.Equal(t, uint(3), row.Width())
	got, err := row.Get(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got)
}
