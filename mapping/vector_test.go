package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mapstruct/region"
)

func TestVector_ResizeWriteTruncate(t *testing.T) {
	ctx := newTestContext(t)

	vec, err := NewVector[Int32Ref](ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), vec.Size())

	require.NoError(t, vec.Resize(3))
	for i, v := range []int32{10, 20, 30} {
		e, err := vec.At(uint64(i))
		require.NoError(t, err)
		e.Set(v)
	}
	for i, want := range []int32{10, 20, 30} {
		e, err := vec.At(uint64(i))
		require.NoError(t, err)
		assert.Equal(t, want, e.Get())
	}

	require.NoError(t, vec.Resize(1))
	assert.Equal(t, uint64(1), vec.Size())
	e, err := vec.At(0)
	require.NoError(t, err)
	assert.Equal(t, int32(10), e.Get())

	_, err = vec.At(1)
	var ie *IndexError
	require.ErrorAs(t, err, &ie)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, uint64(1), ie.Index)
	assert.Equal(t, uint64(1), ie.Size)
}

func TestVector_RegrowIsZeroed(t *testing.T) {
	ctx := newTestContext(t)

	vec, err := NewVector[Uint64Ref](ctx)
	require.NoError(t, err)
	require.NoError(t, vec.Resize(4))
	for i := range uint64(4) {
		e, _ := vec.At(i)
		e.Set(i + 100)
	}

	require.NoError(t, vec.Resize(1))
	require.NoError(t, vec.Resize(4))
	for i := uint64(1); i < 4; i++ {
		e, err := vec.At(i)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), e.Get(), "index %d", i)
	}
	e, _ := vec.At(0)
	assert.Equal(t, uint64(100), e.Get())
}

func TestVector_GrowthPreservesContent(t *testing.T) {
	ctx, err := Create(region.NewMemory(128))
	require.NoError(t, err)

	a, err := NewVector[Int16Ref](ctx)
	require.NoError(t, err)
	b, err := NewVector[Int64Ref](ctx)
	require.NoError(t, err)

	const n = 2000
	for i := range n {
		ea, err := a.Append()
		require.NoError(t, err)
		ea.Set(int16(i))

		eb, err := b.Append()
		require.NoError(t, err)
		eb.Set(int64(-i))
	}

	assert.Equal(t, uint64(n), a.Size())
	assert.Equal(t, n, b.Len())
	assert.Greater(t, ctx.Stats().Grows, uint64(0))

	for i, e := range a.All() {
		assert.Equal(t, int16(i), e.Get())
	}
	for i, e := range b.All() {
		assert.Equal(t, -int64(i), e.Get())
	}
}

func TestVector_InPlaceExtendAtTail(t *testing.T) {
	ctx := newTestContext(t)

	vec, err := NewVector[Uint32Ref](ctx)
	require.NoError(t, err)
	require.NoError(t, vec.Resize(2))
	first := Load[uint64](ctx, vec.Offset()+vectorOffsetFirst)

	require.NoError(t, vec.Resize(6))
	assert.Equal(t, first, Load[uint64](ctx, vec.Offset()+vectorOffsetFirst))
}

func TestVector_Nested(t *testing.T) {
	ctx := newTestContext(t)

	outer, err := NewVector[Vector[Uint8Ref]](ctx)
	require.NoError(t, err)
	require.NoError(t, outer.Resize(3))

	for i := range uint64(3) {
		inner, err := outer.At(i)
		require.NoError(t, err)
		require.NoError(t, inner.Resize(i+1))
		for j := range i + 1 {
			e, _ := inner.At(j)
			e.Set(uint8(i*10 + j))
		}
	}

	// Growing the outer vector relocates the inner bodies, not their runs.
	require.NoError(t, outer.Resize(10))

	for i := range uint64(3) {
		inner, err := outer.At(i)
		require.NoError(t, err)
		require.Equal(t, i+1, inner.Size())
		for j, e := range inner.All() {
			assert.Equal(t, uint8(i*10+j), e.Get())
		}
	}
	empty, err := outer.At(9)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), empty.Size())
}

func TestVector_ReloadFromImage(t *testing.T) {
	ctx := newTestContext(t)

	vec, err := NewVector[Int32Ref](ctx)
	require.NoError(t, err)
	for _, v := range []int32{-1, 2, -3} {
		e, err := vec.Append()
		require.NoError(t, err)
		e.Set(v)
	}
	ctx.SetRoot(vec.Offset())

	image := append([]byte(nil), ctx.Bytes()[:ctx.Size()]...)

	reloaded, err := Open(region.NewMemoryFromBytes(image))
	require.NoError(t, err)

	again := Wrap[Vector[Int32Ref]](reloaded, reloaded.Root())
	require.Equal(t, uint64(3), again.Size())
	var got []int32
	for _, e := range again.All() {
		got = append(got, e.Get())
	}
	assert.Equal(t, []int32{-1, 2, -3}, got)
}

func TestVector_OutOfSpaceLeavesVector(t *testing.T) {
	ctx := newTestContext(t, WithMaxSize(512))

	vec, err := NewVector[Uint64Ref](ctx)
	require.NoError(t, err)
	require.NoError(t, vec.Resize(8))
	e, _ := vec.At(7)
	e.Set(77)

	require.ErrorIs(t, vec.Resize(1000), ErrOutOfSpace)
	assert.Equal(t, uint64(8), vec.Size())
	e, err = vec.At(7)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), e.Get())
}
