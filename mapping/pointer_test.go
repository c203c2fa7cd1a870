package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_BigEndianLayout(t *testing.T) {
	ctx := newTestContext(t)

	v, err := Alloc[Uint32Ref](ctx)
	require.NoError(t, err)
	v.Set(0x01020304)

	assert.Equal(t, []byte{1, 2, 3, 4}, ctx.Slice(v.Offset(), 4))
	assert.Equal(t, uint32(0x01020304), v.Get())
	assert.Equal(t, "16909060", v.String())
	assert.Equal(t, "<unbound>", Uint32Ref{}.String())
	assert.Equal(t, uint64(4), BodySize[Uint32Ref]())
}

func TestPtr_NullContract(t *testing.T) {
	ctx := newTestContext(t)

	p, err := Alloc[OffsetPtr[int64]](ctx)
	require.NoError(t, err)
	assert.True(t, p.IsNull())

	_, err = p.Deref()
	assert.ErrorIs(t, err, ErrNullPointer)

	v, err := Alloc[Int64Ref](ctx)
	require.NoError(t, err)
	v.Set(-99)

	require.NoError(t, p.Set(v))
	assert.False(t, p.IsNull())
	got, err := p.Deref()
	require.NoError(t, err)
	assert.Equal(t, v, got)
	assert.Equal(t, int64(-99), got.Get())

	p.Clear()
	_, err = p.Target()
	assert.ErrorIs(t, err, ErrNullPointer)
}

func TestPtr_ForeignContext(t *testing.T) {
	a := newTestContext(t)
	b := newTestContext(t)

	p, err := Alloc[OffsetTo[Vector[Int8Ref]]](a)
	require.NoError(t, err)
	vec, err := NewVector[Int8Ref](b)
	require.NoError(t, err)

	assert.ErrorIs(t, p.Set(vec), ErrForeignContext)
	assert.True(t, p.IsNull())

	v, err := Alloc[Int32Ref](b)
	require.NoError(t, err)
	q, err := Alloc[OffsetPtr[int32]](a)
	require.NoError(t, err)
	assert.ErrorIs(t, q.Set(v), ErrForeignContext)
}

func TestOffsetTo_Vector(t *testing.T) {
	ctx := newTestContext(t)

	root, err := Alloc[OffsetTo[Vector[Uint16Ref]]](ctx)
	require.NoError(t, err)
	_, err = root.Get()
	require.ErrorIs(t, err, ErrNullPointer)

	vec, err := NewVector[Uint16Ref](ctx)
	require.NoError(t, err)
	require.NoError(t, root.Set(vec))
	require.NoError(t, vec.Resize(2))

	got, err := root.Get()
	require.NoError(t, err)
	require.Equal(t, uint64(2), got.Size())
	e, _ := got.At(1)
	e.Set(65535)

	e, _ = vec.At(1)
	assert.Equal(t, uint16(65535), e.Get())
}
