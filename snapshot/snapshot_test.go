package snapshot

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mapstruct/blobstore"
	"github.com/hupe1980/mapstruct/endian"
	"github.com/hupe1980/mapstruct/internal/resource"
	"github.com/hupe1980/mapstruct/mapping"
	"github.com/hupe1980/mapstruct/region"
)

func buildContext(t *testing.T, n uint64) *mapping.Context {
	t.Helper()

	m, err := mapping.Create(region.NewMemory(0))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	v, err := mapping.NewVector[mapping.Uint64Ref](m)
	require.NoError(t, err)
	require.NoError(t, v.Resize(n))
	for i, e := range v.All() {
		e.Set(i * i)
	}
	m.SetRoot(v.Offset())

	return m
}

func checkContext(t *testing.T, m *mapping.Context, n uint64) {
	t.Helper()

	v := mapping.Wrap[mapping.Vector[mapping.Uint64Ref]](m, m.Root())
	require.Equal(t, n, v.Size())
	for i, e := range v.All() {
		require.Equal(t, i*i, e.Get())
	}
}

func TestWriteRead_Compressions(t *testing.T) {
	m := buildContext(t, 5000)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			s, err := Write(context.Background(), &buf, m, WithCompression(c), WithBlockSize(4096))
			require.NoError(t, err)
			assert.Equal(t, m.Size(), s.RawBytes)
			assert.Equal(t, uint64(buf.Len()), s.StoredBytes)
			assert.Equal(t, int((m.Size()+4095)/4096), s.Blocks)

			image, err := Read(&buf)
			require.NoError(t, err)
			assert.Equal(t, m.Bytes()[:m.Size()], image)

			restored, err := mapping.Open(region.NewMemoryFromBytes(image))
			require.NoError(t, err)
			checkContext(t, restored, 5000)
		})
	}
}

func TestWrite_ZstdShrinksImage(t *testing.T) {
	m := buildContext(t, 5000)

	var buf bytes.Buffer
	s, err := Write(context.Background(), &buf, m)
	require.NoError(t, err)
	assert.Less(t, s.StoredBytes, s.RawBytes)
}

func TestWrite_UnknownCompression(t *testing.T) {
	m := buildContext(t, 1)

	_, err := Write(context.Background(), &bytes.Buffer{}, m, WithCompression(Compression(9)))
	require.Error(t, err)
}

func TestRead_Invalid(t *testing.T) {
	m := buildContext(t, 200)

	var buf bytes.Buffer
	_, err := Write(context.Background(), &buf, m, WithCompression(CompressionNone))
	require.NoError(t, err)
	good := buf.Bytes()

	t.Run("bad magic", func(t *testing.T) {
		data := bytes.Clone(good)
		data[0] = 'X'
		_, err := Read(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrBadMagic)
	})

	t.Run("newer version", func(t *testing.T) {
		data := bytes.Clone(good)
		data[5] = byte(Version + 1)
		_, err := Read(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := Read(bytes.NewReader(good[:len(good)-10]))
		assert.ErrorIs(t, err, ErrCorrupt)

		_, err = Read(bytes.NewReader(good[:10]))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("oversized length", func(t *testing.T) {
		header := func(blockSize uint32, rawLen uint64, count uint32) []byte {
			h := bytes.Clone(good[:headerSize])
			endian.Put(h[8:], blockSize)
			endian.Put(h[12:], rawLen)
			endian.Put(h[20:], count)
			return h
		}

		_, err := Read(bytes.NewReader(header(1<<31, 1<<40, 512)))
		assert.ErrorIs(t, err, ErrCorrupt)

		// Consistent header, but no blocks behind it.
		_, err = Read(bytes.NewReader(header(MaxBlockSize, 1<<40, 1<<40/MaxBlockSize)))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("flipped byte", func(t *testing.T) {
		data := bytes.Clone(good)
		data[len(data)-1] ^= 0xff
		_, err := Read(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrChecksum)
	})
}

func TestSaveLoad_MemoryStore(t *testing.T) {
	m := buildContext(t, 1000)
	store := blobstore.NewMemoryStore()
	ctx := context.Background()

	_, err := Save(ctx, store, "ctx.snap", m, WithCompression(CompressionLZ4))
	require.NoError(t, err)

	loaded, err := Load(ctx, store, "ctx.snap")
	require.NoError(t, err)
	defer func() { _ = loaded.Close() }()
	checkContext(t, loaded, 1000)

	_, err = Load(ctx, store, "missing.snap")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestRestore_IntoFileRegion(t *testing.T) {
	m := buildContext(t, 3000)
	dir := t.TempDir()
	ctx := context.Background()

	store := blobstore.NewLocalStore(filepath.Join(dir, "blobs"))
	_, err := Save(ctx, store, "ctx.snap", m)
	require.NoError(t, err)

	f, err := region.OpenFile(filepath.Join(dir, "ctx.bin"))
	require.NoError(t, err)
	restored, err := Restore(ctx, store, "ctx.snap", f)
	require.NoError(t, err)
	assert.Positive(t, f.Dirty())
	checkContext(t, restored, 3000)
	require.NoError(t, restored.Flush())
	assert.Zero(t, f.Dirty())
	require.NoError(t, restored.Close())

	again, err := region.OpenFile(filepath.Join(dir, "ctx.bin"))
	require.NoError(t, err)
	reopened, err := mapping.Open(again)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	checkContext(t, reopened, 3000)
}

func TestWrite_Controller(t *testing.T) {
	m := buildContext(t, 500)

	rc := resource.NewController(resource.Config{
		MaxBackgroundWorkers: 1,
		IOLimitBytesPerSec:   1 << 30,
	})

	var buf bytes.Buffer
	_, err := Write(context.Background(), &buf, m, WithController(rc))
	require.NoError(t, err)

	// The only background slot is taken.
	require.True(t, rc.TryAcquireBackground())
	cctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Write(cctx, &bytes.Buffer{}, m, WithController(rc))
	assert.ErrorIs(t, err, context.Canceled)
	rc.ReleaseBackground()

	image, err := Read(&buf)
	require.NoError(t, err)
	assert.Len(t, image, int(m.Size()))
}

func TestWrite_HeaderOnlyContext(t *testing.T) {
	m, err := mapping.Create(region.NewMemory(0))
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	var buf bytes.Buffer
	s, err := Write(context.Background(), &buf, m, WithBlockSize(mapping.HeaderSize))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Blocks)

	image, err := Read(&buf)
	require.NoError(t, err)
	restored, err := mapping.Open(region.NewMemoryFromBytes(image))
	require.NoError(t, err)
	assert.Equal(t, uint64(mapping.HeaderSize), restored.Size())
}
