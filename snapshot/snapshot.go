package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/mapstruct/blobstore"
	"github.com/hupe1980/mapstruct/endian"
	"github.com/hupe1980/mapstruct/internal/conv"
	"github.com/hupe1980/mapstruct/internal/hash"
	"github.com/hupe1980/mapstruct/internal/resource"
	"github.com/hupe1980/mapstruct/mapping"
	"github.com/hupe1980/mapstruct/region"
)

// Version is the snapshot format version written by Write.
const Version uint16 = 1

// DefaultBlockSize is the raw size of a snapshot block.
const DefaultBlockSize = 256 << 10

// MaxBlockSize bounds the raw size of a block on both write and read.
const MaxBlockSize = 64 << 20

// magic identifies a snapshot stream.
var magic = [4]byte{'M', 'S', 'N', 'P'}

// Header layout:
//
//	magic [4] | version u16 | compression u8 | reserved u8 | block size u32 |
//	raw length u64 | block count u32 | crc32c u32
const headerSize = 28

var (
	// ErrBadMagic is returned for streams that are not snapshots.
	ErrBadMagic = errors.New("snapshot: bad magic")
	// ErrUnsupportedVersion is returned for snapshots written by a newer format.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")
	// ErrCorrupt is returned for truncated or inconsistent snapshots.
	ErrCorrupt = errors.New("snapshot: corrupt")
	// ErrChecksum is returned when the restored image does not match its checksum.
	ErrChecksum = errors.New("snapshot: checksum mismatch")
)

// Options configures Write and Save.
type Options struct {
	Compression Compression
	BlockSize   int
	// Concurrency bounds the number of blocks compressed at once.
	Concurrency int
	// Controller, if set, rate limits the output and holds a background slot
	// for the duration of the snapshot.
	Controller *resource.Controller
	Logger     *slog.Logger
}

// Option configures Options.
type Option func(*Options)

// WithCompression selects the block codec.
func WithCompression(c Compression) Option {
	return func(o *Options) { o.Compression = c }
}

// WithBlockSize sets the raw block size.
func WithBlockSize(n int) Option {
	return func(o *Options) { o.BlockSize = n }
}

// WithConcurrency bounds parallel block compression.
func WithConcurrency(n int) Option {
	return func(o *Options) { o.Concurrency = n }
}

// WithController throttles snapshot IO through c.
func WithController(c *resource.Controller) Option {
	return func(o *Options) { o.Controller = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

func newOptions(opts []Option) Options {
	o := Options{
		Compression: CompressionZstd,
		BlockSize:   DefaultBlockSize,
		Concurrency: 4,
		Logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.BlockSize <= 0 {
		o.BlockSize = DefaultBlockSize
	}
	o.BlockSize = min(o.BlockSize, MaxBlockSize)
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	return o
}

// Stats describes a written snapshot.
type Stats struct {
	RawBytes    uint64
	StoredBytes uint64
	Blocks      int
	Duration    time.Duration
}

// Write streams the used part of m to w.
// m must not be mutated until Write returns.
func Write(ctx context.Context, w io.Writer, m *mapping.Context, opts ...Option) (Stats, error) {
	o := newOptions(opts)
	if !o.Compression.valid() {
		return Stats{}, fmt.Errorf("snapshot: unknown compression %s", o.Compression)
	}
	if o.Controller != nil {
		w = resource.NewRateLimitedWriter(ctx, w, o.Controller)
	}

	var s Stats
	err := o.Controller.RunBackground(ctx, func() error {
		var err error
		s, err = write(ctx, w, m, o)
		return err
	})
	if err != nil {
		return Stats{}, err
	}

	o.Logger.Info("snapshot written",
		"compression", o.Compression.String(),
		"raw_bytes", s.RawBytes,
		"stored_bytes", s.StoredBytes,
		"blocks", s.Blocks,
		"duration", s.Duration)

	return s, nil
}

func write(ctx context.Context, w io.Writer, m *mapping.Context, o Options) (Stats, error) {
	start := time.Now()
	image := m.Bytes()[:m.Size()]
	count := (len(image) + o.BlockSize - 1) / o.BlockSize

	blocks := make([][]byte, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Concurrency)
	for i := range count {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lo := i * o.BlockSize
			hi := min(lo+o.BlockSize, len(image))
			b, err := encodeBlock(image[lo:hi], o.Compression)
			if err != nil {
				return fmt.Errorf("snapshot: block %d: %w", i, err)
			}
			blocks[i] = b
			return nil
		})
	}
	sum := hash.CRC32C(image)
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	blockSize, err := conv.IntToUint32(o.BlockSize)
	if err != nil {
		return Stats{}, err
	}
	blockCount, err := conv.IntToUint32(count)
	if err != nil {
		return Stats{}, err
	}

	var h [headerSize]byte
	copy(h[0:4], magic[:])
	endian.Put(h[4:], Version)
	h[6] = byte(o.Compression)
	endian.Put(h[8:], blockSize)
	endian.Put(h[12:], uint64(len(image)))
	endian.Put(h[20:], blockCount)
	endian.Put(h[24:], sum)

	if _, err := w.Write(h[:]); err != nil {
		return Stats{}, fmt.Errorf("snapshot: write header: %w", err)
	}
	stored := uint64(headerSize)
	for i, b := range blocks {
		if _, err := w.Write(b); err != nil {
			return Stats{}, fmt.Errorf("snapshot: write block %d: %w", i, err)
		}
		stored += uint64(len(b))
	}

	return Stats{
		RawBytes:    uint64(len(image)),
		StoredBytes: stored,
		Blocks:      count,
		Duration:    time.Since(start),
	}, nil
}

// Read decodes a snapshot stream and returns the verified context image.
func Read(r io.Reader) ([]byte, error) {
	var h [headerSize]byte
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}
	if !bytes.Equal(h[0:4], magic[:]) {
		return nil, ErrBadMagic
	}
	if v := endian.Get[uint16](h[4:]); v > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	c := Compression(h[6])
	if !c.valid() {
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, h[6])
	}
	blockSize := uint64(endian.Get[uint32](h[8:]))
	rawLen := endian.Get[uint64](h[12:])
	count := uint64(endian.Get[uint32](h[20:]))
	sum := endian.Get[uint32](h[24:])

	if blockSize == 0 || blockSize > MaxBlockSize || rawLen > blockSize*count || (count > 0 && rawLen <= blockSize*(count-1)) {
		return nil, fmt.Errorf("%w: %d bytes in %d blocks of %d", ErrCorrupt, rawLen, count, blockSize)
	}
	size, err := conv.Uint64ToInt(rawLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	// The image grows with the blocks actually present so that a header
	// claiming a huge length costs nothing until data backs it.
	var (
		image  []byte
		stored []byte
		got    uint32
	)
	pos := uint64(0)
	for i := range count {
		var bh [blockHeaderSize]byte
		if _, err := io.ReadFull(r, bh[:]); err != nil {
			return nil, fmt.Errorf("%w: block %d header: %w", ErrCorrupt, i, err)
		}
		raw := uint64(endian.Get[uint32](bh[0:]))
		n := uint64(endian.Get[uint32](bh[4:]))
		if raw > blockSize || pos+raw > rawLen {
			return nil, fmt.Errorf("%w: block %d of %d bytes", ErrCorrupt, i, raw)
		}
		image = slices.Grow(image, int(raw))[:pos+raw]
		dst := image[pos : pos+raw]

		if n == 0 {
			if _, err := io.ReadFull(r, dst); err != nil {
				return nil, fmt.Errorf("%w: block %d: %w", ErrCorrupt, i, err)
			}
		} else {
			if uint64(cap(stored)) < n {
				stored = make([]byte, n)
			}
			stored = stored[:n]
			if _, err := io.ReadFull(r, stored); err != nil {
				return nil, fmt.Errorf("%w: block %d: %w", ErrCorrupt, i, err)
			}
			if err := decodeBlock(dst, stored, c); err != nil {
				return nil, fmt.Errorf("block %d: %w", i, err)
			}
		}
		got = hash.Update(got, dst)
		pos += raw
	}
	if pos != rawLen || len(image) != size {
		return nil, fmt.Errorf("%w: restored %d of %d bytes", ErrCorrupt, pos, rawLen)
	}
	if got != sum {
		return nil, ErrChecksum
	}

	return image, nil
}

// Save writes a snapshot of m to store under name.
func Save(ctx context.Context, store blobstore.Store, name string, m *mapping.Context, opts ...Option) (Stats, error) {
	var buf bytes.Buffer
	s, err := Write(ctx, &buf, m, opts...)
	if err != nil {
		return Stats{}, err
	}
	if err := store.Put(ctx, name, buf.Bytes()); err != nil {
		return Stats{}, fmt.Errorf("snapshot: put %s: %w", name, err)
	}
	return s, nil
}

func fetch(ctx context.Context, store blobstore.Store, name string) ([]byte, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("snapshot: get %s: %w", name, err)
	}
	return Read(bytes.NewReader(data))
}

// Load restores the snapshot stored under name into a new memory region.
func Load(ctx context.Context, store blobstore.Store, name string, opts ...mapping.Option) (*mapping.Context, error) {
	image, err := fetch(ctx, store, name)
	if err != nil {
		return nil, err
	}
	return mapping.Open(region.NewMemoryFromBytes(image), opts...)
}

// Restore copies the snapshot stored under name into dst and opens it.
// dst grows as needed; its previous content is overwritten.
func Restore(ctx context.Context, store blobstore.Store, name string, dst region.Region, opts ...mapping.Option) (*mapping.Context, error) {
	image, err := fetch(ctx, store, name)
	if err != nil {
		return nil, err
	}

	n := uint64(len(image))
	if err := dst.Grow(n); err != nil {
		return nil, fmt.Errorf("snapshot: grow destination: %w", err)
	}
	copy(dst.Bytes(), image)
	if d, ok := dst.(region.DirtyTracker); ok {
		d.MarkDirty(0, n)
	}

	return mapping.Open(dst, opts...)
}
