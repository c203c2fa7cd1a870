package region

import (
	"fmt"
	"log/slog"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/mapstruct/internal/conv"
	"github.com/hupe1980/mapstruct/internal/mmap"
)

// AccessPattern is a kernel hint for how a file region will be read.
type AccessPattern = mmap.AccessPattern

// Access patterns accepted by WithAccessPattern.
const (
	AccessDefault    = mmap.AccessDefault
	AccessSequential = mmap.AccessSequential
	AccessRandom     = mmap.AccessRandom
	AccessWillNeed   = mmap.AccessWillNeed
)

// File is a region backed by a read-write shared mapping of a file.
// Writes become visible in the file; Flush forces the dirty pages out.
type File struct {
	path    string
	m       *mmap.Mapping
	limit   uint64
	initial uint64
	pattern AccessPattern
	dirty   *roaring.Bitmap // page indices written since the last flush
	logger  *slog.Logger
	closed  bool
}

// FileOption configures a File region.
type FileOption func(*File)

// WithFileLimit caps the size the file may grow to.
func WithFileLimit(limit uint64) FileOption {
	return func(f *File) {
		f.limit = limit
	}
}

// WithInitialSize sets the minimum size of a newly created file.
func WithInitialSize(size uint64) FileOption {
	return func(f *File) {
		f.initial = size
	}
}

// WithAccessPattern advises the kernel after every (re)mapping.
func WithAccessPattern(p AccessPattern) FileOption {
	return func(f *File) {
		f.pattern = p
	}
}

// WithFileLogger sets the logger used for remap and flush events.
func WithFileLogger(l *slog.Logger) FileOption {
	return func(f *File) {
		if l != nil {
			f.logger = l
		}
	}
}

// OpenFile opens or creates the file at path and maps it read-write.
func OpenFile(path string, opts ...FileOption) (*File, error) {
	f := &File{
		path:    path,
		initial: pageSize,
		dirty:   roaring.New(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.limit > 0 && f.initial > f.limit {
		f.initial = f.limit
	}

	initial, err := conv.Uint64ToInt(f.initial)
	if err != nil {
		return nil, err
	}

	m, err := mmap.OpenFile(path, initial)
	if err != nil {
		return nil, fmt.Errorf("region: open %s: %w", path, err)
	}
	f.m = m

	if err := m.Advise(f.pattern); err != nil {
		_ = m.Close()
		return nil, err
	}

	f.logger.Debug("file region mapped", "path", path, "size", m.Size())

	return f, nil
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Bytes returns the mapped file.
func (f *File) Bytes() []byte {
	if f.closed {
		return nil
	}
	return f.m.Bytes()
}

// Len returns the file size.
func (f *File) Len() uint64 {
	return uint64(len(f.Bytes()))
}

// Grow extends the file and remaps it. Every slice previously returned by
// Bytes is invalid afterwards.
func (f *File) Grow(need uint64) error {
	if f.closed {
		return ErrClosed
	}
	cur := f.Len()
	if need <= cur {
		return nil
	}

	size, err := nextSize(cur, need, f.limit)
	if err != nil {
		return err
	}
	n, err := conv.Uint64ToInt(size)
	if err != nil {
		return err
	}

	// Resize syncs the old mapping before dropping it.
	if err := f.m.Resize(n); err != nil {
		return fmt.Errorf("region: grow %s to %d bytes: %w", f.path, size, err)
	}
	f.dirty.Clear()

	if err := f.m.Advise(f.pattern); err != nil {
		return err
	}

	f.logger.Debug("file region remapped", "path", f.path, "old_size", cur, "new_size", size)

	return nil
}

// MarkDirty records that [off, off+n) was written.
func (f *File) MarkDirty(off, n uint64) {
	if n == 0 {
		return
	}
	first := off / pageSize
	last := (off + n - 1) / pageSize
	f.dirty.AddRange(first, last+1)
}

// Dirty returns the number of pages written since the last flush.
func (f *File) Dirty() uint64 {
	return f.dirty.GetCardinality()
}

// Flush msyncs every run of dirty pages.
func (f *File) Flush() error {
	if f.closed {
		return ErrClosed
	}
	if f.dirty.IsEmpty() {
		return nil
	}

	runs := 0
	it := f.dirty.Iterator()
	start, end := uint64(0), uint64(0)
	for it.HasNext() {
		p := uint64(it.Next())
		if runs > 0 && p == end {
			end++
			continue
		}
		if runs > 0 {
			if err := f.sync(start, end); err != nil {
				return err
			}
		}
		start, end = p, p+1
		runs++
	}
	if err := f.sync(start, end); err != nil {
		return err
	}

	f.logger.Debug("file region flushed", "path", f.path, "pages", f.dirty.GetCardinality(), "runs", runs)
	f.dirty.Clear()

	return nil
}

func (f *File) sync(startPage, endPage uint64) error {
	size := f.Len()
	off := startPage * pageSize
	if off >= size {
		return nil
	}
	n := min(endPage*pageSize, size) - off

	o, err := conv.Uint64ToInt(off)
	if err != nil {
		return err
	}
	l, err := conv.Uint64ToInt(n)
	if err != nil {
		return err
	}

	return f.m.Sync(o, l)
}

// Close flushes, unmaps and closes the file. It is idempotent.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	ferr := f.Flush()
	f.closed = true
	if err := f.m.Close(); err != nil {
		return err
	}
	return ferr
}
