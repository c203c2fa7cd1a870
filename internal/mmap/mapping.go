package mmap

import (
	"errors"
	"io"
	"os"
	"sync/atomic"
)

var (
	ErrClosed        = errors.New("mmap: closed")
	ErrInvalidSize   = errors.New("mmap: invalid size")
	ErrOutOfBounds   = errors.New("mmap: range outside mapping")
	ErrInvalidOffset = errors.New("mmap: negative offset")
	ErrReadOnly      = errors.New("mmap: read-only mapping")
)

// Mapping represents a memory-mapped file.
// It owns the underlying byte slice and the file handle.
type Mapping struct {
	f        *os.File
	data     []byte
	writable bool
	closed   atomic.Bool
}

// Open maps the file at path into memory.
// The file is mapped as read-only.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := fi.Size()
	if size < 0 {
		f.Close()
		return nil, ErrInvalidSize
	}

	m := &Mapping{f: f}
	if size == 0 {
		return m, nil
	}

	data, err := osMap(f, int(size), false)
	if err != nil {
		f.Close()
		return nil, err
	}
	m.data = data

	return m, nil
}

// OpenFile maps the file at path read-write, creating it if needed.
// A file smaller than minSize is extended (zero-filled) to minSize first.
func OpenFile(path string, minSize int) (*Mapping, error) {
	if minSize < 0 {
		return nil, ErrInvalidSize
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := fi.Size()
	if size < int64(minSize) {
		if err := f.Truncate(int64(minSize)); err != nil {
			f.Close()
			return nil, err
		}
		size = int64(minSize)
	}

	m := &Mapping{f: f, writable: true}
	if size == 0 {
		return m, nil
	}

	data, err := osMap(f, int(size), true)
	if err != nil {
		f.Close()
		return nil, err
	}
	m.data = data

	return m, nil
}

// Resize changes the file size and remaps it.
// Every slice previously returned by Bytes is invalid afterwards. On error
// the old mapping stays in place and the file keeps its old size.
func (m *Mapping) Resize(size int) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if !m.writable {
		return ErrReadOnly
	}
	if size < 0 {
		return ErrInvalidSize
	}

	old := m.data
	oldSize := int64(len(old))
	if err := osSync(old); err != nil {
		return err
	}

	// A growing file must be extended before the larger view is mapped. A
	// shrinking file is cut only once the old view is gone.
	if int64(size) > oldSize {
		if err := m.f.Truncate(int64(size)); err != nil {
			_ = m.f.Truncate(oldSize)
			return err
		}
	}

	var data []byte
	if size > 0 {
		var err error
		if data, err = osMap(m.f, size, true); err != nil {
			if int64(size) > oldSize {
				_ = m.f.Truncate(oldSize)
			}
			return err
		}
	}

	if old != nil {
		if err := osUnmap(old); err != nil {
			if data != nil {
				_ = osUnmap(data)
			}
			return err
		}
	}
	m.data = data

	if int64(size) < oldSize {
		return m.f.Truncate(int64(size))
	}

	return nil
}

// Sync flushes the pages covering [off, off+n) to the file.
func (m *Mapping) Sync(off, n int) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if !m.writable || len(m.data) == 0 || n == 0 {
		return nil
	}
	if off < 0 || n < 0 || off+n > len(m.data) {
		return ErrOutOfBounds
	}

	page := os.Getpagesize()
	start := off - off%page
	end := off + n
	if rem := end % page; rem != 0 {
		end += page - rem
	}
	if end > len(m.data) {
		end = len(m.data)
	}

	return osSync(m.data[start:end])
}

// Close unmaps the memory and closes the file. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil // Already closed
	}

	var err error
	if m.data != nil {
		err = osUnmap(m.data)
		m.data = nil
	}
	if m.f != nil {
		if cerr := m.f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		m.f = nil
	}

	return err
}

// Bytes returns the underlying byte slice.
// Warning: The slice is valid only until Close() or Resize() is called.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	if m.closed.Load() {
		return 0
	}
	return len(m.data)
}

// Writable reports whether the mapping was opened read-write.
func (m *Mapping) Writable() bool {
	return m.writable
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}

// ReadAt implements io.ReaderAt.
func (m *Mapping) ReadAt(p []byte, off int64) (n int, err error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n = copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
