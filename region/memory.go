package region

// Memory is a heap-backed region. It is what tests, scratch structures and
// restored snapshots live in.
type Memory struct {
	buf    []byte
	limit  uint64
	closed bool
}

// MemoryOption configures a Memory region.
type MemoryOption func(*Memory)

// WithMemoryLimit caps the size a Memory region may grow to.
func WithMemoryLimit(limit uint64) MemoryOption {
	return func(m *Memory) {
		m.limit = limit
	}
}

// NewMemory creates a zeroed Memory region of the given initial size.
func NewMemory(size uint64, opts ...MemoryOption) *Memory {
	m := &Memory{}
	for _, opt := range opts {
		opt(m)
	}
	if m.limit > 0 && size > m.limit {
		size = m.limit
	}
	m.buf = make([]byte, size)
	return m
}

// NewMemoryFromBytes wraps buf without copying it.
func NewMemoryFromBytes(buf []byte, opts ...MemoryOption) *Memory {
	m := &Memory{buf: buf}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bytes returns the region.
func (m *Memory) Bytes() []byte {
	if m.closed {
		return nil
	}
	return m.buf
}

// Len returns the region size.
func (m *Memory) Len() uint64 {
	return uint64(len(m.Bytes()))
}

// Grow reallocates the region so that it holds at least need bytes.
func (m *Memory) Grow(need uint64) error {
	if m.closed {
		return ErrClosed
	}
	cur := uint64(len(m.buf))
	if need <= cur {
		return nil
	}

	size, err := nextSize(cur, need, m.limit)
	if err != nil {
		return err
	}

	buf := make([]byte, size)
	copy(buf, m.buf)
	m.buf = buf

	return nil
}

// Flush is a no-op: memory regions have no backing storage.
func (m *Memory) Flush() error {
	if m.closed {
		return ErrClosed
	}
	return nil
}

// Close drops the buffer.
func (m *Memory) Close() error {
	m.closed = true
	m.buf = nil
	return nil
}
