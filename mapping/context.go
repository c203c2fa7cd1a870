package mapping

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/hupe1980/mapstruct/endian"
	"github.com/hupe1980/mapstruct/internal/conv"
	"github.com/hupe1980/mapstruct/region"
)

const (
	// HeaderSize is the size of the context header at offset 0.
	// No allocation can start inside it, which is what makes 0 the null offset.
	HeaderSize = 64
	// Alignment is the alignment of every allocation.
	Alignment = 8
	// Version is the layout version written by Create.
	Version uint32 = 1
)

// Magic identifies a formatted region.
var Magic = [4]byte{'M', 'S', 'T', 'R'}

// Header field offsets.
const (
	headerOffsetMagic      = 0
	headerOffsetVersion    = 4
	headerOffsetCursor     = 8
	headerOffsetRoot       = 16
	headerOffsetGeneration = 24
)

// MemoryAcquirer reserves budget for region growth.
// *resource.Controller implements it.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Stats describes the arena usage of a context.
type Stats struct {
	Reserved    uint64 // region size
	Used        uint64 // allocation cursor, header included
	Allocations uint64 // allocations made through this Context value
	Grows       uint64 // region growths made through this Context value
	Generation  uint64 // number of Reset calls over the region's lifetime
}

// Context is the arena every reference type resolves its offsets through.
//
// It owns the region and an allocation cursor stored in the region header,
// so a reopened region continues allocating where the last process stopped.
// Allocation is monotonic: offsets stay valid until Reset.
//
// A Context is not safe for concurrent use while any goroutine mutates it.
type Context struct {
	r        region.Region
	dirty    region.DirtyTracker
	maxSize  uint64
	acquirer MemoryAcquirer
	reserved int64
	logger   *slog.Logger
	onGrow   func(oldSize, newSize uint64, err error)
	allocs   uint64
	grows    uint64
	closed   bool
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger for growth and lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxSize caps the arena: allocations ending beyond size fail with
// ErrOutOfSpace, whatever the region's current length.
func WithMaxSize(size uint64) Option {
	return func(c *Context) {
		c.maxSize = size
	}
}

// WithMemoryAcquirer charges region growth against a shared budget.
func WithMemoryAcquirer(a MemoryAcquirer) Option {
	return func(c *Context) {
		c.acquirer = a
	}
}

// WithGrowHook registers a callback invoked after every growth attempt.
func WithGrowHook(fn func(oldSize, newSize uint64, err error)) Option {
	return func(c *Context) {
		c.onGrow = fn
	}
}

func newContext(r region.Region, opts []Option) (*Context, error) {
	c := &Context{
		r:      r,
		logger: slog.New(slog.DiscardHandler),
	}
	if d, ok := r.(region.DirtyTracker); ok {
		c.dirty = d
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.reserve(r.Len()); err != nil {
		return nil, err
	}

	return c, nil
}

// Create formats r and returns a context over it.
// Any previous content of the region becomes unreachable.
func Create(r region.Region, opts ...Option) (*Context, error) {
	c, err := newContext(r, opts)
	if err != nil {
		return nil, err
	}
	if err := c.ensure(HeaderSize); err != nil {
		c.release()
		return nil, err
	}

	h := c.Writable(0, HeaderSize)
	clear(h)
	copy(h[headerOffsetMagic:], Magic[:])
	endian.Put(h[headerOffsetVersion:], Version)
	endian.Put(h[headerOffsetCursor:], uint64(HeaderSize))

	c.logger.Debug("mapping context created", "size", r.Len())

	return c, nil
}

// Open returns a context over a region previously formatted by Create.
func Open(r region.Region, opts ...Option) (*Context, error) {
	c, err := newContext(r, opts)
	if err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		c.release()
		return nil, err
	}

	c.logger.Debug("mapping context opened", "size", r.Len(), "used", c.cursor(), "root", c.Root())

	return c, nil
}

func (c *Context) validate() error {
	size := c.r.Len()
	if size < HeaderSize {
		return fmt.Errorf("%w: region of %d bytes has no header", ErrCorrupt, size)
	}

	h := c.Slice(0, HeaderSize)
	if !bytes.Equal(h[headerOffsetMagic:headerOffsetMagic+4], Magic[:]) {
		return ErrBadMagic
	}
	if v := endian.Get[uint32](h[headerOffsetVersion:]); v > Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	cursor := endian.Get[uint64](h[headerOffsetCursor:])
	if cursor < HeaderSize || cursor > size || cursor%Alignment != 0 {
		return fmt.Errorf("%w: cursor %d outside region of %d bytes", ErrCorrupt, cursor, size)
	}
	if root := endian.Get[uint64](h[headerOffsetRoot:]); root != 0 && (root < HeaderSize || root >= cursor) {
		return fmt.Errorf("%w: root %d outside allocated range", ErrCorrupt, root)
	}

	return nil
}

// Region returns the backing region.
func (c *Context) Region() region.Region {
	return c.r
}

// Bytes returns the base of the region. It is invalidated by any allocation.
func (c *Context) Bytes() []byte {
	return c.r.Bytes()
}

// Size returns the allocation cursor: every byte below it is in use.
func (c *Context) Size() uint64 {
	return c.cursor()
}

// Slice resolves [off, off+n) for reading. It panics if the range lies outside
// the region, which only happens for stale or corrupt offsets.
func (c *Context) Slice(off, n uint64) []byte {
	b := c.r.Bytes()
	end := off + n
	if end < off || end > uint64(len(b)) {
		panic(fmt.Sprintf("mapping: stale offset %d+%d beyond region of %d bytes", off, n, len(b)))
	}
	return b[off:end:end]
}

// Writable resolves [off, off+n) for writing and marks it dirty.
func (c *Context) Writable(off, n uint64) []byte {
	b := c.Slice(off, n)
	if c.dirty != nil {
		c.dirty.MarkDirty(off, n)
	}
	return b
}

// Copy copies n bytes from src to dst. The ranges may overlap.
func (c *Context) Copy(dst, src, n uint64) {
	if n == 0 || dst == src {
		return
	}
	copy(c.Writable(dst, n), c.Slice(src, n))
}

// Zero clears [off, off+n).
func (c *Context) Zero(off, n uint64) {
	if n == 0 {
		return
	}
	clear(c.Writable(off, n))
}

// Load decodes a T stored at off.
func Load[T endian.Integer](c *Context, off uint64) T {
	return endian.Get[T](c.Slice(off, uint64(endian.Size[T]())))
}

// Store encodes v at off.
func Store[T endian.Integer](c *Context, off uint64, v T) {
	endian.Put(c.Writable(off, uint64(endian.Size[T]())), v)
}

func (c *Context) cursor() uint64 {
	return Load[uint64](c, headerOffsetCursor)
}

func (c *Context) setCursor(off uint64) {
	Store(c, headerOffsetCursor, off)
}

// Root returns the offset registered with SetRoot, or 0.
func (c *Context) Root() uint64 {
	return Load[uint64](c, headerOffsetRoot)
}

// SetRoot records off in the header so another process can find the
// top-level structure after reopening the region.
func (c *Context) SetRoot(off uint64) {
	Store(c, headerOffsetRoot, off)
}

// Generation returns how many times the arena was reset.
func (c *Context) Generation() uint64 {
	return Load[uint64](c, headerOffsetGeneration)
}

func alignUp(n uint64) (uint64, error) {
	aligned, err := conv.AddUint64(n, Alignment-1)
	if err != nil {
		return 0, err
	}
	return aligned &^ (Alignment - 1), nil
}

// Allocate bump-allocates size zeroed bytes and returns their offset.
func (c *Context) Allocate(size uint64) (uint64, error) {
	if c.closed {
		return 0, ErrClosed
	}
	if size == 0 {
		return 0, ErrInvalidSize
	}

	aligned, err := alignUp(size)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrOutOfSpace, err)
	}
	off := c.cursor()
	end, err := conv.AddUint64(off, aligned)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrOutOfSpace, err)
	}

	if err := c.ensure(end); err != nil {
		return 0, err
	}

	c.Zero(off, aligned)
	c.setCursor(end)
	c.allocs++

	return off, nil
}

// Extend grows the allocation at off from oldSize to newSize bytes in place.
// It only succeeds for the most recent allocation; otherwise it reports false
// and changes nothing. The added bytes are zero.
func (c *Context) Extend(off, oldSize, newSize uint64) (bool, error) {
	if c.closed {
		return false, ErrClosed
	}
	if off < HeaderSize || newSize <= oldSize {
		return false, nil
	}

	oldAligned, err := alignUp(oldSize)
	if err != nil {
		return false, err
	}
	if off+oldAligned != c.cursor() {
		return false, nil
	}

	newAligned, err := alignUp(newSize)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrOutOfSpace, err)
	}
	end, err := conv.AddUint64(off, newAligned)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrOutOfSpace, err)
	}

	if err := c.ensure(end); err != nil {
		return false, err
	}

	c.Zero(off+oldSize, end-(off+oldSize))
	c.setCursor(end)

	return true, nil
}

// GrowRun grows the contiguous run of oldSize bytes at first to newSize bytes.
// The run is extended in place when it is the arena tail; otherwise a new run
// is allocated and the old bytes are copied over. It returns the start of the
// run, which callers must store in place of first. A first of 0 means no run.
func (c *Context) GrowRun(first, oldSize, newSize uint64) (uint64, error) {
	if first == 0 {
		oldSize = 0
	}
	if first != 0 {
		ok, err := c.Extend(first, oldSize, newSize)
		if err != nil {
			return 0, err
		}
		if ok {
			return first, nil
		}
	}

	moved, err := c.Allocate(newSize)
	if err != nil {
		return 0, err
	}
	c.Copy(moved, first, min(oldSize, newSize))

	return moved, nil
}

// ensure grows the region to hold at least end bytes.
func (c *Context) ensure(end uint64) error {
	cur := c.r.Len()
	if c.maxSize > 0 && end > c.maxSize {
		err := fmt.Errorf("%w: need %d bytes, limit is %d", ErrOutOfSpace, end, c.maxSize)
		c.grew(cur, cur, err)
		return err
	}
	if end <= cur {
		return nil
	}

	target := max(end, cur*2)
	if c.maxSize > 0 {
		target = min(target, c.maxSize)
	}

	if err := c.reserve(target - cur); err != nil {
		c.grew(cur, cur, err)
		return err
	}
	if err := c.r.Grow(target); err != nil {
		c.unreserve(target - cur)
		err = fmt.Errorf("%w: %w", ErrOutOfSpace, err)
		c.grew(cur, cur, err)
		return err
	}

	// The region may round up beyond target; charge the remainder too.
	if size := c.r.Len(); size > target {
		if err := c.reserve(size - target); err != nil {
			c.logger.Warn("region grew beyond reserved budget", "size", size, "reserved", c.reserved)
		}
	}

	c.grows++
	c.grew(cur, c.r.Len(), nil)

	return nil
}

func (c *Context) grew(oldSize, newSize uint64, err error) {
	if err != nil {
		c.logger.Warn("mapping context growth failed", "size", oldSize, "error", err)
	} else {
		c.logger.Debug("mapping context grew", "old_size", oldSize, "new_size", newSize)
	}
	if c.onGrow != nil {
		c.onGrow(oldSize, newSize, err)
	}
}

func (c *Context) reserve(n uint64) error {
	if c.acquirer == nil || n == 0 {
		return nil
	}
	amount, err := conv.Uint64ToInt64(n)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOutOfSpace, err)
	}
	if err := c.acquirer.AcquireMemory(amount); err != nil {
		return fmt.Errorf("%w: %w", ErrOutOfSpace, err)
	}
	c.reserved += amount
	return nil
}

func (c *Context) unreserve(n uint64) {
	if c.acquirer == nil || n == 0 {
		return
	}
	amount := min(int64(n), c.reserved) //nolint:gosec // n was reserved before
	c.acquirer.ReleaseMemory(amount)
	c.reserved -= amount
}

func (c *Context) release() {
	if c.acquirer != nil && c.reserved > 0 {
		c.acquirer.ReleaseMemory(c.reserved)
	}
	c.reserved = 0
}

// Reset discards every allocation. All references derived from the context
// become invalid; the region keeps its size.
func (c *Context) Reset() {
	c.setCursor(HeaderSize)
	c.SetRoot(0)
	Store(c, headerOffsetGeneration, c.Generation()+1)
	c.logger.Debug("mapping context reset", "generation", c.Generation())
}

// Stats returns arena usage.
func (c *Context) Stats() Stats {
	return Stats{
		Reserved:    c.r.Len(),
		Used:        c.cursor(),
		Allocations: c.allocs,
		Grows:       c.grows,
		Generation:  c.Generation(),
	}
}

// Flush persists the region.
func (c *Context) Flush() error {
	if c.closed {
		return ErrClosed
	}
	return c.r.Flush()
}

// Close flushes and closes the region. All references derived from the
// context become invalid.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.r.Close()
	c.release()
	c.logger.Debug("mapping context closed")
	return err
}

func (c *Context) String() string {
	s := c.Stats()
	return fmt.Sprintf("Context{reserved: %d, used: %d, allocs: %d, grows: %d, generation: %d}",
		s.Reserved, s.Used, s.Allocations, s.Grows, s.Generation)
}
