package resource

import (
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrMemoryLimitExceeded is returned when a reservation would exceed the limit.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// LimitError describes a rejected memory reservation.
type LimitError struct {
	Requested int64
	Used      int64
	Limit     int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("memory limit exceeded: %d bytes requested, %d of %d in use", e.Requested, e.Used, e.Limit)
}

func (e *LimitError) Unwrap() error { return ErrMemoryLimitExceeded }

type memoryBudget struct {
	limit *semaphore.Weighted // nil when unlimited
	used  atomic.Int64
}

// AcquireMemory reserves bytes without blocking. It fails with a *LimitError
// when the limit would be exceeded; callers decide whether to retry.
// Non-positive amounts are ignored.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.mem.limit != nil && !c.mem.limit.TryAcquire(bytes) {
		return &LimitError{
			Requested: bytes,
			Used:      c.mem.used.Load(),
			Limit:     c.cfg.MemoryLimitBytes,
		}
	}
	c.mem.used.Add(bytes)
	return nil
}

// ReleaseMemory returns bytes reserved by AcquireMemory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.mem.limit != nil {
		c.mem.limit.Release(bytes)
	}
	c.mem.used.Add(-bytes)
}

// MemoryUsage returns the reserved bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.mem.used.Load()
}

// MemoryLimit returns the limit in bytes, or 0 if unlimited.
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}
