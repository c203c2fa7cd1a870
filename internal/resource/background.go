package resource

import "context"

// AcquireBackground blocks until a background slot is free or ctx is done.
func (c *Controller) AcquireBackground(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.bg.Acquire(ctx, 1)
}

// TryAcquireBackground takes a background slot if one is free.
func (c *Controller) TryAcquireBackground() bool {
	if c == nil {
		return true
	}
	return c.bg.TryAcquire(1)
}

// ReleaseBackground frees a slot taken by AcquireBackground or TryAcquireBackground.
func (c *Controller) ReleaseBackground() {
	if c == nil {
		return
	}
	c.bg.Release(1)
}

// RunBackground runs fn while holding a background slot.
func (c *Controller) RunBackground(ctx context.Context, fn func() error) error {
	if err := c.AcquireBackground(ctx); err != nil {
		return err
	}
	defer c.ReleaseBackground()
	return fn()
}
