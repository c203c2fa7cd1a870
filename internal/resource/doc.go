// Package resource holds the limits shared by every mapped region of a
// process: a memory ceiling for region growth and caches, a bounded number
// of concurrent snapshots, and an IO token bucket for snapshot output.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   1 << 30,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//
//	if err := rc.AcquireMemory(n); err != nil {
//	    // *LimitError wrapping ErrMemoryLimitExceeded
//	}
//	defer rc.ReleaseMemory(n)
//
//	err := rc.RunBackground(ctx, func() error {
//	    _, err := io.Copy(resource.NewRateLimitedWriter(ctx, dst, rc), src)
//	    return err
//	})
//
// Memory reservations never block. A nil *Controller imposes no limits.
package resource
