package resource

import (
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits. Zero values mean unlimited, except
// MaxBackgroundWorkers, which defaults to 1.
type Config struct {
	// MemoryLimitBytes caps the bytes reserved by mapped regions and caches.
	MemoryLimitBytes int64

	// MaxBackgroundWorkers bounds concurrent snapshots.
	MaxBackgroundWorkers int64

	// IOLimitBytesPerSec throttles snapshot output.
	IOLimitBytesPerSec int64
}

// Controller arbitrates resources shared by every region in the process.
//
// A nil *Controller is valid and imposes no limits.
type Controller struct {
	cfg Config
	mem memoryBudget
	bg  *semaphore.Weighted
	io  *rate.Limiter
}

// Stats is a point-in-time view of a Controller.
type Stats struct {
	MemoryUsed        int64
	MemoryLimit       int64
	BackgroundWorkers int64
	IOLimit           int64
}

// NewController creates a Controller enforcing cfg.
func NewController(cfg Config) *Controller {
	cfg.MaxBackgroundWorkers = max(cfg.MaxBackgroundWorkers, 1)

	c := &Controller{
		cfg: cfg,
		bg:  semaphore.NewWeighted(cfg.MaxBackgroundWorkers),
	}
	if cfg.MemoryLimitBytes > 0 {
		c.mem.limit = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		// One second of budget as burst.
		c.io = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// Stats reports current usage and the configured limits.
func (c *Controller) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		MemoryUsed:        c.mem.used.Load(),
		MemoryLimit:       c.cfg.MemoryLimitBytes,
		BackgroundWorkers: c.cfg.MaxBackgroundWorkers,
		IOLimit:           c.cfg.IOLimitBytesPerSec,
	}
}
