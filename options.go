package mapstruct

import (
	"github.com/hupe1980/mapstruct/internal/resource"
	"github.com/hupe1980/mapstruct/region"
	"github.com/hupe1980/mapstruct/snapshot"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	maxSize          uint64
	initialSize      uint64
	memoryLimit      int64
	ioLimit          int64
	resources        *ResourceController
	compression      snapshot.Compression
	accessPattern    region.AccessPattern
}

// Option configures a Store.
type Option func(*options)

// WithLogger configures structured logging for store operations.
// Pass nil to disable logging.
//
//	logger := mapstruct.NewJSONLogger(slog.LevelInfo)
//	s, _ := mapstruct.Create("data.ms", mapstruct.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
//	metrics := &mapstruct.BasicMetricsCollector{}
//	s, _ := mapstruct.NewInMemory(mapstruct.WithMetricsCollector(metrics))
//	// ... use s ...
//	fmt.Println(metrics.GetStats().GrowCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithMaxSize caps the size of the context in bytes. Allocations beyond it
// fail with ErrOutOfSpace. Zero means unlimited.
func WithMaxSize(size uint64) Option {
	return func(o *options) {
		o.maxSize = size
	}
}

// WithInitialSize sets the size the region starts with.
func WithInitialSize(size uint64) Option {
	return func(o *options) {
		o.initialSize = size
	}
}

// WithMemoryLimit charges the region's reservation against a budget of bytes
// owned by this store. Growth past it fails with ErrOutOfSpace. Use
// WithResourceController to share one budget between stores.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit throttles snapshot output to bytesPerSec.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// ResourceController holds memory, background and IO budgets that several
// stores may share. A nil *ResourceController imposes no limits.
type ResourceController = resource.Controller

// ResourceConfig configures a ResourceController. Zero values mean unlimited.
type ResourceConfig = resource.Config

// NewResourceController creates a ResourceController enforcing cfg.
func NewResourceController(cfg ResourceConfig) *ResourceController {
	return resource.NewController(cfg)
}

// WithResourceController makes the store draw on rc instead of a controller
// of its own. It takes precedence over WithMemoryLimit and WithIOLimit.
//
//	rc := mapstruct.NewResourceController(mapstruct.ResourceConfig{MemoryLimitBytes: 1 << 30})
//	a, _ := mapstruct.NewInMemory(mapstruct.WithResourceController(rc))
//	b, _ := mapstruct.NewInMemory(mapstruct.WithResourceController(rc))
func WithResourceController(rc *ResourceController) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithCompression selects the snapshot block codec. The default is zstd.
func WithCompression(c snapshot.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithAccessPattern passes a read pattern hint to file-backed stores.
func WithAccessPattern(p region.AccessPattern) Option {
	return func(o *options) {
		o.accessPattern = p
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		compression:      snapshot.CompressionZstd,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// controller returns nil when no resource limit is configured.
func (o *options) controller() *resource.Controller {
	if o.resources != nil {
		return o.resources
	}
	if o.memoryLimit <= 0 && o.ioLimit <= 0 {
		return nil
	}
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimit,
		IOLimitBytesPerSec: o.ioLimit,
	})
}
