package mapstruct

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordGrow is called whenever the context tries to grow its region.
	// err is nil if the region now holds at least newSize bytes.
	RecordGrow(oldSize, newSize uint64, err error)

	// RecordFlush is called after each flush.
	RecordFlush(duration time.Duration, err error)

	// RecordSnapshot is called after each snapshot. raw and stored are the
	// image size and the encoded size.
	RecordSnapshot(raw, stored uint64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordGrow(uint64, uint64, error)                    {}
func (NoopMetricsCollector) RecordFlush(time.Duration, error)                    {}
func (NoopMetricsCollector) RecordSnapshot(uint64, uint64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	GrowCount           atomic.Int64
	GrowErrors          atomic.Int64
	GrowBytes           atomic.Uint64
	FlushCount          atomic.Int64
	FlushErrors         atomic.Int64
	FlushTotalNanos     atomic.Int64
	SnapshotCount       atomic.Int64
	SnapshotErrors      atomic.Int64
	SnapshotRawBytes    atomic.Uint64
	SnapshotStoredBytes atomic.Uint64
}

// RecordGrow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrow(oldSize, newSize uint64, err error) {
	b.GrowCount.Add(1)
	if err != nil {
		b.GrowErrors.Add(1)
		return
	}
	if newSize > oldSize {
		b.GrowBytes.Add(newSize - oldSize)
	}
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(duration time.Duration, err error) {
	b.FlushCount.Add(1)
	b.FlushTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FlushErrors.Add(1)
	}
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(raw, stored uint64, _ time.Duration, err error) {
	b.SnapshotCount.Add(1)
	if err != nil {
		b.SnapshotErrors.Add(1)
		return
	}
	b.SnapshotRawBytes.Add(raw)
	b.SnapshotStoredBytes.Add(stored)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		GrowCount:           b.GrowCount.Load(),
		GrowErrors:          b.GrowErrors.Load(),
		GrowBytes:           b.GrowBytes.Load(),
		FlushCount:          b.FlushCount.Load(),
		FlushErrors:         b.FlushErrors.Load(),
		SnapshotCount:       b.SnapshotCount.Load(),
		SnapshotErrors:      b.SnapshotErrors.Load(),
		SnapshotRawBytes:    b.SnapshotRawBytes.Load(),
		SnapshotStoredBytes: b.SnapshotStoredBytes.Load(),
	}
	if s.FlushCount > 0 {
		s.FlushAvgNanos = b.FlushTotalNanos.Load() / s.FlushCount
	}
	return s
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	GrowCount           int64
	GrowErrors          int64
	GrowBytes           uint64
	FlushCount          int64
	FlushErrors         int64
	FlushAvgNanos       int64
	SnapshotCount       int64
	SnapshotErrors      int64
	SnapshotRawBytes    uint64
	SnapshotStoredBytes uint64
}
