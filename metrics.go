package memkit

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/memkit/alloc"
	"github.com/hupe1980/memkit/hashmap"
)

// NoopMetricsCollector is a no-op implementation of alloc.MetricsCollector
// and hashmap.MetricsObserver.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAllocate(int, error)             {}
func (NoopMetricsCollector) RecordResize(int, int, bool, error)    {}
func (NoopMetricsCollector) RecordFree(int)                        {}
func (NoopMetricsCollector) OnResize(int, int, int, time.Duration) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
//
// One collector may be shared by several allocators and maps.
type BasicMetricsCollector struct {
	AllocCount     atomic.Int64
	AllocErrors    atomic.Int64
	AllocBytes     atomic.Int64
	ResizeCount    atomic.Int64
	ResizeErrors   atomic.Int64
	InPlaceResizes atomic.Int64
	FreeCount      atomic.Int64
	FreedBytes     atomic.Int64
	MapGrowCount   atomic.Int64
	MapShrinkCount atomic.Int64
	MapResizeNanos atomic.Int64
	MapLargestCap  atomic.Int64
}

// RecordAllocate implements alloc.MetricsCollector.
func (b *BasicMetricsCollector) RecordAllocate(size int, err error) {
	b.AllocCount.Add(1)
	if err != nil {
		b.AllocErrors.Add(1)
		return
	}
	b.AllocBytes.Add(int64(size))
}

// RecordResize implements alloc.MetricsCollector.
func (b *BasicMetricsCollector) RecordResize(oldSize, newSize int, inPlace bool, err error) {
	b.ResizeCount.Add(1)
	if err != nil {
		b.ResizeErrors.Add(1)
		return
	}
	if inPlace {
		b.InPlaceResizes.Add(1)
	}
}

// RecordFree implements alloc.MetricsCollector.
func (b *BasicMetricsCollector) RecordFree(size int) {
	b.FreeCount.Add(1)
	b.FreedBytes.Add(int64(size))
}

// OnResize implements hashmap.MetricsObserver.
func (b *BasicMetricsCollector) OnResize(oldCap, newCap, _ int, d time.Duration) {
	if newCap > oldCap {
		b.MapGrowCount.Add(1)
	} else {
		b.MapShrinkCount.Add(1)
	}
	b.MapResizeNanos.Add(d.Nanoseconds())

	c := int64(newCap)
	for {
		cur := b.MapLargestCap.Load()
		if c <= cur || b.MapLargestCap.CompareAndSwap(cur, c) {
			return
		}
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AllocCount:        b.AllocCount.Load(),
		AllocErrors:       b.AllocErrors.Load(),
		AllocBytes:        b.AllocBytes.Load(),
		ResizeCount:       b.ResizeCount.Load(),
		ResizeErrors:      b.ResizeErrors.Load(),
		InPlaceResizes:    b.InPlaceResizes.Load(),
		FreeCount:         b.FreeCount.Load(),
		FreedBytes:        b.FreedBytes.Load(),
		MapGrowCount:      b.MapGrowCount.Load(),
		MapShrinkCount:    b.MapShrinkCount.Load(),
		MapResizeAvgNanos: b.getAvgMapResizeNanos(),
		MapLargestCap:     b.MapLargestCap.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgMapResizeNanos() int64 {
	count := b.MapGrowCount.Load() + b.MapShrinkCount.Load()
	if count == 0 {
		return 0
	}
	return b.MapResizeNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AllocCount        int64
	AllocErrors       int64
	AllocBytes        int64
	ResizeCount       int64
	ResizeErrors      int64
	InPlaceResizes    int64
	FreeCount         int64
	FreedBytes        int64
	MapGrowCount      int64
	MapShrinkCount    int64
	MapResizeAvgNanos int64
	MapLargestCap     int64
}

var (
	_ alloc.MetricsCollector  = NoopMetricsCollector{}
	_ hashmap.MetricsObserver = NoopMetricsCollector{}
	_ alloc.MetricsCollector  = (*BasicMetricsCollector)(nil)
	_ hashmap.MetricsObserver = (*BasicMetricsCollector)(nil)
)
