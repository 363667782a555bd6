package alloc

// MetricsCollector receives allocator events.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordAllocate is called after each Allocate. err is nil on success.
	RecordAllocate(size int, err error)

	// RecordResize is called after each Resize that did not degenerate into
	// a Free. inPlace reports whether the block kept its address.
	RecordResize(oldSize, newSize int, inPlace bool, err error)

	// RecordFree is called when memory is actually handed back. Allocators
	// whose Free is a no-op never call it.
	RecordFree(size int)
}

// Stats is a snapshot of allocator counters.
//
//   - BytesInUse: bytes of live blocks (bump allocators: cursor minus padding)
//   - BytesReserved: memory held by the allocator, including padding
//   - BytesWasted: alignment padding
type Stats struct {
	Allocs         uint64
	Frees          uint64
	Resizes        uint64
	InPlaceResizes uint64
	Failures       uint64
	BytesInUse     uint64
	BytesReserved  uint64
	BytesWasted    uint64
}
