// Package memkit provides allocator-aware containers for Go.
//
// Memkit separates where memory comes from and what is stored in it. The
// alloc package defines a small Allocator interface with three strategies,
// and the hashmap package builds a Robin Hood hash map whose whole bucket
// table is a single block from any of them.
//
// # Allocators
//
//	heap := alloc.NewHeap()                       // Go heap, per-block ownership
//	arena, _ := alloc.NewArena(1 << 20)           // bump allocation, freed at once
//	fixed, _ := alloc.NewFixedBuffer(make([]byte, 4096)) // bump over caller memory
//
// Every allocator honours the requested alignment, reports errors instead of
// retrying, and can be capped with a shared memory budget:
//
//	budget := alloc.NewBudget(64 << 20)
//	a, _ := alloc.NewArena(16<<20, alloc.WithBudget(budget))
//	h := alloc.NewHeap(alloc.WithBudget(budget))
//
// # Hash Map
//
//	m, _ := hashmap.New(20, 4, hashmap.WithAllocator(arena))
//	defer m.Close(nil)
//
//	_ = m.Insert(key, value)
//	v, ok := m.Get(key)
//	old, err := m.Remove(key)
//
// Keys and values are fixed-size byte strings. Inserting into a full table
// doubles it first; if the allocator cannot provide the larger table the
// insert fails and the map is left untouched.
//
// # Observability
//
// Both packages accept a *slog.Logger through WithLogger. This package adds a
// Logger wrapper with consistent field names and in-memory metrics
// collectors; metrics/prom exports the same events to Prometheus:
//
//	collector := &memkit.BasicMetricsCollector{}
//	arena, _ := alloc.NewArena(1<<20, alloc.WithMetricsCollector(collector))
//	m, _ := hashmap.New(8, 8, hashmap.WithAllocator(arena), hashmap.WithMetricsObserver(collector))
//	fmt.Println(collector.GetStats())
//
// # Concurrency
//
// Allocators and maps are not safe for concurrent use; callers serialise
// access. A Budget may be shared across goroutines.
package memkit
