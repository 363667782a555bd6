// Package prom exports allocator and hash map events as Prometheus metrics.
//
//	c := prom.NewCollector("myapp")
//	prometheus.MustRegister(c)
//
//	arena, _ := alloc.NewArena(1<<20, alloc.WithMetricsCollector(c))
//	m, _ := hashmap.New(8, 8, hashmap.WithAllocator(arena), hashmap.WithMetricsObserver(c))
package prom
