// Package resource implements a shared memory budget for allocators.
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic counters
// for usage tracking. AcquireMemory is non-blocking and returns immediately
// with ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20, // 64MB limit
//	})
//
//	if err := rc.AcquireMemory(4096); err != nil {
//	    // ErrMemoryLimitExceeded - the allocator reports the failure
//	}
//	defer rc.ReleaseMemory(4096)
//
// Allocators never wait for budget to become available: allocation has no
// suspension points, so a refused reservation surfaces as an allocation
// failure right away.
//
// # Thread Safety
//
// All Controller methods are safe for concurrent use, so one Controller may be
// shared by several allocators even though each allocator is single-threaded.
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
// This allows optional limiting without nil checks everywhere.
package resource
