package alloc

import (
	"github.com/hupe1980/memkit/internal/resource"
)

// Budget limits the memory reserved by one or more allocators.
//
// A Budget is safe for concurrent use. A nil *Budget is unlimited and
// tracks nothing.
type Budget struct {
	rc *resource.Controller
}

// NewBudget creates a Budget with the given limit in bytes (0 = unlimited).
func NewBudget(limitBytes int64) *Budget {
	return &Budget{
		rc: resource.NewController(resource.Config{MemoryLimitBytes: limitBytes}),
	}
}

// Used returns the bytes currently reserved.
func (b *Budget) Used() int64 {
	if b == nil {
		return 0
	}
	return b.rc.MemoryUsage()
}

// Peak returns the high-water mark of Used.
func (b *Budget) Peak() int64 {
	if b == nil {
		return 0
	}
	return b.rc.PeakMemoryUsage()
}

// Limit returns the configured limit (0 = unlimited).
func (b *Budget) Limit() int64 {
	if b == nil {
		return 0
	}
	return b.rc.MemoryLimit()
}

// Available returns the bytes that can still be reserved, or -1 if unlimited.
func (b *Budget) Available() int64 {
	if b == nil {
		return -1
	}
	return b.rc.MemoryAvailable()
}

func (b *Budget) acquire(bytes int) error {
	if b == nil {
		return nil
	}
	return b.rc.AcquireMemory(int64(bytes))
}

func (b *Budget) release(bytes int) {
	if b == nil {
		return
	}
	b.rc.ReleaseMemory(int64(bytes))
}
