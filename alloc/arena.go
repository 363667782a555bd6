package alloc

import (
	"fmt"

	"github.com/hupe1980/memkit/internal/mmap"
)

// Arena is a bump allocator over one region reserved at construction.
//
// Individual frees are no-ops; Close releases the whole region at once
// regardless of which blocks were freed.
//
// IMPORTANT:
//  1. Arena is not safe for concurrent use (the cursor is unsynchronised)
//  2. All blocks become invalid after Reset or Close
//  3. Close must be called exactly once to return the region (extra calls are ignored)
type Arena struct {
	bump
	mapping  *mmap.Mapping
	reserved int
}

// NewArena creates an Arena with a region of capacity bytes.
//
// With WithOffHeap the region is an anonymous mapping; otherwise it is a Go
// heap slice. A Budget, if configured, is charged the full capacity up front.
func NewArena(capacity int, opts ...Option) (*Arena, error) {
	if capacity <= 0 {
		return nil, newError("new arena", capacity, 0, ErrInvalidArgument, "capacity must be positive")
	}

	o := applyOptions(opts)

	if err := o.budget.acquire(capacity); err != nil {
		return nil, budgetError("new arena", capacity, 0, err)
	}

	var (
		region  []byte
		mapping *mmap.Mapping
		err     error
	)
	if o.offHeap {
		mapping, err = mmap.MapAnon(capacity)
		if err != nil {
			o.budget.release(capacity)
			return nil, newError("new arena", capacity, 0, fmt.Errorf("%w: %w", ErrAllocationFailed, err), "anonymous mapping failed")
		}
		region = mapping.Bytes()
	} else {
		region, err = allocAligned(capacity, 1)
		if err != nil {
			o.budget.release(capacity)
			return nil, newError("new arena", capacity, 0, ErrAllocationFailed, err.Error())
		}
	}

	if o.logger != nil {
		o.logger.Debug("arena created", "capacity", capacity, "offHeap", o.offHeap)
	}

	return &Arena{
		bump:     newBump("arena", region, o),
		mapping:  mapping,
		reserved: capacity,
	}, nil
}

// Close releases the region. It is idempotent.
func (a *Arena) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.region = nil
	a.base = 0

	var err error
	if a.mapping != nil {
		err = a.mapping.Close()
		a.mapping = nil
	}

	a.opts.budget.release(a.reserved)
	a.stats.BytesReserved = 0

	if a.opts.logger != nil {
		a.opts.logger.Debug("arena closed",
			"allocs", a.stats.Allocs,
			"offset", a.offset,
			"wasted", a.stats.BytesWasted,
		)
	}
	return err
}

// Reset rewinds the cursor to the start of the region. Every block handed
// out before Reset becomes invalid. The pages of an off-heap region are
// handed back to the OS and refault on the next touch.
func (a *Arena) Reset() {
	a.bump.Reset()
	if a.mapping == nil {
		return
	}
	if err := a.mapping.Advise(mmap.AccessDontNeed); err != nil && a.opts.logger != nil {
		a.opts.logger.Debug("arena page release failed", "error", err)
	}
}

// OffHeap reports whether the region is an anonymous mapping.
func (a *Arena) OffHeap() bool {
	return a.mapping != nil
}

func (a *Arena) String() string {
	return fmt.Sprintf("Arena{capacity: %d, offset: %d, wasted: %d, allocs: %d, offHeap: %t}",
		a.Capacity(), a.offset, a.stats.BytesWasted, a.stats.Allocs, a.OffHeap())
}
