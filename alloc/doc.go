// Package alloc provides the allocator capability used by memkit containers.
//
// # Allocator Interface
//
// The core abstraction is the Allocator interface:
//
//   - Allocate(size, align, zero): obtain a Block of size bytes aligned to align
//   - Resize(block, newSize): grow or shrink a Block, preserving its prefix
//   - Free(block): hand a Block back
//
// A Block is a fat handle carrying its own size and alignment, so Resize and
// Free never need them supplied again.
//
// # Implementations
//
// Heap: pass-through to the Go heap
//
//   - Every Allocate gets its own aligned buffer
//   - Resize always relocates (allocate, copy, free)
//   - Free drops the allocator's hold on the buffer; double frees are detected
//     through a roaring bitmap of live block ids and ignored
//
// Arena: bump allocator over one region reserved at construction
//
//   - First-fit from the cursor: pad to alignment, then advance by size
//   - Resize is in place when the block is the most recent allocation
//   - Free is a no-op; Close releases the whole region at once
//   - WithOffHeap backs the region with an anonymous mmap
//
// FixedBuffer: the Arena algorithm over caller-owned memory
//
//   - Close never touches the caller's buffer
//
// # Usage Example
//
//	a, err := alloc.NewArena(64 << 10)
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	b, err := a.Allocate(128, 16, true)
//	if errors.Is(err, alloc.ErrCapacityExhausted) {
//	    // arena full - use a bigger one
//	}
//	copy(b.Bytes(), payload)
//
// # Errors
//
// Every failure is returned as an *Error that unwraps to one of
// ErrInvalidArgument, ErrAllocationFailed or ErrCapacityExhausted. Nothing is
// retried and no allocator falls back to another strategy.
//
// # Thread Safety
//
// Allocators are NOT safe for concurrent use. Callers that share one
// allocator across goroutines must serialise access themselves. A Budget is
// the exception and may be shared freely.
package alloc
