package alloc

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/memkit/internal/conv"
	"github.com/hupe1980/memkit/internal/mem"
)

// Heap is the default allocator: a pass-through to the Go heap.
//
// Each block owns a private buffer of size+align-1 bytes so that its first
// byte can be aligned. Resize always relocates. Free removes the block from
// the live set and returns its reservation to the Budget; the buffer itself
// is reclaimed by the garbage collector once the caller drops the Block.
type Heap struct {
	owner  uint64
	opts   options
	live   *roaring.Bitmap
	nextID uint32
	stats  Stats
}

// NewHeap creates a Heap allocator.
func NewHeap(opts ...Option) *Heap {
	return &Heap{
		owner: newOwner(),
		opts:  applyOptions(opts),
		live:  roaring.New(),
	}
}

// Allocate implements Allocator.
//
// Go heap memory is always zeroed, so zero is satisfied for free.
func (h *Heap) Allocate(size, align int, zero bool) (Block, error) {
	b, err := h.allocate("allocate", size, align)
	if err != nil {
		h.stats.Failures++
	} else {
		h.stats.Allocs++
	}
	if h.opts.metrics != nil {
		h.opts.metrics.RecordAllocate(size, err)
	}
	return b, err
}

func (h *Heap) allocate(op string, size, align int) (Block, error) {
	if err := checkRequest(op, size, align); err != nil {
		return Block{}, err
	}
	if size > math.MaxInt-align {
		return Block{}, newError(op, size, align, ErrAllocationFailed, "size overflows the address space")
	}

	reserved := reservedBytes(size, align)
	if err := h.opts.budget.acquire(reserved); err != nil {
		if h.opts.logger != nil {
			h.opts.logger.Warn("heap allocation refused by budget",
				"size", size,
				"align", align,
				"used", h.opts.budget.Used(),
				"limit", h.opts.budget.Limit(),
			)
		}
		return Block{}, budgetError(op, size, align, err)
	}

	data, err := allocAligned(size, align)
	if err != nil {
		h.opts.budget.release(reserved)
		return Block{}, newError(op, size, align, ErrAllocationFailed, err.Error())
	}

	id := h.newID()
	h.live.Add(id)
	h.stats.BytesInUse += statBytes(size)
	h.stats.BytesReserved += statBytes(reserved)
	h.stats.BytesWasted += statBytes(reserved - size)

	return Block{data: data, align: align, owner: h.owner, id: id}, nil
}

// Resize implements Allocator. The block always moves.
//
// Resizing the nil Block allocates with DefaultAlignment. On failure the
// original block is left untouched and still owned by the caller.
func (h *Heap) Resize(b Block, newSize int) (Block, error) {
	if newSize < 0 {
		h.stats.Failures++
		err := newError("resize", newSize, b.align, ErrInvalidArgument, "size must not be negative")
		h.recordResize(b.Size(), newSize, err)
		return b, err
	}
	if newSize == 0 {
		h.Free(b)
		return Block{}, nil
	}
	if b.IsNil() {
		return h.Allocate(newSize, DefaultAlignment, false)
	}
	if !h.Owns(b) {
		h.stats.Failures++
		err := newError("resize", newSize, b.align, ErrInvalidArgument, "block is not live")
		h.recordResize(b.Size(), newSize, err)
		return b, err
	}

	nb, err := h.allocate("resize", newSize, b.align)
	if err != nil {
		h.stats.Failures++
		h.recordResize(b.Size(), newSize, err)
		return b, err
	}
	copy(nb.data, b.data)
	h.release(b)

	h.stats.Resizes++
	h.recordResize(b.Size(), newSize, nil)
	return nb, nil
}

// Free implements Allocator.
func (h *Heap) Free(b Block) {
	if b.IsNil() {
		return
	}
	if !h.Owns(b) {
		if h.opts.logger != nil {
			h.opts.logger.Debug("ignoring free of foreign or dead block", "id", b.id, "size", b.Size())
		}
		return
	}
	h.release(b)
	h.stats.Frees++
	if h.opts.metrics != nil {
		h.opts.metrics.RecordFree(b.Size())
	}
}

func (h *Heap) release(b Block) {
	h.live.Remove(b.id)
	reserved := reservedBytes(b.Size(), b.align)
	h.opts.budget.release(reserved)
	h.stats.BytesInUse -= statBytes(b.Size())
	h.stats.BytesReserved -= statBytes(reserved)
	h.stats.BytesWasted -= statBytes(reserved - b.Size())
}

// Live returns the number of blocks that have not been freed.
func (h *Heap) Live() int {
	n, err := conv.Uint64ToInt(h.live.GetCardinality())
	if err != nil {
		return math.MaxInt
	}
	return n
}

// Owns reports whether b is a live block of this heap. Blocks of other
// allocators are never owned, even when their ids collide.
func (h *Heap) Owns(b Block) bool {
	return !b.IsNil() && b.owner == h.owner && h.live.Contains(b.id)
}

// Stats returns the current allocator statistics.
func (h *Heap) Stats() Stats {
	return h.stats
}

func (h *Heap) recordResize(oldSize, newSize int, err error) {
	if h.opts.metrics != nil {
		h.opts.metrics.RecordResize(oldSize, newSize, false, err)
	}
}

// newID returns the next block id, skipping 0 on wrap-around.
func (h *Heap) newID() uint32 {
	h.nextID++
	if h.nextID == 0 {
		h.nextID = 1
	}
	return h.nextID
}

func reservedBytes(size, align int) int {
	return size + align - 1
}

// allocAligned converts the runtime's "len out of range" panic for absurd
// sizes into an error.
func allocAligned(size, align int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("%v", r)
		}
	}()
	buf = mem.AllocAligned(size, align)
	if buf == nil {
		return nil, fmt.Errorf("aligned allocation of %d bytes failed", size)
	}
	return buf, nil
}
