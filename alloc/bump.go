package alloc

import (
	"github.com/hupe1980/memkit/internal/mem"
)

// bump is the cursor shared by Arena and FixedBuffer.
//
// Allocation scans forward from offset to the first byte whose absolute
// address is a multiple of the alignment, then advances offset by the size.
// Padding is never reclaimed until Reset or Close.
type bump struct {
	owner  uint64
	kind   string
	region []byte
	base   uintptr
	offset int
	gen    uint32 // bumped by Reset to invalidate outstanding blocks
	closed bool
	opts   options
	stats  Stats
}

func newBump(kind string, region []byte, opts options) bump {
	return bump{
		owner:  newOwner(),
		kind:   kind,
		region: region,
		base:   mem.Addr(region),
		gen:    1,
		opts:   opts,
		stats: Stats{
			BytesReserved: statBytes(len(region)),
		},
	}
}

// Allocate implements Allocator.
func (a *bump) Allocate(size, align int, zero bool) (Block, error) {
	b, err := a.allocate("allocate", size, align, zero)
	if err != nil {
		a.stats.Failures++
	} else {
		a.stats.Allocs++
	}
	if a.opts.metrics != nil {
		a.opts.metrics.RecordAllocate(size, err)
	}
	return b, err
}

func (a *bump) allocate(op string, size, align int, zero bool) (Block, error) {
	if a.closed {
		return Block{}, newError(op, size, align, ErrInvalidArgument, a.kind+" is closed")
	}
	if err := checkRequest(op, size, align); err != nil {
		return Block{}, err
	}

	pad := a.padding(align)
	remaining := len(a.region) - a.offset
	if pad > remaining || size > remaining-pad {
		if a.opts.logger != nil {
			a.opts.logger.Warn(a.kind+" capacity exhausted",
				"size", size,
				"align", align,
				"offset", a.offset,
				"capacity", len(a.region),
			)
		}
		return Block{}, newError(op, size, align, ErrCapacityExhausted, "")
	}

	start := a.offset + pad
	end := start + size
	data := a.region[start:end:end]
	if zero {
		clear(data)
	}

	a.offset = end
	a.stats.BytesWasted += statBytes(pad)
	a.syncInUse()

	return Block{data: data, align: align, owner: a.owner, off: start, gen: a.gen}, nil
}

// padding returns the bytes needed to bring the cursor's absolute address up
// to a multiple of align.
func (a *bump) padding(align int) int {
	addr := a.base + uintptr(a.offset)        //nolint:gosec // offset >= 0
	return int((0 - addr) & uintptr(align-1)) //nolint:gosec // result < align
}

// Resize implements Allocator.
//
// The block grows or shrinks in place when it is the most recent allocation
// and the new end fits the region. Otherwise a fresh block is bump-allocated
// and the prefix copied; the old bytes are abandoned.
func (a *bump) Resize(b Block, newSize int) (Block, error) {
	if newSize < 0 {
		a.stats.Failures++
		err := newError("resize", newSize, b.align, ErrInvalidArgument, "size must not be negative")
		a.recordResize(b.Size(), newSize, false, err)
		return b, err
	}
	if newSize == 0 {
		a.Free(b)
		return Block{}, nil
	}
	if b.IsNil() {
		return a.Allocate(newSize, DefaultAlignment, false)
	}
	if !a.owns(b) {
		a.stats.Failures++
		err := newError("resize", newSize, b.align, ErrInvalidArgument, "block does not belong to this "+a.kind)
		a.recordResize(b.Size(), newSize, false, err)
		return b, err
	}

	if b.off+b.Size() == a.offset && b.off+newSize <= len(a.region) {
		end := b.off + newSize
		a.offset = end
		a.syncInUse()
		a.stats.InPlaceResizes++
		a.recordResize(b.Size(), newSize, true, nil)

		nb := b
		nb.data = a.region[b.off:end:end]
		return nb, nil
	}

	nb, err := a.allocate("resize", newSize, b.align, false)
	if err != nil {
		a.stats.Failures++
		a.recordResize(b.Size(), newSize, false, err)
		return b, err
	}
	copy(nb.data, b.data)

	a.stats.Resizes++
	a.recordResize(b.Size(), newSize, false, nil)
	return nb, nil
}

// Free implements Allocator. It is a no-op: memory is reclaimed only by
// Reset or Close.
func (a *bump) Free(b Block) {
	if b.IsNil() {
		return
	}
	a.stats.Frees++
}

// owns reports whether b was handed out by this allocator since the last
// Reset and still lies below the cursor.
func (a *bump) owns(b Block) bool {
	if a.closed || b.owner != a.owner || b.gen != a.gen || b.off < 0 || b.off+b.Size() > a.offset {
		return false
	}
	return mem.Addr(b.data) == a.base+uintptr(b.off) //nolint:gosec // off >= 0
}

// Reset rewinds the cursor to the start of the region. Every block handed
// out before Reset becomes invalid.
func (a *bump) Reset() {
	a.offset = 0
	a.gen++
	if a.gen == 0 {
		a.gen = 1
	}
	a.stats.BytesWasted = 0
	a.syncInUse()
}

// Offset returns the cursor position in bytes from the start of the region.
func (a *bump) Offset() int {
	return a.offset
}

// Capacity returns the size of the region in bytes.
func (a *bump) Capacity() int {
	return len(a.region)
}

// Remaining returns the bytes between the cursor and the end of the region.
// Alignment padding may make less than this usable.
func (a *bump) Remaining() int {
	return len(a.region) - a.offset
}

// Stats returns the current allocator statistics.
func (a *bump) Stats() Stats {
	return a.stats
}

func (a *bump) syncInUse() {
	a.stats.BytesInUse = statBytes(a.offset) - a.stats.BytesWasted
}

func (a *bump) recordResize(oldSize, newSize int, inPlace bool, err error) {
	if a.opts.metrics != nil {
		a.opts.metrics.RecordResize(oldSize, newSize, inPlace, err)
	}
}
