package alloc

import (
	"sync/atomic"

	"github.com/hupe1980/memkit/internal/conv"
	"github.com/hupe1980/memkit/internal/mem"
)

const (
	// DefaultAlignment is used when a nil Block is resized.
	DefaultAlignment = mem.DefaultAlignment

	// MaxAlignment is the largest supported alignment (one page).
	MaxAlignment = 4096
)

// Allocator hands out aligned memory blocks.
type Allocator interface {
	// Allocate returns a block of size bytes whose address is a multiple of
	// align. The first size bytes are zeroed when zero is true.
	Allocate(size, align int, zero bool) (Block, error)

	// Resize returns a block of newSize bytes that keeps the leading
	// min(old, new) bytes and the original alignment. The result may be a
	// different block; the old one must not be used afterwards. newSize == 0
	// frees b and returns the zero Block.
	Resize(b Block, newSize int) (Block, error)

	// Free hands b back. The zero Block and already-freed blocks are ignored.
	Free(b Block)
}

// Block is a handle to an allocated byte range.
//
// The zero Block is the nil block.
type Block struct {
	data  []byte
	align int
	owner uint64 // allocator that handed the block out
	id    uint32 // heap: live-set id
	off   int    // bump: offset within the region
	gen   uint32 // bump: region generation
}

// Bytes returns the usable bytes of the block.
func (b Block) Bytes() []byte {
	return b.data
}

// Size returns the usable size in bytes.
func (b Block) Size() int {
	return len(b.data)
}

// Alignment returns the alignment the block was allocated with.
func (b Block) Alignment() int {
	return b.align
}

// IsNil reports whether b is the zero Block.
func (b Block) IsNil() bool {
	return b.data == nil
}

// Addr returns the address of the first byte (0 for the nil block).
func (b Block) Addr() uintptr {
	return mem.Addr(b.data)
}

func checkRequest(op string, size, align int) error {
	if size <= 0 {
		return newError(op, size, align, ErrInvalidArgument, "size must be positive")
	}
	if align <= 0 {
		return newError(op, size, align, ErrInvalidArgument, "alignment must be positive")
	}
	if !conv.IsPowerOfTwo(align) {
		return newError(op, size, align, ErrInvalidArgument, "alignment must be a power of two")
	}
	if align > MaxAlignment {
		return newError(op, size, align, ErrInvalidArgument, "alignment exceeds MaxAlignment")
	}
	return nil
}

// ownerSeq numbers allocator instances so a Block can be traced back to the
// allocator that produced it.
var ownerSeq atomic.Uint64

func newOwner() uint64 {
	return ownerSeq.Add(1)
}

// statBytes converts a byte count for Stats. Negative counts never reach it;
// they are reported as 0.
func statBytes(n int) uint64 {
	v, err := conv.IntToUint64(n)
	if err != nil {
		return 0
	}
	return v
}

var (
	_ Allocator = (*Heap)(nil)
	_ Allocator = (*Arena)(nil)
	_ Allocator = (*FixedBuffer)(nil)
)
