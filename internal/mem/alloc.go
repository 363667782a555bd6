package mem

import (
	"unsafe"
)

// DefaultAlignment is the alignment used when callers pass zero.
const DefaultAlignment = 8

// AllocAligned allocates a zeroed byte slice of the given size whose first
// byte sits at an address divisible by align. align must be a power of two;
// zero selects DefaultAlignment.
//
// The returned slice has len == cap == size, so appends never spill into the
// padding. The underlying array is kept alive by the returned slice.
func AllocAligned(size, align int) []byte {
	if size <= 0 {
		return nil
	}
	if align <= 0 {
		align = DefaultAlignment
	}
	if align&(align-1) != 0 {
		return nil
	}

	// We need enough space to shift the start pointer up to align-1 bytes
	buf := make([]byte, size+align-1)

	offset := Misalignment(buf, align)
	if offset != 0 {
		offset = align - offset
	}

	return buf[offset : offset+size : offset+size]
}

// Misalignment returns the distance of the first byte of buf past the previous
// multiple of align (0 means aligned). Empty slices report 0.
func Misalignment(buf []byte, align int) int {
	if len(buf) == 0 || align <= 1 {
		return 0
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf))) //nolint:gosec // unsafe is required for memory alignment
	return int(addr & uintptr(align-1))                    //nolint:gosec // result < align
}

// Addr returns the address of the first byte of buf, or 0 for an empty slice.
func Addr(buf []byte) uintptr {
	if cap(buf) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(buf))) //nolint:gosec // unsafe is required for memory alignment
}
