// Package mem provides aligned heap buffers.
//
// # Aligned Allocation
//
// The Go heap only promises natural alignment for the element type, which is 1
// for []byte. AllocAligned over-allocates by alignment-1 bytes and returns the
// sub-slice starting at the first suitably aligned address. The Go garbage
// collector does not move heap objects, so the alignment holds for the
// lifetime of the slice.
package mem
