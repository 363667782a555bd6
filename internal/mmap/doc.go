// Package mmap provides anonymous, off-heap memory mappings.
//
// # Overview
//
// Arena regions can be backed by an anonymous mapping instead of a Go heap
// slice. The mapped bytes live outside the garbage collector's control, so a
// large arena adds nothing to GC scan work and is returned to the OS in one
// step when the mapping is closed.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	region := m.Bytes() // zero-filled, page-aligned
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE, madvise(2) for hints
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT (Advise is a no-op)
//
// # Thread Safety
//
// Close is idempotent and guarded by an atomic flag. Callers must ensure no
// goroutine touches Bytes() after Close returns.
package mmap
