// Package hashmap implements an open-addressing hash map with Robin Hood
// linear probing over fixed-size byte keys and values.
//
// All buckets live in one block obtained from an alloc.Allocator, so a map can
// be placed in an arena, a caller-owned buffer or the Go heap:
//
//	arena, _ := alloc.NewArena(1 << 20)
//	defer arena.Close()
//
//	m, err := hashmap.New(20, 4, hashmap.WithAllocator(arena))
//	if err != nil {
//		return err
//	}
//	defer m.Close(nil)
//
//	_ = m.Insert(key, value)
//	v, ok := m.Get(key)
//
// Each bucket stores a little-endian uint64 of metadata (low 16 bits: the
// distance from the key's home bucket plus one, zero meaning empty; high 48
// bits: the truncated hash) followed by the key and the value, each padded to
// 8 bytes. Deletion shifts the following cluster back by one bucket, so the
// table never contains tombstones.
//
// The table doubles when an insert finds it full and halves when a removal
// leaves it at most a quarter full, never dropping below MinCapacity.
//
// A Map is not safe for concurrent use.
package hashmap
