package hashmap

import (
	"github.com/hupe1980/memkit/internal/hash"
)

// Hasher maps a key to a 64-bit hash. The low bits select the home bucket;
// the low 48 bits are stored alongside each entry.
type Hasher func(key []byte) uint64

// FNV1a is the default Hasher (64-bit FNV-1a).
func FNV1a(key []byte) uint64 {
	return hash.FNV1a64(key)
}

// XXHash hashes keys with 64-bit xxHash.
func XXHash(key []byte) uint64 {
	return hash.XXH64(key)
}
