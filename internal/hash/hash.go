package hash

import (
	"github.com/cespare/xxhash/v2"
)

const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211

	// Mask48 keeps the low 48 bits of a hash.
	Mask48 = 1<<48 - 1
)

// FNV1a64 computes the 64-bit FNV-1a hash of data.
func FNV1a64(data []byte) uint64 {
	h := uint64(fnvOffset64)
	for _, b := range data {
		h ^= uint64(b)
		h *= fnvPrime64
	}
	return h
}

// XXH64 computes the 64-bit xxHash of data with seed 0.
func XXH64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Truncate48 returns the low 48 bits of h.
func Truncate48(h uint64) uint64 {
	return h & Mask48
}
