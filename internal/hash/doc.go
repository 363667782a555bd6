// Package hash provides the key hash functions used by the hash map.
//
// # FNV-1a (default)
//
// 64-bit FNV-1a over the raw key bytes. It is computed inline over the byte
// slice so hashing a key never allocates:
//
//	h := hash.FNV1a64(key)
//
// # xxHash64
//
// XXH64 (seed 0) via github.com/cespare/xxhash/v2. Faster on keys longer than
// a few dozen bytes and with better avalanche behaviour on structured keys:
//
//	h := hash.XXH64(key)
//
// # Truncation
//
// Bucket metadata keeps only the low 48 bits of a hash. Truncate48 applies the
// same mask so callers can compare a fresh hash against stored metadata.
// Truncated equality never implies key equality; callers must still compare
// key bytes.
package hash
