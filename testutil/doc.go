// Package testutil provides testing utilities for memkit.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic, thread-safe RNG and helpers for building the
// fixed-size keys and values the hash map stores.
//
// # Random Keys
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.DistinctKeys(1000, 20) // 1000 unique 20-byte keys
//	val := rng.Bytes(4)
//
// # Fixed-size Encoding
//
//	key := testutil.FixedKey("abc", 20) // "abc" zero-padded to 20 bytes
//	val := testutil.Int32(4)            // little-endian int32
//	n := testutil.ToInt32(val)
package testutil
