// Package conv provides checked integer conversions and size arithmetic.
//
// These functions perform bounds checking to prevent integer overflow/underflow
// when converting between signed/unsigned types and when rounding sizes up to
// alignments or powers of two.
//
// Use cases:
//   - Validating caller-supplied sizes, alignments and capacities
//   - Converting between Go's int (platform-dependent) and fixed-width types
//
// For conversions that are provably safe by domain constraints (e.g., bucket
// indices already masked to the table size), use direct type casts instead to
// avoid overhead.
package conv
