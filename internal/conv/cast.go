package conv

import (
	"fmt"
	"math"
	"math/bits"
)

// IntToUint64 converts int to uint64 safely.
func IntToUint64(v int) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint64 (negative)", v)
	}
	return uint64(v), nil
}

// Uint64ToInt converts uint64 to int safely.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int (too large)", v)
	}
	return int(v), nil
}

// IsPowerOfTwo reports whether v is a positive power of two.
func IsPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// AlignUp rounds v up to the next multiple of align.
// align must be a power of two.
func AlignUp(v, align int) (int, error) {
	if v < 0 {
		return 0, fmt.Errorf("align up: negative value %d", v)
	}
	if !IsPowerOfTwo(align) {
		return 0, fmt.Errorf("align up: alignment %d is not a power of two", align)
	}
	mask := align - 1
	if v > math.MaxInt-mask {
		return 0, fmt.Errorf("integer overflow: %d cannot be aligned to %d", v, align)
	}
	return (v + mask) &^ mask, nil
}

// NextPowerOfTwo returns the smallest power of two >= v.
// Zero and negative values round up to 1.
func NextPowerOfTwo(v int) (int, error) {
	if v <= 1 {
		return 1, nil
	}
	shift := bits.Len(uint(v - 1)) //nolint:gosec // v > 1
	if shift >= bits.UintSize-1 {
		return 0, fmt.Errorf("integer overflow: no power of two >= %d fits in int", v)
	}
	return 1 << shift, nil
}

// MulInt multiplies two non-negative ints, reporting overflow.
func MulInt(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("multiply: negative operand (%d * %d)", a, b)
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return int(lo), nil
}
