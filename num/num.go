// Package num implements various utility functions regarding numeric types.
package num

import "math/bits"

// IsPowerOfTwo returns whether x is a power of two.
// Returns false if x is not positive.
func IsPowerOfTwo(x int) bool {
	return x > 0 && x&(x-1) == 0
}

// NextPowerOfTwo returns the smallest power of two not less than x.
func NextPowerOfTwo(x int) int {
	if x <= 1 {
		return 1
	}
	return 1 << (bits.Len(uint(x - 1)))
}

// Log2 returns the base-two logarithm of x.
// Panics if x is not a power of two.
func Log2(x int) int {
	if !IsPowerOfTwo(x) {
		panic("x is not a power of two")
	}
	return bits.TrailingZeros(uint(x))
}
