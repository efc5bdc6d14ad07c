// SPDX-License-Identifier: MIT
/*
Package bitint provides the integer helpers dspview uses to size and
validate transform buffers.

A real-to-complex transform needs an even length to split into N/2+1 bins;
power-of-two lengths take the fastest radix-2 path in the transform
package, so other sizes are accepted but reported.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size, or 1 for
// non-positive sizes. Subtracting one first keeps exact powers unchanged:
// bits.Len(7) = 3 gives 8, while bits.Len(8) = 4 would give 16.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two. A power of two
// has exactly one bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// IsEven reports whether n is even, testing the low bit.
func IsEven(n int) bool {
	return n&1 == 0
}

// Log2 returns floor(log2(n)) for n > 0 and -1 otherwise.
func Log2(n int) int {
	if n <= 0 {
		return -1
	}
	return bits.Len(uint(n)) - 1
}
