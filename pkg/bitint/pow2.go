// SPDX-License-Identifier: MIT
/*
Package bitint provides power-of-two helpers for FFT and ring buffer
sizing. All operations are constant-time, allocation-free, and safe to
call from the audio callback.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size.
// Powers of 2 are returned unchanged; non-positive input yields 1.
// The size-1 adjustment keeps exact powers of 2 from being doubled:
// bits.Len(7) = 3 so 8 -> 8, while bits.Len(8) = 4 would give 16.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2.
// A power of 2 has exactly one bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
