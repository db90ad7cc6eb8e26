// SPDX-License-Identifier: MIT
package analysis

import "fmt"

// ProbeBin formats the diagnostics line for one user-triggered bin
// probe: the bin index, the frequency range that bin covers, and its
// magnitude in decibels. Out-of-range bins are clamped.
func ProbeBin(frame *SpectralFrame, mapper BinMapper, bin int) string {
	bin = mapper.ClampBin(bin)
	low := mapper.FrequencyForBin(bin)
	high := low + mapper.BinWidth()

	mag := 0.0
	if bin < len(frame.Magnitudes) {
		mag = frame.Magnitudes[bin]
	}

	return fmt.Sprintf("bin: %d, frequency (hertz): %.2f - %.2f, magnitude (decibels): %.2f",
		bin, low, high, LinearToDecibel(mag))
}
