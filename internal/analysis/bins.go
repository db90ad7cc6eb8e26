// SPDX-License-Identifier: MIT
package analysis

import "math"

// BinMapper converts between frequency-bin index and frequency in
// hertz for a given sample rate and FFT size. Pure arithmetic with no
// state; obtain a fresh mapper (Monitor.Mapper) whenever the sample
// rate or FFT size changes.
//
// Both conversions clamp to [0, FFTSize/2 - 1]: bin indices derived
// from external coordinates (pixels, pointer positions) can exceed
// Nyquist, and visualization contexts prefer graceful degradation over
// failing.
type BinMapper struct {
	SampleRate float64
	FFTSize    int
}

// NumBins returns the number of magnitude bins, FFTSize/2.
func (b BinMapper) NumBins() int { return b.FFTSize / 2 }

// BinWidth returns the frequency spacing between bins in hertz.
func (b BinMapper) BinWidth() float64 { return b.SampleRate / float64(b.FFTSize) }

// Nyquist returns half the sample rate, the highest representable
// frequency.
func (b BinMapper) Nyquist() float64 { return b.SampleRate / 2 }

// ClampBin clamps a bin index into the valid magnitude range. This is
// the one validation callers must not skip before indexing a
// SpectralFrame with an externally derived bin.
func (b BinMapper) ClampBin(k int) int {
	if k < 0 {
		return 0
	}
	if max := b.NumBins() - 1; k > max {
		return max
	}
	return k
}

// FrequencyForBin returns k * sampleRate / fftSize with k clamped.
func (b BinMapper) FrequencyForBin(k int) float64 {
	return float64(b.ClampBin(k)) * b.BinWidth()
}

// BinForFrequency returns round(f * fftSize / sampleRate), clamped.
func (b BinMapper) BinForFrequency(f float64) int {
	return b.ClampBin(int(math.Round(f / b.BinWidth())))
}

// DecibelFloor is the smallest magnitude fed to the decibel
// conversion, preventing log10(0) for silent bins. 1e-6 corresponds
// to -120 dB.
const DecibelFloor = 1e-6

// LinearToDecibel converts a linear magnitude to decibels:
// 20 * log10(max(mag, DecibelFloor)). Consumer-side concern; frames
// store linear magnitudes.
func LinearToDecibel(mag float64) float64 {
	if mag < DecibelFloor {
		mag = DecibelFloor
	}
	return 20 * math.Log10(mag)
}
