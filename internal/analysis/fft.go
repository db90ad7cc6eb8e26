// SPDX-License-Identifier: MIT
/*
Package analysis implements the real-time spectral monitoring core: a
fixed-size forward FFT engine, precomputed window tables, a spectral
monitor that turns incoming PCM chunks into magnitude spectra and a
spectral centroid, and a wait-free snapshot handoff to a consumer
running on its own schedule.
*/
package analysis

import (
	"errors"
	"fmt"

	"specmon/pkg/bitint"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrInvalidConfiguration is returned when analysis components are
// constructed with parameters that can never produce a valid spectrum
// (FFT size not a power of two, FFT size smaller than the window,
// non-positive sample rate). It is fatal at setup; no per-call
// validation of these parameters happens afterwards.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// FFTEngine computes forward real-valued transforms of a fixed
// power-of-two size. The twiddle tables are precomputed at
// construction and never mutated afterwards, so Transform is safe to
// call from any thread as long as each caller supplies its own
// buffers.
type FFTEngine struct {
	size int
	fft  *fourier.FFT
}

// NewFFTEngine creates an engine for transforms of the given size.
// The size must be a power of two.
func NewFFTEngine(size int) (*FFTEngine, error) {
	if !bitint.IsPowerOfTwo(size) {
		return nil, fmt.Errorf("%w: fft size must be a power of 2, got %d", ErrInvalidConfiguration, size)
	}
	return &FFTEngine{
		size: size,
		fft:  fourier.NewFFT(size),
	}, nil
}

// Size returns the transform length.
func (e *FFTEngine) Size() int { return e.size }

// Bins returns the number of complex output values, size/2 + 1.
func (e *FFTEngine) Bins() int { return e.size/2 + 1 }

// Transform computes the forward FFT of src into dst and returns dst.
// len(src) must equal Size() and len(dst) must equal Bins().
// Deterministic, side-effect free, and allocation free.
func (e *FFTEngine) Transform(dst []complex128, src []float64) []complex128 {
	return e.fft.Coefficients(dst, src)
}
