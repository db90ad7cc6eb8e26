// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc selects the tapering function applied to a frame before
// the transform.
type WindowFunc int

const (
	BlackmanHarris WindowFunc = iota
	BartlettHann
	Blackman
	BlackmanNuttall
	FlatTop
	Hamming
	Hann
	Lanczos
	Nuttall
)

// String returns the canonical lowercase name of the window function.
func (w WindowFunc) String() string {
	switch w {
	case BlackmanHarris:
		return "blackmanharris"
	case BartlettHann:
		return "bartletthann"
	case Blackman:
		return "blackman"
	case BlackmanNuttall:
		return "blackmannuttall"
	case FlatTop:
		return "flattop"
	case Hamming:
		return "hamming"
	case Hann:
		return "hann"
	case Lanczos:
		return "lanczos"
	case Nuttall:
		return "nuttall"
	default:
		return "unknown"
	}
}

// ParseWindowFunc converts a window name (case-insensitive) to a
// WindowFunc. Returns BlackmanHarris and an error if the name is
// unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "blackmanharris", "blackman-harris":
		return BlackmanHarris, nil
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "flattop":
		return FlatTop, nil
	case "hamming":
		return Hamming, nil
	case "hann", "hanning":
		return Hann, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return BlackmanHarris, fmt.Errorf("%w: unknown window function %q", ErrInvalidConfiguration, name)
	}
}

// Window holds a precomputed coefficient table of a fixed length. The
// table is computed once at construction and immutable thereafter.
type Window struct {
	typ    WindowFunc
	coeffs []float64
	sum    float64
}

// NewWindow computes the coefficient table for the given size and
// window type.
func NewWindow(size int, typ WindowFunc) (*Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: window size must be positive, got %d", ErrInvalidConfiguration, size)
	}

	// The gonum window functions multiply a sequence in place, so the
	// table starts at 1.0 everywhere.
	coeffs := make([]float64, size)
	for i := range coeffs {
		coeffs[i] = 1.0
	}

	switch typ {
	case BlackmanHarris:
		window.BlackmanHarris(coeffs)
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case FlatTop:
		window.FlatTop(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Hann:
		window.Hann(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		return nil, fmt.Errorf("%w: unknown window function type %d", ErrInvalidConfiguration, typ)
	}

	var sum float64
	for _, c := range coeffs {
		sum += c
	}

	return &Window{typ: typ, coeffs: coeffs, sum: sum}, nil
}

// Size returns the window length.
func (w *Window) Size() int { return len(w.coeffs) }

// Type returns the window function this table was computed from.
func (w *Window) Type() WindowFunc { return w.typ }

// Sum returns the sum of the coefficients (window size times the
// coherent gain). It drives the fixed magnitude scale factor: scaling
// the single-sided spectrum by 2/Sum maps a full-scale sine to a peak
// magnitude of about 1.0.
func (w *Window) Sum() float64 { return w.sum }

// Apply multiplies src element-wise by the coefficient table into dst
// and returns dst. Both slices must have length Size(). The monitor
// fuses this multiply into its ring-to-input copy instead of calling
// Apply; this entry point serves callers that already hold a
// contiguous frame.
func (w *Window) Apply(dst, src []float64) []float64 {
	if len(src) != len(w.coeffs) || len(dst) != len(w.coeffs) {
		panic("analysis: window length mismatch")
	}
	for i, c := range w.coeffs {
		dst[i] = src[i] * c
	}
	return dst
}

// Coefficients returns a copy of the coefficient table.
func (w *Window) Coefficients() []float64 {
	out := make([]float64, len(w.coeffs))
	copy(out, w.coeffs)
	return out
}
