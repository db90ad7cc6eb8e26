// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"specmon/pkg/utils"
)

const (
	testFFTSize    = 2048
	testWindowSize = 1024
	testSampleRate = 44100.0
)

func TestNewFFTEngineInvalidSizes(t *testing.T) {
	for _, size := range []int{-8, 0, 3, 1000, 2047} {
		if _, err := NewFFTEngine(size); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("NewFFTEngine(%d): expected ErrInvalidConfiguration, got %v", size, err)
		}
	}
}

func TestNewFFTEngineValidSizes(t *testing.T) {
	for _, size := range []int{2, 256, 1024, 2048, 16384} {
		engine, err := NewFFTEngine(size)
		if err != nil {
			t.Fatalf("NewFFTEngine(%d): unexpected error %v", size, err)
		}
		if engine.Size() != size {
			t.Errorf("Size() = %d, expected %d", engine.Size(), size)
		}
		if engine.Bins() != size/2+1 {
			t.Errorf("Bins() = %d, expected %d", engine.Bins(), size/2+1)
		}
	}
}

func TestTransformZeroInput(t *testing.T) {
	engine, err := NewFFTEngine(testFFTSize)
	if err != nil {
		t.Fatal(err)
	}

	src := make([]float64, testFFTSize)
	dst := make([]complex128, engine.Bins())
	engine.Transform(dst, src)

	for k, c := range dst {
		if cmplx.Abs(c) != 0 {
			t.Fatalf("bin %d: expected zero magnitude for zero input, got %g", k, cmplx.Abs(c))
		}
	}
}

func TestTransformSinePeak(t *testing.T) {
	engine, err := NewFFTEngine(testFFTSize)
	if err != nil {
		t.Fatal(err)
	}

	// A sine landing exactly on bin 100.
	freq := 100.0 * testSampleRate / testFFTSize
	src := make([]float64, testFFTSize)
	for i := range src {
		src[i] = math.Sin(2 * math.Pi * freq * float64(i) / testSampleRate)
	}

	dst := make([]complex128, engine.Bins())
	engine.Transform(dst, src)

	magnitudes := make([]float64, len(dst))
	for k, c := range dst {
		magnitudes[k] = cmplx.Abs(c)
	}

	peak := utils.FindPeakBin(magnitudes, 1, len(magnitudes)-1)
	if peak != 100 {
		t.Errorf("peak bin = %d, expected 100", peak)
	}
}

func TestTransformZeroAllocs(t *testing.T) {
	engine, err := NewFFTEngine(testFFTSize)
	if err != nil {
		t.Fatal(err)
	}

	src := make([]float64, testFFTSize)
	for i := range src {
		src[i] = math.Sin(float64(i) / 10)
	}
	dst := make([]complex128, engine.Bins())

	engine.Transform(dst, src) // warm-up
	allocs := testing.AllocsPerRun(100, func() {
		engine.Transform(dst, src)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in Transform, got %.1f", allocs)
	}
}

func BenchmarkTransform(b *testing.B) {
	engine, err := NewFFTEngine(testFFTSize)
	if err != nil {
		b.Fatal(err)
	}

	src := make([]float64, testFFTSize)
	for i := range src {
		src[i] = math.Sin(2 * math.Pi * 440 * float64(i) / testSampleRate)
	}
	dst := make([]complex128, engine.Bins())

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		engine.Transform(dst, src)
	}
}
