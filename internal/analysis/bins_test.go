// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"testing"
)

func testMapper() BinMapper {
	return BinMapper{SampleRate: testSampleRate, FFTSize: testFFTSize}
}

func TestBinWidthAndFrequencyForBin(t *testing.T) {
	mapper := testMapper()

	// 44100 Hz / 2048 bins.
	if width := mapper.BinWidth(); math.Abs(width-21.5332) > 0.001 {
		t.Errorf("BinWidth = %g, expected ~21.533", width)
	}
	if freq := mapper.FrequencyForBin(10); math.Abs(freq-215.332) > 0.001 {
		t.Errorf("FrequencyForBin(10) = %g, expected ~215.33", freq)
	}
	if freq := mapper.FrequencyForBin(0); freq != 0 {
		t.Errorf("FrequencyForBin(0) = %g, expected 0", freq)
	}
	if nyquist := mapper.Nyquist(); nyquist != testSampleRate/2 {
		t.Errorf("Nyquist = %g, expected %g", nyquist, testSampleRate/2.0)
	}
}

func TestBinFrequencyRoundTrip(t *testing.T) {
	mapper := testMapper()

	for k := 0; k < mapper.NumBins(); k++ {
		got := mapper.BinForFrequency(mapper.FrequencyForBin(k))
		if diff := got - k; diff < -1 || diff > 1 {
			t.Fatalf("round trip for bin %d gave %d", k, got)
		}
	}
}

func TestBinMapperClamping(t *testing.T) {
	mapper := testMapper()
	maxBin := mapper.NumBins() - 1

	tests := []struct {
		name     string
		bin      int
		expected int
	}{
		{"negative", -5, 0},
		{"zero", 0, 0},
		{"valid", 100, 100},
		{"max", maxBin, maxBin},
		{"past max", maxBin + 1, maxBin},
		{"pixel coordinate beyond nyquist", 100000, maxBin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapper.ClampBin(tt.bin); got != tt.expected {
				t.Errorf("ClampBin(%d) = %d, expected %d", tt.bin, got, tt.expected)
			}
		})
	}

	// Frequencies beyond Nyquist clamp to the top bin.
	if got := mapper.BinForFrequency(testSampleRate); got != maxBin {
		t.Errorf("BinForFrequency(sample rate) = %d, expected %d", got, maxBin)
	}
	if got := mapper.BinForFrequency(-100); got != 0 {
		t.Errorf("BinForFrequency(-100) = %d, expected 0", got)
	}
}

func TestLinearToDecibel(t *testing.T) {
	tests := []struct {
		name     string
		mag      float64
		expected float64
	}{
		{"unity", 1.0, 0},
		{"tenth", 0.1, -20},
		{"zero hits floor", 0, -120},
		{"below floor", 1e-9, -120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LinearToDecibel(tt.mag); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("LinearToDecibel(%g) = %g, expected %g", tt.mag, got, tt.expected)
			}
		})
	}
}

func TestProbeBinFormat(t *testing.T) {
	mapper := testMapper()
	frame := &SpectralFrame{Magnitudes: make([]float64, mapper.NumBins())}
	frame.Magnitudes[10] = 1.0

	got := ProbeBin(frame, mapper, 10)
	expected := "bin: 10, frequency (hertz): 215.33 - 236.87, magnitude (decibels): 0.00"
	if got != expected {
		t.Errorf("probe line mismatch:\n got: %s\nwant: %s", got, expected)
	}
}

func TestProbeBinClampsOutOfRange(t *testing.T) {
	mapper := testMapper()
	frame := &SpectralFrame{Magnitudes: make([]float64, mapper.NumBins())}

	got := ProbeBin(frame, mapper, mapper.NumBins()+500)
	expected := ProbeBin(frame, mapper, mapper.NumBins()-1)
	if got != expected {
		t.Errorf("out-of-range probe did not clamp:\n got: %s\nwant: %s", got, expected)
	}
}
