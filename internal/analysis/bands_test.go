// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"testing"
)

func TestDefaultBandsCoverAudibleRange(t *testing.T) {
	bands := DefaultBands(testSampleRate / 2)
	if len(bands) == 0 {
		t.Fatal("expected default bands")
	}
	if bands[len(bands)-1].HighHz != testSampleRate/2 {
		t.Errorf("top band ends at %g, expected Nyquist %g", bands[len(bands)-1].HighHz, testSampleRate/2.0)
	}
	for i := 1; i < len(bands); i++ {
		if bands[i].LowHz != bands[i-1].HighHz {
			t.Errorf("gap between band %q and %q", bands[i-1].Name, bands[i].Name)
		}
	}
}

func TestComputeBandLevels(t *testing.T) {
	mapper := testMapper()
	frame := &SpectralFrame{Magnitudes: make([]float64, mapper.NumBins())}

	// One loud bin around 215 Hz, everything else silent.
	frame.Magnitudes[10] = 1.0

	bands := []FrequencyBand{
		{Name: "low", LowHz: 100, HighHz: 300},
		{Name: "high", LowHz: 4000, HighHz: 8000},
	}
	levels := ComputeBandLevels(make([]BandLevel, len(bands)), frame, mapper, bands)

	if levels[0].Energy <= 0 {
		t.Errorf("low band energy = %g, expected positive", levels[0].Energy)
	}
	if math.Abs(levels[0].PeakDB-0.0) > 1e-9 {
		t.Errorf("low band peak = %g dB, expected 0", levels[0].PeakDB)
	}

	if levels[1].Energy != 0 {
		t.Errorf("high band energy = %g, expected 0", levels[1].Energy)
	}
	if math.Abs(levels[1].PeakDB-(-120)) > 1e-9 {
		t.Errorf("high band peak = %g dB, expected -120 (floor)", levels[1].PeakDB)
	}
}

func TestComputeBandLevelsZeroAllocs(t *testing.T) {
	mapper := testMapper()
	frame := &SpectralFrame{Magnitudes: make([]float64, mapper.NumBins())}
	bands := DefaultBands(mapper.Nyquist())
	dst := make([]BandLevel, len(bands))

	allocs := testing.AllocsPerRun(100, func() {
		ComputeBandLevels(dst, frame, mapper, bands)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations, got %.1f", allocs)
	}
}
