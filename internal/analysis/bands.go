// SPDX-License-Identifier: MIT
package analysis

// FrequencyBand names a frequency range for summary reporting.
type FrequencyBand struct {
	Name   string
	LowHz  float64
	HighHz float64
}

// DefaultBands returns the standard band split, with the top band
// capped at the given Nyquist frequency.
func DefaultBands(nyquist float64) []FrequencyBand {
	return []FrequencyBand{
		{Name: "sub", LowHz: 20, HighHz: 60},
		{Name: "bass", LowHz: 60, HighHz: 250},
		{Name: "lowMid", LowHz: 250, HighHz: 500},
		{Name: "mid", LowHz: 500, HighHz: 2000},
		{Name: "highMid", LowHz: 2000, HighHz: 4000},
		{Name: "treble", LowHz: 4000, HighHz: nyquist},
	}
}

// BandLevel is the per-band summary for one frame.
type BandLevel struct {
	Band   FrequencyBand
	Energy float64 // mean magnitude-squared across the band's bins
	PeakDB float64 // loudest bin in the band, decibels
}

// ComputeBandLevels summarizes a frame across the given bands into
// dst, which must have len(bands) entries; it returns dst. Reuse dst
// across frames to stay allocation-free.
func ComputeBandLevels(dst []BandLevel, frame *SpectralFrame, mapper BinMapper, bands []FrequencyBand) []BandLevel {
	for i, band := range bands {
		lowBin := mapper.BinForFrequency(band.LowHz)
		highBin := mapper.BinForFrequency(band.HighHz)

		var energy, peak float64
		numBins := 0
		for k := lowBin; k <= highBin && k < len(frame.Magnitudes); k++ {
			mag := frame.Magnitudes[k]
			energy += mag * mag
			if mag > peak {
				peak = mag
			}
			numBins++
		}
		if numBins > 0 {
			energy /= float64(numBins)
		}

		dst[i] = BandLevel{
			Band:   band,
			Energy: energy,
			PeakDB: LinearToDecibel(peak),
		}
	}
	return dst
}
