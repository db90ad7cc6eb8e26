// SPDX-License-Identifier: MIT
// Package transport publishes analysis snapshots to external consumers.
// A Publisher polls the monitor at a fixed cadence on its own goroutine
// and hands each frame to a Transport; the audio and analysis hot paths
// never block on the network.
package transport

import "specmon/internal/analysis"

// SpectrumPayload is one published analysis frame. Magnitudes are
// converted to float32 for the wire; the analysis side stays float64.
type SpectrumPayload struct {
	Sequence   uint32    `json:"seq"`
	Timestamp  int64     `json:"ts"`          // Nanoseconds since epoch
	SampleRate float64   `json:"sample_rate"` // For bin->frequency mapping on the consumer side
	FFTSize    int       `json:"fft_size"`
	Centroid   float64   `json:"centroid"` // Spectral centroid in Hz
	Magnitudes []float32 `json:"magnitudes"`
}

// Transport delivers payloads to some destination. Implementations
// must be safe for sequential reuse of the payload's backing buffers:
// Send must not retain the payload or its slices after returning.
type Transport interface {
	Send(payload *SpectrumPayload) error
	Close() error
}

// SnapshotSource is the analysis side of the publisher. *analysis.Monitor
// satisfies it.
type SnapshotSource interface {
	LatestSnapshot() *analysis.SpectralFrame
	SampleRate() float64
	FFTSize() int
}
