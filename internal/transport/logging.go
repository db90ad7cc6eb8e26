// SPDX-License-Identifier: MIT
package transport

import (
	applog "specmon/internal/log"
)

// LoggingTransport implements Transport by writing a one-line summary
// of each frame to the application log. Useful for headless smoke runs
// without a network consumer.
type LoggingTransport struct{}

func NewLoggingTransport() *LoggingTransport {
	applog.Infof("transport: using logging transport")
	return &LoggingTransport{}
}

// Send logs the frame's sequence, centroid, and peak magnitude.
func (lt *LoggingTransport) Send(payload *SpectrumPayload) error {
	var peak float32
	peakBin := 0
	for i, mag := range payload.Magnitudes {
		if mag > peak {
			peak = mag
			peakBin = i
		}
	}
	binWidth := payload.SampleRate / float64(payload.FFTSize)
	applog.Infof("frame %d: centroid %.1f Hz, peak %.4f at %.1f Hz",
		payload.Sequence, payload.Centroid, peak, float64(peakBin)*binWidth)
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
