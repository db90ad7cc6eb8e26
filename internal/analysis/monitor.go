// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync/atomic"

	applog "specmon/internal/log"
	"specmon/pkg/bitint"
)

// MonitorConfig holds the construction-time parameters of a Monitor.
type MonitorConfig struct {
	WindowSize int     // analysis window length W
	FFTSize    int     // transform length, power of two, >= WindowSize
	HopSize    int     // samples advanced per cycle; 0 means WindowSize (no overlap)
	SampleRate float64 // capture sample rate in Hz
	Window     WindowFunc
}

// Monitor consumes PCM chunks on the capture schedule, runs one
// analysis cycle (window, zero-pad, FFT, magnitude, centroid) per hop
// once a full window has accumulated, and publishes the result through
// a wait-free snapshot. Write is the producer side and must be called
// from a single goroutine (the audio callback); all getters are the
// consumer side and must share one reader goroutine.
type Monitor struct {
	windowSize int
	fftSize    int
	hopSize    int
	numBins    int // fftSize / 2, the published spectrum length

	// Capture sample rate, stored as float64 bits so the consumer can
	// re-derive bin mapping when the device rate changes while the
	// producer keeps running.
	sampleRateBits atomic.Uint64

	engine *FFTEngine
	window *Window

	// Fixed magnitude normalization: 2/Sum(window) maps a full-scale
	// sine to a peak magnitude of about 1.0 on the single-sided
	// spectrum. Computed once at construction, never per call.
	scale float64

	// Accumulation ring. Power-of-two capacity, masked indexing.
	ring  []float32
	mask  int
	tail  int // oldest unconsumed sample
	count int // samples currently buffered

	input  []float64    // windowed input; [windowSize:] stays zero (zero-padding)
	coeffs []complex128 // transform output scratch

	snapshot *Snapshot
	frames   atomic.Uint64 // completed analysis cycles
}

// NewMonitor validates the configuration and pre-allocates every
// buffer the hot path needs. All ErrInvalidConfiguration cases fail
// here, before any audio is processed.
func NewMonitor(cfg MonitorConfig) (*Monitor, error) {
	if cfg.WindowSize <= 0 {
		return nil, fmt.Errorf("%w: window size must be positive, got %d", ErrInvalidConfiguration, cfg.WindowSize)
	}
	if cfg.FFTSize < cfg.WindowSize {
		return nil, fmt.Errorf("%w: fft size %d is smaller than window size %d", ErrInvalidConfiguration, cfg.FFTSize, cfg.WindowSize)
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %f", ErrInvalidConfiguration, cfg.SampleRate)
	}
	hop := cfg.HopSize
	if hop == 0 {
		hop = cfg.WindowSize
	}
	if hop < 0 || hop > cfg.WindowSize {
		return nil, fmt.Errorf("%w: hop size %d must be in [1, %d]", ErrInvalidConfiguration, hop, cfg.WindowSize)
	}

	engine, err := NewFFTEngine(cfg.FFTSize)
	if err != nil {
		return nil, err
	}
	win, err := NewWindow(cfg.WindowSize, cfg.Window)
	if err != nil {
		return nil, err
	}

	applog.Infof("analysis: monitor initialized (window: %d, fft: %d, hop: %d, rate: %.1f Hz, %s)",
		cfg.WindowSize, cfg.FFTSize, hop, cfg.SampleRate, cfg.Window)

	ringSize := bitint.NextPowerOfTwo(cfg.WindowSize * 2)
	m := &Monitor{
		windowSize: cfg.WindowSize,
		fftSize:    cfg.FFTSize,
		hopSize:    hop,
		numBins:    cfg.FFTSize / 2,
		engine:     engine,
		window:     win,
		scale:      2.0 / win.Sum(),
		ring:       make([]float32, ringSize),
		mask:       ringSize - 1,
		input:      make([]float64, cfg.FFTSize),
		coeffs:     make([]complex128, engine.Bins()),
		snapshot:   NewSnapshot(cfg.FFTSize / 2),
	}
	m.sampleRateBits.Store(math.Float64bits(cfg.SampleRate))
	return m, nil
}

// Write accepts one chunk of PCM samples from the capture callback and
// runs as many analysis cycles as the accumulated data allows.
// Producer-only, allocation-free, never blocks. A stalled capture
// source simply stops advancing the snapshot; the last published frame
// stays readable.
func (m *Monitor) Write(samples []float32) {
	for len(samples) > 0 {
		free := len(m.ring) - m.count
		if free == 0 {
			// Ring full with at least a whole window pending; drain
			// before accepting more.
			m.drain()
			continue
		}
		n := len(samples)
		if n > free {
			n = free
		}
		m.push(samples[:n])
		samples = samples[n:]
		m.drain()
	}
}

// push copies a chunk into the ring, wrapping at the mask boundary.
// The caller guarantees the chunk fits.
func (m *Monitor) push(chunk []float32) {
	head := (m.tail + m.count) & m.mask
	n := copy(m.ring[head:], chunk)
	if n < len(chunk) {
		copy(m.ring, chunk[n:])
	}
	m.count += len(chunk)
}

// drain runs one analysis cycle per hop while a full window is
// buffered. With hop < windowSize the trailing windowSize-hop samples
// are reanalyzed in the next cycle (overlap).
func (m *Monitor) drain() {
	for m.count >= m.windowSize {
		m.analyze()
		m.tail = (m.tail + m.hopSize) & m.mask
		m.count -= m.hopSize
	}
}

// analyze performs one cycle: window, zero-pad, transform, magnitude,
// centroid, publish. Runs on the capture schedule and must stay within
// the callback deadline, so it touches only pre-allocated buffers.
func (m *Monitor) analyze() {
	frame := m.snapshot.WriteSlot()

	coeffs := m.window.coeffs
	for i := 0; i < m.windowSize; i++ {
		m.input[i] = float64(m.ring[(m.tail+i)&m.mask]) * coeffs[i]
	}
	// input[windowSize:] is permanently zero: zero-padding up to
	// fftSize interpolates the spectrum without adding information.

	m.engine.Transform(m.coeffs, m.input)

	binWidth := m.SampleRate() / float64(m.fftSize)
	var weighted, total float64
	for k := 0; k < m.numBins; k++ {
		mag := cmplx.Abs(m.coeffs[k]) * m.scale
		frame.Magnitudes[k] = mag
		weighted += mag * float64(k) * binWidth
		total += mag
	}

	if total == 0 {
		// Silent window: centroid is defined as 0 rather than 0/0.
		frame.Centroid = 0
	} else {
		frame.Centroid = weighted / total
	}

	m.snapshot.Publish()
	m.frames.Add(1)
}

// LatestSnapshot returns the most recently published frame. Reader
// role only; the frame stays valid until the next consumer-side call.
func (m *Monitor) LatestSnapshot() *SpectralFrame {
	return m.snapshot.Read()
}

// SpectralCentroid returns the centroid of the latest frame in hertz.
func (m *Monitor) SpectralCentroid() float64 {
	return m.snapshot.Read().Centroid
}

// SampleRate returns the current capture sample rate.
func (m *Monitor) SampleRate() float64 {
	return math.Float64frombits(m.sampleRateBits.Load())
}

// SetSampleRate re-derives the bin-frequency mapping for a new device
// sample rate. Non-positive rates are ignored.
func (m *Monitor) SetSampleRate(rate float64) {
	if rate <= 0 {
		applog.Warnf("analysis: ignoring non-positive sample rate %f", rate)
		return
	}
	m.sampleRateBits.Store(math.Float64bits(rate))
}

// FFTSize returns the configured transform length.
func (m *Monitor) FFTSize() int { return m.fftSize }

// WindowSize returns the analysis window length.
func (m *Monitor) WindowSize() int { return m.windowSize }

// HopSize returns the per-cycle advance in samples.
func (m *Monitor) HopSize() int { return m.hopSize }

// NumBins returns the published spectrum length, FFTSize/2.
func (m *Monitor) NumBins() int { return m.numBins }

// FramesAnalyzed returns the number of completed analysis cycles.
func (m *Monitor) FramesAnalyzed() uint64 { return m.frames.Load() }

// Mapper returns the bin-frequency mapping for the current sample
// rate. Recompute after SetSampleRate; the mapper is a value and does
// not track later changes.
func (m *Monitor) Mapper() BinMapper {
	return BinMapper{SampleRate: m.SampleRate(), FFTSize: m.fftSize}
}

// FrequencyForBin returns the center frequency in hertz for a bin
// index, clamped to the valid range.
func (m *Monitor) FrequencyForBin(k int) float64 {
	return m.Mapper().FrequencyForBin(k)
}
