// SPDX-License-Identifier: MIT
/*
Package audio implements the real-time capture front end:
- Lock-free audio capture using PortAudio
- First-channel extraction for multi-channel devices
- Optional noise gate on the capture path
- WAV recording of the raw input with atomic state management

Thread Safety:
- Uses atomic operations for state management
- Pre-allocates buffers to avoid GC in hot path
- Locks OS thread during audio processing
*/
package audio

import (
	"os"
	"runtime"
	"sync/atomic"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"

	"specmon/internal/analysis"
	"specmon/internal/config"
	applog "specmon/internal/log"
)

type Engine struct {
	// Core configuration and analysis sink.
	config  *config.Config
	monitor *analysis.Monitor

	// Audio input handling.
	inputBuffer  []float32
	monoInput    []float32 // First-channel extraction target
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream
	sampleRate   float64

	// Noise gate for signal conditioning.
	gateEnabled   bool
	gateThreshold float32 // 0..1 of full scale

	// Recording state and buffers.
	isRecording atomic.Int32
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *goaudio.IntBuffer // Reusable buffer for format conversion
	recordScale float64
}

// NewEngine resolves the input device and wires the capture path to the
// monitor. If the configured sample rate is zero, the device default
// rate is adopted and pushed into the monitor so bin mapping stays
// consistent with the stream.
func NewEngine(cfg *config.Config, monitor *analysis.Monitor) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, err
	}

	sampleRate := cfg.Audio.SampleRate
	if sampleRate <= 0 {
		sampleRate = inputDevice.DefaultSampleRate
		monitor.SetSampleRate(sampleRate)
		applog.Infof("audio: using device default sample rate %.0f Hz", sampleRate)
	}

	channels := cfg.Audio.InputChannels
	if channels > inputDevice.MaxInputChannels {
		channels = inputDevice.MaxInputChannels
		applog.Warnf("audio: device %q supports only %d input channels", inputDevice.Name, channels)
	}

	e := &Engine{
		config:      cfg,
		monitor:     monitor,
		inputBuffer: make([]float32, cfg.Audio.FramesPerBuffer*channels),
		monoInput:   make([]float32, cfg.Audio.FramesPerBuffer),
		inputDevice: inputDevice,
		sampleRate:  sampleRate,
	}
	cfg.Audio.InputChannels = channels

	e.SetGateThreshold(cfg.Audio.GateThreshold)
	if cfg.Audio.GateEnabled {
		e.EnableGate()
	}

	if cfg.Audio.LowLatency {
		e.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		e.inputLatency = inputDevice.DefaultHighInputLatency
	}

	return e, nil
}

// SampleRate returns the effective capture rate after device-default
// resolution.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.config.Audio.InputChannels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // Capture only
			Device:   nil,
		},
		FramesPerBuffer: e.config.Audio.FramesPerBuffer,
		SampleRate:      e.sampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return err
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		return err
	}

	applog.Infof("audio: input stream started on %q (%d ch, %.0f Hz, %d frames/buffer)",
		e.inputDevice.Name, e.config.Audio.InputChannels, e.sampleRate, e.config.Audio.FramesPerBuffer)

	return nil
}

func (e *Engine) StopInputStream() error {
	if e.inputStream != nil {
		if err := e.inputStream.Stop(); err != nil {
			return err
		}

		if err := e.inputStream.Close(); err != nil {
			return err
		}

		e.inputStream = nil
	}

	return nil
}

// processInputStream is the core audio processing callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path
func (e *Engine) processInputStream(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// PortAudio may deliver fewer frames than requested; clamp to the
	// delivered length so stale tail samples are never reprocessed.
	n := copy(e.inputBuffer, in)
	buffer := e.inputBuffer[:n]
	e.processBuffer(buffer)

	// Write to WAV file if recording
	if e.isRecording.Load() == 1 && e.wavEncoder != nil {
		data := e.sampleBuf.Data[:n]
		for i := 0; i < n; i++ {
			data[i] = int(float64(buffer[i]) * e.recordScale)
		}
		e.sampleBuf.Data = data

		if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
			applog.Errorf("audio: error writing to WAV file: %v", err)
		}
	}
}

// processBuffer runs the capture-side DSP on the buffer in-place and
// hands mono samples to the monitor.
// Performance Critical (Hot Path):
// - No allocations
// - Gate decides whether analysis sees the buffer at all
func (e *Engine) processBuffer(buffer []float32) {
	channels := e.config.Audio.InputChannels

	mono := buffer
	if channels > 1 {
		mono = extractFirstChannel(e.monoInput, buffer, channels)
	}

	if e.gateEnabled && peakAmplitude(mono) <= e.gateThreshold {
		return
	}

	e.monitor.Write(mono)
}

// extractFirstChannel copies channel 0 of an interleaved buffer into
// dst and returns the filled prefix. No mixing happens: the analysis
// path is defined on a single channel.
func extractFirstChannel(dst, interleaved []float32, channels int) []float32 {
	frames := len(interleaved) / channels
	if frames > len(dst) {
		frames = len(dst)
	}
	for i := 0; i < frames; i++ {
		dst[i] = interleaved[i*channels]
	}
	return dst[:frames]
}

// peakAmplitude returns the largest absolute sample value in the
// buffer.
func peakAmplitude(buffer []float32) float32 {
	var peak float32
	for _, sample := range buffer {
		if sample < 0 {
			sample = -sample
		}
		if sample > peak {
			peak = sample
		}
	}
	return peak
}
