// SPDX-License-Identifier: MIT
// Package config holds the runtime configuration for the spectral
// monitor: capture, analysis, recording, and transport settings, with
// defaults, YAML file loading, environment overrides, and validation.
// Validation fails fast at setup; nothing here is re-checked on the
// audio hot path.
package config

import (
	"fmt"
	"time"

	"specmon/pkg/bitint"
)

// Defaults and hard limits for the engine configuration.
const (
	DefaultChannels        = 1     // Mono capture
	DefaultDeviceID        = MinDeviceID
	DefaultFramesPerBuffer = 512   // Balanced latency/throughput
	DefaultSampleRate      = 44100 // CD-quality audio
	DefaultWindowSize      = 1024
	DefaultFFTSize         = 2048 // 2x window: zero-padded analysis
	DefaultHopSize         = 0    // 0 means window size (no overlap)
	DefaultWindow          = "blackmanharris"
	DefaultGateThreshold   = 0.001

	MinDeviceID     = -1     // -1 selects the system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192   // Maximum frames per buffer
	MaxFFTSize      = 65536  // Largest supported transform

	DefaultSendInterval = 33 * time.Millisecond // ~30 Hz consumer cadence
)

// Transport modes for the headless snapshot publisher. An empty mode
// keeps the terminal view as the consumer.
const (
	TransportNone      = ""
	TransportLog       = "log"
	TransportWebSocket = "websocket"
	TransportUDP       = "udp"
)

// Config is the root application configuration, loadable from YAML.
type Config struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`

	Audio     AudioConfig     `yaml:"audio"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`

	// Runtime-only fields set by the CLI, never from file.
	Command     string `yaml:"-"` // One-off command (e.g. "list")
	Interactive bool   `yaml:"-"` // Interactive device list for "list"
}

// AudioConfig holds capture settings.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index, -1 for default
	SampleRate      float64 `yaml:"sample_rate"`       // 0 means the device default rate
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Chunk size delivered per callback
	LowLatency      bool    `yaml:"low_latency"`
	InputChannels   int     `yaml:"input_channels"`
	GateEnabled     bool    `yaml:"gate_enabled"`   // Off by default so silence is still analyzed
	GateThreshold   float64 `yaml:"gate_threshold"` // 0..1 of full scale
}

// AnalysisConfig holds spectral analysis settings.
type AnalysisConfig struct {
	WindowSize int    `yaml:"window_size"`
	FFTSize    int    `yaml:"fft_size"` // Power of two, >= window size
	HopSize    int    `yaml:"hop_size"` // 0 means window size
	Window     string `yaml:"window"`   // Window function name
}

// RecordingConfig holds raw-input WAV recording settings.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	OutputFile string `yaml:"output_file"` // Empty means auto-generated name
	BitDepth   int    `yaml:"bit_depth"`   // 16, 24 or 32
}

// TransportConfig holds headless publishing settings.
type TransportConfig struct {
	Mode         string        `yaml:"mode"`          // "", "log", "websocket", "udp"
	WSAddr       string        `yaml:"ws_addr"`       // WebSocket listen address
	UDPTarget    string        `yaml:"udp_target"`    // UDP destination host:port
	SendInterval time.Duration `yaml:"send_interval"` // Consumer cadence
}

// NewConfig returns a Config populated with defaults. This is the base
// before a config file, environment overrides, or CLI flags apply.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      false,
			InputChannels:   DefaultChannels,
			GateEnabled:     false,
			GateThreshold:   DefaultGateThreshold,
		},
		Analysis: AnalysisConfig{
			WindowSize: DefaultWindowSize,
			FFTSize:    DefaultFFTSize,
			HopSize:    DefaultHopSize,
			Window:     DefaultWindow,
		},
		Recording: RecordingConfig{
			Enabled:    false,
			OutputFile: "",
			BitDepth:   32,
		},
		Transport: TransportConfig{
			Mode:         TransportNone,
			WSAddr:       ":8080",
			UDPTarget:    "127.0.0.1:9090",
			SendInterval: DefaultSendInterval,
		},
	}
}

// Validate checks the configuration for the fatal-at-setup class of
// errors. It runs once before any audio processing starts.
func (c *Config) Validate() error {
	a := &c.Audio
	if a.SampleRate != 0 && (a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate) {
		return fmt.Errorf("audio.sample_rate %g outside [%d, %d]", a.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if a.FramesPerBuffer <= 0 || a.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("audio.frames_per_buffer %d outside [1, %d]", a.FramesPerBuffer, MaxBufferFrames)
	}
	if a.InputChannels < 1 {
		return fmt.Errorf("audio.input_channels must be at least 1, got %d", a.InputChannels)
	}
	if a.GateThreshold < 0 || a.GateThreshold > 1 {
		return fmt.Errorf("audio.gate_threshold %g outside [0, 1]", a.GateThreshold)
	}

	an := &c.Analysis
	if an.WindowSize <= 0 {
		return fmt.Errorf("analysis.window_size must be positive, got %d", an.WindowSize)
	}
	if !bitint.IsPowerOfTwo(an.FFTSize) {
		return fmt.Errorf("analysis.fft_size must be a power of 2, got %d", an.FFTSize)
	}
	if an.FFTSize < an.WindowSize {
		return fmt.Errorf("analysis.fft_size %d is smaller than window_size %d", an.FFTSize, an.WindowSize)
	}
	if an.FFTSize > MaxFFTSize {
		return fmt.Errorf("analysis.fft_size %d exceeds maximum %d", an.FFTSize, MaxFFTSize)
	}
	if an.HopSize < 0 || an.HopSize > an.WindowSize {
		return fmt.Errorf("analysis.hop_size %d outside [0, window_size]", an.HopSize)
	}

	r := &c.Recording
	if r.Enabled && r.BitDepth != 16 && r.BitDepth != 24 && r.BitDepth != 32 {
		return fmt.Errorf("recording.bit_depth must be 16, 24 or 32, got %d", r.BitDepth)
	}

	tr := &c.Transport
	switch tr.Mode {
	case TransportNone, TransportLog:
	case TransportWebSocket:
		if tr.WSAddr == "" {
			return fmt.Errorf("transport.ws_addr must be set for websocket mode")
		}
	case TransportUDP:
		if tr.UDPTarget == "" {
			return fmt.Errorf("transport.udp_target must be set for udp mode")
		}
	default:
		return fmt.Errorf("transport.mode %q unknown (want %q, %q, %q or empty)",
			tr.Mode, TransportLog, TransportWebSocket, TransportUDP)
	}
	if tr.Mode != TransportNone && tr.SendInterval <= 0 {
		return fmt.Errorf("transport.send_interval must be positive when publishing")
	}

	return nil
}
