// SPDX-License-Identifier: MIT
package audio

import (
	"path/filepath"
	"testing"

	"specmon/internal/analysis"
	"specmon/internal/config"
)

func TestExtractFirstChannel(t *testing.T) {
	// Stereo interleaved: L=10,20,30 R=11,21,31.
	interleaved := []float32{10, 11, 20, 21, 30, 31}
	dst := make([]float32, 3)

	mono := extractFirstChannel(dst, interleaved, 2)
	if len(mono) != 3 {
		t.Fatalf("mono length = %d, expected 3", len(mono))
	}
	for i, expected := range []float32{10, 20, 30} {
		if mono[i] != expected {
			t.Errorf("frame %d = %g, expected %g", i, mono[i], expected)
		}
	}
}

func TestExtractFirstChannelShortDst(t *testing.T) {
	interleaved := make([]float32, 16) // 8 stereo frames
	for i := range interleaved {
		interleaved[i] = float32(i)
	}
	dst := make([]float32, 4)

	mono := extractFirstChannel(dst, interleaved, 2)
	if len(mono) != 4 {
		t.Fatalf("mono length = %d, expected dst capacity 4", len(mono))
	}
	if mono[3] != 6 {
		t.Errorf("frame 3 = %g, expected 6", mono[3])
	}
}

func TestPeakAmplitude(t *testing.T) {
	tests := []struct {
		name     string
		buffer   []float32
		expected float32
	}{
		{"silence", make([]float32, 64), 0},
		{"positive peak", []float32{0.1, 0.5, 0.2}, 0.5},
		{"negative peak", []float32{0.1, -0.9, 0.2}, 0.9},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := peakAmplitude(tt.buffer); got != tt.expected {
				t.Errorf("peakAmplitude = %g, expected %g", got, tt.expected)
			}
		})
	}
}

// TestCaptureHotPathZeroAllocs covers the per-callback helpers that run
// before samples reach the analysis ring.
func TestCaptureHotPathZeroAllocs(t *testing.T) {
	interleaved := make([]float32, 1024)
	for i := range interleaved {
		interleaved[i] = float32(i%100) / 100
	}
	dst := make([]float32, 512)

	allocs := testing.AllocsPerRun(100, func() {
		mono := extractFirstChannel(dst, interleaved, 2)
		_ = peakAmplitude(mono)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in capture hot path, got %.1f", allocs)
	}
}

func TestGateThresholdClamping(t *testing.T) {
	e := &Engine{}

	e.SetGateThreshold(-0.5)
	if got := e.GetGateThreshold(); got != 0 {
		t.Errorf("threshold after -0.5 = %g, expected 0", got)
	}

	e.SetGateThreshold(1.5)
	if got := e.GetGateThreshold(); got != 1 {
		t.Errorf("threshold after 1.5 = %g, expected 1", got)
	}

	e.SetGateThreshold(0.25)
	if got := e.GetGateThreshold(); got != 0.25 {
		t.Errorf("threshold after 0.25 = %g, expected 0.25", got)
	}
}

// TestGateBlocksQuietSignal runs the capture-side gate end to end: a
// buffer below the threshold never reaches analysis, a buffer above it
// does.
func TestGateBlocksQuietSignal(t *testing.T) {
	monitor, err := analysis.NewMonitor(analysis.MonitorConfig{
		WindowSize: 1024,
		FFTSize:    2048,
		SampleRate: 44100,
	})
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.NewConfig()
	cfg.Audio.InputChannels = 1
	cfg.Audio.FramesPerBuffer = 512
	engine := &Engine{
		config:      cfg,
		monitor:     monitor,
		inputBuffer: make([]float32, cfg.Audio.FramesPerBuffer),
		monoInput:   make([]float32, cfg.Audio.FramesPerBuffer),
		sampleRate:  cfg.Audio.SampleRate,
	}
	engine.SetGateThreshold(0.01)
	engine.EnableGate()

	quiet := make([]float32, 512)
	for i := range quiet {
		quiet[i] = 0.001
	}
	for i := 0; i < 8; i++ {
		engine.processBuffer(quiet)
	}
	if got := monitor.FramesAnalyzed(); got != 0 {
		t.Errorf("gated signal produced %d analysis frames, expected 0", got)
	}

	loud := make([]float32, 512)
	for i := range loud {
		loud[i] = 0.5
	}
	for i := 0; i < 8; i++ {
		engine.processBuffer(loud)
	}
	if monitor.FramesAnalyzed() == 0 {
		t.Error("signal above the gate threshold never reached analysis")
	}
}

// TestCallbackShortBuffer verifies that a callback delivering fewer
// frames than requested processes and records only the delivered
// samples, never the tail left over from an earlier, longer callback.
func TestCallbackShortBuffer(t *testing.T) {
	monitor, err := analysis.NewMonitor(analysis.MonitorConfig{
		WindowSize: 1024,
		FFTSize:    2048,
		SampleRate: 44100,
	})
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.NewConfig()
	cfg.Audio.InputChannels = 1
	cfg.Audio.FramesPerBuffer = 512
	engine := &Engine{
		config:      cfg,
		monitor:     monitor,
		inputBuffer: make([]float32, cfg.Audio.FramesPerBuffer),
		monoInput:   make([]float32, cfg.Audio.FramesPerBuffer),
		sampleRate:  cfg.Audio.SampleRate,
	}

	// Leave loud samples from a previous full-length callback behind.
	for i := range engine.inputBuffer {
		engine.inputBuffer[i] = 0.9
	}

	filename := filepath.Join(t.TempDir(), "short_callback.wav")
	if err := engine.StartRecording(filename); err != nil {
		t.Fatalf("Failed to start recording: %v", err)
	}
	defer engine.StopRecording()

	engine.processInputStream(make([]float32, 100))

	if len(engine.sampleBuf.Data) != 100 {
		t.Fatalf("recorded %d samples, expected the 100 delivered", len(engine.sampleBuf.Data))
	}
	for i, sample := range engine.sampleBuf.Data {
		if sample != 0 {
			t.Fatalf("sample %d = %d, stale buffer tail leaked into the recording", i, sample)
		}
	}
}

func BenchmarkCaptureHotPath(b *testing.B) {
	interleaved := make([]float32, 1024)
	for i := range interleaved {
		interleaved[i] = float32(i%100) / 100
	}
	dst := make([]float32, 512)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		mono := extractFirstChannel(dst, interleaved, 2)
		_ = peakAmplitude(mono)
	}
}
