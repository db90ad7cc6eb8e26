// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"specmon/cmd"
	"specmon/internal/analysis"
	"specmon/internal/audio"
	"specmon/internal/config"
	applog "specmon/internal/log"
	"specmon/internal/transport"
	"specmon/internal/transport/udp"
	"specmon/internal/tui"
	"specmon/pkg/build"
)

// main wires the spectral monitor together. The program flow has three
// phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Configure runtime settings
//   - Initialize PortAudio
//   - Parse command line arguments and config file
//   - Execute one-off commands if requested
//   - Construct the analysis monitor and capture engine
//
// 2. Concurrent Phase (Hot Path):
//   - Start the input stream (PortAudio begins invoking the callback)
//   - Begin recording if enabled
//   - Run exactly one snapshot consumer: the TUI, or a headless
//     publisher when --publish is set
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Stop the consumer, recording, and capture engine
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	build.Initialize()

	// Limit OS threads to optimize for real-time audio processing:
	// one thread for the audio callback, one for the consumer and I/O.
	runtime.GOMAXPROCS(2)

	if err := audio.Initialize(); err != nil {
		applog.Fatalf("%v", err)
	}
	defer audio.Terminate()

	cfg, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("%v", err)
	}

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}

	// One-off commands that don't need the engine running.
	if cfg.Command == "list" {
		if cfg.Interactive {
			if err := tui.StartDeviceListUI(); err != nil {
				applog.Fatalf("%v", err)
			}
			return
		}
		if err := audio.ListDevices(); err != nil {
			applog.Fatalf("%v", err)
		}
		return
	}

	windowFunc, err := analysis.ParseWindowFunc(cfg.Analysis.Window)
	if err != nil {
		applog.Fatalf("%v", err)
	}

	monitor, err := analysis.NewMonitor(analysis.MonitorConfig{
		WindowSize: cfg.Analysis.WindowSize,
		FFTSize:    cfg.Analysis.FFTSize,
		HopSize:    cfg.Analysis.HopSize,
		SampleRate: effectiveRate(cfg),
		Window:     windowFunc,
	})
	if err != nil {
		applog.Fatalf("%v", err)
	}

	engine, err := audio.NewEngine(cfg, monitor)
	if err != nil {
		applog.Fatalf("%v", err)
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	if err := engine.StartInputStream(); err != nil {
		applog.Fatalf("%v", err)
	}

	if cfg.Recording.Enabled {
		if err := engine.StartRecording(cfg.Recording.OutputFile); err != nil {
			applog.Fatalf("%v", err)
		}
	}

	// The snapshot handoff supports a single reader, so the TUI and the
	// headless publisher are mutually exclusive.
	if cfg.Transport.Mode == config.TransportNone {
		if err := tui.StartSpectrumUI(monitor); err != nil {
			applog.Errorf("tui: %v", err)
		}
	} else {
		publisher, err := startPublisher(cfg, monitor)
		if err != nil {
			applog.Fatalf("%v", err)
		}

		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)
		applog.Infof("publishing via %s, press Ctrl+C to stop", cfg.Transport.Mode)
		<-done

		if err := publisher.Close(); err != nil {
			applog.Errorf("error closing publisher: %v", err)
		}
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	// Close stops the input stream before the recording encoder, so the
	// callback can never race the encoder teardown.
	if err := engine.Close(); err != nil {
		applog.Errorf("error closing audio engine: %v", err)
	} else if cfg.Recording.Enabled {
		fmt.Printf("\nRecording saved to: %s\n", cfg.Recording.OutputFile)
	}
}

// effectiveRate returns the configured sample rate for monitor
// construction. A zero rate means "device default": the monitor starts
// from the global default and the engine corrects it once the device
// is resolved.
func effectiveRate(cfg *config.Config) float64 {
	if cfg.Audio.SampleRate > 0 {
		return cfg.Audio.SampleRate
	}
	return config.DefaultSampleRate
}

// startPublisher builds the transport selected by config and starts the
// publish loop around it.
func startPublisher(cfg *config.Config, monitor *analysis.Monitor) (*transport.Publisher, error) {
	var tr transport.Transport
	switch cfg.Transport.Mode {
	case config.TransportLog:
		tr = transport.NewLoggingTransport()
	case config.TransportWebSocket:
		tr = transport.NewWebSocketTransport(cfg.Transport.WSAddr)
	case config.TransportUDP:
		sender, err := udp.NewSender(cfg.Transport.UDPTarget)
		if err != nil {
			return nil, err
		}
		tr = sender
	default:
		return nil, fmt.Errorf("unknown transport mode %q", cfg.Transport.Mode)
	}

	publisher, err := transport.NewPublisher(cfg.Transport.SendInterval, monitor, tr)
	if err != nil {
		tr.Close()
		return nil, err
	}
	publisher.Start()
	return publisher, nil
}
