// SPDX-License-Identifier: MIT
// Package cmd parses the command line into a validated configuration.
// Precedence, lowest to highest: built-in defaults, config file,
// environment overrides, explicit flags.
package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"specmon/internal/config"
	"specmon/pkg/build"
)

func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetBuildFlags()
	flagDefaults := config.NewConfig()

	var configPath string
	flags := *flagDefaults

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Real-time spectral monitor for live audio input",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	var interactive bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			flags.Command = "list"
			flags.Interactive = interactive
		},
	}
	listCmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"Browse devices in an interactive view")
	rootCmd.AddCommand(listCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML config file (default: ./config.yaml if present)")

	// Audio Device Configuration
	rootCmd.PersistentFlags().IntVarP(&flags.Audio.InputDevice, "device", "d", flagDefaults.Audio.InputDevice,
		"Specify input device ID. Use 'list' command to see available devices.")
	rootCmd.PersistentFlags().IntVarP(&flags.Audio.InputChannels, "channels", "c", flagDefaults.Audio.InputChannels,
		"Number of input channels to open (analysis always uses channel 0)")
	rootCmd.PersistentFlags().Float64VarP(&flags.Audio.SampleRate, "sample-rate", "s", flagDefaults.Audio.SampleRate,
		"Sample rate in Hertz (0 uses the device default)")
	rootCmd.PersistentFlags().IntVarP(&flags.Audio.FramesPerBuffer, "frames-per-buffer", "b", flagDefaults.Audio.FramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	rootCmd.PersistentFlags().BoolVarP(&flags.Audio.LowLatency, "low-latency", "l", flagDefaults.Audio.LowLatency,
		"Use low latency mode for real-time processing")
	rootCmd.PersistentFlags().BoolVar(&flags.Audio.GateEnabled, "gate", flagDefaults.Audio.GateEnabled,
		"Enable the capture noise gate")
	rootCmd.PersistentFlags().Float64Var(&flags.Audio.GateThreshold, "gate-threshold", flagDefaults.Audio.GateThreshold,
		"Noise gate threshold (0.0-1.0 of full scale)")

	// Analysis Configuration
	rootCmd.PersistentFlags().IntVar(&flags.Analysis.WindowSize, "window-size", flagDefaults.Analysis.WindowSize,
		"Analysis window size in samples")
	rootCmd.PersistentFlags().IntVar(&flags.Analysis.FFTSize, "fft-size", flagDefaults.Analysis.FFTSize,
		"FFT size in samples (power of 2, >= window size; excess is zero-padded)")
	rootCmd.PersistentFlags().IntVar(&flags.Analysis.HopSize, "hop-size", flagDefaults.Analysis.HopSize,
		"Samples to advance between analyses (0 = window size, no overlap)")
	rootCmd.PersistentFlags().StringVarP(&flags.Analysis.Window, "window", "w", flagDefaults.Analysis.Window,
		"Window function (blackmanharris, hann, hamming, flattop, ...)")

	// Recording Configuration
	rootCmd.PersistentFlags().BoolVarP(&flags.Recording.Enabled, "record", "r", flagDefaults.Recording.Enabled,
		"Record raw audio from the input device to a WAV file")
	rootCmd.PersistentFlags().StringVarP(&flags.Recording.OutputFile, "output", "o", flagDefaults.Recording.OutputFile,
		"Output file name. Default is capture-YYYYMMDD-HHMMSS.wav")

	// Transport Configuration
	rootCmd.PersistentFlags().StringVar(&flags.Transport.Mode, "publish", flagDefaults.Transport.Mode,
		"Publish frames instead of showing the TUI: log, websocket or udp")
	rootCmd.PersistentFlags().StringVar(&flags.Transport.WSAddr, "ws-addr", flagDefaults.Transport.WSAddr,
		"WebSocket listen address for --publish websocket")
	rootCmd.PersistentFlags().StringVar(&flags.Transport.UDPTarget, "udp-target", flagDefaults.Transport.UDPTarget,
		"UDP destination (host:port) for --publish udp")
	rootCmd.PersistentFlags().DurationVar(&flags.Transport.SendInterval, "interval", flagDefaults.Transport.SendInterval,
		"Interval between published frames")

	// Debug Configuration
	rootCmd.PersistentFlags().BoolVarP(&flags.Debug, "verbose", "v", flagDefaults.Debug,
		"Show verbose output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Command = flags.Command
	cfg.Interactive = flags.Interactive

	applyFlagOverrides(cfg, &flags, rootCmd)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFlagOverrides copies only the flags the user actually set onto
// the file-derived configuration, so the file keeps authority over
// anything left at its flag default.
func applyFlagOverrides(cfg, flags *config.Config, rootCmd *cobra.Command) {
	f := rootCmd.PersistentFlags()

	if f.Changed("device") {
		cfg.Audio.InputDevice = flags.Audio.InputDevice
	}
	if f.Changed("channels") {
		cfg.Audio.InputChannels = flags.Audio.InputChannels
	}
	if f.Changed("sample-rate") {
		cfg.Audio.SampleRate = flags.Audio.SampleRate
	}
	if f.Changed("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer = flags.Audio.FramesPerBuffer
	}
	if f.Changed("low-latency") {
		cfg.Audio.LowLatency = flags.Audio.LowLatency
	}
	if f.Changed("gate") {
		cfg.Audio.GateEnabled = flags.Audio.GateEnabled
	}
	if f.Changed("gate-threshold") {
		cfg.Audio.GateThreshold = flags.Audio.GateThreshold
	}

	if f.Changed("window-size") {
		cfg.Analysis.WindowSize = flags.Analysis.WindowSize
	}
	if f.Changed("fft-size") {
		cfg.Analysis.FFTSize = flags.Analysis.FFTSize
	}
	if f.Changed("hop-size") {
		cfg.Analysis.HopSize = flags.Analysis.HopSize
	}
	if f.Changed("window") {
		cfg.Analysis.Window = flags.Analysis.Window
	}

	if f.Changed("record") {
		cfg.Recording.Enabled = flags.Recording.Enabled
	}
	if f.Changed("output") {
		cfg.Recording.OutputFile = flags.Recording.OutputFile
		cfg.Recording.Enabled = true
	}
	if cfg.Recording.Enabled && cfg.Recording.OutputFile == "" {
		cfg.Recording.OutputFile = "capture-" +
			time.Now().UTC().Format("20060102-150405") + ".wav"
	}

	if f.Changed("publish") {
		cfg.Transport.Mode = flags.Transport.Mode
	}
	if f.Changed("ws-addr") {
		cfg.Transport.WSAddr = flags.Transport.WSAddr
	}
	if f.Changed("udp-target") {
		cfg.Transport.UDPTarget = flags.Transport.UDPTarget
	}
	if f.Changed("interval") {
		cfg.Transport.SendInterval = flags.Transport.SendInterval
	}

	if f.Changed("verbose") {
		cfg.Debug = flags.Debug
		if cfg.Debug {
			cfg.LogLevel = "debug"
		}
	}
}
