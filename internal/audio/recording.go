// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// StartRecording begins writing the raw capture stream to a WAV file.
// An empty filename produces a timestamped name in the working
// directory. Recording taps the stream before the gate, so the file
// reflects exactly what the device delivered.
func (e *Engine) StartRecording(filename string) error {
	if e.isRecording.Load() == 1 {
		return fmt.Errorf("already recording")
	}

	if filename == "" {
		filename = time.Now().Format("capture-20060102-150405.wav")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	e.outputFile = file

	bitDepth := e.config.Recording.BitDepth
	channels := e.config.Audio.InputChannels

	e.wavEncoder = wav.NewEncoder(file, int(e.sampleRate), bitDepth, channels, 1)
	e.recordScale = float64(int(1)<<(bitDepth-1) - 1)

	e.sampleBuf = &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  int(e.sampleRate),
		},
		SourceBitDepth: bitDepth,
		Data:           make([]int, e.config.Audio.FramesPerBuffer*channels),
	}

	e.isRecording.Store(1)

	return nil
}

func (e *Engine) StopRecording() error {
	if e.isRecording.Load() == 0 {
		return nil
	}

	e.isRecording.Store(0)

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return err
		}
		e.wavEncoder = nil
	}

	if e.outputFile != nil {
		if err := e.outputFile.Close(); err != nil {
			return err
		}
		e.outputFile = nil
	}

	return nil
}

func (e *Engine) Close() error {
	// Stop the stream first: Stream.Stop drains in-flight callbacks,
	// so the recording tap can never race the encoder teardown below.
	if err := e.StopInputStream(); err != nil {
		return err
	}

	if e.isRecording.Load() == 1 {
		if err := e.StopRecording(); err != nil {
			return err
		}
	}

	return nil
}
