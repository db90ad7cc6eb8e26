// SPDX-License-Identifier: MIT
package transport

import (
	"fmt"
	"sync"
	"time"

	applog "specmon/internal/log"
)

// Publisher periodically fetches the latest analysis snapshot, packs it
// into a SpectrumPayload, and hands it to the configured Transport. It
// runs on its own goroutine managed by Start and Stop; as the single
// snapshot consumer it owns the monitor's read slot.
type Publisher struct {
	source    SnapshotSource
	transport Transport
	interval  time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex // Protects ticker and doneChan during Start/Stop

	sequenceNum uint32

	// Reused across ticks so the publish loop stays allocation-free.
	payload SpectrumPayload
}

// NewPublisher creates a Publisher. If the interval is invalid (<= 0)
// it defaults to 33ms (~30Hz).
func NewPublisher(interval time.Duration, source SnapshotSource, tr Transport) (*Publisher, error) {
	if source == nil {
		return nil, fmt.Errorf("publisher: snapshot source cannot be nil")
	}
	if tr == nil {
		return nil, fmt.Errorf("publisher: transport cannot be nil")
	}

	if interval <= 0 {
		interval = 33 * time.Millisecond
		applog.Warnf("publisher: invalid interval provided, defaulting to %s", interval)
	}

	bins := source.FFTSize() / 2
	applog.Infof("publisher: initializing (interval: %s, bins: %d)", interval, bins)

	return &Publisher{
		source:    source,
		transport: tr,
		interval:  interval,
		payload: SpectrumPayload{
			FFTSize:    source.FFTSize(),
			Magnitudes: make([]float32, bins),
		},
	}, nil
}

// Start begins the periodic publishing loop. It is safe to call Start
// multiple times; subsequent calls are no-ops while running.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("publisher: Start called but already running")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan

	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("publisher: goroutine started (interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.publishTick()
			case <-doneChan:
				applog.Debugf("publisher: goroutine received stop signal")
				return
			}
		}
	}()
}

// Stop signals the publish loop to terminate and waits for it to exit.
// Safe to call multiple times.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		applog.Debugf("publisher: Stop called but not running")
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})

	p.mu.Unlock()

	p.wg.Wait()
	applog.Infof("publisher: stopped after %d frames", p.sequenceNum)
	return nil
}

// publishTick builds one payload from the latest snapshot and sends it.
// The snapshot read is wait-free; a stalled analysis pipeline simply
// republishes the last frame.
func (p *Publisher) publishTick() {
	frame := p.source.LatestSnapshot()

	if len(p.payload.Magnitudes) != len(frame.Magnitudes) {
		// FFT size changed under us; resize once and carry on.
		p.payload.Magnitudes = make([]float32, len(frame.Magnitudes))
	}
	for i, v := range frame.Magnitudes {
		p.payload.Magnitudes[i] = float32(v)
	}

	p.sequenceNum++
	p.payload.Sequence = p.sequenceNum
	p.payload.Timestamp = time.Now().UnixNano()
	p.payload.SampleRate = p.source.SampleRate()
	p.payload.Centroid = frame.Centroid

	if err := p.transport.Send(&p.payload); err != nil {
		applog.Errorf("publisher: error sending frame %d: %v", p.sequenceNum, err)
		return
	}
	applog.Debugf("publisher: sent frame %d (centroid %.1f Hz)", p.sequenceNum, p.payload.Centroid)
}

// Close implements io.Closer by stopping the publish loop and closing
// the underlying transport.
func (p *Publisher) Close() error {
	if err := p.Stop(); err != nil {
		return err
	}
	return p.transport.Close()
}
