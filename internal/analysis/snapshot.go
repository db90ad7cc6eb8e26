// SPDX-License-Identifier: MIT
package analysis

import "sync/atomic"

// SpectralFrame is the output of one analysis cycle: exactly
// fftSize/2 non-negative magnitudes plus the spectral centroid in
// hertz. A frame handed out by Snapshot.Read is owned by the reader
// until its next Read call; the producer never mutates it during that
// time.
type SpectralFrame struct {
	Magnitudes []float64
	Centroid   float64
}

const (
	slotMask = 0b011
	dirtyBit = 0b100
)

// Snapshot is a wait-free single-producer/single-consumer handoff of
// the most recently completed SpectralFrame.
//
// Three pre-allocated frames rotate between the producer, the reader,
// and a shared cell. A single atomic word holds the shared slot index
// plus a dirty bit marking an unread publication. The producer swaps
// its finished slot into the cell; the reader swaps its stale slot in
// when the dirty bit is set. Each side only ever swaps a slot it
// exclusively owns, so the reader's current frame is never rewritten
// mid-read and neither side can block the other. Two slots would not
// be enough: the producer would reclaim the slot a slow reader is
// still looking at.
//
// Publish must only be called from one goroutine, Read from one other.
type Snapshot struct {
	slots    [3]*SpectralFrame
	shared   atomic.Uint32 // slot index | dirtyBit while unread
	writeIdx uint32        // producer-owned slot
	readIdx  uint32        // reader-owned slot
}

// NewSnapshot creates a snapshot handoff whose frames carry bins
// magnitude values each. All slots start as valid all-zero frames, so
// Read never returns nil even before the first Publish.
func NewSnapshot(bins int) *Snapshot {
	s := &Snapshot{writeIdx: 0, readIdx: 2}
	for i := range s.slots {
		s.slots[i] = &SpectralFrame{Magnitudes: make([]float64, bins)}
	}
	s.shared.Store(1)
	return s
}

// WriteSlot returns the producer's scratch frame for the next cycle.
// Producer-only; the returned frame may be mutated freely until
// Publish is called.
func (s *Snapshot) WriteSlot() *SpectralFrame {
	return s.slots[s.writeIdx]
}

// Publish atomically makes the producer's scratch frame the latest
// published frame and hands the previously shared slot back to the
// producer as its next scratch. Wait-free, allocation-free,
// producer-only.
func (s *Snapshot) Publish() {
	old := s.shared.Swap(s.writeIdx | dirtyBit)
	s.writeIdx = old & slotMask
}

// Read returns the most recently published frame. If nothing new was
// published since the last Read, the same frame is returned again —
// the stalled-input policy of the monitor. The result is always a
// complete, internally consistent frame: either the previous or the
// newly published one, never a torn mix. Wait-free, reader-only.
func (s *Snapshot) Read() *SpectralFrame {
	if s.shared.Load()&dirtyBit != 0 {
		old := s.shared.Swap(s.readIdx)
		s.readIdx = old & slotMask
	}
	return s.slots[s.readIdx]
}
