// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"specmon/internal/transport"
)

// startReceiver listens on a loopback UDP port and forwards each
// datagram on the returned channel.
func startReceiver(t *testing.T) (*net.UDPConn, chan []byte) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	packets := make(chan []byte, 4)
	go func() {
		buf := make([]byte, 64*1024)
		for {
			n, _, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			packets <- append([]byte(nil), buf[:n]...)
		}
	}()
	return conn, packets
}

func TestSenderPacketLayout(t *testing.T) {
	conn, packets := startReceiver(t)
	defer conn.Close()

	sender, err := NewSender(conn.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer sender.Close()

	payload := &transport.SpectrumPayload{
		Sequence:   7,
		Timestamp:  123456789,
		SampleRate: 44100,
		Centroid:   440.5,
		Magnitudes: []float32{0.1, 0.2, 0.3, 0.4},
	}
	if err := sender.Send(payload); err != nil {
		t.Fatal(err)
	}

	var packet []byte
	select {
	case packet = <-packets:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for packet")
	}

	// Header: seq(4) + ts(8) + rate(8) + centroid(8) + count(2), then 4 floats.
	expectedLen := 4 + 8 + 8 + 8 + 2 + 4*4
	if len(packet) != expectedLen {
		t.Fatalf("packet length = %d, expected %d", len(packet), expectedLen)
	}

	r := bytes.NewReader(packet)
	var (
		seq      uint32
		ts       int64
		rate     float64
		centroid float64
		count    uint16
	)
	for _, field := range []any{&seq, &ts, &rate, &centroid, &count} {
		if err := binary.Read(r, binary.BigEndian, field); err != nil {
			t.Fatalf("failed to decode header: %v", err)
		}
	}
	if seq != 7 || ts != 123456789 || rate != 44100 || centroid != 440.5 {
		t.Errorf("header = seq %d ts %d rate %g centroid %g", seq, ts, rate, centroid)
	}
	if count != 4 {
		t.Fatalf("magnitude count = %d, expected 4", count)
	}

	mags := make([]float32, count)
	if err := binary.Read(r, binary.BigEndian, mags); err != nil {
		t.Fatalf("failed to decode magnitudes: %v", err)
	}
	for i, expected := range []float32{0.1, 0.2, 0.3, 0.4} {
		if mags[i] != expected {
			t.Errorf("magnitude %d = %g, expected %g", i, mags[i], expected)
		}
	}
}

func TestSenderSequencePreserved(t *testing.T) {
	conn, packets := startReceiver(t)
	defer conn.Close()

	sender, err := NewSender(conn.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer sender.Close()

	for i := uint32(1); i <= 3; i++ {
		payload := &transport.SpectrumPayload{Sequence: i, SampleRate: 48000, Magnitudes: []float32{1}}
		if err := sender.Send(payload); err != nil {
			t.Fatal(err)
		}
	}

	for i := uint32(1); i <= 3; i++ {
		select {
		case packet := <-packets:
			seq := binary.BigEndian.Uint32(packet[:4])
			if seq != i {
				t.Errorf("packet %d carried sequence %d", i, seq)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for packet")
		}
	}
}

func TestSenderClosed(t *testing.T) {
	conn, _ := startReceiver(t)
	defer conn.Close()

	sender, err := NewSender(conn.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}

	if err := sender.Close(); err != nil {
		t.Fatal(err)
	}
	if err := sender.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	payload := &transport.SpectrumPayload{Sequence: 1, Magnitudes: []float32{1}}
	if err := sender.Send(payload); err == nil {
		t.Error("expected error sending on closed sender")
	}
}

func TestSenderBadAddress(t *testing.T) {
	if _, err := NewSender("not-an-address"); err == nil {
		t.Error("expected error for unresolvable address")
	}
}
