// SPDX-License-Identifier: MIT
// Package udp sends spectrum frames as compact binary UDP packets.
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"sync"

	applog "specmon/internal/log"
	"specmon/internal/transport"
)

/*
UDP Packet Structure (BigEndian)

+------------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description              |
|-------------------|----------------|--------------|--------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing |
| Timestamp         | int64          | 8            | Nanoseconds since epoch  |
| Sample Rate       | float64        | 8            | Capture rate in Hz       |
| Centroid          | float64        | 8            | Spectral centroid in Hz  |
| Magnitude Count   | uint16         | 2            | Number of floats (N)     |
| Magnitudes        | []float32      | N * 4        | Linear spectrum          |
+------------------------------------------------------------------------------+
*/

// Sender packs spectrum payloads into binary packets and sends them to
// a fixed UDP target. It implements transport.Transport.
type Sender struct {
	conn       *net.UDPConn
	targetAddr *net.UDPAddr
	mu         sync.Mutex // Protects conn during Send/Close
	closed     bool

	packetBuffer *bytes.Buffer // Reused across packets
}

// NewSender creates a Sender targeting "host:port".
func NewSender(targetAddress string) (*Sender, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target address '%s': %w", targetAddress, err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP for target '%s': %w", targetAddress, err)
	}

	applog.Infof("udp: connection established to %s", conn.RemoteAddr().String())

	return &Sender{
		conn:         conn,
		targetAddr:   udpAddr,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Send packs the payload into the binary layout above and transmits it
// as a single datagram.
func (s *Sender) Send(payload *transport.SpectrumPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("udp sender is closed")
	}

	s.packetBuffer.Reset()

	err := binary.Write(s.packetBuffer, binary.BigEndian, payload.Sequence)
	if err == nil {
		err = binary.Write(s.packetBuffer, binary.BigEndian, payload.Timestamp)
	}
	if err == nil {
		err = binary.Write(s.packetBuffer, binary.BigEndian, payload.SampleRate)
	}
	if err == nil {
		err = binary.Write(s.packetBuffer, binary.BigEndian, payload.Centroid)
	}
	if err == nil {
		err = binary.Write(s.packetBuffer, binary.BigEndian, uint16(len(payload.Magnitudes)))
	}
	if err == nil {
		err = binary.Write(s.packetBuffer, binary.BigEndian, payload.Magnitudes)
	}
	if err != nil {
		return fmt.Errorf("failed to pack UDP packet: %w", err)
	}

	if _, err := s.conn.Write(s.packetBuffer.Bytes()); err != nil {
		applog.Warnf("udp: error sending packet %d: %v", payload.Sequence, err)
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}
	return nil
}

// Close closes the underlying UDP connection.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if s.conn != nil {
		applog.Infof("udp: closing connection to %s", s.conn.RemoteAddr().String())
		err := s.conn.Close()
		s.conn = nil
		if err != nil {
			return fmt.Errorf("failed to close UDP connection: %w", err)
		}
	}
	return nil
}

var _ transport.Transport = (*Sender)(nil)
