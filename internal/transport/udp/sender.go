// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"fmt"
	"net"
	"sync"

	"dspview/internal/dsp"
	applog "dspview/internal/log"
	"dspview/internal/transport"
)

// maxPacketSize is the largest graph packet, maxColumns wide.
const maxPacketSize = headerSize + maxColumns*bytesPerCol

// SenderStats counts what a Sender has written.
type SenderStats struct {
	Packets  uint64
	Bytes    uint64
	Rejected uint64
}

// Sender writes graph packets to one UDP peer. Every datagram is checked
// against the packet header before it is written, so a truncated or
// oversized buffer never reaches the wire.
type Sender struct {
	mu     sync.Mutex // Protects conn and stats.
	conn   *net.UDPConn
	target *net.UDPAddr
	stats  SenderStats
	closed bool
}

// NewSender dials targetAddress ("host:port", e.g. "127.0.0.1:9090").
func NewSender(targetAddress string) (*Sender, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target address '%s': %w", targetAddress, err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP for target '%s': %w", targetAddress, err)
	}

	applog.Infof("UDP Sender: graph packets go to %s (max %d bytes, %d columns)",
		conn.RemoteAddr(), maxPacketSize, maxColumns)

	return &Sender{conn: conn, target: udpAddr}, nil
}

// checkDatagram verifies that data is one whole graph packet: a header
// whose column count matches the payload and fits in a datagram.
func checkDatagram(data []byte) error {
	if len(data) < headerSize {
		return fmt.Errorf("%w: %d bytes is shorter than the %d byte packet header",
			dsp.ErrInvalidArgument, len(data), headerSize)
	}
	if len(data) > maxPacketSize {
		return fmt.Errorf("%w: %d byte packet exceeds the %d byte datagram limit",
			dsp.ErrInvalidArgument, len(data), maxPacketSize)
	}
	count := int(binary.BigEndian.Uint16(data[13:15]))
	if want := headerSize + count*bytesPerCol; len(data) != want {
		return fmt.Errorf("%w: %d byte packet announces %d columns (%d bytes)",
			dsp.ErrInvalidArgument, len(data), count, want)
	}
	return nil
}

// Send writes data as a single datagram. Buffers that are not a whole
// graph packet fail with dsp.ErrInvalidArgument and are counted as
// rejected; after Close it returns transport.ErrClosed.
func (s *Sender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return transport.ErrClosed
	}
	if err := checkDatagram(data); err != nil {
		s.stats.Rejected++
		applog.Warnf("UDP Sender: dropping packet: %v", err)
		return err
	}

	n, err := s.conn.Write(data)
	if err != nil {
		applog.Warnf("UDP Sender: Error sending packet: %v", err)
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("short UDP write to %s: %d of %d bytes", s.target, n, len(data))
	}

	s.stats.Packets++
	s.stats.Bytes += uint64(n)
	return nil
}

// Stats returns the counters accumulated since NewSender.
func (s *Sender) Stats() SenderStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close closes the connection. Later calls are no-ops.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	applog.Debugf("UDP Sender: closing %s after %d packets (%d bytes, %d rejected)",
		s.target, s.stats.Packets, s.stats.Bytes, s.stats.Rejected)
	err := s.conn.Close()
	s.conn = nil
	if err != nil {
		return fmt.Errorf("failed to close UDP connection: %w", err)
	}
	return nil
}

var _ PacketSender = (*Sender)(nil)
