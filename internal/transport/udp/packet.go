// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"dspview/internal/dsp"
	"dspview/internal/graph"
)

/*
UDP Packet Structure (BigEndian), one packet per graph

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Kind              | uint8          | 1            | 1 = real, 2 = polar     |
| Column Count      | uint16         | 2            | Number of columns (W)   |
| Columns           | [W][4]float32  | W * 16       | Column extents          |
+-----------------------------------------------------------------------------+

Real columns are packed as (max, min, 0, 0). Polar columns are packed as
(max r, min r, max theta, min theta).
*/

const (
	headerSize   = 4 + 8 + 1 + 2
	floatsPerCol = 4
	bytesPerCol  = floatsPerCol * 4

	// maxColumns keeps a packet inside one IPv4 UDP datagram.
	maxColumns = (65507 - headerSize) / bytesPerCol
)

// Packet is a decoded UDP packet.
type Packet struct {
	Seq       uint32
	Timestamp int64
	Kind      graph.Kind
	Columns   [][floatsPerCol]float32
}

// EncodePacket appends the packet for g to buf.
func EncodePacket(buf *bytes.Buffer, seq uint32, timestamp int64, g graph.Graph) error {
	width := g.Width()
	if width == 0 {
		return fmt.Errorf("%w: graph %q has no columns", dsp.ErrInvalidArgument, g.Title)
	}
	if width > maxColumns {
		return fmt.Errorf("%w: graph %q has %d columns, packet limit is %d",
			dsp.ErrInvalidArgument, g.Title, width, maxColumns)
	}

	buf.Grow(headerSize + width*bytesPerCol)

	var scratch [bytesPerCol]byte
	binary.BigEndian.PutUint32(scratch[0:4], seq)
	buf.Write(scratch[0:4])
	binary.BigEndian.PutUint64(scratch[0:8], uint64(timestamp))
	buf.Write(scratch[0:8])
	buf.WriteByte(byte(g.Kind))
	binary.BigEndian.PutUint16(scratch[0:2], uint16(width))
	buf.Write(scratch[0:2])

	for i := range width {
		var col [floatsPerCol]float32
		switch g.Kind {
		case graph.KindReal:
			c := g.Real[i]
			col = [floatsPerCol]float32{float32(c.Max), float32(c.Min), 0, 0}
		case graph.KindPolar:
			c := g.Polar[i]
			col = [floatsPerCol]float32{float32(c.Max.R), float32(c.Min.R), float32(c.Max.Theta), float32(c.Min.Theta)}
		}
		for j, v := range col {
			binary.BigEndian.PutUint32(scratch[j*4:], math.Float32bits(v))
		}
		buf.Write(scratch[:])
	}
	return nil
}

// DecodePacket parses a packet produced by EncodePacket.
func DecodePacket(data []byte) (Packet, error) {
	if len(data) < headerSize {
		return Packet{}, fmt.Errorf("%w: packet of %d bytes is shorter than the header", dsp.ErrInvalidArgument, len(data))
	}

	p := Packet{
		Seq:       binary.BigEndian.Uint32(data[0:4]),
		Timestamp: int64(binary.BigEndian.Uint64(data[4:12])),
		Kind:      graph.Kind(data[12]),
	}
	count := int(binary.BigEndian.Uint16(data[13:15]))
	if p.Kind != graph.KindReal && p.Kind != graph.KindPolar {
		return Packet{}, fmt.Errorf("%w: unknown graph kind %d", dsp.ErrInvalidArgument, data[12])
	}
	if want := headerSize + count*bytesPerCol; len(data) != want {
		return Packet{}, fmt.Errorf("%w: packet holds %d bytes, header announces %d", dsp.ErrInvalidArgument, len(data), want)
	}

	p.Columns = make([][floatsPerCol]float32, count)
	body := data[headerSize:]
	for i := range p.Columns {
		for j := range floatsPerCol {
			off := i*bytesPerCol + j*4
			p.Columns[i][j] = math.Float32frombits(binary.BigEndian.Uint32(body[off:]))
		}
	}
	return p, nil
}
