// SPDX-License-Identifier: MIT
package graph

import (
	"fmt"
	"strings"
)

// Kind tags which column slice of a Graph is populated.
type Kind uint8

const (
	KindReal Kind = iota + 1
	KindPolar
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindReal:
		return "real"
	case KindPolar:
		return "polar"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if k != KindReal && k != KindPolar {
		return nil, fmt.Errorf("graph: unknown kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "real":
		*k = KindReal
	case "polar":
		*k = KindPolar
	default:
		return fmt.Errorf("graph: unknown kind %q", text)
	}
	return nil
}

// Graph is one reduced signal ready for display. Exactly one of Real and
// Polar is set, as selected by Kind.
type Graph struct {
	Kind  Kind          `json:"kind"`
	Title string        `json:"title"`
	Real  []RealColumn  `json:"real,omitempty"`
	Polar []PolarColumn `json:"polar,omitempty"`
}

// NewRealGraph reduces samples to width columns.
func NewRealGraph(title string, samples []float64, width int) (Graph, error) {
	cols, err := ReduceReal(samples, width)
	if err != nil {
		return Graph{}, fmt.Errorf("graph %q: %w", title, err)
	}
	return Graph{Kind: KindReal, Title: title, Real: cols}, nil
}

// NewPolarGraph reduces spectrum to width columns.
func NewPolarGraph(title string, spectrum []complex128, width int) (Graph, error) {
	cols, err := ReducePolar(spectrum, width)
	if err != nil {
		return Graph{}, fmt.Errorf("graph %q: %w", title, err)
	}
	return Graph{Kind: KindPolar, Title: title, Polar: cols}, nil
}

// Width returns the number of columns.
func (g Graph) Width() int {
	switch g.Kind {
	case KindReal:
		return len(g.Real)
	case KindPolar:
		return len(g.Polar)
	default:
		return 0
	}
}

// Frame is one published set of graphs.
type Frame struct {
	Seq       uint32  `json:"seq"`
	Timestamp int64   `json:"ts"` // Unix nanoseconds.
	Graphs    []Graph `json:"graphs"`
}
