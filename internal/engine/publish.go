// SPDX-License-Identifier: MIT
package engine

import (
	"errors"
	"fmt"
	"time"

	"dspview/internal/dsp"
	"dspview/internal/graph"
	"dspview/internal/transport"
)

// AddTransport registers a sink for Publish. The session closes it.
func (s *Session) AddTransport(t transport.Transport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transports = append(s.transports, t)
}

// Publish reduces the last results to width columns and sends the frame to
// every registered transport. A failing transport does not stop the
// others; their errors are joined.
func (s *Session) Publish(width int) (graph.Frame, error) {
	graphs, err := s.Graphs(width)
	if err != nil {
		return graph.Frame{}, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return graph.Frame{}, fmt.Errorf("%w: session is closed", dsp.ErrAllocation)
	}
	s.seq++
	frame := graph.Frame{
		Seq:       s.seq,
		Timestamp: time.Now().UnixNano(),
		Graphs:    graphs,
	}
	sinks := append([]transport.Transport(nil), s.transports...)
	s.mu.Unlock()

	var errs []error
	for _, t := range sinks {
		if err := t.Send(frame); err != nil {
			errs = append(errs, err)
		}
	}
	return frame, errors.Join(errs...)
}
