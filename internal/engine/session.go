// SPDX-License-Identifier: MIT
/*
Package engine runs the spectral demonstration pipeline:
- Synthesizes the partial-sum input and an identical expected signal
- Round-trips the input through a gated real transform
- Filters the expected signal through a Linkwitz-Riley section
- Reduces the four buffers to graphs for display and publishing

A Session owns the transform plan and the result buffers. Buffers are
allocated once in NewSession and reused by every Run.
*/
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dspview/internal/analysis"
	"dspview/internal/config"
	"dspview/internal/dsp"
	"dspview/internal/graph"
	applog "dspview/internal/log"
	"dspview/internal/transport"
)

// ErrNotRun is returned by accessors called before the first Run.
var ErrNotRun = errors.New("engine: session has not run")

// Graph titles in display order.
const (
	TitleInput       = "input"
	TitleTransformed = "transformed"
	TitleBack        = "back"
	TitleExpected    = "expected"
)

// Timing records how long each stage of the last Run took. Frame is the
// playback duration of one buffer, for comparison.
type Timing struct {
	Frame   time.Duration
	Forward time.Duration
	Inverse time.Duration
	Filter  time.Duration
}

// results is one complete set of pipeline buffers.
type results struct {
	input    []float64
	spectrum []complex128
	back     []float64
	expected []float64
}

func newResults(n, bins int) results {
	return results{
		input:    make([]float64, n),
		spectrum: make([]complex128, bins),
		back:     make([]float64, n),
		expected: make([]float64, n),
	}
}

// Session owns one transform plan and the buffers of the last completed
// Run. Its methods are safe for concurrent use; Run holds the write lock
// for the whole pipeline.
type Session struct {
	cfg  *config.Config
	plan *dsp.Plan
	mode dsp.FilterMode

	mu          sync.RWMutex
	gateEnabled bool
	cutoff      int

	// cur is what the accessors read. Run fills next and swaps the two
	// only when every stage succeeded.
	cur    results
	next   results
	timing Timing
	ran    bool

	transports []transport.Transport
	seq        uint32
	closed     bool
}

// NewSession validates cfg and plans the transform for cfg.Signal.Size.
func NewSession(cfg *config.Config) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", dsp.ErrInvalidArgument)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, err := dsp.ParseFilterMode(cfg.Filter.Mode)
	if err != nil {
		return nil, err
	}

	plan, err := dsp.NewPlan(cfg.Signal.Size)
	if err != nil {
		return nil, err
	}

	n := cfg.Signal.Size
	return &Session{
		cfg:         cfg,
		plan:        plan,
		mode:        mode,
		gateEnabled: cfg.Spectral.GateEnabled,
		cutoff:      cfg.Spectral.CutoffBins,
		cur:         newResults(n, plan.Bins()),
		next:        newResults(n, plan.Bins()),
	}, nil
}

// Config returns the configuration the session was built with.
func (s *Session) Config() *config.Config { return s.cfg }

// Run executes the pipeline once. It checks ctx between stages; a failed
// or cancelled Run leaves the previous results in place.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%w: session is closed", dsp.ErrAllocation)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	sig := s.cfg.Signal
	rate := float64(sig.SampleRate)
	out := &s.next

	dsp.Prepare(out.input, rate, sig.Partials)
	dsp.Prepare(out.expected, rate, sig.Partials)

	if err := s.plan.RoundTripInto(out.spectrum, out.back, out.input, s.effectiveCutoff()); err != nil {
		return fmt.Errorf("round trip: %w", err)
	}
	stages := s.plan.Stages()

	if err := ctx.Err(); err != nil {
		return err
	}

	filter, err := dsp.NewLinkwitzRiley(s.cfg.Filter.CrossoverHz, sig.SampleRate, s.mode)
	if err != nil {
		return err
	}
	t0 := time.Now()
	filter.ProcessBlock(out.expected)
	t1 := time.Now()

	s.cur, s.next = s.next, s.cur
	s.timing = Timing{
		Frame:   time.Duration(float64(sig.Size) / rate * float64(time.Second)),
		Forward: stages.Forward,
		Inverse: stages.Inverse,
		Filter:  t1.Sub(t0),
	}
	s.ran = true

	applog.Debugf("engine: frame %s forward %s inverse %s filter(%s) %s",
		s.timing.Frame, s.timing.Forward, s.timing.Inverse, s.mode, s.timing.Filter)
	return nil
}

// Timing returns the stage durations of the last Run.
func (s *Session) Timing() Timing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timing
}

// Graphs reduces the last results to width columns, in the order input,
// transformed, back, expected.
func (s *Session) Graphs(width int) ([]graph.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ran {
		return nil, ErrNotRun
	}

	in, err := graph.NewRealGraph(TitleInput, s.cur.input, width)
	if err != nil {
		return nil, err
	}
	tr, err := graph.NewPolarGraph(TitleTransformed, s.cur.spectrum, width)
	if err != nil {
		return nil, err
	}
	back, err := graph.NewRealGraph(TitleBack, s.cur.back, width)
	if err != nil {
		return nil, err
	}
	exp, err := graph.NewRealGraph(TitleExpected, s.cur.expected, width)
	if err != nil {
		return nil, err
	}
	return []graph.Graph{in, tr, back, exp}, nil
}

// Spectrum returns the gated spectrum of the last Run for bin analysis.
func (s *Session) Spectrum() (*analysis.Spectrum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ran {
		return nil, ErrNotRun
	}
	return analysis.NewSpectrum(s.cur.spectrum, s.cfg.Signal.Size, float64(s.cfg.Signal.SampleRate))
}

// Buffers returns copies of the input, reconstructed and expected signals.
func (s *Session) Buffers() (input, back, expected []float64, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ran {
		return nil, nil, nil, ErrNotRun
	}
	return append([]float64(nil), s.cur.input...),
		append([]float64(nil), s.cur.back...),
		append([]float64(nil), s.cur.expected...), nil
}

// Close releases the transform plan and closes every transport. It is
// safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, t := range s.transports {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.transports = nil

	if err := s.plan.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
