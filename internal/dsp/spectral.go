// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"time"

	applog "dspview/internal/log"
	"dspview/pkg/bitint"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
)

// planWorkspace holds the buffers a Plan reuses across round trips.
type planWorkspace struct {
	spectrum []complex128 // N/2+1 bins, gated in place
	output   []float64    // N samples from the inverse transform
}

// Stages holds the durations of the transforms in the last round trip.
type Stages struct {
	Forward time.Duration
	Inverse time.Duration
}

// Plan is a forward/inverse real transform pair for one fixed length.
// Build it once, reuse it for every round trip of that length and Close it
// after the last use. A Plan is not safe for concurrent use.
type Plan struct {
	n         int
	fft       *fourier.FFT
	workspace planWorkspace
	stages    Stages
	closed    bool
}

// NewPlan plans transforms of length n, which must be positive and even.
// Failure to plan is reported as ErrAllocation.
func NewPlan(n int) (plan *Plan, err error) {
	if n <= 0 || n%2 != 0 {
		return nil, fmt.Errorf("%w: transform size must be positive and even, got %d", ErrInvalidArgument, n)
	}

	// fourier panics rather than returning an error when it cannot set up
	// its work arrays.
	defer func() {
		if r := recover(); r != nil {
			plan = nil
			err = fmt.Errorf("%w: planning transform of size %d: %v", ErrAllocation, n, r)
		}
	}()

	if !bitint.IsPowerOfTwo(n) {
		applog.Debugf("dsp: transform size %d is not a power of two (next is %d)", n, bitint.NextPowerOfTwo(n))
	}

	return &Plan{
		n:   n,
		fft: fourier.NewFFT(n),
		workspace: planWorkspace{
			spectrum: make([]complex128, n/2+1),
			output:   make([]float64, n),
		},
	}, nil
}

// Size returns the time-domain length N.
func (p *Plan) Size() int { return p.n }

// Bins returns the half-spectrum length N/2+1.
func (p *Plan) Bins() int { return p.n/2 + 1 }

// Stages returns the transform durations of the last RoundTripInto.
func (p *Plan) Stages() Stages { return p.stages }

// Close releases the plan. Further calls are no-ops; transforms after Close
// fail with ErrAllocation.
func (p *Plan) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.fft = nil
	p.workspace = planWorkspace{}
	return nil
}

func (p *Plan) ready() error {
	if p == nil || p.closed {
		return fmt.Errorf("%w: transform plan is closed", ErrAllocation)
	}
	return nil
}

// Forward computes the half-spectrum of samples into dst, allocating when
// dst is nil. len(samples) must equal Size.
func (p *Plan) Forward(dst []complex128, samples []float64) ([]complex128, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	if len(samples) != p.n {
		return nil, fmt.Errorf("%w: expected %d samples, got %d", ErrInvalidArgument, p.n, len(samples))
	}
	if dst == nil {
		dst = make([]complex128, p.Bins())
	} else if len(dst) != p.Bins() {
		return nil, fmt.Errorf("%w: spectrum buffer needs %d bins, got %d", ErrInvalidArgument, p.Bins(), len(dst))
	}
	return p.fft.Coefficients(dst, samples), nil
}

// Inverse computes the unnormalized real sequence of spectrum into dst,
// allocating when dst is nil. The result is N times the original scale.
func (p *Plan) Inverse(dst []float64, spectrum []complex128) ([]float64, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	if len(spectrum) != p.Bins() {
		return nil, fmt.Errorf("%w: expected %d bins, got %d", ErrInvalidArgument, p.Bins(), len(spectrum))
	}
	if dst == nil {
		dst = make([]float64, p.n)
	} else if len(dst) != p.n {
		return nil, fmt.Errorf("%w: output buffer needs %d samples, got %d", ErrInvalidArgument, p.n, len(dst))
	}
	return p.fft.Sequence(dst, spectrum), nil
}

// Gate zeroes every bin with index >= cutoff. A cutoff at or beyond the
// spectrum length leaves it untouched; a negative cutoff clears it.
func Gate(spectrum []complex128, cutoff int) {
	if cutoff < 0 {
		cutoff = 0
	}
	for i := cutoff; i < len(spectrum); i++ {
		spectrum[i] = 0
	}
}

// RoundTrip transforms samples, gates bins at and above cutoff, transforms
// back and rescales by 1/N. It returns freshly allocated copies of the
// gated spectrum and the reconstruction; samples is not modified.
func (p *Plan) RoundTrip(samples []float64, cutoff int) (spectrum []complex128, reconstructed []float64, err error) {
	if err := p.ready(); err != nil {
		return nil, nil, err
	}
	spectrum = make([]complex128, p.Bins())
	reconstructed = make([]float64, p.n)
	if err := p.RoundTripInto(spectrum, reconstructed, samples, cutoff); err != nil {
		return nil, nil, err
	}
	return spectrum, reconstructed, nil
}

// RoundTripInto is RoundTrip writing into caller-owned buffers. It does not
// allocate. On error neither destination is touched.
func (p *Plan) RoundTripInto(spectrum []complex128, reconstructed, samples []float64, cutoff int) error {
	if err := p.ready(); err != nil {
		return err
	}
	if len(samples) != p.n || len(reconstructed) != p.n {
		return fmt.Errorf("%w: expected %d samples, got input %d output %d",
			ErrInvalidArgument, p.n, len(samples), len(reconstructed))
	}
	if len(spectrum) != p.Bins() {
		return fmt.Errorf("%w: spectrum buffer needs %d bins, got %d", ErrInvalidArgument, p.Bins(), len(spectrum))
	}

	ws := &p.workspace
	t0 := time.Now()
	p.fft.Coefficients(ws.spectrum, samples)
	t1 := time.Now()
	Gate(ws.spectrum, cutoff)
	copy(spectrum, ws.spectrum)

	t2 := time.Now()
	p.fft.Sequence(ws.output, ws.spectrum)
	t3 := time.Now()
	f64.Scale(reconstructed, ws.output, 1/float64(p.n))

	p.stages = Stages{Forward: t1.Sub(t0), Inverse: t3.Sub(t2)}

	return nil
}

// BinFrequency returns the centre frequency of bin i for a transform of
// length n at sampleRate.
func BinFrequency(i, n int, sampleRate float64) float64 {
	return float64(i) * sampleRate / float64(n)
}
