// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

// DefaultSampleRate is used when a filter is built with fs == 0.
const DefaultSampleRate = 48000

// FilterMode selects the state update used by LinkwitzRiley.Filter.
type FilterMode int

const (
	// FilterModeReference is the established state update, kept bit for bit.
	// Its feedback term reads the x[n-2] slot, and that slot is overwritten
	// with y[n-1] at the end of each call, so the true y[n-2] is never used.
	FilterModeReference FilterMode = iota

	// FilterModeCanonical is the textbook biquad with the true y[n-2]
	// feedback, run as a direct form II transposed section.
	FilterModeCanonical
)

// String returns the config name of the mode.
func (m FilterMode) String() string {
	switch m {
	case FilterModeReference:
		return "reference"
	case FilterModeCanonical:
		return "canonical"
	default:
		return fmt.Sprintf("FilterMode(%d)", int(m))
	}
}

// ParseFilterMode converts a case-insensitive mode name. Unknown names
// return FilterModeReference and an ErrInvalidArgument.
func ParseFilterMode(name string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "reference":
		return FilterModeReference, nil
	case "canonical":
		return FilterModeCanonical, nil
	default:
		return FilterModeReference, fmt.Errorf("%w: unknown filter mode %q", ErrInvalidArgument, name)
	}
}

// Coefficients are the normalized feed-forward (A) and feedback (B) terms
// of a second-order section. b0 is implicitly 1.
type Coefficients struct {
	A0, A1, A2 float64
	B1, B2     float64
}

// LinkwitzRiley is a 12 dB/oct Linkwitz-Riley lowpass section. The
// coefficients are fixed at construction; the history advances one sample
// per Filter call and is only reset by building a new filter.
type LinkwitzRiley struct {
	coeffs Coefficients
	mode   FilterMode
	fc     int
	fs     int

	// reference mode history
	xnz1, xnz2 float64 // x[n-1], x[n-2]
	ynz1       float64 // y[n-1]

	section *biquad.Section // canonical mode only
}

// NewLinkwitzRiley derives the section for crossover frequency fc at sample
// rate fs (DefaultSampleRate when fs is 0). fc must lie strictly between 0
// and fs/2; at Nyquist the prewarping tangent diverges.
func NewLinkwitzRiley(fc, fs int, mode FilterMode) (*LinkwitzRiley, error) {
	if fs == 0 {
		fs = DefaultSampleRate
	}
	if fs < 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidArgument, fs)
	}
	if fc <= 0 || 2*fc >= fs {
		return nil, fmt.Errorf("%w: crossover frequency must be in (0, %d), got %d", ErrInvalidArgument, fs/2, fc)
	}
	if mode != FilterModeReference && mode != FilterModeCanonical {
		return nil, fmt.Errorf("%w: unsupported filter mode %v", ErrInvalidArgument, mode)
	}

	f := &LinkwitzRiley{
		coeffs: linkwitzRileyCoefficients(fc, fs),
		mode:   mode,
		fc:     fc,
		fs:     fs,
	}
	if mode == FilterModeCanonical {
		f.section = biquad.NewSection(f.coeffs.biquad())
	}
	return f, nil
}

func linkwitzRileyCoefficients(fc, fs int) Coefficients {
	th := math.Pi * float64(fc) / float64(fs)
	wc := math.Pi * float64(fc)
	k := wc / math.Tan(th)

	k2 := k * k
	wc2 := wc * wc
	d := k2 + wc2 + 2*k*wc

	a0 := wc2 / d
	return Coefficients{
		A0: a0,
		A1: 2 * wc2 / d,
		A2: a0,
		B1: (-2*k2 + 2*wc2) / d,
		B2: (-2*k*wc + k2 + wc2) / d,
	}
}

// biquad maps the A/B naming onto the feed-forward B and feedback A terms
// of a direct form II transposed section.
func (c Coefficients) biquad() biquad.Coefficients {
	return biquad.Coefficients{B0: c.A0, B1: c.A1, B2: c.A2, A1: c.B1, A2: c.B2}
}

// Coefficients returns the section coefficients.
func (f *LinkwitzRiley) Coefficients() Coefficients { return f.coeffs }

// Mode returns the state update in use.
func (f *LinkwitzRiley) Mode() FilterMode { return f.mode }

// Cutoff returns the crossover frequency in Hz.
func (f *LinkwitzRiley) Cutoff() int { return f.fc }

// SampleRate returns the sample rate in Hz.
func (f *LinkwitzRiley) SampleRate() int { return f.fs }

// Filter consumes one input sample and returns one output sample.
func (f *LinkwitzRiley) Filter(x float64) float64 {
	if f.section != nil {
		return f.section.ProcessSample(x)
	}

	c := &f.coeffs
	y := c.A0*x + c.A1*f.xnz1 + c.A2*f.xnz2 - c.B1*f.ynz1 - c.B2*f.xnz2

	// The assignment order is part of this mode's output: xnz2 is
	// written twice and keeps y[n-1].
	f.xnz2 = f.xnz1
	f.xnz1 = x
	f.xnz2 = f.ynz1
	f.ynz1 = y

	return y
}

// ProcessBlock filters buf in place. The canonical mode hands the block to
// the section's vector kernel, which may round differently from a run of
// Filter calls.
func (f *LinkwitzRiley) ProcessBlock(buf []float64) {
	if f.section != nil {
		f.section.ProcessBlock(buf)
		return
	}
	for i, x := range buf {
		buf[i] = f.Filter(x)
	}
}
