// SPDX-License-Identifier: MIT
/*
Package dsp holds the numeric core of dspview: signal generators, the
second-order Linkwitz-Riley filter and the spectral round trip.

Every routine is synchronous and works on caller-owned slices. Generators
mutate their buffer in place; nothing here is safe for concurrent use on
the same buffer or filter.
*/
package dsp

import (
	"math"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Zero sets every element of seq to 0.
func Zero(seq []float64) {
	for i := range seq {
		seq[i] = 0
	}
}

// AddSine accumulates a unit-amplitude sine of freq Hz into seq, so calling
// it repeatedly superposes partials.
func AddSine(seq []float64, sampleRate, freq float64) {
	for i := range seq {
		seq[i] += math.Sin((float64(i) / sampleRate) * freq * 2 * math.Pi)
	}
}

// Hann multiplies seq by a symmetric Hann window, 0.5*(1-cos(2πi/(N-1))).
// A single-element buffer becomes NaN.
func Hann(seq []float64) {
	window.Hann(seq)
}

// Normalize divides seq by its peak absolute value when that peak exceeds
// 1. Buffers already within [-1, 1] are left untouched.
func Normalize(seq []float64) {
	if len(seq) == 0 {
		return
	}
	peak := floats.Norm(seq, math.Inf(1))
	if peak <= 1 {
		return
	}
	// Divide rather than scale by 1/peak: the peak sample must land on
	// exactly ±1 for a second pass to be a no-op.
	for i := range seq {
		seq[i] /= peak
	}
}

// Scale multiplies every element of seq by s.
func Scale(seq []float64, s float64) {
	f64.Scale(seq, seq, s)
}

// Generate clears seq and adds one sine per partial frequency.
func Generate(seq []float64, sampleRate float64, partials []float64) {
	Zero(seq)
	for _, freq := range partials {
		AddSine(seq, sampleRate, freq)
	}
}

// Prepare builds the demonstration test signal: the partials summed,
// peak-normalized and Hann windowed.
func Prepare(seq []float64, sampleRate float64, partials []float64) {
	Generate(seq, sampleRate, partials)
	Normalize(seq)
	Hann(seq)
}
