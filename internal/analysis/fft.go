// SPDX-License-Identifier: MIT
//
// Package analysis inspects half-spectra produced by the round trip: bin to
// frequency mapping, the per-bin amplitude table and band energies.
package analysis

import (
	"fmt"
	"math/cmplx"

	"dspview/internal/dsp"

	"gonum.org/v1/gonum/floats"
)

// Spectrum is a half-spectrum of a real signal of length Size.
type Spectrum struct {
	size       int
	sampleRate float64
	magnitude  []float64 // |X[k]|, computed once
}

// Compile-time check for interface implementation.
var _ ResultProvider = (*Spectrum)(nil)

// NewSpectrum wraps bins, which must hold size/2+1 values.
func NewSpectrum(bins []complex128, size int, sampleRate float64) (*Spectrum, error) {
	if size <= 0 || len(bins) != size/2+1 {
		return nil, fmt.Errorf("%w: %d bins do not form the half-spectrum of size %d",
			dsp.ErrInvalidArgument, len(bins), size)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %f", dsp.ErrInvalidArgument, sampleRate)
	}

	magnitude := make([]float64, len(bins))
	for i, c := range bins {
		magnitude[i] = cmplx.Abs(c)
	}
	return &Spectrum{size: size, sampleRate: sampleRate, magnitude: magnitude}, nil
}

// Magnitudes returns a copy of the bin magnitudes.
func (s *Spectrum) Magnitudes() []float64 {
	out := make([]float64, len(s.magnitude))
	copy(out, s.magnitude)
	return out
}

// FrequencyForBin returns the centre frequency of binIndex, or 0 when the
// index is out of range.
func (s *Spectrum) FrequencyForBin(binIndex int) float64 {
	if binIndex < 0 || binIndex >= len(s.magnitude) {
		return 0
	}
	return dsp.BinFrequency(binIndex, s.size, s.sampleRate)
}

// Size returns the time-domain length the spectrum was computed from.
func (s *Spectrum) Size() int { return s.size }

// SampleRate returns the sample rate in Hz used for bin frequencies.
func (s *Spectrum) SampleRate() float64 { return s.sampleRate }

// DominantBin returns the index of the largest magnitude. Ties go to the
// lowest bin.
func (s *Spectrum) DominantBin() int {
	return floats.MaxIdx(s.magnitude)
}

// BinRow is one line of the bin table.
type BinRow struct {
	Index int     `json:"index"`
	Freq  float64 `json:"freq"`
	Ampl  float64 `json:"ampl"` // |X[k]| / N
}

// BinTable returns the first limit bins with their frequency and amplitude
// scaled by 1/N. limit is clamped to the number of bins.
func (s *Spectrum) BinTable(limit int) []BinRow {
	limit = min(max(limit, 0), len(s.magnitude))
	rows := make([]BinRow, limit)
	for i := range rows {
		rows[i] = BinRow{
			Index: i,
			Freq:  s.FrequencyForBin(i),
			Ampl:  s.magnitude[i] / float64(s.size),
		}
	}
	return rows
}
