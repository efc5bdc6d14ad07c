// SPDX-License-Identifier: MIT
/*
Package graph compresses sample and spectrum buffers into a fixed number of
display columns.

Column i reads the half-open range [end(i-1), end(i)) where
end(i) = floor(i/W*len + 0.5) and end(-1) = 0. The first column therefore
reads only element 0 and the tail after end(W-1) is not read; a range that
starts past the buffer is clamped to its last element. Each column reads at
least one element. Inputs are never modified.
*/
package graph

import (
	"fmt"
	"math"
	"math/cmplx"

	"dspview/internal/dsp"
)

// RealColumn is the extent of one column of a real signal.
type RealColumn struct {
	Max float64 `json:"max"`
	Min float64 `json:"min"`
}

// Polar is a magnitude and phase pair.
type Polar struct {
	R     float64 `json:"r"`
	Theta float64 `json:"theta"`
}

// PolarColumn is the extent of one column of a spectrum. Max.R and
// Max.Theta are tracked independently and may come from different bins.
type PolarColumn struct {
	Max Polar `json:"max"`
	Min Polar `json:"min"`
}

// columnEnd returns the exclusive end index of column i.
func columnEnd(i, width, bs int) int {
	return int(float64(i)/float64(width)*float64(bs) + 0.5)
}

// columnSpan returns the indices read for a column starting at start and
// ending at end. The span is never empty.
func columnSpan(start, end, bs int) (lo, hi int) {
	if start >= bs {
		start = bs - 1
	}
	if end <= start {
		end = start + 1
	}
	return start, end
}

func checkArgs(n, width int) error {
	if n == 0 {
		return fmt.Errorf("%w: cannot reduce an empty buffer", dsp.ErrInvalidArgument)
	}
	if width <= 0 {
		return fmt.Errorf("%w: width must be positive, got %d", dsp.ErrInvalidArgument, width)
	}
	return nil
}

// ReduceReal returns width columns holding the raw max and min of each
// column's samples. Both extents start from the column's first sample, so
// a NaN there is carried through while later NaNs are skipped.
func ReduceReal(samples []float64, width int) ([]RealColumn, error) {
	bs := len(samples)
	if err := checkArgs(bs, width); err != nil {
		return nil, err
	}

	out := make([]RealColumn, width)
	start := 0
	for i := range out {
		end := columnEnd(i, width, bs)
		lo, hi := columnSpan(start, end, bs)

		maxv, minv := samples[lo], samples[lo]
		for _, v := range samples[lo+1 : hi] {
			if v > maxv {
				maxv = v
			} else if v < minv {
				minv = v
			}
		}

		out[i] = RealColumn{Max: maxv, Min: minv}
		start = end
	}
	return out, nil
}

// ReducePolar returns width columns of magnitude and phase extents. After
// all columns are built, magnitudes are divided by the largest magnitude
// seen (never less than 1) and phases by 2π, so R lies in [0, 1] and Theta
// in [-0.5, 0.5].
func ReducePolar(spectrum []complex128, width int) ([]PolarColumn, error) {
	bs := len(spectrum)
	if err := checkArgs(bs, width); err != nil {
		return nil, err
	}

	out := make([]PolarColumn, width)
	ampl := 1.0
	start := 0
	for i := range out {
		end := columnEnd(i, width, bs)
		lo, hi := columnSpan(start, end, bs)

		first := toPolar(spectrum[lo])
		maxv, minv := first, first
		for _, z := range spectrum[lo+1 : hi] {
			v := toPolar(z)
			if v.R > maxv.R {
				maxv.R = v.R
			} else if v.R < minv.R {
				minv.R = v.R
			}
			if v.Theta > maxv.Theta {
				maxv.Theta = v.Theta
			} else if v.Theta < minv.Theta {
				minv.Theta = v.Theta
			}
		}
		if maxv.R > ampl {
			ampl = maxv.R
		}

		out[i] = PolarColumn{Max: maxv, Min: minv}
		start = end
	}

	const turn = 2 * math.Pi
	for i := range out {
		out[i].Max.R /= ampl
		out[i].Min.R /= ampl
		out[i].Max.Theta /= turn
		out[i].Min.Theta /= turn
	}
	return out, nil
}

func toPolar(z complex128) Polar {
	return Polar{R: cmplx.Abs(z), Theta: cmplx.Phase(z)}
}
