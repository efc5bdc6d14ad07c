// SPDX-License-Identifier: MIT
package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"dspview/internal/dsp"
	"dspview/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduceRealPartition(t *testing.T) {
	samples := testutil.Ramp(10, 1)

	cols, err := ReduceReal(samples, 5)
	require.NoError(t, err)

	// Column ends are 0, 2, 4, 6, 8; the first column reads only element 0
	// and the tail [8, 10) is not read.
	expected := []RealColumn{
		{Max: 0, Min: 0},
		{Max: 1, Min: 0},
		{Max: 3, Min: 2},
		{Max: 5, Min: 4},
		{Max: 7, Min: 6},
	}
	assert.Equal(t, expected, cols)
}

func TestReduceRealRawValues(t *testing.T) {
	samples := []float64{0, -3, 2, -1, 5, -4, 0, 0}
	cols, err := ReduceReal(samples, 2)
	require.NoError(t, err)

	// Column 1 covers [0, 4).
	assert.Equal(t, RealColumn{Max: 2, Min: -3}, cols[1])
}

func TestReduceRealNaN(t *testing.T) {
	nan := math.NaN()

	cols, err := ReduceReal([]float64{nan, 1, 2, 3}, 2)
	require.NoError(t, err)
	for i, c := range cols {
		assert.True(t, math.IsNaN(c.Max), "column %d max", i)
		assert.True(t, math.IsNaN(c.Min), "column %d min", i)
	}

	// Column 1 covers [0, 2); a NaN after the first sample never wins a
	// comparison.
	cols, err = ReduceReal([]float64{1, nan, 3, -2}, 2)
	require.NoError(t, err)
	assert.Equal(t, RealColumn{Max: 1, Min: 1}, cols[1])
}

func TestReduceRealWiderThanInput(t *testing.T) {
	samples := []float64{1, 2, 3}
	cols, err := ReduceReal(samples, 6)
	require.NoError(t, err)

	want := []float64{1, 1, 2, 2, 3, 3}
	require.Len(t, cols, 6)
	for i, c := range cols {
		assert.Equal(t, want[i], c.Max, "column %d", i)
		assert.Equal(t, want[i], c.Min, "column %d", i)
	}
}

func TestReduceRealClampsPastEnd(t *testing.T) {
	cols, err := ReduceReal([]float64{0.75}, 4)
	require.NoError(t, err)
	for i, c := range cols {
		assert.Equal(t, RealColumn{Max: 0.75, Min: 0.75}, c, "column %d", i)
	}
}

func TestReduceRealCoverage(t *testing.T) {
	samples := make([]float64, 512)
	dsp.Prepare(samples, 48000, []float64{440, 1000, 2000, 4000})
	orig := append([]float64(nil), samples...)

	for _, width := range []int{1, 7, 80, 256, 511, 512} {
		t.Run(fmt.Sprintf("width=%d", width), func(t *testing.T) {
			cols, err := ReduceReal(samples, width)
			require.NoError(t, err)
			require.Len(t, cols, width)
			for i, c := range cols {
				require.LessOrEqual(t, c.Min, c.Max, "column %d", i)
			}
		})
	}
	assert.Equal(t, orig, samples, "input must not be modified")
}

func TestReduceInvalidArguments(t *testing.T) {
	_, err := ReduceReal(nil, 10)
	assert.ErrorIs(t, err, dsp.ErrInvalidArgument)
	_, err = ReduceReal([]float64{1}, 0)
	assert.ErrorIs(t, err, dsp.ErrInvalidArgument)
	_, err = ReducePolar(nil, 10)
	assert.ErrorIs(t, err, dsp.ErrInvalidArgument)
	_, err = ReducePolar([]complex128{1}, -1)
	assert.ErrorIs(t, err, dsp.ErrInvalidArgument)
}

func TestReducePolarNormalization(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	spectrum := make([]complex128, 257)
	for i := range spectrum {
		spectrum[i] = cmplx.Rect(rng.Float64()*40, (rng.Float64()*2-1)*math.Pi)
	}
	orig := append([]complex128(nil), spectrum...)

	cols, err := ReducePolar(spectrum, 64)
	require.NoError(t, err)
	require.Len(t, cols, 64)

	peak := 0.0
	for i, c := range cols {
		for _, p := range []Polar{c.Max, c.Min} {
			require.GreaterOrEqual(t, p.R, 0.0, "column %d", i)
			require.LessOrEqual(t, p.R, 1.0, "column %d", i)
			require.GreaterOrEqual(t, p.Theta, -0.5, "column %d", i)
			require.LessOrEqual(t, p.Theta, 0.5, "column %d", i)
		}
		require.LessOrEqual(t, c.Min.R, c.Max.R)
		require.LessOrEqual(t, c.Min.Theta, c.Max.Theta)
		peak = math.Max(peak, c.Max.R)
	}
	assert.Equal(t, 1.0, peak, "the column holding the global peak normalizes to 1")
	assert.Equal(t, orig, spectrum, "input must not be modified")
}

func TestReducePolarSmallMagnitudesNotExpanded(t *testing.T) {
	spectrum := []complex128{0.5, 0.25i, -0.125}
	cols, err := ReducePolar(spectrum, 3)
	require.NoError(t, err)

	// The global amplitude is seeded at 1, so sub-unit spectra keep scale.
	assert.Equal(t, 0.5, cols[0].Max.R)
	assert.InDelta(t, 0.25, cols[2].Max.R, 1e-15)
	assert.InDelta(t, 0.25, cols[2].Max.Theta, 1e-15) // π/2 over 2π
}

func TestReducePolarIndependentExtents(t *testing.T) {
	// Largest magnitude at phase 0, largest phase at small magnitude.
	spectrum := []complex128{
		4,
		cmplx.Rect(1, 3*math.Pi/4),
		cmplx.Rect(2, -math.Pi/2),
		0, 0, 0,
	}
	cols, err := ReducePolar(spectrum, 2)
	require.NoError(t, err)

	// Column 1 covers [0, 3).
	c := cols[1]
	assert.Equal(t, 1.0, c.Max.R)
	assert.InDelta(t, 0.25, c.Min.R, 1e-15)
	assert.InDelta(t, 3.0/8, c.Max.Theta, 1e-15)
	assert.InDelta(t, -0.25, c.Min.Theta, 1e-15)
}

func TestGraphConstructors(t *testing.T) {
	g, err := NewRealGraph("input", []float64{1, -1, 0.5, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, KindReal, g.Kind)
	assert.Equal(t, 2, g.Width())
	assert.Nil(t, g.Polar)

	p, err := NewPolarGraph("transformed", []complex128{1, 1i}, 2)
	require.NoError(t, err)
	assert.Equal(t, KindPolar, p.Kind)
	assert.Equal(t, 2, p.Width())

	_, err = NewRealGraph("empty", nil, 2)
	assert.ErrorIs(t, err, dsp.ErrInvalidArgument)
	assert.Contains(t, err.Error(), `"empty"`)
}

func TestGraphJSONKind(t *testing.T) {
	g, err := NewPolarGraph("transformed", []complex128{1}, 1)
	require.NoError(t, err)

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"polar"`)

	var decoded Graph
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, g, decoded)

	_, err = Kind(9).MarshalText()
	assert.Error(t, err)
}

func BenchmarkReducePolar(b *testing.B) {
	spectrum := make([]complex128, 257)
	for i := range spectrum {
		spectrum[i] = cmplx.Rect(float64(i%17), float64(i))
	}
	b.ReportAllocs()
	for b.Loop() {
		_, _ = ReducePolar(spectrum, 80)
	}
}
