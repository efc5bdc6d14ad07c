// SPDX-License-Identifier: MIT
package dsp

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
	"time"

	"dspview/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlan(t *testing.T) *Plan {
	t.Helper()
	plan, err := NewPlan(testSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = plan.Close() })
	return plan
}

func TestNewPlanValidation(t *testing.T) {
	for _, n := range []int{0, -2, 511, 1} {
		plan, err := NewPlan(n)
		assert.Nil(t, plan, "size %d", n)
		assert.True(t, errors.Is(err, ErrInvalidArgument), "size %d: got %v", n, err)
	}

	plan, err := NewPlan(510) // even, not a power of two
	require.NoError(t, err)
	assert.Equal(t, 256, plan.Bins())
	require.NoError(t, plan.Close())
}

func TestRoundTripIdentity(t *testing.T) {
	plan := newTestPlan(t)
	input := make([]float64, testSize)
	Prepare(input, testSampleRate, testPartials)

	spectrum, back, err := plan.RoundTrip(input, plan.Bins())
	require.NoError(t, err)
	assert.Len(t, spectrum, testSize/2+1)
	testutil.RequireNearlyEqual(t, back, input, 1e-9)
}

func TestRoundTripDoesNotMutateInput(t *testing.T) {
	plan := newTestPlan(t)
	input := testutil.SineWave(testSize, testSampleRate, 1000)
	orig := append([]float64(nil), input...)

	_, _, err := plan.RoundTrip(input, 33)
	require.NoError(t, err)
	assert.Equal(t, orig, input)
}

func TestRoundTripSingleTone(t *testing.T) {
	plan := newTestPlan(t)
	input := make([]float64, testSize)
	Zero(input)
	AddSine(input, testSampleRate, 440)

	spectrum, back, err := plan.RoundTrip(input, 33)
	require.NoError(t, err)

	magnitudes := make([]float64, len(spectrum))
	for i, c := range spectrum {
		magnitudes[i] = cmplx.Abs(c)
	}
	expectedBin := int(math.Round(440 * testSize / testSampleRate))
	assert.Equal(t, 5, expectedBin)
	assert.Equal(t, expectedBin, testutil.FindPeakBin(magnitudes, 0, len(magnitudes)-1))

	for i := 33; i < len(spectrum); i++ {
		require.Zero(t, spectrum[i], "bin %d should be gated", i)
	}

	// Away from the wrap-around discontinuity the band-limited copy tracks
	// the pure tone closely.
	pure := testutil.SineWave(testSize, testSampleRate, 440)
	lo, hi := testSize/8, testSize*7/8
	assert.Less(t, testutil.MaxAbsDiff(back[lo:hi], pure[lo:hi]), 0.05)
}

func TestRoundTripZeroCutoff(t *testing.T) {
	plan := newTestPlan(t)
	input := testutil.SineWave(testSize, testSampleRate, 440)

	spectrum, back, err := plan.RoundTrip(input, 0)
	require.NoError(t, err)
	for _, c := range spectrum {
		require.Zero(t, c)
	}
	for _, v := range back {
		require.Zero(t, v)
	}
}

func TestGate(t *testing.T) {
	spectrum := []complex128{1, 2i, 3, 4 + 1i, 5}
	Gate(spectrum, 2)
	assert.Equal(t, []complex128{1, 2i, 0, 0, 0}, spectrum)

	untouched := []complex128{1, 2}
	Gate(untouched, 10)
	assert.Equal(t, []complex128{1, 2}, untouched)

	cleared := []complex128{1, 2}
	Gate(cleared, -1)
	assert.Equal(t, []complex128{0, 0}, cleared)
}

func TestForwardInverseUnnormalized(t *testing.T) {
	plan := newTestPlan(t)
	input := testutil.SineWave(testSize, testSampleRate, 3000)

	spectrum, err := plan.Forward(nil, input)
	require.NoError(t, err)
	raw, err := plan.Inverse(nil, spectrum)
	require.NoError(t, err)

	for i := range input {
		require.InDelta(t, input[i]*testSize, raw[i], 1e-8, "index %d", i)
	}
}

func TestPlanLengthMismatch(t *testing.T) {
	plan := newTestPlan(t)

	_, _, err := plan.RoundTrip(make([]float64, 256), 33)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = plan.Forward(make([]complex128, 3), make([]float64, testSize))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = plan.Inverse(nil, make([]complex128, 3))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPlanClose(t *testing.T) {
	plan, err := NewPlan(testSize)
	require.NoError(t, err)

	require.NoError(t, plan.Close())
	require.NoError(t, plan.Close(), "Close should be idempotent")

	_, _, err = plan.RoundTrip(make([]float64, testSize), 33)
	assert.ErrorIs(t, err, ErrAllocation)
	_, err = plan.Forward(nil, make([]float64, testSize))
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestBinFrequency(t *testing.T) {
	assert.Equal(t, 0.0, BinFrequency(0, testSize, testSampleRate))
	assert.Equal(t, 93.75, BinFrequency(1, testSize, testSampleRate))
	assert.Equal(t, 24000.0, BinFrequency(testSize/2, testSize, testSampleRate))
}

func TestRoundTripIntoZeroAllocs(t *testing.T) {
	plan := newTestPlan(t)
	input := make([]float64, testSize)
	Prepare(input, testSampleRate, testPartials)
	spectrum := make([]complex128, plan.Bins())
	back := make([]float64, testSize)

	require.NoError(t, plan.RoundTripInto(spectrum, back, input, 33))
	allocs := testing.AllocsPerRun(100, func() {
		_ = plan.RoundTripInto(spectrum, back, input, 33)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in round trip hot path, got %.1f", allocs)
	}
}

func TestRoundTripIntoStages(t *testing.T) {
	plan := newTestPlan(t)
	assert.Zero(t, plan.Stages())

	input := make([]float64, testSize)
	Prepare(input, testSampleRate, testPartials)
	spectrum := make([]complex128, plan.Bins())
	back := make([]float64, testSize)
	require.NoError(t, plan.RoundTripInto(spectrum, back, input, 33))

	stages := plan.Stages()
	assert.GreaterOrEqual(t, stages.Forward, time.Duration(0))
	assert.GreaterOrEqual(t, stages.Inverse, time.Duration(0))
	assert.Positive(t, stages.Forward+stages.Inverse)

	// A rejected call keeps the previous durations.
	require.Error(t, plan.RoundTripInto(spectrum, back, input[:3], 33))
	assert.Equal(t, stages, plan.Stages())
}

func BenchmarkRoundTrip(b *testing.B) {
	plan, _ := NewPlan(testSize)
	defer plan.Close()
	input := make([]float64, testSize)
	Prepare(input, testSampleRate, testPartials)
	spectrum := make([]complex128, plan.Bins())
	back := make([]float64, testSize)

	b.ReportAllocs()
	for b.Loop() {
		_ = plan.RoundTripInto(spectrum, back, input, 33)
	}
}
