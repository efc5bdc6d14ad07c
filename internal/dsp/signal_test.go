// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSize       = 512
	testSampleRate = 48000.0
)

var testPartials = []float64{440, 1000, 2000, 4000}

func TestZero(t *testing.T) {
	seq := []float64{1, -2, 3.5, math.NaN()}
	Zero(seq)
	for i, v := range seq {
		assert.Zero(t, v, "index %d", i)
	}
}

func TestAddSineAccumulates(t *testing.T) {
	once := make([]float64, testSize)
	AddSine(once, testSampleRate, 440)

	twice := make([]float64, testSize)
	AddSine(twice, testSampleRate, 440)
	AddSine(twice, testSampleRate, 440)

	for i := range once {
		require.InDelta(t, 2*once[i], twice[i], 1e-12, "index %d", i)
	}
	assert.Zero(t, once[0])
	// A quarter period of 1 kHz at 48 kHz is 12 samples.
	quarter := make([]float64, 13)
	AddSine(quarter, testSampleRate, 1000)
	assert.InDelta(t, 1.0, quarter[12], 1e-12)
}

func TestHann(t *testing.T) {
	seq := make([]float64, 9)
	for i := range seq {
		seq[i] = 1
	}
	Hann(seq)

	assert.InDelta(t, 0.0, seq[0], 1e-12)
	assert.InDelta(t, 0.0, seq[8], 1e-12)
	assert.InDelta(t, 1.0, seq[4], 1e-12)
	assert.InDelta(t, 0.5, seq[2], 1e-12)
	for i := range 4 {
		assert.InDelta(t, seq[i], seq[8-i], 1e-12, "window should be symmetric at %d", i)
	}
}

func TestHannSingleSampleIsNaN(t *testing.T) {
	seq := []float64{1}
	Hann(seq)
	assert.True(t, math.IsNaN(seq[0]), "single-sample window divides by zero, got %v", seq[0])
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    []float64
		expected []float64
	}{
		{"Above Unit", []float64{2, -4, 1}, []float64{0.5, -1, 0.25}},
		{"Within Unit", []float64{0.5, -0.25}, []float64{0.5, -0.25}},
		{"Exactly Unit", []float64{1, -1, 0}, []float64{1, -1, 0}},
		{"All Zero", []float64{0, 0}, []float64{0, 0}},
		{"Empty", []float64{}, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := append([]float64(nil), tt.input...)
			Normalize(seq)
			assert.Equal(t, len(tt.expected), len(seq))
			for i := range tt.expected {
				assert.Equal(t, tt.expected[i], seq[i], "index %d", i)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	seq := make([]float64, testSize)
	Generate(seq, testSampleRate, testPartials)

	Normalize(seq)
	once := append([]float64(nil), seq...)
	Normalize(seq)

	assert.Equal(t, once, seq)
	peak := 0.0
	for _, v := range seq {
		peak = math.Max(peak, math.Abs(v))
	}
	assert.LessOrEqual(t, peak, 1.0)
	assert.Equal(t, 1.0, peak, "the peak sample should land exactly on unit amplitude")
}

func TestScale(t *testing.T) {
	seq := []float64{1, -2, 0.5, 8, 3, -7, 11, 0.25, 9}
	Scale(seq, 0.5)
	assert.Equal(t, []float64{0.5, -1, 0.25, 4, 1.5, -3.5, 5.5, 0.125, 4.5}, seq)
}

func TestGenerate(t *testing.T) {
	seq := make([]float64, testSize)
	for i := range seq {
		seq[i] = 99 // stale content must be cleared
	}
	Generate(seq, testSampleRate, []float64{440, 1000})

	for i, v := range seq {
		tm := float64(i) / testSampleRate
		want := math.Sin(tm*440*2*math.Pi) + math.Sin(tm*1000*2*math.Pi)
		require.InDelta(t, want, v, 1e-12, "index %d", i)
	}
}

func TestPrepare(t *testing.T) {
	seq := make([]float64, testSize)
	Prepare(seq, testSampleRate, testPartials)

	assert.InDelta(t, 0.0, seq[0], 1e-12)
	assert.InDelta(t, 0.0, seq[testSize-1], 1e-12)
	for i, v := range seq {
		require.LessOrEqual(t, math.Abs(v), 1.0, "index %d", i)
	}
}

func BenchmarkPrepare(b *testing.B) {
	seq := make([]float64, testSize)
	b.ReportAllocs()
	for b.Loop() {
		Prepare(seq, testSampleRate, testPartials)
	}
}
