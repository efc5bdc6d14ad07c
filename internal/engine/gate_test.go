// SPDX-License-Identifier: MIT
package engine

import (
	"context"
	"testing"

	"dspview/internal/config"
	"dspview/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateEnable(t *testing.T) {
	s := newTestSession(t, nil)

	if !s.GateEnabled() {
		t.Error("Gate should follow the config default")
	}

	s.DisableGate()
	if s.GateEnabled() {
		t.Error("Gate should be disabled after DisableGate()")
	}

	s.EnableGate()
	s.EnableGate() // Multiple calls should be idempotent
	if !s.GateEnabled() {
		t.Error("Gate should remain enabled after multiple EnableGate()")
	}
}

func TestSetCutoffBoundaries(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{-5, 0},
		{0, 0},
		{33, 33},
		{257, 257},
		{1000, 257},
	}

	s := newTestSession(t, nil)
	for _, tt := range tests {
		s.SetCutoff(tt.input)
		if got := s.Cutoff(); got != tt.expected {
			t.Errorf("SetCutoff(%d): got %d, want %d", tt.input, got, tt.expected)
		}
	}
}

func TestDisabledGateReconstructsInput(t *testing.T) {
	s := newTestSession(t, func(c *config.Config) { c.Spectral.GateEnabled = false })
	require.NoError(t, s.Run(context.Background()))

	input, back, _, err := s.Buffers()
	require.NoError(t, err)
	testutil.RequireNearlyEqual(t, back, input, 1e-9)
}

func TestCutoffAppliesOnNextRun(t *testing.T) {
	s := newTestSession(t, nil)
	s.SetCutoff(0)
	require.NoError(t, s.Run(context.Background()))

	_, back, _, err := s.Buffers()
	require.NoError(t, err)
	for i, v := range back {
		require.Zero(t, v, "sample %d", i)
	}

	s.SetCutoff(config.DefaultSize/2 + 1)
	require.NoError(t, s.Run(context.Background()))
	input, back, _, err := s.Buffers()
	require.NoError(t, err)
	assert.Less(t, testutil.MaxAbsDiff(back, input), 1e-9)
}
