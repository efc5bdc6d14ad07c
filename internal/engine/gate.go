// SPDX-License-Identifier: MIT
package engine

// EnableGate makes the next Run zero every bin at and above Cutoff.
func (s *Session) EnableGate() {
	s.mu.Lock()
	s.gateEnabled = true
	s.mu.Unlock()
}

// DisableGate makes the next Run keep the whole spectrum. The configured
// cutoff is remembered for a later EnableGate.
func (s *Session) DisableGate() {
	s.mu.Lock()
	s.gateEnabled = false
	s.mu.Unlock()
}

// GateEnabled reports whether the next Run gates the spectrum.
func (s *Session) GateEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gateEnabled
}

// SetCutoff sets the first gated bin for the next Run. The value is
// clamped to [0, N/2+1].
func (s *Session) SetCutoff(bins int) {
	if bins < 0 {
		bins = 0
	}
	if limit := s.plan.Bins(); bins > limit {
		bins = limit
	}

	s.mu.Lock()
	s.cutoff = bins
	s.mu.Unlock()
}

// Cutoff returns the configured first gated bin.
func (s *Session) Cutoff() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cutoff
}

// effectiveCutoff is the cutoff the round trip uses. Callers hold mu.
func (s *Session) effectiveCutoff() int {
	if !s.gateEnabled {
		return s.plan.Bins()
	}
	return s.cutoff
}
