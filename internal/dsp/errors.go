// SPDX-License-Identifier: MIT
package dsp

import "errors"

// Error kinds returned by the core. Callers match them with errors.Is; the
// wrapping message carries the offending value.
var (
	// ErrInvalidArgument reports a parameter outside the domain of an
	// operation, e.g. a crossover at or above Nyquist or an odd FFT size.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAllocation reports that a transform plan could not be built or
	// is no longer available.
	ErrAllocation = errors.New("allocation failure")
)
