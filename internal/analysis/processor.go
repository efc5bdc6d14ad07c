// SPDX-License-Identifier: MIT
package analysis

// ResultProvider exposes a magnitude spectrum together with the transform
// geometry needed to map bins to frequencies. It decouples the band and
// table reports from the concrete spectrum type.
type ResultProvider interface {
	Magnitudes() []float64                // Magnitudes returns a copy of |X[k]| for every bin.
	FrequencyForBin(binIndex int) float64 // FrequencyForBin returns the centre frequency (Hz) of a bin.
	Size() int                            // Size returns the time-domain transform length N.
	SampleRate() float64                  // SampleRate returns the sample rate in Hz.
}
