// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
)

// FrequencyBand names the half-open range [LowHz, HighHz).
type FrequencyBand struct {
	Name   string
	LowHz  float64
	HighHz float64
}

// BandLevel is the RMS magnitude of the bins inside one band.
type BandLevel struct {
	Name  string  `json:"name"`
	Level float64 `json:"level"`
	Bins  int     `json:"bins"`
}

// DefaultBands splits the audible range the way a mixing console would.
// The treble band is open-ended up to Nyquist.
func DefaultBands(sampleRate float64) []FrequencyBand {
	return []FrequencyBand{
		{Name: "sub", LowHz: 20, HighHz: 60},
		{Name: "bass", LowHz: 60, HighHz: 250},
		{Name: "lowMid", LowHz: 250, HighHz: 500},
		{Name: "mid", LowHz: 500, HighHz: 2000},
		{Name: "highMid", LowHz: 2000, HighHz: 4000},
		{Name: "treble", LowHz: 4000, HighHz: sampleRate/2 + 1},
	}
}

// BandEnergy assigns every bin to the first band containing its frequency
// and returns the RMS magnitude per band, in band order. Empty bands report
// a level of 0.
func BandEnergy(provider ResultProvider, bands []FrequencyBand) []BandLevel {
	magnitudes := provider.Magnitudes()
	energy := make([]float64, len(bands))
	counts := make([]int, len(bands))

	for i, mag := range magnitudes {
		freq := provider.FrequencyForBin(i)
		for b, band := range bands {
			if freq >= band.LowHz && freq < band.HighHz {
				energy[b] += mag * mag
				counts[b]++
				break
			}
		}
	}

	levels := make([]BandLevel, len(bands))
	for b, band := range bands {
		levels[b] = BandLevel{Name: band.Name, Bins: counts[b]}
		if counts[b] > 0 {
			levels[b].Level = math.Sqrt(energy[b] / float64(counts[b]))
		}
	}
	return levels
}
