// SPDX-License-Identifier: MIT
package config

import "time"

// Defaults for the demonstration scenario: a 512-sample, 48 kHz buffer of
// four partials, gated at bin 33 and compared against a 1 kHz crossover.
const (
	DefaultLogLevel    = "info"
	DefaultSize        = 512
	DefaultSampleRate  = 48000
	DefaultCutoffBins  = 33
	DefaultGateEnabled = true
	DefaultCrossoverHz = 1000
	DefaultFilterMode  = "reference"
	DefaultWidth       = 80
	DefaultHeight      = 40
	DefaultOutputDir   = "./export"
	DefaultBitDepth    = 16
	DefaultBinRows     = 100

	DefaultWebSocketAddr    = ":8080"
	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultUDPSendInterval  = 33 * time.Millisecond

	// Limits accepted by Validate.
	MinSampleRate = 8000
	MaxSampleRate = 192000
	MaxSize       = 1 << 20
)

// DefaultPartials are the sine frequencies summed into the test signal.
var DefaultPartials = []float64{440, 1000, 2000, 4000}

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Signal: SignalConfig{
			Size:       DefaultSize,
			SampleRate: DefaultSampleRate,
			Partials:   append([]float64(nil), DefaultPartials...),
		},
		Spectral: SpectralConfig{
			GateEnabled: DefaultGateEnabled,
			CutoffBins:  DefaultCutoffBins,
			BinRows:     DefaultBinRows,
		},
		Filter: FilterConfig{
			CrossoverHz: DefaultCrossoverHz,
			Mode:        DefaultFilterMode,
		},
		Display: DisplayConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Export: ExportConfig{
			OutputDir: DefaultOutputDir,
			BitDepth:  DefaultBitDepth,
		},
		Transport: TransportConfig{
			WebSocketEnabled: true,
			WebSocketAddr:    DefaultWebSocketAddr,
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPSendInterval:  DefaultUDPSendInterval,
		},
	}
}
