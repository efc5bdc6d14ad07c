// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dspview/internal/dsp"
	applog "dspview/internal/log"
	"dspview/pkg/bitint"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration, loaded from YAML and then
// overridden by environment variables and command line flags.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Force debug logging.
	LogLevel  string          `yaml:"log_level"` // debug, info, warn or error.
	Signal    SignalConfig    `yaml:"signal"`
	Spectral  SpectralConfig  `yaml:"spectral"`
	Filter    FilterConfig    `yaml:"filter"`
	Display   DisplayConfig   `yaml:"display"`
	Export    ExportConfig    `yaml:"export"`
	Transport TransportConfig `yaml:"transport"`
}

// SignalConfig describes the synthetic test signal.
type SignalConfig struct {
	Size       int       `yaml:"size"`        // Buffer length N; must be even.
	SampleRate int       `yaml:"sample_rate"` // Hz.
	Partials   []float64 `yaml:"partials"`    // Sine frequencies in Hz.
}

// SpectralConfig controls the spectral gate of the round trip.
type SpectralConfig struct {
	GateEnabled bool `yaml:"gate_enabled"` // When false every bin is kept.
	CutoffBins  int  `yaml:"cutoff_bins"`  // Bins with index >= this are zeroed.
	BinRows     int  `yaml:"bin_rows"`     // Rows printed by the bins report.
}

// FilterConfig selects the Linkwitz-Riley comparison filter.
type FilterConfig struct {
	CrossoverHz int    `yaml:"crossover_hz"`
	Mode        string `yaml:"mode"` // reference or canonical.
}

// DisplayConfig is the geometry handed to the renderers.
type DisplayConfig struct {
	Width  int `yaml:"width"`  // Columns per graph.
	Height int `yaml:"height"` // Total rows, shared by all graphs.
}

// ExportConfig controls WAV export of the generated buffers.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir"`
	BitDepth  int    `yaml:"bit_depth"` // 16, 24 or 32.
}

// TransportConfig holds the optional network sinks for reduced graphs.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`
	WebSocketAddr    string        `yaml:"websocket_addr"`
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"`
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`
}

// configCandidates are searched in order when no path is given.
var configCandidates = []string{"dspview.yaml", "config.yaml"}

// LoadConfig reads the YAML file at path on top of the built-in defaults.
// An empty path searches configCandidates and falls back to the defaults
// when none exists. Environment overrides are applied last, then the
// result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		for _, candidate := range configCandidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		applog.Debugf("config: loaded %s", path)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that every value is inside the domain of the pipeline.
// Errors wrap dsp.ErrInvalidArgument.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{dsp.ErrInvalidArgument}, args...)...)
	}

	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return invalid("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}

	s := c.Signal
	if s.Size < 2 || s.Size > MaxSize || !bitint.IsEven(s.Size) {
		return invalid("signal.size must be even and in [2, %d], got %d", MaxSize, s.Size)
	}
	if s.SampleRate < MinSampleRate || s.SampleRate > MaxSampleRate {
		return invalid("signal.sample_rate must be in [%d, %d], got %d", MinSampleRate, MaxSampleRate, s.SampleRate)
	}
	nyquist := float64(s.SampleRate) / 2
	for _, f := range s.Partials {
		if f <= 0 || f >= nyquist {
			return invalid("signal.partials: %g Hz is outside (0, %g)", f, nyquist)
		}
	}

	if c.Spectral.CutoffBins < 0 {
		return invalid("spectral.cutoff_bins must not be negative, got %d", c.Spectral.CutoffBins)
	}
	if c.Spectral.BinRows < 0 {
		return invalid("spectral.bin_rows must not be negative, got %d", c.Spectral.BinRows)
	}

	if c.Filter.CrossoverHz <= 0 || 2*c.Filter.CrossoverHz >= s.SampleRate {
		return invalid("filter.crossover_hz must be in (0, %d), got %d", s.SampleRate/2, c.Filter.CrossoverHz)
	}
	if _, err := dsp.ParseFilterMode(c.Filter.Mode); err != nil {
		return err
	}

	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return invalid("display size must be positive, got %dx%d", c.Display.Width, c.Display.Height)
	}

	switch c.Export.BitDepth {
	case 16, 24, 32:
	default:
		return invalid("export.bit_depth must be 16, 24 or 32, got %d", c.Export.BitDepth)
	}

	t := c.Transport
	if t.WebSocketEnabled && t.WebSocketAddr == "" {
		return invalid("transport.websocket_addr must be set when the websocket is enabled")
	}
	if t.UDPEnabled {
		if !strings.Contains(t.UDPTargetAddress, ":") {
			return invalid("transport.udp_target_address %q appears invalid (missing port?)", t.UDPTargetAddress)
		}
		if t.UDPSendInterval <= 0 {
			return invalid("transport.udp_send_interval must be positive when UDP is enabled")
		}
	}

	return nil
}

// applyEnvOverrides applies DSPVIEW_* environment variables. Values that
// fail to parse are ignored with a warning.
func (c *Config) applyEnvOverrides() {
	lookup := func(name string) (string, bool) {
		return os.LookupEnv("DSPVIEW_" + name)
	}
	warn := func(name, val string, err error) {
		applog.Warnf("config: ignoring DSPVIEW_%s=%q: %v", name, val, err)
	}

	if val, ok := lookup("DEBUG"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Debug = b
		} else {
			warn("DEBUG", val, err)
		}
	}
	if val, ok := lookup("LOG_LEVEL"); ok {
		c.LogLevel = val
	}
	if val, ok := lookup("SAMPLE_RATE"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Signal.SampleRate = n
		} else {
			warn("SAMPLE_RATE", val, err)
		}
	}
	if val, ok := lookup("CUTOFF_BINS"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Spectral.CutoffBins = n
		} else {
			warn("CUTOFF_BINS", val, err)
		}
	}
	if val, ok := lookup("FILTER_MODE"); ok {
		c.Filter.Mode = val
	}

	if val, ok := lookup("WS_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Transport.WebSocketEnabled = b
		} else {
			warn("WS_ENABLED", val, err)
		}
	}
	if val, ok := lookup("WS_ADDR"); ok {
		c.Transport.WebSocketAddr = val
	}
	if val, ok := lookup("UDP_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = b
		} else {
			warn("UDP_ENABLED", val, err)
		}
	}
	if val, ok := lookup("UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
	}
	if val, ok := lookup("UDP_SEND_INTERVAL"); ok {
		if d, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = d
		} else {
			warn("UDP_SEND_INTERVAL", val, err)
		}
	}
}
