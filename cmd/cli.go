// SPDX-License-Identifier: MIT
//
// Package cmd wires the command line to an engine.Session.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"dspview/internal/analysis"
	"dspview/internal/config"
	"dspview/internal/engine"
	applog "dspview/internal/log"
	"dspview/internal/render"
	"dspview/internal/transport"
	"dspview/internal/transport/udp"
	"dspview/internal/tui"
	"dspview/pkg/build"

	"github.com/spf13/cobra"
)

// options holds flag values. Flags only override the loaded config when
// they were set explicitly.
type options struct {
	configPath string
	verbose    bool
	filterMode string
	width      int
	height     int
	cutoff     int
	noGate     bool
	rows       int
	interval   time.Duration
	logFrames  bool
}

// Execute parses os.Args and runs the selected command.
func Execute(ctx context.Context) error {
	root := NewRootCommand(os.Stdout)
	root.SetArgs(os.Args[1:])
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree writing reports to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	info := build.Get()
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           info.Name,
		Short:         info.Description,
		Version:       info.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, out)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "render",
		Short: "Print the four graphs once (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, out)
		},
	})

	binsCmd := &cobra.Command{
		Use:   "bins",
		Short: "Print frequency and amplitude of the first spectrum bins",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBins(cmd, opts, out)
		},
	}
	binsCmd.Flags().IntVar(&opts.rows, "rows", config.DefaultBinRows, "Number of bins to print")
	rootCmd.AddCommand(binsCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "export [dir]",
		Short: "Write input, back and expected signals as WAV files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, out, args)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "view",
		Short: "Browse the graphs in an interactive terminal viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession(cmd, opts)
			if err != nil {
				return err
			}
			defer session.Close()
			return tui.Run(session, session.Config().Display.Width)
		},
	})

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Publish graphs over WebSocket and UDP until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	serveCmd.Flags().DurationVar(&opts.interval, "interval", time.Second, "Time between pipeline runs")
	serveCmd.Flags().BoolVar(&opts.logFrames, "log-frames", false, "Log a summary of every published frame")
	rootCmd.AddCommand(serveCmd)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "f", "",
		"Path to a YAML config file (default: dspview.yaml or config.yaml if present)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false,
		"Show verbose output")
	flags.StringVarP(&opts.filterMode, "filter-mode", "m", config.DefaultFilterMode,
		"Linkwitz-Riley state update: reference or canonical")
	flags.IntVarP(&opts.width, "width", "w", config.DefaultWidth,
		"Columns per graph")
	flags.IntVar(&opts.height, "height", config.DefaultHeight,
		"Total rows shared by the graphs")
	flags.IntVarP(&opts.cutoff, "cutoff", "c", config.DefaultCutoffBins,
		"First spectrum bin removed by the gate")
	flags.BoolVar(&opts.noGate, "no-gate", false,
		"Keep every spectrum bin")

	return rootCmd
}

// loadConfig merges the config file with explicitly set flags.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("filter-mode") {
		cfg.Filter.Mode = opts.filterMode
	}
	if flags.Changed("width") {
		cfg.Display.Width = opts.width
	}
	if flags.Changed("height") {
		cfg.Display.Height = opts.height
	}
	if flags.Changed("cutoff") {
		cfg.Spectral.CutoffBins = opts.cutoff
	}
	if flags.Changed("no-gate") {
		cfg.Spectral.GateEnabled = !opts.noGate
	}
	if flags.Changed("rows") {
		cfg.Spectral.BinRows = opts.rows
	}
	if opts.verbose {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	level, _ := applog.ParseLevel(cfg.LogLevel)
	if cfg.Debug {
		level = applog.LevelDebug
	}
	applog.SetLevel(level)

	return cfg, nil
}

func newSession(cmd *cobra.Command, opts *options) (*engine.Session, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}
	return engine.NewSession(cfg)
}

// runOnce builds a session and runs the pipeline once.
func runOnce(cmd *cobra.Command, opts *options) (*engine.Session, error) {
	session, err := newSession(cmd, opts)
	if err != nil {
		return nil, err
	}
	if err := session.Run(cmd.Context()); err != nil {
		session.Close()
		return nil, err
	}
	return session, nil
}

func runRender(cmd *cobra.Command, opts *options, out io.Writer) error {
	session, err := runOnce(cmd, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	display := session.Config().Display
	graphs, err := session.Graphs(display.Width)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, render.RenderAll(graphs, display.Width, display.Height, -1))
	return err
}

func runBins(cmd *cobra.Command, opts *options, out io.Writer) error {
	session, err := runOnce(cmd, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	spectrum, err := session.Spectrum()
	if err != nil {
		return err
	}

	for _, row := range spectrum.BinTable(session.Config().Spectral.BinRows) {
		fmt.Fprintf(out, "%d freq %.1f ampl %f\n", row.Index, row.Freq, row.Ampl)
	}

	dominant := spectrum.DominantBin()
	fmt.Fprintf(out, "dominant bin %d (%.1f Hz)\n", dominant, spectrum.FrequencyForBin(dominant))
	for _, band := range analysis.BandEnergy(spectrum, analysis.DefaultBands(spectrum.SampleRate())) {
		fmt.Fprintf(out, "band %-10s %f (%d bins)\n", band.Name, band.Level, band.Bins)
	}

	timing := session.Timing()
	applog.Debugf("time: %s forward: %s inverse: %s filter: %s",
		timing.Frame, timing.Forward, timing.Inverse, timing.Filter)
	return nil
}

func runExport(cmd *cobra.Command, opts *options, out io.Writer, args []string) error {
	session, err := runOnce(cmd, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	dir := session.Config().Export.OutputDir
	if len(args) > 0 {
		dir = args[0]
	}

	paths, err := session.Export(dir)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(out, p)
	}
	return nil
}

var errNoTransport = errors.New("serve: no transport enabled; enable transport.websocket_enabled or transport.udp_enabled, or pass --log-frames")

func runServe(cmd *cobra.Command, opts *options) error {
	if opts.interval <= 0 {
		return fmt.Errorf("--interval must be positive, got %s", opts.interval)
	}

	session, err := newSession(cmd, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	cfg := session.Config()
	if !cfg.Transport.WebSocketEnabled && !cfg.Transport.UDPEnabled && !opts.logFrames {
		return errNoTransport
	}

	if cfg.Transport.WebSocketEnabled {
		ws := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddr)
		session.AddTransport(ws)
		if err := ws.Start(); err != nil {
			return err
		}
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return err
		}
		publisher, err := udp.NewPublisher(cfg.Transport.UDPSendInterval, sender)
		if err != nil {
			sender.Close()
			return err
		}
		session.AddTransport(publisher)
		publisher.Start()
	}

	if opts.logFrames {
		session.AddTransport(transport.NewLoggingTransport())
	}

	ctx := cmd.Context()
	ticker := time.NewTicker(opts.interval)
	defer ticker.Stop()

	applog.Infof("serve: publishing every %s, press Ctrl+C to stop", opts.interval)
	for {
		if err := session.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if _, err := session.Publish(cfg.Display.Width); err != nil {
			applog.Warnf("serve: publish: %v", err)
		}

		select {
		case <-ctx.Done():
			applog.Infof("serve: shutting down")
			return nil
		case <-ticker.C:
		}
	}
}
