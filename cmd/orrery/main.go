package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/san-kum/orrery/internal/automation"
	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/export"
	"github.com/san-kum/orrery/internal/gui"
	"github.com/san-kum/orrery/internal/logging"
	"github.com/san-kum/orrery/internal/metrics"
	"github.com/san-kum/orrery/internal/render"
	"github.com/san-kum/orrery/internal/sim"
	"github.com/san-kum/orrery/internal/storage"
	"github.com/san-kum/orrery/internal/viz"
)

var (
	configFile  string
	preset      string
	seed        int64
	dataDir     string
	metricsAddr string
	logLevel    string
	logFormat   string

	// run and snapshot
	frames     int
	shotFrames int
	fps        float64
	follow     string
	scriptFile string
	saveEntry  bool

	// snapshot
	out     string
	format  string
	withHUD bool
	width   int
	height  int

	force bool
)

// main registers the commands and opens the window when no subcommand is
// given. It exits with status 1 if the command fails.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:          "orrery",
		Short:        "animated orbital diagram of the sun and its planets",
		SilenceUsage: true,
		RunE:         runWindow,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "default", "preset configuration")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	pf.StringVar(&dataDir, "data", ".orrery", "gallery directory")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "", "log format: text or json")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "show the diagram in the terminal",
		RunE:  runTerminal,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run frames headless and summarize them",
		RunE:  runFrames,
	}
	runCmd.Flags().IntVar(&frames, "frames", 3600, "number of frames")
	runCmd.Flags().Float64Var(&fps, "fps", 0, "pace frames at this rate (0 runs flat out)")
	runCmd.Flags().StringVar(&follow, "follow", "", "follow this body from the first frame")
	runCmd.Flags().StringVar(&scriptFile, "script", "", "replay a YAML tour of scripted steps")
	runCmd.Flags().BoolVar(&saveEntry, "save", false, "store the frame trace in the gallery")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render a frame to png or svg",
		RunE:  takeSnapshot,
	}
	snapshotCmd.Flags().IntVar(&shotFrames, "frames", 120, "frames to run before capturing")
	snapshotCmd.Flags().StringVar(&follow, "follow", "", "follow this body from the first frame")
	snapshotCmd.Flags().StringVar(&scriptFile, "script", "", "replay a YAML tour before capturing")
	snapshotCmd.Flags().StringVar(&out, "out", "", "output file (defaults to the configured snapshot path)")
	snapshotCmd.Flags().StringVar(&format, "format", "", "png or svg (defaults to the output extension)")
	snapshotCmd.Flags().BoolVar(&withHUD, "hud", true, "include the day counter")
	snapshotCmd.Flags().IntVar(&width, "width", 0, "frame width (defaults to the window width)")
	snapshotCmd.Flags().IntVar(&height, "height", 0, "frame height (defaults to the window height)")
	snapshotCmd.Flags().BoolVar(&saveEntry, "save", false, "also store the frame in the gallery")

	snapshotsCmd := &cobra.Command{
		Use:   "snapshots",
		Short: "list gallery entries",
		RunE:  listEntries,
	}

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "print a gallery entry's metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showEntry,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [id]",
		Short: "plot a stored frame trace",
		Args:  cobra.ExactArgs(1),
		RunE:  plotTrace,
	}

	bodiesCmd := &cobra.Command{
		Use:   "bodies",
		Short: "list the configured bodies",
		RunE:  listBodies,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the effective configuration to a yaml file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	configCmd.AddCommand(initCmd)

	rootCmd.AddCommand(tuiCmd, runCmd, snapshotCmd, snapshotsCmd, showCmd, plotCmd, bodiesCmd, presetsCmd, configCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves preset, config file and flag overrides, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	if configFile != "" {
		var err error
		cfg, err = config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = metricsAddr
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads the configuration and logger and stores the logger on the
// command context.
func setup(cmd *cobra.Command) (*config.Config, logging.Logger, io.Closer, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	log, closer, err := logging.Open(cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open log: %w", err)
	}
	cmd.SetContext(logging.ContextWithLogger(cmd.Context(), log))
	return cfg, log, closer, nil
}

// startMetrics serves /metrics in the background when an address is
// configured. Serve errors are logged and never stop the session.
func startMetrics(ctx context.Context, cfg *config.Config) (*metrics.Collector, error) {
	if cfg.Metrics.Addr == "" {
		return nil, nil
	}
	c, err := metrics.NewCollector(nil)
	if err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx)
	go func() {
		if err := c.Serve(ctx, cfg.Metrics.Addr); err != nil {
			log.Error(ctx, "metrics server failed", logging.Err(err))
		}
	}()
	log.Info(ctx, "serving metrics", logging.String("addr", cfg.Metrics.Addr))
	return c, nil
}

func observers(ctx context.Context, cfg *config.Config) ([]sim.Observer, error) {
	c, err := startMetrics(ctx, cfg)
	if err != nil || c == nil {
		return nil, err
	}
	return []sim.Observer{c}, nil
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, log, closer, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx := cmd.Context()
	obs, err := observers(ctx, cfg)
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		log.Warn(ctx, "gallery unavailable, snapshots go to a file", logging.Err(err))
		st = nil
	}
	return gui.Run(ctx, cfg, gui.Deps{Log: log, Store: st, Observers: obs, Preset: preset})
}

func runTerminal(cmd *cobra.Command, args []string) error {
	cfg, log, closer, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()
	if cfg.Log.Path == "" {
		log = logging.Noop()
	}

	ctx := logging.ContextWithLogger(cmd.Context(), log)
	obs, err := observers(ctx, cfg)
	if err != nil {
		return err
	}
	return viz.Run(ctx, cfg, viz.Deps{Log: log, Observers: obs})
}

// script attaches the --script tour, preceded by a follow of the --follow
// body on the first frame.
func script(c *sim.Context, log logging.Logger) error {
	sc := &automation.Scenario{}
	if scriptFile != "" {
		loaded, err := automation.LoadScenario(scriptFile)
		if err != nil {
			return fmt.Errorf("load script: %w", err)
		}
		sc = loaded
	}
	if follow != "" {
		step := automation.Step{Action: automation.ActionFollow, Body: follow}
		sc.Steps = append([]automation.Step{step}, sc.Steps...)
	}
	if err := sc.Validate(c.Registry()); err != nil {
		return err
	}
	automation.NewPlayer(c, sc, log).Attach()
	return nil
}

// maxHistory bounds the frames kept by an open-ended run.
const maxHistory = 36000

func runFrames(cmd *cobra.Command, args []string) error {
	cfg, log, closer, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()
	ctx := cmd.Context()

	c := sim.New(cfg, sim.WithLogger(log))
	summary := metrics.NewSummary()
	c.AddObserver(summary)
	c.AddObserver(sim.NewLogObserver(log))
	obs, err := observers(ctx, cfg)
	if err != nil {
		return err
	}
	for _, o := range obs {
		c.AddObserver(o)
	}
	if err := script(c, log); err != nil {
		return err
	}

	var pace sim.Pacer
	if fps > 0 {
		pace = rate.NewLimiter(rate.Limit(fps), 1)
	}

	rec := &sim.Recorder{Limit: maxHistory}
	if frames > 0 {
		rec.Limit = frames
	}
	c.AddObserver(rec)

	fmt.Printf("running %d frames...\n", frames)
	start := time.Now()
	err = c.Run(ctx, frames, pace, nil)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	elapsed := time.Since(start)

	days := make([]float64, 0, len(rec.Frames))
	offsets := make([]float64, 0, len(rec.Frames))
	var rows []storage.TraceRow
	for _, f := range rec.Frames {
		days = append(days, float64(f.Day))
		offsets = append(offsets, math.Hypot(f.View.Offset.X, f.View.Offset.Y))
		if saveEntry {
			rows = append(rows, storage.RowOf(f))
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	values := summary.Values()
	for _, name := range summary.Names() {
		fmt.Fprintf(w, "%s\t%.4g\n", name, values[name])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	plot(days, "day counter")
	if last := c.Last(); last.Followed != nil {
		plot(offsets, "camera offset following "+last.Followed.Name)
	}

	if saveEntry {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		meta := storage.Describe(storage.Metadata{Preset: preset, Seed: cfg.Seed}, c.Last())
		id, err := st.SaveTrace(meta, rows)
		if err != nil {
			return err
		}
		fmt.Printf("trace id: %s\n", id)
	}
	return nil
}

func plot(data []float64, caption string) {
	if len(data) < 2 {
		return
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println()
	fmt.Println(graph)
}

func takeSnapshot(cmd *cobra.Command, args []string) error {
	cfg, log, closer, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	if out == "" {
		out = cfg.Snapshot
	}
	fmtName := format
	if fmtName == "" {
		fmtName = out
	}
	f, err := export.ParseFormat(fmtName)
	if err != nil {
		return err
	}

	opts := []sim.Option{sim.WithLogger(log)}
	if width > 0 && height > 0 {
		opts = append(opts, sim.WithSize(width, height))
	}
	c := sim.New(cfg, opts...)
	if err := script(c, log); err != nil {
		return err
	}
	if err := c.Run(cmd.Context(), shotFrames, nil, nil); err != nil {
		return err
	}

	frame := c.Last()
	var hud *render.HUD
	if withHUD {
		epoch, _ := cfg.EpochTime()
		h := render.NewHUD(frame, epoch)
		hud = &h
	}
	data, err := export.Frame(f, render.NewPipeline(render.ThemeFrom(cfg)), c, frame, hud)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%dx%d, day %s)\n", out, frame.Width, frame.Height, render.DayLabel(frame.Day))

	if saveEntry {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		meta := storage.Describe(storage.Metadata{Preset: preset, Seed: cfg.Seed}, frame)
		id, err := st.SaveSnapshot(meta, string(f), data)
		if err != nil {
			return err
		}
		fmt.Printf("snapshot id: %s\n", id)
	}
	return nil
}

func listEntries(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	entries, err := st.List()
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("no snapshots found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tDAY\tFOLLOWED\tZOOM\tFRAMES")
	for _, e := range entries {
		followed := e.Followed
		if followed == "" {
			followed = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%d\n",
			e.ID,
			e.Kind,
			e.Timestamp.Format("2006-01-02 15:04:05"),
			render.DayLabel(e.Day),
			followed,
			e.Zoom,
			e.Frames,
		)
	}
	return w.Flush()
}

func showEntry(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	path, err := st.ImagePath(args[0])
	switch {
	case errors.Is(err, storage.ErrNotSnapshot):
	case err != nil:
		return err
	default:
		fmt.Printf("image: %s\n", path)
	}
	return nil
}

func plotTrace(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	rows, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("trace is empty")
		return nil
	}

	days := make([]float64, len(rows))
	zoom := make([]float64, len(rows))
	paused := 0
	for i, r := range rows {
		days[i] = float64(r.Day)
		zoom[i] = r.Zoom
		if r.Paused {
			paused++
		}
	}
	fmt.Printf("%d frames, %d paused, last day %s\n", len(rows), paused, render.DayLabel(rows[len(rows)-1].Day))
	plot(days, "day counter")
	plot(zoom, "zoom")
	return nil
}

func listBodies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	c := sim.New(cfg)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDISTANCE\tRADIUS\tSPEED\tFRAMES/ORBIT\tEXTRAS")
	for _, b := range c.Registry().Bodies() {
		extras := "-"
		switch {
		case b.HasSatellite && b.HasRings:
			extras = "satellite, rings"
		case b.HasSatellite:
			extras = "satellite"
		case b.HasRings:
			extras = "rings"
		}
		orbitFrames := math.Inf(1)
		if b.Speed > 0 {
			orbitFrames = 2 * math.Pi / b.Speed
		}
		fmt.Fprintf(w, "%s\t%.0f\t%.0f\t%.4f\t%.0f\t%s\n", b.Name, b.Distance, b.Radius, b.Speed, orbitFrames, extras)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "orrery.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s exists (use --force to overwrite)", path)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
