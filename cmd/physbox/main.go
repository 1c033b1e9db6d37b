package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/physbox/internal/audio/speaker"
	"github.com/san-kum/physbox/internal/config"
	"github.com/san-kum/physbox/internal/experiment"
	"github.com/san-kum/physbox/internal/export"
	"github.com/san-kum/physbox/internal/gui"
	"github.com/san-kum/physbox/internal/sandbox"
	"github.com/san-kum/physbox/internal/storage"
	"github.com/san-kum/physbox/internal/transport/ws"
	"github.com/san-kum/physbox/internal/tui"
	"github.com/spf13/cobra"
)

var (
	dataDir      string
	configFile   string
	preset       string
	seed         int64
	gravity      float64
	duration     float64
	addr         string
	staticDir    string
	extraBoxes   int
	extraSpheres int
	noSound      bool
	frameRate    int
	numRuns      int
	outFile      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "physbox",
		Short: "falling spheres and boxes with impact sounds",
		RunE:  runGUI,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".physbox", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 1, "random seed")
	rootCmd.PersistentFlags().Float64Var(&gravity, "gravity", config.DefaultGravity, "vertical gravity")
	rootCmd.PersistentFlags().IntVar(&extraBoxes, "extra-boxes", 0, "random boxes on top of the startup set")
	rootCmd.PersistentFlags().IntVar(&extraSpheres, "extra-spheres", 0, "random spheres on top of the startup set")
	rootCmd.PersistentFlags().BoolVar(&noSound, "no-sound", false, "disable impact sounds")
	rootCmd.PersistentFlags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run the sandbox in a window",
		RunE:  runGUI,
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "run the sandbox in the terminal",
		RunE:  runTUI,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the sandbox to browsers over websocket",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&staticDir, "static", "web", "static file directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and record the result",
		RunE:  runHeadless,
	}
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	runCmd.Flags().IntVar(&numRuns, "runs", 1, "number of seeds to run in parallel")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot object heights over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export object heights as an SVG plot",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(guiCmd, tuiCmd, serveCmd, runCmd, listCmd, plotCmd, exportJSONCmd, exportSVGCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves preset, then config file, then flags that were set
// explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("gravity") {
		cfg.Physics.Gravity = config.ClampGravity(gravity)
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("fps") {
		cfg.Window.FPS = frameRate
	}
	if flags.Changed("no-sound") {
		cfg.Sound.Enabled = !noSound
	}
	if flags.Changed("addr") {
		cfg.Server.Addr = addr
	}
	if flags.Changed("static") {
		cfg.Server.StaticDir = staticDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSession(cfg *config.Config, clock sandbox.Clock) *sandbox.Session {
	s := sandbox.New(cfg, clock)
	s.SpawnStartup()
	for i := 0; i < extraBoxes; i++ {
		s.CreateRandomBox()
	}
	for i := 0; i < extraSpheres; i++ {
		s.CreateRandomSphere()
	}
	return s
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	gui.Run(newSession(cfg, sandbox.NewWallClock()))
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s := newSession(cfg, sandbox.NewWallClock())

	var meter tui.Meter
	if cfg.Sound.Enabled {
		spk := speaker.New()
		if err := spk.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "sound disabled: %v\n", err)
		} else {
			defer spk.Stop()
			s.SetPlayer(spk)
			meter = spk
		}
	}

	return tui.Run(s, meter)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s := newSession(cfg, sandbox.NewWallClock())
	srv := ws.NewServer(s, cfg.Server.StaticDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe(ctx, cfg.Server.Addr)
	}()

	fmt.Printf("serving on %s\n", cfg.Server.Addr)
	if err := s.Run(ctx, sandbox.Frames(ctx, cfg.Window.FPS)); err != nil && err != context.Canceled {
		return err
	}
	return <-errc
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	opts := experiment.Options{ExtraBoxes: extraBoxes, ExtraSpheres: extraSpheres}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d frames (seed %d)...\n", cfg.Frames(), cfg.Seed)
	start := time.Now()

	var results []*experiment.Result
	if numRuns > 1 {
		results, err = experiment.NewEnsemble(cfg, opts, numRuns).Run(ctx)
	} else {
		var res *experiment.Result
		res, err = experiment.New(cfg, opts).Run(ctx)
		results = []*experiment.Result{res}
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	name := preset
	if name == "" {
		name = "default"
	}

	fmt.Printf("completed in %v\n", elapsed)
	for _, res := range results {
		meta := storage.RunMetadata{
			Preset:      name,
			Timestamp:   time.Now(),
			Seed:        res.Seed,
			FixedStep:   cfg.Physics.FixedStep,
			MaxSubSteps: cfg.Physics.MaxSubSteps,
			FPS:         cfg.Window.FPS,
			Duration:    cfg.Duration,
			Frames:      res.Frames,
			Gravity:     cfg.Physics.Gravity,
			Friction:    cfg.Material.Friction,
			Restitution: cfg.Material.Restitution,
			Metrics:     res.Metrics,
		}
		runID, err := st.Save(meta, res.Recording)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
		fmt.Printf("objects: %d\n", len(res.Recording.Objects))
		fmt.Println("metrics:")
		for name, val := range res.Metrics {
			fmt.Printf("  %s: %.6f\n", name, val)
		}
	}

	if len(results) > 1 {
		fmt.Println("\nmean:")
		for _, name := range []string{"impacts", "settle_time", "dissipated"} {
			fmt.Printf("  %s: %.6f\n", name, experiment.Mean(results, name))
		}
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDURATION\tSEED\tGRAVITY\tOBJECTS\tIMPACTS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%d\t%.2f\t%d\t%.0f\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Seed,
			run.Gravity,
			len(run.Objects),
			run.Metrics["impacts"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(states))

	maxPlots := 6
	for i, obj := range meta.Objects {
		if i >= maxPlots {
			break
		}
		data := finite(storage.Heights(states, i))
		if len(data) == 0 {
			continue
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s %d height", obj.Kind, i)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

// finite drops the frames before an object existed.
func finite(data []float64) []float64 {
	out := data[:0]
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	if outFile != "" {
		if err := storage.ExportJSON(outFile, data); err != nil {
			return err
		}
		fmt.Printf("exported %s to %s\n", args[0], outFile)
		return nil
	}
	return storage.WriteJSON(os.Stdout, data)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	path := outFile
	if path == "" {
		path = runID + ".svg"
	}
	if err := export.RunSVG(storage.New(dataDir), runID, path, 800, 400); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", runID, path)
	return nil
}
