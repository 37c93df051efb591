package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/elastosim/internal/analysis"
	"github.com/san-kum/elastosim/internal/config"
	"github.com/san-kum/elastosim/internal/metrics"
	"github.com/san-kum/elastosim/internal/relax"
	"github.com/san-kum/elastosim/internal/storage"
	"github.com/san-kum/elastosim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	runName    string
	gridSize   int
	young      float64
	poisson    float64
	density    float64
	gravity    float64
	forceX     float64
	forceY     float64
	iterations int
	stepSize   float64
	stepFactor float64
	tolerance  float64
	parallel   bool
	logEvery   int
	noSave     bool
	frameRate  int
	field      string
	exaggerate float64
	outPath    string
	factors    []float64
)

var logger = log.New(os.Stderr, "", log.LstdFlags)

// main registers the elastosim commands and exits with status 1 when a
// command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:          "elastosim",
		Short:        "2d linear elastostatics by gradient-descent relaxation",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".elastosim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "solve a scenario and record the run",
		Args:  cobra.NoArgs,
		RunE:  runSolve,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().IntVar(&logEvery, "log-every", 500, "log the residual every n iterations (0 disables)")
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to the preset or config file name)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the residual trace and a field of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&field, "field", "uy", "field to draw: "+fieldNames)

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "fit the convergence rate of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run fields to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.json)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run fields to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.csv)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a field, the deformed lattice or the trace to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&field, "field", "uy", "field to draw: "+fieldNames+", lattice or trace")
	exportSVGCmd.Flags().Float64Var(&exaggerate, "exaggerate", 1, "displacement scale for the lattice")
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>_<field>.svg)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "relax a scenario with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	watchCmd := &cobra.Command{
		Use:   "watch [config]",
		Short: "re-solve a config file every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE:  watchConfig,
	}
	watchCmd.Flags().BoolVar(&noSave, "no-save", false, "do not record runs")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "probe the stable step size of a scenario",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&factors, "factors", []float64{0.5, 1, 1.25, 1.5, 2, 4}, "multiples of the reference step to try")

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, analyzeCmd, deleteCmd,
		exportJSONCmd, exportCSVCmd, exportSVGCmd, presetsCmd, liveCmd, watchCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&gridSize, "grid", relax.DefaultGridSize, "grid points per side")
	cmd.Flags().Float64Var(&young, "young", relax.DefaultYoung, "young's modulus")
	cmd.Flags().Float64Var(&poisson, "poisson", relax.DefaultPoisson, "poisson's ratio")
	cmd.Flags().Float64Var(&density, "density", relax.DefaultDensity, "mass density")
	cmd.Flags().Float64Var(&gravity, "gravity", relax.DefaultGravity, "gravitational acceleration")
	cmd.Flags().Float64Var(&forceX, "fx", 0, "uniform external force density along x")
	cmd.Flags().Float64Var(&forceY, "fy", 0, "uniform external force density along y")
	cmd.Flags().IntVar(&iterations, "iterations", relax.DefaultIterations, "relaxation iterations")
	cmd.Flags().Float64Var(&stepSize, "step", 0, "explicit step size (overrides --step-factor)")
	cmd.Flags().Float64Var(&stepFactor, "step-factor", config.DefaultStepFactor, "multiple of the reference step 0.45*dx^2/E")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "stop once residual <= tolerance * first residual")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "update rows in parallel")
}

var scenarioFlags = []string{
	"config", "preset", "grid", "young", "poisson", "density", "gravity",
	"fx", "fy", "iterations", "step", "step-factor", "tolerance", "parallel",
}

func scenarioChanged(cmd *cobra.Command) bool {
	for _, name := range scenarioFlags {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// loadScenario layers a preset, a config file and explicitly set flags, in
// that order, over the defaults.
func loadScenario(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "default"

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg, name = p, preset
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg, name = c, scenarioName(configFile)
	}

	flags := cmd.Flags()
	if flags.Changed("grid") {
		cfg.GridSize = gridSize
	}
	if flags.Changed("young") {
		cfg.Material.Young = young
	}
	if flags.Changed("poisson") {
		cfg.Material.Poisson = poisson
	}
	if flags.Changed("density") {
		cfg.Load.Density = density
	}
	if flags.Changed("gravity") {
		cfg.Load.Gravity = gravity
	}
	if flags.Changed("fx") {
		cfg.Load.External.Fx = forceX
	}
	if flags.Changed("fy") {
		cfg.Load.External.Fy = forceY
	}
	if flags.Changed("iterations") {
		cfg.Solver.Iterations = iterations
	}
	if flags.Changed("step") {
		cfg.Solver.StepSize = stepSize
	}
	if flags.Changed("step-factor") {
		cfg.Solver.StepFactor = stepFactor
		if !flags.Changed("step") {
			cfg.Solver.StepSize = 0
		}
	}
	if flags.Changed("tolerance") {
		cfg.Solver.Tolerance = tolerance
	}
	if flags.Changed("parallel") {
		cfg.Solver.Parallel = parallel
	}
	return cfg, name, nil
}

// solve relaxes cfg, logging progress and collecting the default metrics.
// A partial result is returned alongside numerical failures.
func solve(ctx context.Context, cfg *config.Config, every int) (*relax.Result, error) {
	rc, err := cfg.ToSolverConfig()
	if err != nil {
		return nil, err
	}
	s, err := relax.New(rc)
	if err != nil {
		return nil, err
	}
	for _, m := range metrics.Defaults() {
		s.AddMetric(m)
	}
	if every > 0 {
		s.AddObserver(relax.NewLogObserver(logger, every))
	}
	return s.Run(ctx)
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	if runName != "" {
		name = runName
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("relaxing %s: %dx%d grid, h=%.4e, %d iterations\n",
		name, cfg.GridSize, cfg.GridSize, cfg.StepSize(), cfg.Solver.Iterations)

	res, runErr := solve(ctx, cfg, logEvery)
	if res == nil {
		return runErr
	}

	if !noSave {
		st, err := storage.Open(dataDir)
		if err != nil {
			return err
		}
		defer st.Close()

		id, err := st.Save(context.Background(), name, cfg, res, runErr)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", id)
	}

	printSummary(res)
	return runErr
}

func printSummary(res *relax.Result) {
	sum := analysis.Summarize(res.Trace)
	fmt.Printf("completed %d iterations in %v\n", res.Iterations, res.Elapsed.Round(time.Millisecond))
	if res.Converged {
		fmt.Println("converged: yes")
	}
	fmt.Printf("residual: %.6e -> %.6e (ratio %.3e)\n", sum.First, sum.Final, sum.Ratio)

	if len(res.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for _, k := range sortedKeys(res.Metrics) {
			fmt.Printf("  %s: %.6e\n", k, res.Metrics[k])
		}
	}

	if data := logSeries(res.Trace); len(data) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("log10 residual vs iteration"),
		))
	}
}

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("presets:")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Printf("  %-12s %s\n", name, p.Description)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if !scenarioChanged(cmd) {
		return viz.RunPicker(frameRate)
	}

	cfg, name, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	rc, err := cfg.ToSolverConfig()
	if err != nil {
		return err
	}
	s, err := relax.New(rc)
	if err != nil {
		return err
	}
	return viz.RunLive(s, name, frameRate)
}
