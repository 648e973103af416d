package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/craftsim/internal/config"
	"github.com/san-kum/craftsim/internal/craft"
	"github.com/san-kum/craftsim/internal/ui"
	"github.com/san-kum/craftsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	keysFile   string
	dt         float64
	steps      int
	trailSteps int
	sweepSteps int
	bifSteps   int
	lyapSteps  int
	outFile    string
	threshold  float64
	node       int
	axis       string
	jsonOut    string
	width      int
	height     int
	labels     bool
	trail      bool
	gravities  string
	param      string
	values     string
	transient  int
	parallel   int
	tuneParams string
	tuneValues string
	tuneMetric string
	tuneSteps  int
	maximize   bool
	trials     int
	jitter     float64
	seed       int64
	mcSteps    int
)

// main registers the commands and opens the editor when no subcommand
// is given. It exits with status 1 when a command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "craftsim [craft.json]",
		Short:         "2d craft editor and verlet simulator",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          editCraft,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run store directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&keysFile, "keys", "", "key bindings file (toml)")

	newCmd := &cobra.Command{
		Use:   "new [preset]",
		Short: "write a preset craft to a file",
		Args:  cobra.ExactArgs(1),
		RunE:  newCraft,
	}
	newCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default <preset>.json)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in crafts",
		RunE:  listPresets,
	}

	infoCmd := &cobra.Command{
		Use:   "info [craft]",
		Short: "describe a craft",
		Args:  cobra.ExactArgs(1),
		RunE:  craftInfo,
	}

	dedupeCmd := &cobra.Command{
		Use:   "dedupe [craft]",
		Short: "merge nearby nodes and duplicate rods",
		Args:  cobra.ExactArgs(1),
		RunE:  dedupeCraft,
	}
	dedupeCmd.Flags().Float64Var(&threshold, "threshold", config.DefaultDedupeThreshold, "merge distance")
	dedupeCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default overwrite)")

	runCmd := &cobra.Command{
		Use:   "run [craft]",
		Short: "simulate a craft and store the run",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "also export the run as json")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a node trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&node, "node", 0, "node index")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a node",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&node, "node", 0, "node index")
	analyzeCmd.Flags().StringVar(&axis, "axis", "y", "coordinate to analyse (x or y)")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of a node",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&node, "node", 0, "node index")
	phaseCmd.Flags().StringVar(&axis, "axis", "y", "coordinate (x or y)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live [craft]",
		Short: "simulate a craft in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}

	svgCmd := &cobra.Command{
		Use:   "export-svg [craft]",
		Short: "render a craft as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	pngCmd := &cobra.Command{
		Use:   "export-png [craft]",
		Short: "render a craft as png",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	for _, c := range []*cobra.Command{svgCmd, pngCmd} {
		c.Flags().StringVarP(&outFile, "output", "o", "", "output file")
		c.Flags().IntVar(&width, "width", 800, "image width")
		c.Flags().IntVar(&height, "height", 600, "image height")
		c.Flags().BoolVar(&labels, "labels", true, "draw node indices")
		c.Flags().BoolVar(&trail, "trail", false, "simulate and draw the trail of --node")
		c.Flags().IntVar(&node, "node", 0, "node whose trail is drawn")
		c.Flags().IntVar(&trailSteps, "steps", config.DefaultSteps, "steps for --trail")
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [craft]",
		Short: "run a craft under several gravities in parallel",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepGravity,
	}
	sweepCmd.Flags().StringVar(&gravities, "gravity", "250,500,1000", "comma separated gravity values")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", config.DefaultSteps, "number of steps")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 4, "concurrent runs")

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation [craft]",
		Short: "peaks of a node over a parameter range",
		Args:  cobra.ExactArgs(1),
		RunE:  bifurcation,
	}
	bifurcationCmd.Flags().StringVar(&param, "param", "gravity", "parameter to vary")
	bifurcationCmd.Flags().StringVar(&values, "values", "250,500,750,1000", "comma separated values")
	bifurcationCmd.Flags().IntVar(&node, "node", 0, "node index")
	bifurcationCmd.Flags().IntVar(&bifSteps, "steps", 1200, "number of steps")
	bifurcationCmd.Flags().IntVar(&transient, "transient", 300, "frames skipped before sampling")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [craft]",
		Short: "estimate the largest lyapunov exponent",
		Args:  cobra.ExactArgs(1),
		RunE:  lyapunov,
	}
	lyapunovCmd.Flags().IntVar(&node, "node", 0, "node to perturb")
	lyapunovCmd.Flags().IntVar(&lyapSteps, "steps", 2000, "number of steps")

	tuneCmd := &cobra.Command{
		Use:   "tune [craft]",
		Short: "grid search physics parameters for the best metric",
		Args:  cobra.ExactArgs(1),
		RunE:  tune,
	}
	tuneCmd.Flags().StringVar(&tuneParams, "param", "gravity", "comma separated parameters")
	tuneCmd.Flags().StringVar(&tuneValues, "values", "250,500,1000", "values per parameter, groups separated by ';'")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "max_strain", "metric to optimise")
	tuneCmd.Flags().BoolVar(&maximize, "maximize", false, "keep the highest value instead of the lowest")
	tuneCmd.Flags().IntVar(&tuneSteps, "steps", config.DefaultSteps, "number of steps per trial")
	tuneCmd.Flags().IntVar(&parallel, "parallel", 4, "concurrent runs")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [craft]",
		Short: "run a craft from randomly nudged starts",
		Args:  cobra.ExactArgs(1),
		RunE:  monteCarlo,
	}
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&jitter, "jitter", 5, "largest start offset per axis")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	monteCarloCmd.Flags().IntVar(&mcSteps, "steps", config.DefaultSteps, "number of steps per trial")
	monteCarloCmd.Flags().IntVar(&parallel, "parallel", 4, "concurrent runs")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "write default config.yaml and keys.toml",
		RunE:  initFiles,
	}

	rootCmd.AddCommand(newCmd, presetsCmd, infoCmd, dedupeCmd, runCmd, listCmd, plotCmd,
		analyzeCmd, phaseCmd, exportCmd, liveCmd, svgCmd, pngCmd, sweepCmd, bifurcationCmd,
		lyapunovCmd, tuneCmd, scenarioCmd, monteCarloCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		ui.Fail(err)
		os.Exit(1)
	}
}

// loadConfig reads --config over the defaults and applies --data.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	if dataDir != "" {
		cfg.RunsDir = dataDir
	}
	return cfg, nil
}

// loadCraft accepts a file path or a preset name.
func loadCraft(arg string) (*craft.Craft, string, error) {
	if _, err := os.Stat(arg); err != nil {
		if c := config.GetPreset(arg); c != nil {
			return c, arg, nil
		}
	}
	c, err := craft.LoadFile(arg)
	if err != nil {
		return nil, "", err
	}
	return c, craftName(arg), nil
}

func craftName(path string) string {
	base := path[strings.LastIndexAny(path, `/\`)+1:]
	return strings.TrimSuffix(base, ".json")
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", p, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no values in %q", s)
	}
	return out, nil
}

// editCraft opens the TUI on a craft file, creating it on save if it does
// not exist yet.
func editCraft(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	km, err := config.LoadKeyMap(keysFile)
	if err != nil {
		return err
	}

	c, path := craft.New(), ""
	if len(args) == 1 {
		path = args[0]
		if _, statErr := os.Stat(path); statErr == nil {
			if c, err = craft.LoadFile(path); err != nil {
				return err
			}
		}
	}

	m, err := viz.NewModel(c, cfg, km, path)
	if err != nil {
		return err
	}
	_, err = viz.Run(m)
	return err
}

func initFiles(cmd *cobra.Command, args []string) error {
	cfgPath, keysPath := "config.yaml", "keys.toml"
	if configFile != "" {
		cfgPath = configFile
	}
	if keysFile != "" {
		keysPath = keysFile
	}
	if err := config.Save(cfgPath, config.DefaultConfig()); err != nil {
		return err
	}
	if err := config.SaveKeyMap(keysPath, config.DefaultKeyMap()); err != nil {
		return err
	}
	fmt.Printf("  %s %s\n", ui.StatusIcon(true), cfgPath)
	fmt.Printf("  %s %s\n", ui.StatusIcon(true), keysPath)
	return nil
}
