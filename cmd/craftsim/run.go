package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/craftsim/internal/analysis"
	"github.com/san-kum/craftsim/internal/metrics"
	"github.com/san-kum/craftsim/internal/physics"
	"github.com/san-kum/craftsim/internal/storage"
	"github.com/san-kum/craftsim/internal/ui"
	"github.com/spf13/cobra"
)

// stabilityBound is how far from the origin a node may wander before a
// frame counts as unstable.
const stabilityBound = 1e5

func parseAxis(s string) (analysis.Axis, error) {
	switch s {
	case "x", "X":
		return analysis.AxisX, nil
	case "y", "Y":
		return analysis.AxisY, nil
	}
	return 0, fmt.Errorf("unknown axis %q (want x or y)", s)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// flags given on the command line win over the config file
	rc := cfg.Run
	if cmd.Flags().Changed("dt") || configFile == "" {
		rc.Dt = dt
	}
	if cmd.Flags().Changed("steps") || configFile == "" {
		rc.Steps = steps
	}
	rc.Record = true

	c, name, err := loadCraft(args[0])
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	start := c.Clone()

	st := storage.New(cfg.RunsDir)
	if err := st.Init(); err != nil {
		return err
	}

	runner := physics.NewRunner(physics.New(c, cfg.Physics))
	runner.AddMetric(metrics.NewEnergy(cfg.Physics, rc.Dt))
	runner.AddMetric(metrics.NewEnergyDrift(cfg.Physics, rc.Dt))
	runner.AddMetric(metrics.NewStrain())
	runner.AddMetric(metrics.NewStability(stabilityBound))
	runner.AddMetric(metrics.NewFloorContacts(cfg.Physics.Floor))
	runner.AddMetric(metrics.NewTravel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s for %d steps...\n", name, rc.Steps)
	began := time.Now()
	result, runErr := runner.Run(ctx, rc)
	elapsed := time.Since(began)

	var simErr *physics.SimulationError
	switch {
	case runErr == nil:
	case errors.As(runErr, &simErr), errors.Is(runErr, context.Canceled):
		// keep what was simulated before the failure
		fmt.Printf("  %s %s\n", ui.WarnIcon(), ui.Warn.Sprint(runErr))
	default:
		return runErr
	}
	if result == nil {
		return runErr
	}

	runID, err := st.Save(name, start, cfg.Physics, rc, result)
	if err != nil {
		return err
	}

	if jsonOut != "" {
		f, err := os.Create(jsonOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := storage.ExportJSON(f, name, cfg.Physics, rc, result); err != nil {
			return err
		}
	}

	fmt.Printf("  %s completed in %v\n", ui.StatusIcon(runErr == nil), elapsed.Round(time.Millisecond))
	ui.KV("run id", runID)
	ui.KV("steps", result.StepsTaken)
	fmt.Println("\nmetrics:")
	for _, m := range []string{"energy", "energy_drift", "max_strain", "stability", "floor_contacts", "travel"} {
		if v, ok := result.Metrics[m]; ok {
			ui.KV(m, fmt.Sprintf("%.6f", v))
		}
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runs, err := storage.New(cfg.RunsDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.Craft,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d/%d", run.StepsTaken, run.Steps),
			fmt.Sprintf("%.4fs", run.Dt),
			fmt.Sprintf("%d/%d", run.Nodes, run.Rods),
		})
	}
	ui.Table([]string{"ID", "CRAFT", "TIME", "STEPS", "DT", "NODES/RODS"}, rows)
	return nil
}

func loadNodeTrace(runID string) (*storage.RunMetadata, []float64, []float64, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	st := storage.New(cfg.RunsDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	frames, _, err := st.LoadTrace(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, nil, fmt.Errorf("no data to plot")
	}
	if node < 0 || node >= len(frames[0]) {
		return nil, nil, nil, fmt.Errorf("node %d out of range (run has %d nodes)", node, len(frames[0]))
	}
	xs, ys := storage.NodeSeries(frames, node)
	return meta, xs, ys, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, xs, ys, err := loadNodeTrace(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("craft: %s\n", meta.Craft)
	fmt.Printf("samples: %d\n\n", len(xs))

	for _, series := range []struct {
		data    []float64
		caption string
	}{
		{xs, fmt.Sprintf("node %d x", node)},
		{ys, fmt.Sprintf("node %d y", node)},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	ax, err := parseAxis(axis)
	if err != nil {
		return err
	}
	meta, xs, ys, err := loadNodeTrace(args[0])
	if err != nil {
		return err
	}
	data := xs
	if ax == analysis.AxisY {
		data = ys
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("craft: %s, node %d %s\n\n", meta.Craft, node, axis)

	ps := analysis.PowerSpectrum(data)
	if len(ps) < 4 {
		return fmt.Errorf("not enough samples")
	}
	graph := asciigraph.Plot(ps[:len(ps)/4],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (node %d %s)", node, axis)),
	)
	fmt.Println(graph)
	fmt.Println()

	if f, ok := analysis.DominantFrequency(data, meta.Dt); ok {
		ui.KV("dominant", fmt.Sprintf("%.4f Hz", f))
		ui.KV("period", fmt.Sprintf("%.4f s", 1/f))
	} else {
		fmt.Printf("  %s no oscillation found\n", ui.WarnIcon())
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	ax, err := parseAxis(axis)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st := storage.New(cfg.RunsDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, _, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}

	portrait := analysis.NewPhasePortrait(frames, node, ax, meta.Dt)
	if portrait == nil {
		return fmt.Errorf("node %d has no trajectory in run %s", node, meta.ID)
	}
	fmt.Printf("phase portrait: %s, node %d (%s vs d%s/dt)\n\n", meta.ID, node, axis, axis)
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 70, 24))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	meta, err := storage.New(cfg.RunsDir).Load(args[0])
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
