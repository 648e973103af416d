package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/craftsim/internal/automation"
	"github.com/san-kum/craftsim/internal/metrics"
	"github.com/san-kum/craftsim/internal/optim"
	"github.com/san-kum/craftsim/internal/physics"
	"github.com/san-kum/craftsim/internal/storage"
	"github.com/san-kum/craftsim/internal/ui"
	"github.com/spf13/cobra"
)

// objectives are the metrics tune can score a craft with.
var objectives = map[string]func(cfg physics.Config, dt float64) physics.Metric{
	"energy_drift":   func(cfg physics.Config, dt float64) physics.Metric { return metrics.NewEnergyDrift(cfg, dt) },
	"max_strain":     func(physics.Config, float64) physics.Metric { return metrics.NewStrain() },
	"travel":         func(physics.Config, float64) physics.Metric { return metrics.NewTravel() },
	"floor_contacts": func(cfg physics.Config, _ float64) physics.Metric { return metrics.NewFloorContacts(cfg.Floor) },
	"stability":      func(physics.Config, float64) physics.Metric { return metrics.NewStability(stabilityBound) },
}

func objectiveNames() string {
	names := make([]string, 0, len(objectives))
	for name := range objectives {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// parseGrid splits "100,200;0.1,0.5" into one value list per parameter.
func parseGrid(params, grid string) ([]string, [][]float64, error) {
	names := strings.Split(params, ",")
	groups := strings.Split(grid, ";")
	if len(names) != len(groups) {
		return nil, nil, fmt.Errorf("%d params but %d value groups", len(names), len(groups))
	}
	ranges := make([][]float64, len(groups))
	for i, g := range groups {
		names[i] = strings.TrimSpace(names[i])
		vs, err := parseFloats(g)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", names[i], err)
		}
		ranges[i] = vs
	}
	return names, ranges, nil
}

func tune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	newObjective, ok := objectives[tuneMetric]
	if !ok {
		return fmt.Errorf("unknown metric %q (want one of %s)", tuneMetric, objectiveNames())
	}
	names, ranges, err := parseGrid(tuneParams, tuneValues)
	if err != nil {
		return err
	}
	c, name, err := loadCraft(args[0])
	if err != nil {
		return err
	}

	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	g.Limit(parallel)
	if maximize {
		g.Maximize()
	}

	rc := cfg.Run
	rc.Steps, rc.Record = tuneSteps, false

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("tuning %s over %d combinations (%s)...\n", name, len(g.Combinations()), tuneMetric)
	began := time.Now()
	best, all, err := g.Search(ctx, c, cfg.Physics, rc, func(pc physics.Config) physics.Metric {
		return newObjective(pc, rc.Dt)
	})

	rows := make([][]string, 0, len(all))
	for _, t := range all {
		cells := make([]string, 0, len(names)+1)
		for _, n := range names {
			cells = append(cells, fmt.Sprintf("%g", t.Params[n]))
		}
		if t.Err != nil {
			cells = append(cells, "failed")
		} else {
			cells = append(cells, fmt.Sprintf("%.4f", t.Value))
		}
		rows = append(rows, cells)
	}
	fmt.Println()
	ui.Table(append(append([]string{}, names...), strings.ToUpper(tuneMetric)), rows)
	if err != nil {
		return err
	}

	fmt.Println()
	for _, n := range names {
		ui.KV(n, best.Params[n])
	}
	ui.KV(tuneMetric, fmt.Sprintf("%.4f", best.Value))
	fmt.Printf("\n  %s best of %d trials in %v\n", ui.StatusIcon(true), len(all), time.Since(began).Round(time.Millisecond))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(cfg.RunsDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	name := s.Name
	if name == "" {
		name = craftName(args[0])
	}
	ui.Banner(name)
	if s.Description != "" {
		fmt.Printf("  %s\n\n", s.Description)
	}

	results, err := automation.RunScenario(ctx, s, cfg.Physics, cfg.Run, st)
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{
			r.Name,
			r.RunID,
			fmt.Sprintf("%d", r.Result.StepsTaken),
			fmt.Sprintf("%.4f", r.Result.Metrics["energy_drift"]),
			fmt.Sprintf("%.4f", r.Result.Metrics["max_strain"]),
		}
	}
	ui.Table([]string{"STEP", "RUN ID", "STEPS", "DRIFT", "STRAIN"}, rows)
	if err != nil {
		return err
	}
	fmt.Printf("\n  %s %d of %d steps saved to %s\n", ui.StatusIcon(true), len(results), len(s.Steps), cfg.RunsDir)
	return nil
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, name, err := loadCraft(args[0])
	if err != nil {
		return err
	}

	rc := cfg.Run
	rc.Steps = mcSteps
	mc := automation.MonteCarloConfig{
		Perturbation: jitter,
		Trials:       trials,
		Run:          rc,
		Bound:        stabilityBound,
		Seed:         seed,
		Limit:        parallel,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("monte carlo: %s, %d trials, jitter %g...\n", name, trials, jitter)
	began := time.Now()
	results, err := automation.RunMonteCarlo(ctx, c, cfg.Physics, mc)
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Println()
	ui.KV("trials", len(results))
	ui.KV("stable", stable)
	ui.KV("unstable", unstable)
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("  %s trial %d: %v\n", ui.WarnIcon(), r.Trial, r.Err)
		}
	}
	fmt.Printf("\n  %s %.0f%% stable in %v\n", ui.StatusIcon(unstable == 0),
		100*float64(stable)/float64(len(results)), time.Since(began).Round(time.Millisecond))
	return nil
}
