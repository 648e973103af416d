package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/san-kum/craftsim/internal/analysis"
	"github.com/san-kum/craftsim/internal/craft"
	"github.com/san-kum/craftsim/internal/metrics"
	"github.com/san-kum/craftsim/internal/physics"
	"github.com/san-kum/craftsim/internal/ui"
	"github.com/spf13/cobra"
)

// sweepGravity runs the craft once per gravity value in parallel and
// prints one row of metrics per run.
func sweepGravity(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gs, err := parseFloats(gravities)
	if err != nil {
		return err
	}
	c, name, err := loadCraft(args[0])
	if err != nil {
		return err
	}

	rc := cfg.Run
	rc.Steps, rc.Record = sweepSteps, false

	jobs := make([]physics.Job, len(gs))
	for i, g := range gs {
		jc := cfg.Physics
		if err := analysis.SetParam(&jc, "gravity", g); err != nil {
			return err
		}
		jobs[i] = physics.Job{
			Name:   fmt.Sprintf("g=%g", g),
			Config: jc,
			Metrics: []physics.Metric{
				metrics.NewEnergyDrift(jc, rc.Dt),
				metrics.NewStrain(),
				metrics.NewFloorContacts(jc.Floor),
				metrics.NewTravel(),
			},
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %s over %d gravities (%d steps each)...\n", name, len(gs), rc.Steps)
	began := time.Now()
	results, err := physics.NewEnsemble(c, parallel).Run(ctx, jobs, rc)
	if err != nil {
		return err
	}

	rows := make([][]string, len(results))
	for i, res := range results {
		rows[i] = []string{
			jobs[i].Name,
			fmt.Sprintf("%d", res.StepsTaken),
			fmt.Sprintf("%.4f", res.Metrics["energy_drift"]),
			fmt.Sprintf("%.4f", res.Metrics["max_strain"]),
			fmt.Sprintf("%.0f", res.Metrics["floor_contacts"]),
			fmt.Sprintf("%.2f", res.Metrics["travel"]),
		}
	}
	fmt.Println()
	ui.Table([]string{"RUN", "STEPS", "DRIFT", "STRAIN", "CONTACTS", "TRAVEL"}, rows)
	fmt.Printf("\n  %s %d runs in %v\n", ui.StatusIcon(true), len(results), time.Since(began).Round(time.Millisecond))
	return nil
}

func bifurcation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	vs, err := parseFloats(values)
	if err != nil {
		return err
	}
	c, name, err := loadCraft(args[0])
	if err != nil {
		return err
	}

	rc := cfg.Run
	rc.Steps = bifSteps
	points, err := analysis.BifurcationDiagram(context.Background(), c, cfg.Physics, param, vs, node, rc, transient)
	if err != nil {
		return err
	}

	fmt.Printf("bifurcation: %s, node %d over %s\n\n", name, node, param)
	fmt.Println(analysis.BifurcationToASCII(points, 70, 20))
	fmt.Println()
	for _, p := range points {
		ui.KV(fmt.Sprintf("%s=%g", param, p.Param), fmt.Sprintf("%d peaks", len(p.Values)))
	}
	return nil
}

func lyapunov(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, name, err := loadCraft(args[0])
	if err != nil {
		return err
	}
	if node < 0 || node >= c.NodeCount() {
		return fmt.Errorf("node %d: %w", node, craft.ErrNodeNotFound)
	}

	l, err := analysis.LyapunovExponent(c, cfg.Physics, node, 1e-3, cfg.Run.Dt, lyapSteps)
	if err != nil {
		return err
	}

	ui.Banner(name)
	ui.KV("node", node)
	ui.KV("steps", lyapSteps)
	ui.KV("exponent", fmt.Sprintf("%.4f /s", l))
	if l > 0.01 {
		fmt.Printf("  %s %s\n", ui.WarnIcon(), ui.Warn.Sprint("nearby starts diverge: chaotic"))
	} else {
		fmt.Printf("  %s %s\n", ui.StatusIcon(true), ui.Good.Sprint("regular motion"))
	}
	return nil
}
