package main

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/craftsim/internal/config"
	"github.com/san-kum/craftsim/internal/craft"
	"github.com/san-kum/craftsim/internal/export"
	"github.com/san-kum/craftsim/internal/physics"
	"github.com/san-kum/craftsim/internal/ui"
	"github.com/san-kum/craftsim/internal/viz"
	"github.com/spf13/cobra"
)

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	km, err := config.LoadKeyMap(keysFile)
	if err != nil {
		return err
	}
	c, _, err := loadCraft(args[0])
	if err != nil {
		return err
	}
	return viz.RunLive(c, cfg, km)
}

// renderOptions builds export options from the flags. With --trail the
// craft is simulated first and the trajectory of --node is drawn.
func renderOptions(c *craft.Craft) (export.Options, error) {
	cfg, err := loadConfig()
	if err != nil {
		return export.Options{}, err
	}
	opts := export.DefaultOptions()
	opts.Width, opts.Height = width, height
	opts.Labels = labels
	opts.Floor = cfg.Physics.Floor

	if !trail {
		return opts, nil
	}
	if node < 0 || node >= c.NodeCount() {
		return opts, fmt.Errorf("node %d: %w", node, craft.ErrNodeNotFound)
	}
	rc := cfg.Run
	rc.Steps, rc.Record = trailSteps, true
	result, err := physics.NewRunner(physics.New(c.Clone(), cfg.Physics)).Run(context.Background(), rc)
	if err != nil {
		return opts, err
	}
	opts.Trail = result.Node(node)
	return opts, nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	c, name, err := loadCraft(args[0])
	if err != nil {
		return err
	}
	opts, err := renderOptions(c)
	if err != nil {
		return err
	}
	svg, err := export.CraftToSVG(c, opts)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = name + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("  %s %s\n", ui.StatusIcon(true), path)
	return nil
}

func exportPNG(cmd *cobra.Command, args []string) error {
	c, name, err := loadCraft(args[0])
	if err != nil {
		return err
	}
	opts, err := renderOptions(c)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = name + ".png"
	}
	if err := export.SavePNG(path, c, opts); err != nil {
		return err
	}
	fmt.Printf("  %s %s\n", ui.StatusIcon(true), path)
	return nil
}
