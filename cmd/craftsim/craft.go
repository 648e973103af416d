package main

import (
	"fmt"

	"github.com/san-kum/craftsim/internal/config"
	"github.com/san-kum/craftsim/internal/craft"
	"github.com/san-kum/craftsim/internal/editor"
	"github.com/san-kum/craftsim/internal/ui"
	"github.com/spf13/cobra"
)

func newCraft(cmd *cobra.Command, args []string) error {
	name := args[0]
	c := config.GetPreset(name)
	if c == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}
	path := outFile
	if path == "" {
		path = name + ".json"
	}
	if err := c.SaveFile(path); err != nil {
		return err
	}
	fmt.Printf("  %s %s %s\n", ui.StatusIcon(true), path,
		ui.Subtle.Sprintf("(%d nodes, %d rods)", c.NodeCount(), c.RodCount()))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	rows := make([][]string, 0, len(config.Presets))
	for _, name := range config.ListPresets() {
		c := config.GetPreset(name)
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%d", c.NodeCount()),
			fmt.Sprintf("%d", c.RodCount()),
			config.Presets[name].Description,
		})
	}
	ui.Table([]string{"NAME", "NODES", "RODS", "DESCRIPTION"}, rows)
	return nil
}

func craftInfo(cmd *cobra.Command, args []string) error {
	c, name, err := loadCraft(args[0])
	if err != nil {
		return err
	}

	ui.Banner(name)
	fixed := 0
	for _, n := range c.Nodes {
		if n.Kind == craft.Fixed {
			fixed++
		}
	}
	ui.KV("nodes", c.NodeCount())
	ui.KV("fixed", fixed)
	ui.KV("rods", c.RodCount())
	if lo, hi, ok := c.Bounds(); ok {
		ui.KV("bounds", fmt.Sprintf("(%.1f, %.1f) - (%.1f, %.1f)", lo.X, lo.Y, hi.X, hi.Y))
	}
	if err := c.Validate(); err != nil {
		fmt.Printf("  %s %s\n", ui.WarnIcon(), ui.Warn.Sprint(err))
	}

	counts := make(map[craft.RodKind]int)
	for _, r := range c.Rods {
		counts[r.Kind]++
	}
	rows := make([][]string, 0)
	for _, k := range craft.RodKinds() {
		if counts[k] > 0 {
			rows = append(rows, []string{k.String(), fmt.Sprintf("%d", counts[k])})
		}
	}
	fmt.Println()
	ui.Table([]string{"KIND", "RODS"}, rows)
	return nil
}

func dedupeCraft(cmd *cobra.Command, args []string) error {
	c, err := craft.LoadFile(args[0])
	if err != nil {
		return err
	}
	nodes, rods := c.NodeCount(), c.RodCount()

	e := editor.New(c)
	e.DeduplicateNodes(threshold)
	e.DeduplicateRods()

	path := outFile
	if path == "" {
		path = args[0]
	}
	if err := e.Craft().SaveFile(path); err != nil {
		return err
	}
	fmt.Printf("  %s merged %d nodes, removed %d rods %s\n", ui.StatusIcon(true),
		nodes-e.Craft().NodeCount(), rods-e.Craft().RodCount(), ui.Subtle.Sprint(path))
	return nil
}
