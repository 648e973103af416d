package config

import (
	"fmt"
	"os"

	"github.com/san-kum/craftsim/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt              = 1.0 / 60
	DefaultSteps           = 600
	DefaultPickRadius      = 20.0
	DefaultDedupeThreshold = 5.0
	DefaultHistoryDepth    = 64
	DefaultRunsDir         = "runs"
	DefaultTheme           = "default"
)

type Config struct {
	Physics physics.Config    `yaml:"physics"`
	Run     physics.RunConfig `yaml:"run"`
	Editor  EditorConfig      `yaml:"editor"`
	RunsDir string            `yaml:"runs_dir"`
	KeyMap  string            `yaml:"keymap,omitempty"`
}

type EditorConfig struct {
	PickRadius      float64 `yaml:"pick_radius"`
	DedupeThreshold float64 `yaml:"dedupe_threshold"`
	HistoryDepth    int     `yaml:"history_depth"`
	Theme           string  `yaml:"theme"`
}

func DefaultConfig() *Config {
	return &Config{
		Physics: physics.DefaultConfig(),
		Run: physics.RunConfig{
			Dt:     DefaultDt,
			Steps:  DefaultSteps,
			Record: true,
		},
		Editor: EditorConfig{
			PickRadius:      DefaultPickRadius,
			DedupeThreshold: DefaultDedupeThreshold,
			HistoryDepth:    DefaultHistoryDepth,
			Theme:           DefaultTheme,
		},
		RunsDir: DefaultRunsDir,
	}
}

// Load reads a YAML file over the defaults, so partial files are fine.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Physics.Validate(); err != nil {
		return err
	}
	if err := c.Run.Validate(); err != nil {
		return err
	}
	if c.Editor.PickRadius <= 0 {
		return fmt.Errorf("%w: pick radius must be positive, got %g", physics.ErrInvalidConfig, c.Editor.PickRadius)
	}
	if c.Editor.DedupeThreshold < 0 {
		return fmt.Errorf("%w: dedupe threshold must be non-negative, got %g", physics.ErrInvalidConfig, c.Editor.DedupeThreshold)
	}
	return nil
}
