package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/san-kum/craftsim/internal/analysis"
	"github.com/san-kum/craftsim/internal/config"
	"github.com/san-kum/craftsim/internal/craft"
	"github.com/san-kum/craftsim/internal/metrics"
	"github.com/san-kum/craftsim/internal/physics"
	"github.com/san-kum/craftsim/internal/storage"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`

	// dir resolves relative craft paths.
	dir string
}

// ScenarioStep is a single run. Craft is a preset name or a craft file
// relative to the scenario. Params are applied with analysis.SetParam.
type ScenarioStep struct {
	Craft  string             `yaml:"craft"`
	Dt     float64            `yaml:"dt"`
	Steps  int                `yaml:"steps"`
	Params map[string]float64 `yaml:"params"`
	SaveAs string             `yaml:"save_as"`
}

// StepResult is what one scenario step produced.
type StepResult struct {
	Name   string
	RunID  string
	Result *physics.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyScenario)
	}
	scenario.dir = filepath.Dir(path)
	return &scenario, nil
}

func (s *Scenario) resolveCraft(name string) (*craft.Craft, error) {
	if c := config.GetPreset(name); c != nil {
		return c, nil
	}
	path := name
	if !filepath.IsAbs(path) && s.dir != "" {
		path = filepath.Join(s.dir, path)
	}
	return craft.LoadFile(path)
}

// RunScenario executes every step in order on top of base and run. A
// zero dt or step count in a step keeps the run default. When st is not
// nil each run is saved to it.
func RunScenario(ctx context.Context, s *Scenario, base physics.Config, run physics.RunConfig, st *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(s.Steps))

	for i, step := range s.Steps {
		c, err := s.resolveCraft(step.Craft)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		cfg := base
		for k, v := range step.Params {
			if err := analysis.SetParam(&cfg, k, v); err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
		}

		rc := run
		rc.Record = true
		if step.Dt > 0 {
			rc.Dt = step.Dt
		}
		if step.Steps > 0 {
			rc.Steps = step.Steps
		}

		name := step.SaveAs
		if name == "" {
			name = fmt.Sprintf("%s_%d", strings.TrimSuffix(filepath.Base(step.Craft), ".json"), i+1)
		}

		start := c.Clone()
		r := physics.NewRunner(physics.New(c, cfg))
		r.AddMetric(metrics.NewEnergyDrift(cfg, rc.Dt))
		r.AddMetric(metrics.NewStrain())
		res, err := r.Run(ctx, rc)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: name, Result: res}
		if st != nil {
			if sr.RunID, err = st.Save(name, start, cfg, rc, res); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// MonteCarloConfig defines a batch of runs from randomly nudged starts.
type MonteCarloConfig struct {
	// Perturbation is the largest offset applied to each joint on
	// either axis.
	Perturbation float64
	Trials       int
	Run          physics.RunConfig
	// Bound is how far from the origin a node may end up and still count
	// as stable. Zero means 1e6.
	Bound float64
	// Seed zero picks a time-based seed.
	Seed  int64
	Limit int
}

// MonteCarloResult holds the outcome of one trial.
type MonteCarloResult struct {
	Trial  int
	Start  *craft.Craft
	Final  []craft.Vec2
	Stable bool
	Err    error
}

// RunMonteCarlo runs c from Trials randomly perturbed starts in parallel.
// Fixed nodes are never moved. A diverging trial is reported as unstable
// rather than failing the batch. c is not modified.
func RunMonteCarlo(ctx context.Context, c *craft.Craft, cfg physics.Config, mc MonteCarloConfig) ([]MonteCarloResult, error) {
	if mc.Trials < 1 {
		return nil, fmt.Errorf("%w: trials must be positive, got %d", physics.ErrInvalidConfig, mc.Trials)
	}
	if err := mc.Run.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bound := mc.Bound
	if bound <= 0 {
		bound = 1e6
	}
	limit := mc.Limit
	if limit < 1 {
		limit = 4
	}

	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	// starts are drawn up front so a seed always yields the same trials
	results := make([]MonteCarloResult, mc.Trials)
	for trial := range results {
		start := c.Clone()
		for i := range start.Nodes {
			n := &start.Nodes[i]
			if n.Kind == craft.Fixed {
				continue
			}
			d := craft.V((rng.Float64()-0.5)*2*mc.Perturbation, (rng.Float64()-0.5)*2*mc.Perturbation)
			n.Pos = n.Pos.Add(d)
			n.Prev = n.Prev.Add(d)
		}
		results[trial] = MonteCarloResult{Trial: trial, Start: start}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range results {
		i := i
		g.Go(func() error {
			rc := mc.Run
			rc.Record = false
			s := physics.New(results[i].Start.Clone(), cfg)
			_, err := physics.NewRunner(s).Run(gctx, rc)
			if err != nil && gctx.Err() != nil {
				return err
			}

			final := make([]craft.Vec2, s.Craft().NodeCount())
			stable := err == nil
			for k, n := range s.Craft().Nodes {
				final[k] = n.Pos
				if math.Abs(n.Pos.X) > bound || math.Abs(n.Pos.Y) > bound {
					stable = false
				}
			}
			results[i].Final = final
			results[i].Stable = stable
			results[i].Err = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
