package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/craftsim/internal/craft"
	"github.com/san-kum/craftsim/internal/physics"
)

var ErrUnknownParam = errors.New("analysis: unknown parameter")

// Params lists the names accepted by SetParam.
var Params = []string{"gravity", "floor", "restitution", "stiffness", "frequency", "iterations"}

// SetParam writes a named world constant into cfg. "gravity" sets the
// vertical component.
func SetParam(cfg *physics.Config, name string, v float64) error {
	switch name {
	case "gravity":
		cfg.Gravity.Y = v
	case "floor":
		cfg.Floor = v
	case "restitution":
		cfg.Restitution = v
	case "stiffness":
		cfg.SpringStiffness = v
	case "frequency":
		cfg.PistonFrequency = v
	case "iterations":
		cfg.Iterations = int(math.Round(v))
	default:
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownParam, name, strings.Join(Params, ", "))
	}
	return nil
}

// BifurcationPoint holds the distinct peak heights of a node for one
// parameter value.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// BifurcationDiagram runs c once per value of param in parallel, skips
// the first transient frames and records the distinct local maxima of the
// node's vertical position. Peaks closer than 0.1 are merged.
func BifurcationDiagram(
	ctx context.Context,
	c *craft.Craft,
	base physics.Config,
	param string,
	values []float64,
	node int,
	rc physics.RunConfig,
	transient int,
) ([]BifurcationPoint, error) {
	if node < 0 || node >= c.NodeCount() {
		return nil, fmt.Errorf("node %d: %w", node, craft.ErrNodeNotFound)
	}

	jobs := make([]physics.Job, len(values))
	for i, v := range values {
		cfg := base
		if err := SetParam(&cfg, param, v); err != nil {
			return nil, err
		}
		jobs[i] = physics.Job{Name: fmt.Sprintf("%s=%g", param, v), Config: cfg}
	}

	rc.Record = true
	results, err := physics.NewEnsemble(c, 0).Run(ctx, jobs, rc)
	if err != nil {
		return nil, err
	}

	points := make([]BifurcationPoint, len(values))
	for i, res := range results {
		ys := make([]float64, 0, len(res.Frames))
		for k := transient; k < len(res.Frames); k++ {
			ys = append(ys, res.Frames[k][node].Y)
		}
		points[i] = BifurcationPoint{Param: values[i], Values: peaks(ys)}
	}
	return points, nil
}

// peaks returns distinct local maxima quantized to 0.1.
func peaks(ys []float64) []float64 {
	out := make([]float64, 0)
	seen := make(map[int]bool)
	for i := 1; i+1 < len(ys); i++ {
		if ys[i] >= ys[i-1] && ys[i] > ys[i+1] {
			key := int(math.Round(ys[i] * 10))
			if !seen[key] {
				seen[key] = true
				out = append(out, ys[i])
			}
		}
	}
	return out
}

// BifurcationToASCII plots one column per parameter value.
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	foundFirst := false
	for _, p := range data {
		for _, v := range p.Values {
			if !foundFirst {
				minVal, maxVal = v, v
				foundFirst = true
				continue
			}
			minVal, maxVal = min(minVal, v), max(maxVal, v)
		}
	}
	if !foundFirst {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := min(i*width/len(data), width-1)
		for _, v := range p.Values {
			// screen y grows downward, so higher peaks are smaller values
			row := int((v - minVal) / (maxVal - minVal) * float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
