package export

import (
	"errors"

	"github.com/san-kum/craftsim/internal/craft"
)

var ErrEmptyCraft = errors.New("export: craft has no nodes")

// Options controls image size and decoration.
type Options struct {
	Width   int
	Height  int
	Padding float64
	// Floor draws the ground line at this world y when ShowFloor is set.
	Floor     float64
	ShowFloor bool
	Labels    bool
	// Trail draws a node trajectory under the craft.
	Trail []craft.Vec2
}

func DefaultOptions() Options {
	return Options{Width: 800, Height: 600, Padding: 40, Floor: 600, ShowFloor: true, Labels: true}
}

var rodColors = map[craft.RodKind]string{
	craft.Solid:  "#e0e0e0",
	craft.Rope:   "#c8a165",
	craft.Spring: "#4fc3f7",
	craft.Piston: "#ef5350",
}

const (
	background = "#0a0a0a"
	jointColor = "#00ff00"
	fixedColor = "#ff9800"
	floorColor = "#555555"
	trailColor = "#7e57c2"
	labelColor = "#bdbdbd"
)

// transform maps world coordinates into an image with uniform scale, so
// crafts keep their proportions.
type transform struct {
	min    craft.Vec2
	scale  float64
	offset craft.Vec2
}

func fit(c *craft.Craft, opts Options) (transform, error) {
	lo, hi, ok := c.Bounds()
	if !ok {
		return transform{}, ErrEmptyCraft
	}
	for _, p := range opts.Trail {
		lo = craft.V(min(lo.X, p.X), min(lo.Y, p.Y))
		hi = craft.V(max(hi.X, p.X), max(hi.Y, p.Y))
	}
	if opts.ShowFloor {
		hi.Y = max(hi.Y, opts.Floor)
	}

	spanX, spanY := hi.X-lo.X, hi.Y-lo.Y
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}
	availX := float64(opts.Width) - 2*opts.Padding
	availY := float64(opts.Height) - 2*opts.Padding
	scale := min(availX/spanX, availY/spanY)

	return transform{
		min:   lo,
		scale: scale,
		offset: craft.V(
			opts.Padding+(availX-spanX*scale)/2,
			opts.Padding+(availY-spanY*scale)/2,
		),
	}, nil
}

func (t transform) apply(p craft.Vec2) (float64, float64) {
	return t.offset.X + (p.X-t.min.X)*t.scale, t.offset.Y + (p.Y-t.min.Y)*t.scale
}
