package viz

import (
	"math"

	"github.com/san-kum/craftsim/internal/craft"
)

const (
	minZoom  = 0.01
	maxZoom  = 10
	zoomStep = 1.25
)

// Camera maps world coordinates onto canvas dots. Y grows downward in
// both spaces.
type Camera struct {
	Center craft.Vec2
	Zoom   float64
}

// NewCamera centres an 800x600 world, the default export frame, on a
// canvas of w x h dots.
func NewCamera(w, h int) *Camera {
	cam := &Camera{Center: craft.V(400, 300)}
	cam.fitSize(800, 600, w, h)
	return cam
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(maxZoom, c.Zoom*zoomStep) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(minZoom, c.Zoom/zoomStep) }

// Pan moves the view by (dx, dy) dots.
func (c *Camera) Pan(dx, dy int) {
	c.Center = c.Center.Add(craft.V(float64(dx), float64(dy)).Scale(1 / c.Zoom))
}

// Project returns the dot a world point lands on.
func (c *Camera) Project(p craft.Vec2, w, h int) (int, int) {
	x := (p.X-c.Center.X)*c.Zoom + float64(w)/2
	y := (p.Y-c.Center.Y)*c.Zoom + float64(h)/2
	return int(math.Round(x)), int(math.Round(y))
}

// Unproject is the inverse of Project.
func (c *Camera) Unproject(x, y, w, h int) craft.Vec2 {
	return craft.V(
		(float64(x)-float64(w)/2)/c.Zoom+c.Center.X,
		(float64(y)-float64(h)/2)/c.Zoom+c.Center.Y,
	)
}

// Fit frames the craft with some margin. An empty craft keeps the view.
func (c *Camera) Fit(cr *craft.Craft, w, h int) {
	lo, hi, ok := cr.Bounds()
	if !ok {
		return
	}
	c.Center = lo.Add(hi).Scale(0.5)
	c.fitSize(math.Max(hi.X-lo.X, 100), math.Max(hi.Y-lo.Y, 100), w, h)
}

func (c *Camera) fitSize(ww, wh float64, w, h int) {
	z := math.Min(float64(w)/ww, float64(h)/wh) * 0.9
	c.Zoom = math.Max(minZoom, math.Min(maxZoom, z))
}
