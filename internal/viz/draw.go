package viz

import (
	"github.com/san-kum/craftsim/internal/craft"
	"github.com/san-kum/craftsim/internal/physics"
)

// draw renders the shown craft, the floor, and in edit mode the
// selection and cursor.
func (m *Model) draw() {
	m.canvas.Clear()
	w, h := m.canvas.Dots()

	c := m.ed.Craft()
	t := 0.0
	if m.mode == ModeSimulate && m.solver != nil {
		c = m.solver.Craft()
		t = m.solver.Time()
	}

	_, fy := m.cam.Project(craft.V(0, m.cfg.Physics.Floor), w, h)
	if fy >= 0 && fy < h {
		m.canvas.DrawPattern(0, fy, w-1, fy, 2, 2)
	}

	DrawCraft(m.canvas, m.cam, c)

	if m.mode == ModeSimulate {
		m.drawPistonTargets(c, t)
		return
	}

	for _, p := range m.sel.Points {
		x, y := m.cam.Project(m.sel.Resolve(m.ed, p), w, h)
		m.canvas.DrawCircle(x, y, 3)
	}
	x, y := m.cam.Project(m.cursor, w, h)
	m.canvas.DrawCross(x, y, 2)
}

// DrawCraft draws every rod in a pattern by kind and every node as a
// ring, filled when fixed.
func DrawCraft(cv *Canvas, cam *Camera, c *craft.Craft) {
	w, h := cv.Dots()
	for _, r := range c.Rods {
		x0, y0 := cam.Project(c.Nodes[r.A].Pos, w, h)
		x1, y1 := cam.Project(c.Nodes[r.B].Pos, w, h)
		switch r.Kind {
		case craft.Rope:
			cv.DrawPattern(x0, y0, x1, y1, 1, 1)
		case craft.Spring:
			cv.DrawPattern(x0, y0, x1, y1, 3, 2)
		case craft.Piston:
			cv.DrawLine(x0, y0, x1, y1)
			cv.FillRect((x0+x1)/2, (y0+y1)/2, 1)
		default:
			cv.DrawLine(x0, y0, x1, y1)
		}
	}
	for _, n := range c.Nodes {
		x, y := cam.Project(n.Pos, w, h)
		if n.Kind == craft.Fixed {
			cv.FillRect(x, y, 1)
		} else {
			cv.DrawCircle(x, y, 1)
		}
	}
}

// drawPistonTargets marks where each piston is driving its free end.
func (m *Model) drawPistonTargets(c *craft.Craft, t float64) {
	w, h := m.canvas.Dots()
	for i, r := range c.Rods {
		if r.Kind != craft.Piston {
			continue
		}
		length := c.RodLength(i)
		if length == 0 {
			continue
		}
		a, b := c.Nodes[r.A].Pos, c.Nodes[r.B].Pos
		target := physics.PistonTarget(r, t, m.cfg.Physics)
		p := a.Add(b.Sub(a).Scale(target / length))
		x, y := m.cam.Project(p, w, h)
		m.canvas.Set(x, y)
	}
}
