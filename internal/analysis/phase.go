package analysis

import (
	"strings"

	"github.com/san-kum/craftsim/internal/craft"
)

type Point struct{ X, Y float64 }

// Axis selects a node coordinate.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) of(v craft.Vec2) float64 {
	if a == AxisY {
		return v.Y
	}
	return v.X
}

// PhasePortrait2D pairs a coordinate with its finite-difference velocity.
type PhasePortrait2D struct {
	Node   int
	Axis   Axis
	Points []Point
}

// NewPhasePortrait builds the portrait of node along axis from recorded
// frames dt apart. It returns nil when the node is absent.
func NewPhasePortrait(frames [][]craft.Vec2, node int, axis Axis, dt float64) *PhasePortrait2D {
	if len(frames) < 2 || node < 0 || node >= len(frames[0]) || dt <= 0 {
		return nil
	}

	portrait := &PhasePortrait2D{
		Node:   node,
		Axis:   axis,
		Points: make([]Point, 0, len(frames)-1),
	}
	for i := 1; i < len(frames); i++ {
		x := axis.of(frames[i][node])
		v := (x - axis.of(frames[i-1][node])) / dt
		portrait.Points = append(portrait.Points, Point{X: x, Y: v})
	}
	return portrait
}

// PoincareSection records the phase point of a node each time its other
// coordinate crosses threshold going up.
type PoincareSection struct {
	Points []Point
}

func NewPoincareSection(frames [][]craft.Vec2, node int, cross Axis, threshold float64, record Axis, dt float64) *PoincareSection {
	if len(frames) < 2 || node < 0 || node >= len(frames[0]) || dt <= 0 {
		return nil
	}

	section := &PoincareSection{Points: make([]Point, 0)}
	prev := cross.of(frames[0][node])
	for i := 1; i < len(frames); i++ {
		cur := cross.of(frames[i][node])
		if prev < threshold && cur >= threshold {
			x := record.of(frames[i][node])
			v := (x - record.of(frames[i-1][node])) / dt
			section.Points = append(section.Points, Point{X: x, Y: v})
		}
		prev = cur
	}
	return section
}

// PhasePortraitToASCII plots the portrait on a width x height grid.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil {
		return ""
	}
	return plotPoints(portrait.Points, width, height)
}

func PoincareSectionToASCII(section *PoincareSection, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "No crossings detected"
	}
	return plotPoints(section.Points, width, height)
}

func plotPoints(points []Point, width, height int) string {
	if len(points) == 0 || width <= 1 || height <= 1 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// zero-velocity axis
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
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
