package viz

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/craftsim/internal/config"
	"github.com/san-kum/craftsim/internal/craft"
	"github.com/san-kum/craftsim/internal/editor"
)

// panStep is how far one move key shifts the cursor or view, in dots.
const panStep = 4

var errNoPath = errors.New("viz: no file to save to")

func (m Model) editAction(a config.Action) (tea.Model, tea.Cmd) {
	switch a {
	case config.ActionSwitchScene:
		return m, m.startSimulation()
	case config.ActionMoveUp:
		m.moveCursor(0, -panStep)
	case config.ActionMoveDown:
		m.moveCursor(0, panStep)
	case config.ActionMoveLeft:
		m.moveCursor(-panStep, 0)
	case config.ActionMoveRight:
		m.moveCursor(panStep, 0)
	case config.ActionZoomIn:
		m.cam.ZoomIn()
	case config.ActionZoomOut:
		m.cam.ZoomOut()
	case config.ActionPick:
		p := m.sel.Pick(m.ed, m.cursor, m.cfg.Editor.PickRadius)
		m.setStatus("picked " + describePoint(p))
	case config.ActionClear:
		m.sel.Clear()
		m.setStatus("selection cleared")
	case config.ActionPlaceNodes:
		m.placeNodes()
	case config.ActionPlaceRods:
		m.placeRods()
	case config.ActionDelete:
		m.deleteSelection()
	case config.ActionCycleRod:
		m.cycleRodKind()
	case config.ActionToggleFixed:
		m.toggleFixed()
	case config.ActionDedupe:
		m.dedupe()
	case config.ActionNewCraft:
		m.hist.Push(m.ed.Craft())
		m.ed.Reset()
		m.sel.Clear()
		m.setStatus("new craft")
	case config.ActionUndo:
		if m.hist.Undo(m.ed) {
			m.sel.Clear()
			m.setStatus("undone")
		} else {
			m.setStatus("nothing to undo")
		}
	case config.ActionRedo:
		if m.hist.Redo(m.ed) {
			m.sel.Clear()
			m.setStatus("redone")
		} else {
			m.setStatus("nothing to redo")
		}
	case config.ActionSave:
		m.save()
	}
	return m, nil
}

// moveCursor shifts the cursor by (dx, dy) dots and recentres the view
// when it leaves the canvas.
func (m *Model) moveCursor(dx, dy int) {
	m.cursor = m.cursor.Add(craft.V(float64(dx), float64(dy)).Scale(1 / m.cam.Zoom))
	w, h := m.canvas.Dots()
	x, y := m.cam.Project(m.cursor, w, h)
	if x < 0 || y < 0 || x >= w || y >= h {
		m.cam.Center = m.cursor
	}
}

func describePoint(p editor.Point) string {
	switch p.Kind {
	case editor.PointNode:
		return fmt.Sprintf("node %d", p.Index)
	case editor.PointRod:
		return fmt.Sprintf("rod %d", p.Index)
	case editor.PointRef:
		return fmt.Sprintf("point #%d again", p.Index+1)
	default:
		return fmt.Sprintf("(%.0f, %.0f)", p.Pos.X, p.Pos.Y)
	}
}

func (m *Model) placeNodes() {
	if m.sel.Len() == 0 {
		m.setStatus("pick points first")
		return
	}
	m.hist.Push(m.ed.Craft())
	added := m.sel.PlaceNodes(m.ed, craft.Joint)
	m.setStatus(fmt.Sprintf("added %d nodes", len(added)))
}

func (m *Model) placeRods() {
	if m.sel.Len() < 2 {
		m.setStatus("pick at least two points")
		return
	}
	m.hist.Push(m.ed.Craft())
	added, err := m.sel.PlaceRods(m.ed, m.rodKind)
	if err != nil {
		m.setError(err)
		return
	}
	m.setStatus(fmt.Sprintf("added %d %s rods", len(added), m.rodKind))
}

// deleteSelection removes the picked nodes and rods. With nothing
// picked, the node or rod under the cursor goes instead.
func (m *Model) deleteSelection() {
	var nodes, rods []int
	for _, p := range m.sel.Points {
		switch p.Kind {
		case editor.PointNode:
			nodes = append(nodes, p.Index)
		case editor.PointRod:
			rods = append(rods, p.Index)
		}
	}
	if len(nodes) == 0 && len(rods) == 0 {
		r := m.cfg.Editor.PickRadius
		if i, ok := m.ed.NodeWithin(m.cursor, r); ok {
			nodes = append(nodes, i)
		} else if i, ok := m.ed.NearestRod(m.cursor, r); ok {
			rods = append(rods, i)
		} else {
			m.setStatus("nothing to delete")
			return
		}
	}

	m.hist.Push(m.ed.Craft())
	m.sel.Clear()
	// Rods go first: removing nodes renumbers rods but removing rods
	// leaves node indices alone.
	if err := m.ed.RemoveRods(rods); err != nil {
		m.setError(err)
		return
	}
	if err := m.ed.RemoveNodes(nodes); err != nil {
		m.setError(err)
		return
	}
	m.setStatus(fmt.Sprintf("deleted %d nodes, %d rods", len(nodes), len(rods)))
}

func nextRodKind(k craft.RodKind) craft.RodKind {
	kinds := craft.RodKinds()
	for i, kind := range kinds {
		if kind == k {
			return kinds[(i+1)%len(kinds)]
		}
	}
	return kinds[0]
}

// cycleRodKind advances the kind of picked rods, or the kind used for
// new rods when none are picked.
func (m *Model) cycleRodKind() {
	var rods []int
	for _, p := range m.sel.Points {
		if p.Kind == editor.PointRod {
			rods = append(rods, p.Index)
		}
	}
	if len(rods) == 0 {
		m.rodKind = nextRodKind(m.rodKind)
		m.setStatus("new rods: " + m.rodKind.String())
		return
	}

	m.hist.Push(m.ed.Craft())
	kind := nextRodKind(m.ed.Craft().Rods[rods[0]].Kind)
	for _, i := range rods {
		if err := m.ed.SetRodKind(i, kind); err != nil {
			m.setError(err)
			return
		}
	}
	m.sel.Clear()
	m.setStatus(fmt.Sprintf("%d rods now %s", len(rods), kind))
}

func (m *Model) toggleFixed() {
	i, ok := m.ed.NodeWithin(m.cursor, m.cfg.Editor.PickRadius)
	if !ok {
		m.setStatus("no node under cursor")
		return
	}
	m.hist.Push(m.ed.Craft())
	kind := craft.Fixed
	if m.ed.Craft().Nodes[i].Kind == craft.Fixed {
		kind = craft.Joint
	}
	if err := m.ed.SetNodeKind(i, kind); err != nil {
		m.setError(err)
		return
	}
	m.setStatus(fmt.Sprintf("node %d %s", i, kind))
}

func (m *Model) dedupe() {
	c := m.ed.Craft()
	nodes, rods := c.NodeCount(), c.RodCount()
	m.hist.Push(c)
	m.sel.Clear()
	m.ed.DeduplicateNodes(m.cfg.Editor.DedupeThreshold)
	m.ed.DeduplicateRods()
	c = m.ed.Craft()
	m.setStatus(fmt.Sprintf("merged %d nodes, %d rods", nodes-c.NodeCount(), rods-c.RodCount()))
}

func (m *Model) save() {
	if m.path == "" {
		m.setError(errNoPath)
		return
	}
	if err := m.ed.Craft().SaveFile(m.path); err != nil {
		m.setError(err)
		return
	}
	m.setStatus("saved " + m.path)
}
