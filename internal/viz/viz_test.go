package viz

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/craftsim/internal/config"
	"github.com/san-kum/craftsim/internal/craft"
)

func TestCanvasSetAndUnset(t *testing.T) {
	c := NewCanvas(4, 2)
	if w, h := c.Dots(); w != 8 || h != 8 {
		t.Fatalf("dots = %dx%d, want 8x8", w, h)
	}

	c.Set(3, 5)
	if !c.IsSet(3, 5) {
		t.Error("dot not set")
	}
	if c.Grid[1][1] == blank {
		t.Error("cell unchanged after Set")
	}

	c.Unset(3, 5)
	if c.IsSet(3, 5) || c.Grid[1][1] != blank {
		t.Error("dot still set after Unset")
	}

	// off-canvas writes are ignored
	c.Set(-1, 0)
	c.Set(8, 0)
	c.Set(0, 8)
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Errorf("off-canvas dots drawn: %q", c.String())
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(3, 2)
	rows := strings.Split(c.String(), "\n")
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for _, r := range rows {
		if len([]rune(r)) != 3 {
			t.Errorf("row %q has %d cells, want 3", r, len([]rune(r)))
		}
	}
}

func TestDrawLineEndpoints(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawLine(1, 2, 30, 17)
	if !c.IsSet(1, 2) || !c.IsSet(30, 17) {
		t.Error("line endpoints not drawn")
	}
}

func TestDrawPatternSkipsDots(t *testing.T) {
	c := NewCanvas(10, 1)
	c.DrawPattern(0, 0, 9, 0, 1, 1)
	for x := 0; x <= 9; x++ {
		if got, want := c.IsSet(x, 0), x%2 == 0; got != want {
			t.Errorf("dot %d set = %v, want %v", x, got, want)
		}
	}
}

func TestDrawCircleRadius(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawCircle(20, 20, 6)
	for _, p := range [][2]int{{26, 20}, {14, 20}, {20, 26}, {20, 14}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("circle misses %v", p)
		}
	}
	if c.IsSet(20, 20) {
		t.Error("circle centre filled")
	}
}

func TestCameraRoundTrip(t *testing.T) {
	cam := &Camera{Center: craft.V(100, 50), Zoom: 0.5}
	x, y := cam.Project(craft.V(100, 50), 160, 96)
	if x != 80 || y != 48 {
		t.Errorf("centre projects to (%d, %d), want (80, 48)", x, y)
	}

	p := cam.Unproject(120, 60, 160, 96)
	x, y = cam.Project(p, 160, 96)
	if x != 120 || y != 60 {
		t.Errorf("round trip gave (%d, %d)", x, y)
	}
}

func TestCameraZoomLimits(t *testing.T) {
	cam := &Camera{Zoom: 1}
	for i := 0; i < 100; i++ {
		cam.ZoomIn()
	}
	if cam.Zoom != maxZoom {
		t.Errorf("zoom = %v, want %v", cam.Zoom, maxZoom)
	}
	for i := 0; i < 100; i++ {
		cam.ZoomOut()
	}
	if cam.Zoom != minZoom {
		t.Errorf("zoom = %v, want %v", cam.Zoom, minZoom)
	}
}

func TestCameraFit(t *testing.T) {
	c := config.GetPreset("bridge")
	cam := NewCamera(160, 96)
	cam.Fit(c, 160, 96)

	lo, hi, _ := c.Bounds()
	for _, p := range []craft.Vec2{lo, hi} {
		x, y := cam.Project(p, 160, 96)
		if x < 0 || x >= 160 || y < 0 || y >= 96 {
			t.Errorf("bound %v projects off canvas to (%d, %d)", p, x, y)
		}
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m
}

func newTestModel(t *testing.T, c *craft.Craft, path string) Model {
	t.Helper()
	m, err := NewModel(c, nil, config.DefaultKeyMap(), path)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func TestPlaceNodesAndUndo(t *testing.T) {
	m := newTestModel(t, nil, "")
	m = press(t, m, "enter", "right", "right", "enter", "n")

	if got := m.Craft().NodeCount(); got != 2 {
		t.Fatalf("nodes = %d, want 2", got)
	}
	if m.sel.Len() != 0 {
		t.Error("selection not cleared after placing")
	}

	m = press(t, m, "u")
	if got := m.Craft().NodeCount(); got != 0 {
		t.Errorf("nodes after undo = %d, want 0", got)
	}
	m = press(t, m, "ctrl+r")
	if got := m.Craft().NodeCount(); got != 2 {
		t.Errorf("nodes after redo = %d, want 2", got)
	}
}

func TestPlaceRodsUsesCurrentKind(t *testing.T) {
	m := newTestModel(t, nil, "")
	m = press(t, m, "k", "enter", "right", "right", "right", "enter", "r")

	c := m.Craft()
	if c.NodeCount() != 2 || c.RodCount() != 1 {
		t.Fatalf("got %d nodes %d rods, want 2 and 1", c.NodeCount(), c.RodCount())
	}
	if c.Rods[0].Kind != craft.Rope {
		t.Errorf("rod kind = %v, want rope", c.Rods[0].Kind)
	}
	if math.Abs(c.Rods[0].RestLength-c.RodLength(0)) > 1e-9 {
		t.Errorf("rest length %v, want current length %v", c.Rods[0].RestLength, c.RodLength(0))
	}
}

func TestDeleteUnderCursor(t *testing.T) {
	m := newTestModel(t, nil, "")
	m = press(t, m, "enter", "right", "right", "enter", "r")
	// cursor sits on the second node
	m = press(t, m, "backspace")

	c := m.Craft()
	if c.NodeCount() != 1 || c.RodCount() != 0 {
		t.Errorf("got %d nodes %d rods, want 1 and 0", c.NodeCount(), c.RodCount())
	}
}

func TestToggleFixed(t *testing.T) {
	m := newTestModel(t, nil, "")
	m = press(t, m, "enter", "n", "f")
	if m.Craft().Nodes[0].Kind != craft.Fixed {
		t.Fatal("node not fixed")
	}
	m = press(t, m, "f")
	if m.Craft().Nodes[0].Kind != craft.Joint {
		t.Error("node still fixed")
	}
}

func TestCycleRodOnPickedRod(t *testing.T) {
	m := newTestModel(t, nil, "")
	m = press(t, m, "enter", "right", "right", "right", "right", "enter", "r")
	// back to the rod midpoint
	m = press(t, m, "left", "left", "enter", "k")

	if got := m.Craft().Rods[0].Kind; got != craft.Rope {
		t.Errorf("rod kind = %v, want rope", got)
	}
	if m.rodKind != craft.Solid {
		t.Errorf("placement kind changed to %v", m.rodKind)
	}
}

func TestNewCraftIsUndoable(t *testing.T) {
	m := newTestModel(t, config.GetPreset("pendulum"), "")
	m = press(t, m, "s")
	if m.Craft().NodeCount() != 0 {
		t.Fatal("craft not cleared")
	}
	m = press(t, m, "u")
	if !m.Craft().Equal(config.GetPreset("pendulum")) {
		t.Error("undo did not restore the preset")
	}
}

func TestSave(t *testing.T) {
	m := newTestModel(t, config.GetPreset("rope_chain"), "")
	m = press(t, m, "ctrl+s")
	if !strings.Contains(m.status, "error") {
		t.Errorf("status = %q, want an error without a path", m.status)
	}

	path := filepath.Join(t.TempDir(), "craft.json")
	m = newTestModel(t, config.GetPreset("rope_chain"), path)
	m = press(t, m, "ctrl+s")

	got, err := craft.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !got.Equal(m.Craft()) {
		t.Error("saved craft differs")
	}
}

func TestSimulateLeavesEditedCraft(t *testing.T) {
	start := config.GetPreset("pendulum")
	m := newTestModel(t, start.Clone(), "")

	next, cmd := m.Update(keyMsg(" "))
	m = next.(Model)
	if m.Mode() != ModeSimulate || cmd == nil {
		t.Fatalf("mode = %v cmd = %v, want simulate with a tick", m.Mode(), cmd)
	}

	for i := 0; i < 10; i++ {
		next, _ = m.Update(TickMsg{Gen: m.gen, Time: time.Now()})
		m = next.(Model)
	}
	want := 10 * config.DefaultDt
	if got := m.Solver().Time(); math.Abs(got-want) > 1e-9 {
		t.Errorf("time = %v, want %v", got, want)
	}
	if len(m.energyHistory) != 10 {
		t.Errorf("energy samples = %d, want 10", len(m.energyHistory))
	}
	if !m.Craft().Equal(start) {
		t.Error("simulation moved the edited craft")
	}

	m = press(t, m, " ")
	if m.Mode() != ModeEdit || m.Solver() != nil {
		t.Error("switch did not return to edit mode")
	}
}

func TestStaleAndPausedTicks(t *testing.T) {
	m := newTestModel(t, config.GetPreset("pendulum"), "")
	m = press(t, m, " ")
	stale := m.gen - 1

	next, cmd := m.Update(TickMsg{Gen: stale})
	m = next.(Model)
	if cmd != nil || m.Solver().Time() != 0 {
		t.Error("stale tick advanced the simulation")
	}

	m = press(t, m, "enter")
	if !m.paused {
		t.Fatal("pick did not pause")
	}
	next, cmd = m.Update(TickMsg{Gen: m.gen})
	m = next.(Model)
	if cmd == nil {
		t.Error("paused simulation stopped ticking")
	}
	if m.Solver().Time() != 0 {
		t.Error("paused simulation advanced")
	}
}

func TestKeyConflictRejected(t *testing.T) {
	km := config.DefaultKeyMap()
	km.Undo = "n"
	_, err := NewModel(nil, nil, km, "")
	if !errors.Is(err, config.ErrKeyConflict) {
		t.Errorf("err = %v, want ErrKeyConflict", err)
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, nil, "")
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("no command on quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key did not quit")
	}
}

func TestViewShowsMode(t *testing.T) {
	m := newTestModel(t, config.GetPreset("bridge"), "")
	if v := m.View(); !strings.Contains(v, "EDIT") {
		t.Error("edit view lacks mode badge")
	}
	m = press(t, m, " ")
	next, _ := m.Update(TickMsg{Gen: m.gen})
	m = next.(Model)
	v := m.View()
	if !strings.Contains(v, "RUNNING") || !strings.Contains(v, "Energy") {
		t.Error("simulate view lacks status or energy")
	}
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(t, nil, "")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	if m.canvas.Width != 120-panelWidth-2 || m.canvas.Height != 36 {
		t.Errorf("canvas = %dx%d", m.canvas.Width, m.canvas.Height)
	}
}
