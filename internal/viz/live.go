package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/craftsim/internal/config"
	"github.com/san-kum/craftsim/internal/craft"
	"github.com/san-kum/craftsim/internal/editor"
	"github.com/san-kum/craftsim/internal/metrics"
	"github.com/san-kum/craftsim/internal/physics"
)

const (
	canvasWidth     = 80
	canvasHeight    = 24
	panelWidth      = 38
	historyCapacity = 600
	frameRate       = time.Second / 60
)

// Mode is the scene the TUI is showing.
type Mode int

const (
	ModeEdit Mode = iota
	ModeSimulate
)

func (m Mode) String() string {
	if m == ModeSimulate {
		return "SIMULATE"
	}
	return "EDIT"
}

// TickMsg advances a running simulation by one step. Ticks from an
// earlier simulation session are dropped.
type TickMsg struct {
	Gen  int
	Time time.Time
}

// Model is the bubbletea model of the craft editor and simulator.
type Model struct {
	cfg  *config.Config
	km   config.KeyMap
	keys map[string]config.Action
	path string

	ed      *editor.Editor
	sel     *editor.Selection
	hist    *editor.History
	rodKind craft.RodKind
	cursor  craft.Vec2

	mode          Mode
	solver        *physics.Solver
	energy        *metrics.Energy
	strain        *metrics.Strain
	energyHistory []float64
	strainHistory []float64
	steps         int
	paused        bool
	gen           int

	cam           *Camera
	canvas        *Canvas
	width, height int
	status        string
	failed        bool
}

// NewModel opens c in edit mode. path is where the save action writes;
// an empty path disables saving.
func NewModel(c *craft.Craft, cfg *config.Config, km config.KeyMap, path string) (Model, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	keys, err := km.Bindings()
	if err != nil {
		return Model{}, err
	}
	if c == nil {
		c = craft.New()
	}
	SetTheme(cfg.Editor.Theme)

	canvas := NewCanvas(canvasWidth, canvasHeight)
	w, h := canvas.Dots()
	cam := NewCamera(w, h)
	cam.Fit(c, w, h)

	return Model{
		cfg:     cfg,
		km:      km,
		keys:    keys,
		path:    path,
		ed:      editor.New(c),
		sel:     &editor.Selection{},
		hist:    editor.NewHistory(cfg.Editor.HistoryDepth),
		rodKind: craft.Solid,
		cursor:  cam.Center,
		cam:     cam,
		canvas:  canvas,
		width:   canvasWidth + panelWidth,
		height:  canvasHeight,
		status:  "ready",
	}, nil
}

// Init starts the tick loop when the model opens in simulate mode.
func (m Model) Init() tea.Cmd {
	if m.mode == ModeSimulate {
		return m.tick()
	}
	return nil
}

// Mode reports the current scene.
func (m Model) Mode() Mode { return m.mode }

// Craft returns the craft being edited.
func (m Model) Craft() *craft.Craft { return m.ed.Craft() }

// Solver returns the simulation solver, nil in edit mode.
func (m Model) Solver() *physics.Solver { return m.solver }

func (m Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg{Gen: gen, Time: t} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if msg.String() == "tab" {
			SetTheme(NextTheme())
			return m, nil
		}
		action, ok := m.keys[msg.String()]
		if !ok {
			return m, nil
		}
		if action == config.ActionQuit {
			return m, tea.Quit
		}
		if m.mode == ModeSimulate {
			return m.simulateAction(action)
		}
		return m.editAction(action)
	case TickMsg:
		if m.mode != ModeSimulate || msg.Gen != m.gen {
			return m, nil
		}
		if !m.paused && !m.failed {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	cw := w - panelWidth - 2
	ch := h - 4
	if cw < 10 {
		cw = 10
	}
	if ch < 5 {
		ch = 5
	}
	ow, oh := m.canvas.Dots()
	m.canvas = NewCanvas(cw, ch)
	nw, nh := m.canvas.Dots()
	m.cam.Zoom *= math.Min(float64(nw)/float64(ow), float64(nh)/float64(oh))
	m.cam.Zoom = math.Max(minZoom, math.Min(maxZoom, m.cam.Zoom))
}

// startSimulation runs a copy of the edited craft so editing can resume
// from the unsimulated shape.
func (m *Model) startSimulation() tea.Cmd {
	m.mode = ModeSimulate
	m.solver = physics.New(m.ed.Craft().Clone(), m.cfg.Physics)
	m.energy = metrics.NewEnergy(m.cfg.Physics, m.cfg.Run.Dt)
	m.strain = metrics.NewStrain()
	m.energyHistory = m.energyHistory[:0]
	m.strainHistory = m.strainHistory[:0]
	m.steps = 0
	m.paused = false
	m.failed = false
	m.gen++
	m.sel.Clear()
	m.setStatus("simulating")
	return m.tick()
}

func (m *Model) stopSimulation() {
	m.mode = ModeEdit
	m.solver = nil
	m.gen++
	m.setStatus("editing")
}

func (m *Model) step() {
	m.solver.Step(m.cfg.Run.Dt)
	m.steps++

	c := m.solver.Craft()
	for i, n := range c.Nodes {
		if !n.Pos.IsFinite() {
			m.failed = true
			m.setError(fmt.Errorf("%w: node %d at step %d", physics.ErrUnstable, i, m.steps))
			return
		}
	}

	m.energyHistory = pushCapped(m.energyHistory, m.energy.Measure(c))
	m.strain.Reset()
	m.strain.Observe(c, m.solver.Time())
	m.strainHistory = pushCapped(m.strainHistory, m.strain.Value())
}

func pushCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

func (m Model) simulateAction(a config.Action) (tea.Model, tea.Cmd) {
	switch a {
	case config.ActionSwitchScene:
		m.stopSimulation()
	case config.ActionPick:
		m.paused = !m.paused
		if m.paused {
			m.setStatus("paused")
		} else {
			m.setStatus("simulating")
		}
	case config.ActionClear:
		return m, m.startSimulation()
	case config.ActionZoomIn:
		m.cam.ZoomIn()
	case config.ActionZoomOut:
		m.cam.ZoomOut()
	case config.ActionMoveUp:
		m.cam.Pan(0, -panStep)
	case config.ActionMoveDown:
		m.cam.Pan(0, panStep)
	case config.ActionMoveLeft:
		m.cam.Pan(-panStep, 0)
	case config.ActionMoveRight:
		m.cam.Pan(panStep, 0)
	}
	return m, nil
}

func (m *Model) setStatus(s string) { m.status = s }

func (m *Model) setError(err error) { m.status = "error: " + err.Error() }

// View renders the canvas beside the side panel.
func (m Model) View() string {
	m.draw()
	canvasView := CanvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(Title.Render("CRAFTSIM") + "  " + m.modeBadge() + "\n\n")

	if m.mode == ModeSimulate {
		m.simulatePanel(&s)
	} else {
		m.editPanel(&s)
	}

	s.WriteString("\n" + m.statusLine() + "\n\n")
	s.WriteString(m.hints())

	panel := Panel.Width(panelWidth - 4).Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panel)
}

func (m Model) modeBadge() string {
	switch {
	case m.mode == ModeEdit:
		return StatusEditing.Render(m.mode.String())
	case m.failed:
		return StatusError.Render("UNSTABLE")
	case m.paused:
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render("RUNNING")
	}
}

func (m Model) statusLine() string {
	if strings.HasPrefix(m.status, "error") {
		return StatusError.Render(m.status)
	}
	return Subtle.Render(m.status)
}

func (m Model) simulatePanel(s *strings.Builder) {
	c := m.solver.Craft()
	s.WriteString(Row("Time", fmt.Sprintf("%.2fs", m.solver.Time())) + "\n")
	s.WriteString(Row("Steps", fmt.Sprintf("%d", m.steps)) + "\n")
	s.WriteString(Row("Nodes", fmt.Sprintf("%d", c.NodeCount())) + "\n")
	s.WriteString(Row("Rods", fmt.Sprintf("%d", c.RodCount())) + "\n")

	energy := 0.0
	if n := len(m.energyHistory); n > 0 {
		energy = m.energyHistory[n-1]
	}
	s.WriteString(Row("Energy", fmt.Sprintf("%.1f", energy)) + "\n")
	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(panelWidth-14), asciigraph.Caption("energy"))
		s.WriteString(GraphStyle.Render(chart) + "\n")
	}

	strain := 0.0
	if n := len(m.strainHistory); n > 0 {
		strain = m.strainHistory[n-1]
	}
	s.WriteString(Row("Strain", fmt.Sprintf("%.2f%%", strain*100)) + "\n")
	s.WriteString(SparklineChart(m.strainHistory, panelWidth-6) + "\n")
}

func (m Model) editPanel(s *strings.Builder) {
	c := m.ed.Craft()
	s.WriteString(Row("Nodes", fmt.Sprintf("%d", c.NodeCount())) + "\n")
	s.WriteString(Row("Rods", fmt.Sprintf("%d", c.RodCount())) + "\n")
	s.WriteString(Row("Rod kind", m.rodKind.String()) + "\n")
	s.WriteString(Row("Selected", fmt.Sprintf("%d", m.sel.Len())) + "\n")
	s.WriteString(Row("Cursor", fmt.Sprintf("%.0f, %.0f", m.cursor.X, m.cursor.Y)) + "\n")
	s.WriteString(Row("Zoom", fmt.Sprintf("%.2f", m.cam.Zoom)) + "\n")
	undo, redo := "-", "-"
	if m.hist.CanUndo() {
		undo = "yes"
	}
	if m.hist.CanRedo() {
		redo = "yes"
	}
	s.WriteString(Row("Undo/redo", undo+" / "+redo) + "\n")
}

func (m Model) hints() string {
	k := m.km.Key
	if m.mode == ModeSimulate {
		return Hints(k(config.ActionPick), "pause", k(config.ActionClear), "restart") + "\n" +
			Hints(keyLabel(k(config.ActionSwitchScene)), "edit", k(config.ActionQuit), "quit")
	}
	return Hints(k(config.ActionPick), "pick", k(config.ActionPlaceNodes), "nodes", k(config.ActionPlaceRods), "rods") + "\n" +
		Hints(k(config.ActionCycleRod), "kind", k(config.ActionToggleFixed), "fix", k(config.ActionDelete), "del") + "\n" +
		Hints(k(config.ActionUndo), "undo", k(config.ActionSave), "save", keyLabel(k(config.ActionSwitchScene)), "run")
}

func keyLabel(key string) string {
	if key == " " {
		return "space"
	}
	return key
}

// Run opens the TUI on the terminal and returns the final craft.
func Run(m Model) (*craft.Craft, error) {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	return final.(Model).Craft(), nil
}

// RunLive opens c straight into simulate mode.
func RunLive(c *craft.Craft, cfg *config.Config, km config.KeyMap) error {
	m, err := NewModel(c, cfg, km, "")
	if err != nil {
		return err
	}
	m.startSimulation()
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
