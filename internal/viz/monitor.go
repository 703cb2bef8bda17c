package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"portalphys/internal/physics"
	"portalphys/internal/scenario"
)

const (
	canvasWidth     = 72
	canvasHeight    = 22
	historyCapacity = 300
)

type TickMsg time.Time

// Monitor is a bubbletea model that steps a scenario live and shows a side
// view, step statistics and the selected body's height
type Monitor struct {
	file    *scenario.File
	cfg     physics.Config
	inst    *scenario.Instance
	canvas  *Canvas
	running bool
	// steps per frame
	speed    int
	selected int
	heights  []float64
	speeds   []float64
	stats    physics.StepStats
	err      error
}

// NewMonitor builds the scenario with cfg; the monitor starts running
func NewMonitor(file *scenario.File, cfg physics.Config) (*Monitor, error) {
	m := &Monitor{file: file, cfg: cfg, running: true, speed: 1}
	if err := m.reset(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Monitor) reset() error {
	inst, err := m.file.Build(m.cfg)
	if err != nil {
		return err
	}
	m.inst = inst
	m.canvas = NewCanvas(canvasWidth, canvasHeight)
	m.canvas.Fit(inst.World)
	m.heights = m.heights[:0]
	m.speeds = m.speeds[:0]
	m.stats = physics.StepStats{}
	if m.selected >= len(inst.Names) {
		m.selected = 0
	}
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Monitor) Init() tea.Cmd {
	return tick()
}

func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s", "right":
			m.Step()
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "tab":
			if len(m.inst.Names) > 0 {
				m.selected = (m.selected + 1) % len(m.inst.Names)
				m.heights = m.heights[:0]
				m.speeds = m.speeds[:0]
			}
		case "+", "=":
			m.speed = min(m.speed*2, 16)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		}
	case TickMsg:
		if m.running {
			for i := 0; i < m.speed; i++ {
				m.Step()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Monitor) selectedName() string {
	if len(m.inst.Names) == 0 {
		return ""
	}
	return m.inst.Names[m.selected]
}

// Step advances the world one tick and records the selected body
func (m *Monitor) Step() {
	world := m.inst.World
	world.Step()
	m.stats = world.Stats()

	if body := m.inst.Body(m.selectedName()); body != nil {
		m.heights = appendCapped(m.heights, float64(body.Transform.Position.Y))
		m.speeds = appendCapped(m.speeds, float64(length(body.Velocity.X, body.Velocity.Y, body.Velocity.Z)))
	}
}

func appendCapped(series []float64, v float64) []float64 {
	if len(series) >= historyCapacity {
		copy(series, series[1:])
		series = series[:len(series)-1]
	}
	return append(series, v)
}

func (m *Monitor) View() string {
	name := m.selectedName()
	selected := m.inst.Bodies[name]

	view := canvasStyle.Render(m.canvas.Draw(m.inst.World, selected))
	side := statsStyle.Render(m.statsView(name))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("portalsim: %s", m.file.Name)))
	sb.WriteByte('\n')
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, view, side))

	if len(m.heights) > 1 {
		graph := asciigraph.Plot(m.heights,
			asciigraph.Height(8),
			asciigraph.Width(canvasWidth),
			asciigraph.Caption(fmt.Sprintf("%s height", name)))
		sb.WriteByte('\n')
		sb.WriteString(graphStyle.Render(graph))
	}

	sb.WriteByte('\n')
	sb.WriteString(helpStyle.Render("space pause  s step  tab body  +/- speed  r reset  q quit"))
	return sb.String()
}

func (m *Monitor) statsView(name string) string {
	state := "running"
	if !m.running {
		state = "paused"
	}

	lines := []string{
		row("tick", fmt.Sprintf("%d", m.stats.Tick)),
		row("state", fmt.Sprintf("%s x%d", state, m.speed)),
		row("awake", fmt.Sprintf("%d", m.stats.Awake)),
		row("sleeping", fmt.Sprintf("%d", m.stats.Sleeping)),
		row("manifolds", fmt.Sprintf("%d", m.stats.ActiveManifolds)),
		row("contacts", fmt.Sprintf("%d", m.stats.Contacts)),
		row("dropped", fmt.Sprintf("%d", m.stats.DroppedManifolds)),
		row("constraints", fmt.Sprintf("%d", m.stats.ActiveConstraints)),
		row("swept", fmt.Sprintf("%d", m.stats.SweptTests)),
		row("teleports", fmt.Sprintf("%d", m.stats.Teleports)),
		"",
		activeStyle.Render(name),
	}

	if body := m.inst.Body(name); body != nil {
		p, v := body.Transform.Position, body.Velocity
		lines = append(lines,
			row("position", fmt.Sprintf("%.2f %.2f %.2f", p.X, p.Y, p.Z)),
			row("velocity", fmt.Sprintf("%.2f %.2f %.2f", v.X, v.Y, v.Z)),
			row("room", roomName(body.CurrentRoom)),
			row("flags", fmt.Sprintf("%#x", uint32(body.Flags))),
		)
	}
	if m.err != nil {
		lines = append(lines, "", failStyle.Render(m.err.Error()))
	}
	return strings.Join(lines, "\n")
}

func roomName(room int) string {
	if room == physics.NoRoom {
		return "-"
	}
	return fmt.Sprintf("%d", room)
}
