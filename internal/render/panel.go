package render

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"portalphys/internal/physics"
)

var (
	colorBgDark        = rl.NewColor(24, 24, 32, 235)
	colorBgElement     = rl.NewColor(38, 38, 50, 255)
	colorBgHover       = rl.NewColor(52, 52, 68, 255)
	colorAccent        = rl.NewColor(99, 102, 241, 255)
	colorTextPrimary   = rl.NewColor(240, 240, 245, 255)
	colorTextSecondary = rl.NewColor(160, 160, 175, 255)
)

const (
	panelWidth   = 220
	panelPadding = 10
	rowHeight    = 24
)

// ApplyStyle sets the raygui theme used by the control panel
func ApplyStyle() {
	gui.SetStyle(gui.DEFAULT, gui.BACKGROUND_COLOR, gui.NewColorPropertyValue(colorBgDark))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_NORMAL, gui.NewColorPropertyValue(colorBgElement))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_FOCUSED, gui.NewColorPropertyValue(colorBgHover))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_PRESSED, gui.NewColorPropertyValue(colorAccent))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_NORMAL, gui.NewColorPropertyValue(colorTextSecondary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_FOCUSED, gui.NewColorPropertyValue(colorTextPrimary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_PRESSED, gui.NewColorPropertyValue(colorTextPrimary))

	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_NORMAL, gui.NewColorPropertyValue(rl.NewColor(50, 50, 65, 255)))
	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_FOCUSED, gui.NewColorPropertyValue(colorAccent))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, 14)
}

// Actions are the one-shot requests made through the panel this frame
type Actions struct {
	Step         bool
	Reset        bool
	SpawnBox     bool
	TogglePortal bool
}

// Panel is the simulation control overlay
type Panel struct {
	Paused bool
	// ticks simulated per rendered frame
	Speed float32
}

func NewPanel() *Panel {
	return &Panel{Speed: 1}
}

// Draw renders the panel and returns what the user asked for. The renderer's
// debug options are edited in place.
func (p *Panel) Draw(opts *Options, world *physics.PhysicsWorld, title string) Actions {
	var act Actions
	x := float32(rl.GetScreenWidth() - panelWidth - panelPadding)
	y := float32(panelPadding)
	height := float32(12*rowHeight + 2*panelPadding)
	rl.DrawRectangleRounded(rl.Rectangle{X: x, Y: y, Width: panelWidth, Height: height}, 0.05, 8, colorBgDark)

	x += panelPadding
	y += panelPadding
	w := float32(panelWidth - 2*panelPadding)
	next := func() rl.Rectangle {
		r := rl.Rectangle{X: x, Y: y, Width: w, Height: rowHeight - 4}
		y += rowHeight
		return r
	}

	rl.DrawText(title, int32(x), int32(y), 16, colorTextPrimary)
	y += rowHeight

	label := "Pause"
	if p.Paused {
		label = "Resume"
	}
	if gui.Button(next(), label) {
		p.Paused = !p.Paused
	}
	act.Step = gui.Button(next(), "Step")
	act.Reset = gui.Button(next(), "Reset")
	act.SpawnBox = gui.Button(next(), "Spawn box")

	portalLabel := "Close portals"
	if !world.Scene.IsPortalOpen() {
		portalLabel = "Open portals"
	}
	act.TogglePortal = gui.Button(next(), portalLabel)

	box := next()
	box.Width = box.Height
	opts.ShowContacts = gui.CheckBox(box, "Contacts", opts.ShowContacts)
	box = next()
	box.Width = box.Height
	opts.ShowBounds = gui.CheckBox(box, "Bounds", opts.ShowBounds)

	slider := next()
	slider.Width -= 40
	p.Speed = gui.Slider(slider, "", fmt.Sprintf("%.0fx", p.Speed), p.Speed, 1, 8)
	p.Speed = float32(int(p.Speed + 0.5))

	stats := world.Stats()
	lines := []string{
		fmt.Sprintf("tick %d", stats.Tick),
		fmt.Sprintf("manifolds %d  contacts %d", stats.ActiveManifolds, stats.Contacts),
		fmt.Sprintf("awake %d  asleep %d", stats.Awake, stats.Sleeping),
	}
	for _, line := range lines {
		rl.DrawText(line, int32(x), int32(y), 12, colorTextSecondary)
		y += rowHeight - 6
	}
	return act
}
