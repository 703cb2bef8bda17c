package viz

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"portalphys/internal/physics"
	"portalphys/internal/scenario"
)

func builtin(t *testing.T, name string) *scenario.File {
	t.Helper()
	file, err := scenario.Builtin(name)
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	return file
}

func TestCanvasDrawsFloorAndSelection(t *testing.T) {
	inst, err := builtin(t, "box_on_floor").Build(physics.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	canvas := NewCanvas(40, 12)
	canvas.Fit(inst.World)
	out := canvas.Draw(inst.World, inst.Bodies["box"])

	if !strings.Contains(out, "=") {
		t.Error("expected the floor to be drawn")
	}
	if !strings.Contains(out, "@") {
		t.Error("expected the selected box to be drawn")
	}
	if lines := strings.Split(out, "\n"); len(lines) != 12 {
		t.Errorf("expected 12 lines, got %d", len(lines))
	}
}

func TestMonitorKeys(t *testing.T) {
	m, err := NewMonitor(builtin(t, "head_on"), physics.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if m.running {
		t.Error("expected space to pause")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	if m.stats.Tick != 1 {
		t.Errorf("expected one manual step, got tick %d", m.stats.Tick)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.selectedName() != "right" {
		t.Errorf("expected tab to select the next body, got %s", m.selectedName())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if m.inst.World.Tick() != 0 {
		t.Errorf("expected reset to rebuild the world, got tick %d", m.inst.World.Tick())
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}); cmd == nil {
		t.Error("expected q to quit")
	}
}

func TestMonitorViewShowsStats(t *testing.T) {
	m, err := NewMonitor(builtin(t, "box_on_floor"), physics.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		m.Step()
	}

	view := m.View()
	for _, want := range []string{"box_on_floor", "manifolds", "box height"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestSummaryAndPlot(t *testing.T) {
	inst, err := builtin(t, "box_on_floor").Build(physics.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	result, err := scenario.NewRunner(5).Run(context.Background(), inst, 0)
	if err != nil {
		t.Fatal(err)
	}

	if out := Summary(result); !strings.Contains(out, "PASS") {
		t.Errorf("expected a passing summary, got\n%s", out)
	}
	if out := Plot(result, "box"); !strings.Contains(out, "height") {
		t.Errorf("expected a captioned plot, got\n%s", out)
	}
	if out := Plot(result, "missing"); out != "" {
		t.Errorf("expected no plot for an unknown body, got %q", out)
	}
}
