package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"portalphys/internal/scenario"
)

func length(x, y, z float32) float32 {
	return float32(math.Sqrt(float64(x*x + y*y + z*z)))
}

// Summary renders the outcome of a scenario run
func Summary(result *scenario.Result) string {
	var sb strings.Builder

	status := passStyle.Render("PASS")
	if !result.Passed() {
		status = failStyle.Render("FAIL")
	}
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%s  %s", result.Name, status)))
	sb.WriteByte('\n')

	lines := []string{
		row("ticks", fmt.Sprintf("%d", result.Ticks)),
		row("teleports", fmt.Sprintf("%d", result.Teleports)),
		row("swept tests", fmt.Sprintf("%d", result.SweptTests)),
		row("peak manifolds", fmt.Sprintf("%d", result.MaxManifolds)),
		row("peak contacts", fmt.Sprintf("%d", result.ContactPeak)),
		row("dropped", fmt.Sprintf("%d", result.MaxDropped)),
		row("sleeping", fmt.Sprintf("%d", result.SleepingAtEnd)),
	}
	sb.WriteString(strings.Join(lines, "\n"))

	for _, err := range result.Failures {
		sb.WriteByte('\n')
		sb.WriteString(failStyle.Render("  " + err.Error()))
	}
	return sb.String()
}

// Plot draws the height and speed of one body over the run
func Plot(result *scenario.Result, body string) string {
	heights := result.Series(body, func(s scenario.Sample) float32 { return s.Position.Y })
	speeds := result.Series(body, func(s scenario.Sample) float32 { return s.Speed })
	if len(heights) < 2 {
		return ""
	}

	graph := asciigraph.PlotMany([][]float64{heights, speeds},
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Yellow),
		asciigraph.Caption(fmt.Sprintf("%s: height (green) and speed (yellow)", body)))
	return graphStyle.Render(graph)
}
