package render

import rl "github.com/gen2brain/raylib-go/raylib"

var colorByName = map[string]rl.Color{
	"Red":       rl.Red,
	"Blue":      rl.Blue,
	"Green":     rl.Green,
	"Purple":    rl.Purple,
	"Orange":    rl.Orange,
	"Yellow":    rl.Yellow,
	"Pink":      rl.Pink,
	"SkyBlue":   rl.SkyBlue,
	"Lime":      rl.Lime,
	"Magenta":   rl.Magenta,
	"White":     rl.White,
	"LightGray": rl.LightGray,
	"Gray":      rl.Gray,
	"DarkGray":  rl.DarkGray,
	"Black":     rl.Black,
	"Brown":     rl.Brown,
	"Beige":     rl.Beige,
	"Maroon":    rl.Maroon,
	"Gold":      rl.Gold,
}

// LookupColor maps a scenario color name to a raylib color, or fallback when unknown
func LookupColor(name string, fallback rl.Color) rl.Color {
	if c, ok := colorByName[name]; ok {
		return c
	}
	return fallback
}

var (
	portalColors  = [2]rl.Color{rl.NewColor(40, 140, 255, 255), rl.NewColor(255, 140, 20, 255)}
	contactColor  = rl.Red
	sleepingColor = rl.DarkGray
	triggerColor  = rl.NewColor(80, 220, 255, 120)
)
