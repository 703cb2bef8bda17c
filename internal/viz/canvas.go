package viz

import (
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"portalphys/internal/physics"
)

// Canvas is a character grid showing the X/Y side view of a world
type Canvas struct {
	width, height int
	cells         [][]rune
	min, max      rl.Vector2
}

func NewCanvas(width, height int) *Canvas {
	cells := make([][]rune, height)
	for i := range cells {
		cells[i] = make([]rune, width)
	}
	return &Canvas{width: width, height: height, cells: cells}
}

// Fit sets the visible region to the level's static quads and current bodies
func (c *Canvas) Fit(world *physics.PhysicsWorld) {
	bounds := physics.EmptyBox3D()
	for i := 0; i < world.Scene.QuadCount(); i++ {
		bounds = bounds.Union(world.Scene.Quad(i).BoundingBox)
	}
	for _, h := range world.Scene.DynamicObjects() {
		bounds = bounds.Union(world.Object(h).BoundingBox)
	}
	if bounds.Min.X > bounds.Max.X {
		bounds = physics.NewBox3DFromCenter(rl.Vector3{}, rl.Vector3{X: 5, Y: 5, Z: 5})
	}
	c.min = rl.Vector2{X: bounds.Min.X - 1, Y: bounds.Min.Y - 1}
	c.max = rl.Vector2{X: bounds.Max.X + 1, Y: bounds.Max.Y + 3}
}

func (c *Canvas) clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = ' '
		}
	}
}

// cell maps world x/y to a grid position; ok is false outside the view
func (c *Canvas) cell(p rl.Vector3) (int, int, bool) {
	spanX, spanY := c.max.X-c.min.X, c.max.Y-c.min.Y
	if spanX <= 0 || spanY <= 0 {
		return 0, 0, false
	}
	x := int((p.X - c.min.X) / spanX * float32(c.width-1))
	y := c.height - 1 - int((p.Y-c.min.Y)/spanY*float32(c.height-1))
	return x, y, x >= 0 && x < c.width && y >= 0 && y < c.height
}

func (c *Canvas) set(p rl.Vector3, r rune) {
	if x, y, ok := c.cell(p); ok {
		c.cells[y][x] = r
	}
}

func (c *Canvas) fillBox(b physics.Box3D, r rune) {
	x0, y1, _ := c.cell(b.Min)
	x1, y0, _ := c.cell(b.Max)
	for y := max(y0, 0); y <= min(y1, c.height-1); y++ {
		for x := max(x0, 0); x <= min(x1, c.width-1); x++ {
			c.cells[y][x] = r
		}
	}
}

// Draw renders quads as '=', portals as 'O', bodies by state and the
// selected body as '@'
func (c *Canvas) Draw(world *physics.PhysicsWorld, selected physics.ObjectHandle) string {
	c.clear()

	for i := 0; i < world.Scene.QuadCount(); i++ {
		quad := world.Scene.Quad(i)
		r := '='
		if quad.Trigger != nil {
			r = ':'
		}
		c.fillBox(quad.BoundingBox, r)
	}

	for i, portal := range world.Scene.Portals.Portals {
		if portal.Open {
			c.set(portal.Transform.Position, []rune{'A', 'B'}[i])
		}
	}

	for _, h := range world.Scene.DynamicObjects() {
		object := world.Object(h)
		r := '#'
		switch {
		case h == selected:
			r = '@'
		case object.Trigger != nil:
			r = '~'
		case object.Body.IsSleeping():
			r = 'z'
		case object.Body.IsKinematic():
			r = 'K'
		}
		c.fillBox(object.BoundingBox, r)
	}

	var sb strings.Builder
	for y, line := range c.cells {
		sb.WriteString(string(line))
		if y < len(c.cells)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
