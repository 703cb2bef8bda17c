package render

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"portalphys/internal/physics"
	"portalphys/internal/scenario"
)

const portalSegments = 24

// Options selects the debug layers drawn over the scene
type Options struct {
	ShowContacts bool
	ShowBounds   bool
	Selected     physics.ObjectHandle
}

// Renderer draws a scenario instance with raylib primitives
type Renderer struct {
	Options Options
	// objects skipped by frustum culling on the last draw
	Culled int
}

func NewRenderer(opts Options) *Renderer {
	return &Renderer{Options: opts}
}

// Draw renders the level, bodies and portals. Must be called between
// BeginMode3D and EndMode3D.
func (r *Renderer) Draw(inst *scenario.Instance, camera rl.Camera3D, aspect float32) {
	world := inst.World
	frustum := ExtractFrustum(camera, aspect)
	r.Culled = 0

	rl.DrawGrid(40, 1.0)

	for i := 0; i < world.Scene.QuadCount(); i++ {
		object := world.Scene.Quad(i)
		quad, ok := object.Collider.Shape.(*physics.Quad)
		if !ok {
			continue
		}
		color := rl.LightGray
		if i < len(inst.QuadColors) {
			color = LookupColor(inst.QuadColors[i], color)
		}
		if object.Trigger != nil {
			color = triggerColor
		}
		drawQuad(quad, color)
	}

	for _, h := range world.Scene.DynamicObjects() {
		object := world.Object(h)
		if !frustum.ContainsBox(object.BoundingBox) {
			r.Culled++
			continue
		}
		color := LookupColor(inst.Colors[h], rl.Orange)
		switch {
		case h == r.Options.Selected:
			color = rl.Yellow
		case object.Trigger != nil:
			color = triggerColor
		case object.Body.IsSleeping():
			color = sleepingColor
		}
		drawShape(object.Collider.Shape, object.Body.Transform, color)

		if r.Options.ShowBounds {
			drawBox3D(object.BoundingBox, rl.Green)
		}
		if r.Options.ShowContacts {
			world.ForEachContact(h, func(c physics.ContactInfo) {
				rl.DrawSphere(c.Point, 0.04, contactColor)
				rl.DrawLine3D(c.Point, rl.Vector3Add(c.Point, rl.Vector3Scale(c.Normal, 0.3)), contactColor)
			})
		}
	}

	for i, portal := range world.Scene.Portals.Portals {
		if portal.Open {
			drawPortal(portal.Transform, portalColors[i])
		}
	}
}

func drawQuad(q *physics.Quad, color rl.Color) {
	a := rl.Vector3Scale(q.EdgeA, q.EdgeALength)
	b := rl.Vector3Scale(q.EdgeB, q.EdgeBLength)
	p0 := q.Corner
	p1 := rl.Vector3Add(p0, a)
	p2 := rl.Vector3Add(p1, b)
	p3 := rl.Vector3Add(p0, b)

	fill := color
	fill.A /= 2
	// both windings so the quad shows from either side
	rl.DrawTriangle3D(p0, p1, p2, fill)
	rl.DrawTriangle3D(p0, p2, p3, fill)
	rl.DrawTriangle3D(p0, p2, p1, fill)
	rl.DrawTriangle3D(p0, p3, p2, fill)

	rl.DrawLine3D(p0, p1, color)
	rl.DrawLine3D(p1, p2, color)
	rl.DrawLine3D(p2, p3, color)
	rl.DrawLine3D(p3, p0, color)
}

// pushTransform applies a body pose to the raylib matrix stack
func pushTransform(t physics.Transform) {
	rl.PushMatrix()
	rl.Translatef(t.Position.X, t.Position.Y, t.Position.Z)
	q := rl.QuaternionNormalize(t.Rotation)
	s := float32(math.Sqrt(float64(1 - q.W*q.W)))
	if s > 1e-4 {
		angle := 2 * float32(math.Acos(float64(max(min(q.W, 1), -1))))
		rl.Rotatef(angle*rl.Rad2deg, q.X/s, q.Y/s, q.Z/s)
	}
}

func drawShape(shape physics.Shape, t physics.Transform, color rl.Color) {
	pushTransform(t)
	defer rl.PopMatrix()
	drawLocalShape(shape, color)
}

func drawLocalShape(shape physics.Shape, color rl.Color) {
	switch s := shape.(type) {
	case *physics.Box:
		size := rl.Vector3Scale(s.HalfExtents, 2)
		rl.DrawCubeV(rl.Vector3{}, size, color)
		rl.DrawCubeWiresV(rl.Vector3{}, size, rl.Black)
	case *physics.Sphere:
		rl.DrawSphere(rl.Vector3{}, s.Radius, color)
		rl.DrawSphereWires(rl.Vector3{}, s.Radius, 8, 8, rl.Black)
	case *physics.Capsule:
		top := rl.Vector3{Y: s.InnerHalfHeight}
		bottom := rl.Vector3{Y: -s.InnerHalfHeight}
		rl.DrawCapsule(bottom, top, s.Radius, 8, 8, color)
		rl.DrawCapsuleWires(bottom, top, s.Radius, 8, 8, rl.Black)
	case *physics.Cylinder:
		top := rl.Vector3{Y: s.HalfHeight}
		bottom := rl.Vector3{Y: -s.HalfHeight}
		rl.DrawCylinderEx(bottom, top, s.Radius, s.Radius, 12, color)
		rl.DrawCylinderWiresEx(bottom, top, s.Radius, s.Radius, 12, rl.Black)
	case *physics.Compound:
		for _, child := range s.Children {
			pushTransform(child.Local)
			drawLocalShape(child.Shape, color)
			rl.PopMatrix()
		}
	case *physics.Mesh:
		for i := range s.Quads {
			drawQuad(&s.Quads[i], color)
		}
	case *physics.Quad:
		drawQuad(s, color)
	}
}

func drawBox3D(b physics.Box3D, color rl.Color) {
	rl.DrawBoundingBox(rl.BoundingBox{Min: b.Min, Max: b.Max}, color)
}

// drawPortal outlines the portal oval in its plane
func drawPortal(t physics.Transform, color rl.Color) {
	prev := t.PointNoScale(rl.Vector3{X: physics.PortalXRadius})
	for i := 1; i <= portalSegments; i++ {
		angle := float64(i) / portalSegments * 2 * math.Pi
		next := t.PointNoScale(rl.Vector3{
			X: physics.PortalXRadius * float32(math.Cos(angle)),
			Y: physics.PortalYRadius * float32(math.Sin(angle)),
		})
		rl.DrawLine3D(prev, next, color)
		prev = next
	}
	front := t.PointNoScale(rl.Vector3{Z: 0.3})
	rl.DrawLine3D(t.Position, front, color)
}
