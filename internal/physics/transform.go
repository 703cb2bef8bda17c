package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// Transform is a rigid pose with an optional non-uniform scale
type Transform struct {
	Position rl.Vector3
	Rotation rl.Quaternion
	Scale    rl.Vector3
}

func IdentityTransform() Transform {
	return Transform{
		Rotation: quatIdentity(),
		Scale:    rl.Vector3{X: 1, Y: 1, Z: 1},
	}
}

func NewTransform(position rl.Vector3, rotation rl.Quaternion) Transform {
	return Transform{
		Position: position,
		Rotation: rotation,
		Scale:    rl.Vector3{X: 1, Y: 1, Z: 1},
	}
}

// Point maps a local point into world space
func (t Transform) Point(local rl.Vector3) rl.Vector3 {
	scaled := rl.Vector3{X: local.X * t.Scale.X, Y: local.Y * t.Scale.Y, Z: local.Z * t.Scale.Z}
	return add(rotate(t.Rotation, scaled), t.Position)
}

// InversePoint maps a world point into local space
func (t Transform) InversePoint(world rl.Vector3) rl.Vector3 {
	local := unrotate(t.Rotation, sub(world, t.Position))
	return rl.Vector3{
		X: local.X * safeInvert(t.Scale.X),
		Y: local.Y * safeInvert(t.Scale.Y),
		Z: local.Z * safeInvert(t.Scale.Z),
	}
}

// InversePointNoScale maps a world point into local space ignoring scale
func (t Transform) InversePointNoScale(world rl.Vector3) rl.Vector3 {
	return unrotate(t.Rotation, sub(world, t.Position))
}

// PointNoScale maps a local point into world space ignoring scale
func (t Transform) PointNoScale(local rl.Vector3) rl.Vector3 {
	return add(rotate(t.Rotation, local), t.Position)
}

// Invert returns the inverse of a rigid transform. Scale is inverted per axis.
func (t Transform) Invert() Transform {
	inv := quatConjugate(t.Rotation)
	result := Transform{
		Rotation: inv,
		Scale: rl.Vector3{
			X: safeInvert(t.Scale.X),
			Y: safeInvert(t.Scale.Y),
			Z: safeInvert(t.Scale.Z),
		},
	}
	p := rotate(inv, negate(t.Position))
	result.Position = rl.Vector3{X: p.X * result.Scale.X, Y: p.Y * result.Scale.Y, Z: p.Z * result.Scale.Z}
	return result
}

// Concat returns a transform equivalent to applying b then a
func Concat(a, b Transform) Transform {
	return Transform{
		Position: a.Point(b.Position),
		Rotation: quatMultiply(a.Rotation, b.Rotation),
		Scale:    rl.Vector3{X: a.Scale.X * b.Scale.X, Y: a.Scale.Y * b.Scale.Y, Z: a.Scale.Z * b.Scale.Z},
	}
}

// Plane is the set of points p with dot(Normal, p) + D == 0
type Plane struct {
	Normal rl.Vector3
	D      float32
}

func NewPlane(normal, point rl.Vector3) Plane {
	n := normalize(normal)
	return Plane{Normal: n, D: -dot(n, point)}
}

func (p Plane) Distance(point rl.Vector3) float32 {
	return dot(p.Normal, point) + p.D
}

func (p Plane) Project(point rl.Vector3) rl.Vector3 {
	return addScaled(point, p.Normal, -p.Distance(point))
}

// RayIntersection returns the ray distance to the plane
func (p Plane) RayIntersection(origin, direction rl.Vector3) (float32, bool) {
	denom := dot(p.Normal, direction)
	if absf(denom) < 1e-6 {
		return 0, false
	}
	t := -p.Distance(origin) / denom
	return t, true
}
