package physics

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ShapeKind tags the closed set of collider geometries
type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
	ShapeCylinder
	ShapeCapsule
	ShapeQuad
	ShapeMesh
	ShapeCompound
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCylinder:
		return "cylinder"
	case ShapeCapsule:
		return "capsule"
	case ShapeQuad:
		return "quad"
	case ShapeMesh:
		return "mesh"
	case ShapeCompound:
		return "compound"
	}
	return fmt.Sprintf("shape(%d)", int(k))
}

// Shape is implemented by every collider geometry. The set is closed: only
// types in this package can satisfy it.
type Shape interface {
	Kind() ShapeKind
	// Support returns the point of the shape furthest along direction, relative to
	// the owning body's position, with the shape rotated by rotation. The int is a
	// feature id used to match contact points between ticks.
	Support(rotation rl.Quaternion, direction rl.Vector3) (rl.Vector3, int)
	BoundingBox(t Transform) Box3D
	MomentOfInertia(mass float32) float32
	// RaycastLocal intersects a ray given in the shape's local frame.
	RaycastLocal(origin, direction rl.Vector3, maxDistance float32) (localHit, bool)
	isShape()
}

type localHit struct {
	Distance float32
	Normal   rl.Vector3
}

// Collider pairs a shape with its surface response coefficients
type Collider struct {
	Shape    Shape
	Friction float32
	Bounce   float32
}

func NewCollider(shape Shape, friction, bounce float32) *Collider {
	return &Collider{Shape: shape, Friction: friction, Bounce: bounce}
}

// supportRotated evaluates a local support function for a rotated shape
func supportRotated(rotation rl.Quaternion, direction rl.Vector3, local func(rl.Vector3) (rl.Vector3, int)) (rl.Vector3, int) {
	localDir := unrotate(rotation, direction)
	point, id := local(localDir)
	return rotate(rotation, point), id
}

// rotatedExtents returns the world half extents of a local box rotated by q
func rotatedExtents(q rl.Quaternion, half rl.Vector3) rl.Vector3 {
	ax := rotate(q, gRight)
	ay := rotate(q, gUp)
	az := rotate(q, gForward)
	return rl.Vector3{
		X: absf(ax.X)*half.X + absf(ay.X)*half.Y + absf(az.X)*half.Z,
		Y: absf(ax.Y)*half.X + absf(ay.Y)*half.Y + absf(az.Y)*half.Z,
		Z: absf(ax.Z)*half.X + absf(ay.Z)*half.Y + absf(az.Z)*half.Z,
	}
}

// Box is a solid box centered on the body
type Box struct {
	HalfExtents rl.Vector3
}

func NewBox(halfExtents rl.Vector3) *Box {
	return &Box{HalfExtents: halfExtents}
}

func (b *Box) Kind() ShapeKind { return ShapeBox }
func (b *Box) isShape()        {}

func (b *Box) supportLocal(direction rl.Vector3) (rl.Vector3, int) {
	result := rl.Vector3{X: -b.HalfExtents.X, Y: -b.HalfExtents.Y, Z: -b.HalfExtents.Z}
	id := 0
	if direction.X > 0 {
		result.X = b.HalfExtents.X
		id |= 1 << 0
	}
	if direction.Y > 0 {
		result.Y = b.HalfExtents.Y
		id |= 1 << 1
	}
	if direction.Z > 0 {
		result.Z = b.HalfExtents.Z
		id |= 1 << 2
	}
	return result, id
}

func (b *Box) Support(rotation rl.Quaternion, direction rl.Vector3) (rl.Vector3, int) {
	return supportRotated(rotation, direction, b.supportLocal)
}

func (b *Box) BoundingBox(t Transform) Box3D {
	return NewBox3DFromCenter(t.Position, rotatedExtents(t.Rotation, b.HalfExtents))
}

// MomentOfInertia uses m * |side|^2 / 6 with side measured as the half extent vector
func (b *Box) MomentOfInertia(mass float32) float32 {
	return mass * magSq(b.HalfExtents) * (1.0 / 6.0)
}

func (b *Box) RaycastLocal(origin, direction rl.Vector3, maxDistance float32) (localHit, bool) {
	box := Box3D{Min: negate(b.HalfExtents), Max: b.HalfExtents}
	distance, normal, ok := box.Raycast(origin, direction, maxDistance)
	if !ok {
		return localHit{}, false
	}
	return localHit{Distance: distance, Normal: normal}, true
}

// Sphere is a solid ball centered on the body
type Sphere struct {
	Radius float32
}

func NewSphere(radius float32) *Sphere {
	return &Sphere{Radius: radius}
}

func (s *Sphere) Kind() ShapeKind { return ShapeSphere }
func (s *Sphere) isShape()        {}

func (s *Sphere) Support(rotation rl.Quaternion, direction rl.Vector3) (rl.Vector3, int) {
	n := normalize(direction)
	if n == (rl.Vector3{}) {
		n = gRight
	}
	return scale(n, s.Radius), 0
}

func (s *Sphere) BoundingBox(t Transform) Box3D {
	return NewBox3DFromCenter(t.Position, rl.Vector3{X: s.Radius, Y: s.Radius, Z: s.Radius})
}

func (s *Sphere) MomentOfInertia(mass float32) float32 {
	return 0.4 * mass * s.Radius * s.Radius
}

func (s *Sphere) RaycastLocal(origin, direction rl.Vector3, maxDistance float32) (localHit, bool) {
	t, ok := raySphere(origin, direction, rl.Vector3{}, s.Radius)
	if !ok || t > maxDistance {
		return localHit{}, false
	}
	point := addScaled(origin, direction, t)
	return localHit{Distance: t, Normal: normalize(point)}, true
}

// raySphere returns the first non-negative distance along a unit ray hitting the sphere
func raySphere(origin, direction, center rl.Vector3, radius float32) (float32, bool) {
	oc := sub(origin, center)
	b := dot(oc, direction)
	c := dot(oc, oc) - radius*radius
	if c > 0 && b > 0 {
		return 0, false
	}
	discriminant := b*b - c
	if discriminant < 0 {
		return 0, false
	}
	t := -b - sqrtf(discriminant)
	if t < 0 {
		return 0, false
	}
	return t, true
}

// Cylinder is a solid cylinder along the local Y axis
type Cylinder struct {
	Radius     float32
	HalfHeight float32
}

func NewCylinder(radius, halfHeight float32) *Cylinder {
	return &Cylinder{Radius: radius, HalfHeight: halfHeight}
}

func (c *Cylinder) Kind() ShapeKind { return ShapeCylinder }
func (c *Cylinder) isShape()        {}

func (c *Cylinder) supportLocal(direction rl.Vector3) (rl.Vector3, int) {
	var result rl.Vector3
	id := 0
	horizontal := sqrtf(direction.X*direction.X + direction.Z*direction.Z)
	if horizontal > 1e-6 {
		result.X = direction.X / horizontal * c.Radius
		result.Z = direction.Z / horizontal * c.Radius
	}
	if direction.Y > 0 {
		result.Y = c.HalfHeight
		id = 1
	} else {
		result.Y = -c.HalfHeight
	}
	return result, id
}

func (c *Cylinder) Support(rotation rl.Quaternion, direction rl.Vector3) (rl.Vector3, int) {
	return supportRotated(rotation, direction, c.supportLocal)
}

func (c *Cylinder) BoundingBox(t Transform) Box3D {
	return roundedSegmentBounds(t, c.HalfHeight, c.Radius)
}

func (c *Cylinder) MomentOfInertia(mass float32) float32 {
	axial := 0.5 * mass * c.Radius * c.Radius
	height := 2 * c.HalfHeight
	transverse := mass * (3*c.Radius*c.Radius + height*height) / 12
	return (axial + 2*transverse) / 3
}

func (c *Cylinder) RaycastLocal(origin, direction rl.Vector3, maxDistance float32) (localHit, bool) {
	best := localHit{Distance: maxDistance}
	found := false

	if t, ok := rayInfiniteCylinder(origin, direction, c.Radius); ok && t <= best.Distance {
		y := origin.Y + direction.Y*t
		if y >= -c.HalfHeight && y <= c.HalfHeight {
			p := addScaled(origin, direction, t)
			best = localHit{Distance: t, Normal: normalize(rl.Vector3{X: p.X, Z: p.Z})}
			found = true
		}
	}

	for _, sign := range [2]float32{1, -1} {
		if direction.Y == 0 {
			break
		}
		t := (sign*c.HalfHeight - origin.Y) / direction.Y
		if t < 0 || t > best.Distance {
			continue
		}
		p := addScaled(origin, direction, t)
		if p.X*p.X+p.Z*p.Z <= c.Radius*c.Radius && dot(direction, rl.Vector3{Y: sign}) < 0 {
			best = localHit{Distance: t, Normal: rl.Vector3{Y: sign}}
			found = true
		}
	}

	return best, found
}

// rayInfiniteCylinder intersects a ray with the Y axis cylinder of the given radius from outside
func rayInfiniteCylinder(origin, direction rl.Vector3, radius float32) (float32, bool) {
	a := direction.X*direction.X + direction.Z*direction.Z
	if a < 1e-8 {
		return 0, false
	}
	b := origin.X*direction.X + origin.Z*direction.Z
	c := origin.X*origin.X + origin.Z*origin.Z - radius*radius
	discriminant := b*b - a*c
	if discriminant < 0 {
		return 0, false
	}
	t := (-b - sqrtf(discriminant)) / a
	if t < 0 {
		return 0, false
	}
	return t, true
}

// roundedSegmentBounds bounds a Y axis segment of half length h swept by radius r
func roundedSegmentBounds(t Transform, h, r float32) Box3D {
	axis := rotate(t.Rotation, gUp)
	extents := rl.Vector3{
		X: absf(axis.X)*h + r,
		Y: absf(axis.Y)*h + r,
		Z: absf(axis.Z)*h + r,
	}
	return NewBox3DFromCenter(t.Position, extents)
}

// Capsule is a segment along the local Y axis swept by a sphere
type Capsule struct {
	Radius          float32
	InnerHalfHeight float32
}

func NewCapsule(radius, innerHalfHeight float32) *Capsule {
	return &Capsule{Radius: radius, InnerHalfHeight: innerHalfHeight}
}

func (c *Capsule) Kind() ShapeKind { return ShapeCapsule }
func (c *Capsule) isShape()        {}

func (c *Capsule) supportLocal(direction rl.Vector3) (rl.Vector3, int) {
	n := normalize(direction)
	if n == (rl.Vector3{}) {
		n = gRight
	}
	result := scale(n, c.Radius)
	id := 0
	if direction.Y > 0 {
		result.Y += c.InnerHalfHeight
		id = 1
	} else {
		result.Y -= c.InnerHalfHeight
	}
	return result, id
}

func (c *Capsule) Support(rotation rl.Quaternion, direction rl.Vector3) (rl.Vector3, int) {
	return supportRotated(rotation, direction, c.supportLocal)
}

func (c *Capsule) BoundingBox(t Transform) Box3D {
	return roundedSegmentBounds(t, c.InnerHalfHeight, c.Radius)
}

func (c *Capsule) MomentOfInertia(mass float32) float32 {
	cylinder := Cylinder{Radius: c.Radius, HalfHeight: c.InnerHalfHeight + c.Radius}
	return cylinder.MomentOfInertia(mass)
}

func (c *Capsule) RaycastLocal(origin, direction rl.Vector3, maxDistance float32) (localHit, bool) {
	best := localHit{Distance: maxDistance}
	found := false

	if t, ok := rayInfiniteCylinder(origin, direction, c.Radius); ok && t <= best.Distance {
		y := origin.Y + direction.Y*t
		if y >= -c.InnerHalfHeight && y <= c.InnerHalfHeight {
			p := addScaled(origin, direction, t)
			best = localHit{Distance: t, Normal: normalize(rl.Vector3{X: p.X, Z: p.Z})}
			found = true
		}
	}

	for _, sign := range [2]float32{1, -1} {
		center := rl.Vector3{Y: sign * c.InnerHalfHeight}
		t, ok := raySphere(origin, direction, center, c.Radius)
		if !ok || t > best.Distance {
			continue
		}
		p := addScaled(origin, direction, t)
		best = localHit{Distance: t, Normal: normalize(sub(p, center))}
		found = true
	}

	return best, found
}
