package physics

import rl "github.com/gen2brain/raylib-go/raylib"

const (
	edgeZeroBias   = 0.001
	nearDotZero    = 0.00001
	minRayDistance = 0.0001
)

// Quad support feature bits
const (
	quadIDEdgeAPositive = 0x1
	quadIDEdgeANegative = 0x2
	quadIDEdgeBPositive = 0x4
	quadIDEdgeBNegative = 0x8
	quadIDBack          = 0x10
	quadIDFront         = 0x20
)

// Quad edge mask bits returned by DetermineEdges
const (
	QuadEdgeBelowA = 1 << 0
	QuadEdgeBelowB = 1 << 1
	QuadEdgeAboveA = 1 << 2
	QuadEdgeAboveB = 1 << 3
)

// Quad is a rectangle spanned by two orthogonal unit edges from a corner. A quad
// with zero thickness is one sided and only collides from the side its normal
// faces.
type Quad struct {
	Corner      rl.Vector3
	EdgeA       rl.Vector3
	EdgeALength float32
	EdgeB       rl.Vector3
	EdgeBLength float32
	Plane       Plane
	Thickness   float32
}

// NewQuad builds a quad from a corner and two full length edges. The normal is
// cross(edgeA, edgeB).
func NewQuad(corner, edgeA, edgeB rl.Vector3, thickness float32) *Quad {
	q := &Quad{
		Corner:      corner,
		EdgeA:       normalize(edgeA),
		EdgeALength: length(edgeA),
		EdgeB:       normalize(edgeB),
		EdgeBLength: length(edgeB),
		Thickness:   thickness,
	}
	q.Plane = NewPlane(cross(q.EdgeA, q.EdgeB), corner)
	return q
}

// NewQuadFacing builds a quad centered on center facing normal, with edgeA along
// tangent.
func NewQuadFacing(center, normal, tangent rl.Vector3, halfA, halfB, thickness float32) *Quad {
	n := normalize(normal)
	edgeA := normalize(sub(tangent, scale(n, dot(tangent, n))))
	if edgeA == (rl.Vector3{}) {
		edgeA = normalize(perp(n))
	}
	edgeB := cross(n, edgeA)
	corner := addScaled(addScaled(center, edgeA, -halfA), edgeB, -halfB)
	return NewQuad(corner, scale(edgeA, 2*halfA), scale(edgeB, 2*halfB), thickness)
}

func (q *Quad) Kind() ShapeKind { return ShapeQuad }
func (q *Quad) isShape()        {}

func (q *Quad) Normal() rl.Vector3 {
	return q.Plane.Normal
}

func (q *Quad) Center() rl.Vector3 {
	return addScaled(addScaled(q.Corner, q.EdgeA, q.EdgeALength*0.5), q.EdgeB, q.EdgeBLength*0.5)
}

// Corners returns the four corners in winding order
func (q *Quad) Corners() [4]rl.Vector3 {
	a := scale(q.EdgeA, q.EdgeALength)
	b := scale(q.EdgeB, q.EdgeBLength)
	return [4]rl.Vector3{
		q.Corner,
		add(q.Corner, a),
		add(add(q.Corner, a), b),
		add(q.Corner, b),
	}
}

// MinkowskiSupport returns the quad's support point in its own frame
func (q *Quad) MinkowskiSupport(direction rl.Vector3) (rl.Vector3, int) {
	output := q.Corner
	id := 0

	if dot(q.EdgeA, direction) > 0 {
		output = addScaled(output, q.EdgeA, q.EdgeALength)
		id |= quadIDEdgeAPositive
	} else {
		id |= quadIDEdgeANegative
	}

	if dot(q.EdgeB, direction) > 0 {
		output = addScaled(output, q.EdgeB, q.EdgeBLength)
		id |= quadIDEdgeBPositive
	} else {
		id |= quadIDEdgeBNegative
	}

	if q.Thickness > 0 && dot(q.Plane.Normal, direction) < 0 {
		output = addScaled(output, q.Plane.Normal, -q.Thickness)
		id |= quadIDBack
	} else {
		id |= quadIDFront
	}

	return output, id
}

func (q *Quad) Support(rotation rl.Quaternion, direction rl.Vector3) (rl.Vector3, int) {
	return supportRotated(rotation, direction, q.MinkowskiSupport)
}

// DetermineEdges returns a mask of the edges a point on the quad plane lies
// outside of. Zero means the point is inside the quad.
func (q *Quad) DetermineEdges(point rl.Vector3) int {
	relative := sub(point, q.Corner)
	mask := 0

	edgeDistance := dot(relative, q.EdgeA)
	if edgeDistance < -edgeZeroBias {
		mask |= QuadEdgeBelowA
	}
	if edgeDistance > q.EdgeALength+edgeZeroBias {
		mask |= QuadEdgeAboveA
	}

	edgeDistance = dot(relative, q.EdgeB)
	if edgeDistance < -edgeZeroBias {
		mask |= QuadEdgeBelowB
	}
	if edgeDistance > q.EdgeBLength+edgeZeroBias {
		mask |= QuadEdgeAboveB
	}

	return mask
}

func (q *Quad) BoundingBox(t Transform) Box3D {
	box := EmptyBox3D()
	for _, corner := range q.Corners() {
		world := t.PointNoScale(corner)
		box = box.UnionPoint(world)
		if q.Thickness > 0 {
			box = box.UnionPoint(addScaled(world, rotate(t.Rotation, q.Plane.Normal), -q.Thickness))
		}
	}
	return box
}

func (q *Quad) MomentOfInertia(mass float32) float32 {
	return 1
}

// RaycastLocal hits the quad from either side; the normal faces the ray
func (q *Quad) RaycastLocal(origin, direction rl.Vector3, maxDistance float32) (localHit, bool) {
	normalDot := dot(direction, q.Plane.Normal)
	if absf(normalDot) < nearDotZero {
		return localHit{}, false
	}

	distance := -q.Plane.Distance(origin) / normalDot
	if distance < minRayDistance || distance > maxDistance {
		return localHit{}, false
	}

	if q.DetermineEdges(addScaled(origin, direction, distance)) != 0 {
		return localHit{}, false
	}

	normal := q.Plane.Normal
	if normalDot > 0 {
		normal = negate(normal)
	}
	return localHit{Distance: distance, Normal: normal}, true
}

// transformed returns a copy of the quad mapped through a rigid transform
func (q *Quad) transformed(t Transform) Quad {
	result := Quad{
		Corner:      t.PointNoScale(q.Corner),
		EdgeA:       rotate(t.Rotation, q.EdgeA),
		EdgeALength: q.EdgeALength,
		EdgeB:       rotate(t.Rotation, q.EdgeB),
		EdgeBLength: q.EdgeBLength,
		Thickness:   q.Thickness,
	}
	result.Plane = NewPlane(rotate(t.Rotation, q.Plane.Normal), result.Corner)
	return result
}
