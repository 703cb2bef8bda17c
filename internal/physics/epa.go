package physics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	maxEPAPoints     = 32
	maxEPAFaces      = 64
	maxEPAEdges      = 64
	epaTolerance     = 0.0001
	maxSweptSteps    = 32
	sweptBisectSteps = 10
)

// EpaResult describes the penetration of shape A into shape B. Normal points from
// A toward B, Penetration is negative while overlapping and
// ContactA + Penetration*Normal == ContactB.
type EpaResult struct {
	ContactA    rl.Vector3
	ContactB    rl.Vector3
	Normal      rl.Vector3
	Penetration float32
	ID          int
}

// Depth is the non negative penetration depth
func (r *EpaResult) Depth() float32 {
	return -r.Penetration
}

// Swap exchanges the roles of A and B
func (r *EpaResult) Swap() {
	r.ContactA, r.ContactB = r.ContactB, r.ContactA
	r.Normal = negate(r.Normal)
	r.ID = int(uint32(r.ID)>>16 | uint32(r.ID)<<16)
}

type epaFace struct {
	indices  [3]int
	normal   rl.Vector3
	distance float32
}

type epaEdge struct {
	a, b int
}

// expandingPolytope is fixed capacity so a solve never allocates
type expandingPolytope struct {
	points     [maxEPAPoints]rl.Vector3
	aPoints    [maxEPAPoints]rl.Vector3
	ids        [maxEPAPoints]int
	pointCount int

	faces     [maxEPAFaces]epaFace
	faceCount int

	edges     [maxEPAEdges]epaEdge
	edgeCount int
}

func (p *expandingPolytope) addPoint(point, aPoint rl.Vector3, id int) int {
	index := p.pointCount
	p.points[index] = point
	p.aPoints[index] = aPoint
	p.ids[index] = id
	p.pointCount++
	return index
}

// addFace appends a face, orienting it away from the origin. Degenerate faces are rejected.
func (p *expandingPolytope) addFace(a, b, c int) bool {
	if p.faceCount == maxEPAFaces {
		return false
	}
	pa, pb, pc := p.points[a], p.points[b], p.points[c]
	normal := normalize(cross(sub(pb, pa), sub(pc, pa)))
	if normal == (rl.Vector3{}) {
		return false
	}
	distance := dot(normal, pa)
	if distance < -epaTolerance {
		normal = negate(normal)
		distance = -distance
		b, c = c, b
	}
	p.faces[p.faceCount] = epaFace{indices: [3]int{a, b, c}, normal: normal, distance: distance}
	p.faceCount++
	return true
}

func (p *expandingPolytope) removeFace(index int) {
	p.faceCount--
	p.faces[index] = p.faces[p.faceCount]
}

// addHorizonEdge keeps edges shared by two removed faces out of the horizon
func (p *expandingPolytope) addHorizonEdge(a, b int) bool {
	for i := 0; i < p.edgeCount; i++ {
		if p.edges[i].a == b && p.edges[i].b == a {
			p.edgeCount--
			p.edges[i] = p.edges[p.edgeCount]
			return true
		}
	}
	if p.edgeCount == maxEPAEdges {
		return false
	}
	p.edges[p.edgeCount] = epaEdge{a: a, b: b}
	p.edgeCount++
	return true
}

func (p *expandingPolytope) closestFace() int {
	closest := 0
	for i := 1; i < p.faceCount; i++ {
		if p.faces[i].distance < p.faces[closest].distance {
			closest = i
		}
	}
	return closest
}

func (p *expandingPolytope) init(simplex *Simplex) bool {
	p.pointCount = 0
	p.faceCount = 0
	p.edgeCount = 0

	if simplex.Count != maxSimplexSize {
		return false
	}

	for i := 0; i < simplex.Count; i++ {
		p.addPoint(simplex.Points[i], simplex.ObjectAPoint[i], simplex.IDs[i])
	}

	return p.addFace(0, 1, 2) &&
		p.addFace(0, 3, 1) &&
		p.addFace(0, 2, 3) &&
		p.addFace(1, 3, 2)
}

// expand grows the polytope toward the boundary of a - b and returns the face
// closest to the origin.
func (p *expandingPolytope) expand(a, b Supporter) (int, bool) {
	for p.pointCount < maxEPAPoints {
		closest := p.closestFace()
		face := p.faces[closest]

		aPoint, aID := a.MinkowskiSupport(face.normal)
		bPoint, bID := b.MinkowskiSupport(negate(face.normal))
		point := sub(aPoint, bPoint)

		if dot(point, face.normal)-face.distance < epaTolerance {
			return closest, true
		}

		newIndex := p.addPoint(point, aPoint, CombineContactIDs(aID, bID))
		p.edgeCount = 0

		for i := 0; i < p.faceCount; {
			f := &p.faces[i]
			if dot(f.normal, sub(point, p.points[f.indices[0]])) > 0 {
				for e := 0; e < 3; e++ {
					if !p.addHorizonEdge(f.indices[e], f.indices[(e+1)%3]) {
						return p.closestFace(), true
					}
				}
				p.removeFace(i)
				continue
			}
			i++
		}

		for i := 0; i < p.edgeCount; i++ {
			if !p.addFace(p.edges[i].a, p.edges[i].b, newIndex) {
				return p.closestFace(), p.faceCount > 0
			}
		}

		if p.faceCount == 0 {
			return 0, false
		}
	}

	return p.closestFace(), true
}

// barycentric returns the weights of point in triangle abc, falling back to the
// centroid for degenerate triangles.
func barycentric(a, b, c, point rl.Vector3) (float32, float32, float32) {
	v0 := sub(b, a)
	v1 := sub(c, a)
	v2 := sub(point, a)
	d00 := dot(v0, v0)
	d01 := dot(v0, v1)
	d11 := dot(v1, v1)
	d20 := dot(v2, v0)
	d21 := dot(v2, v1)
	denom := d00*d11 - d01*d01
	if absf(denom) < 1e-12 {
		return 1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0
	}
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	return 1 - v - w, v, w
}

func (p *expandingPolytope) result(faceIndex int) EpaResult {
	face := &p.faces[faceIndex]
	i0, i1, i2 := face.indices[0], face.indices[1], face.indices[2]
	projected := scale(face.normal, face.distance)
	u, v, w := barycentric(p.points[i0], p.points[i1], p.points[i2], projected)

	contactA := scale(p.aPoints[i0], u)
	contactA = addScaled(contactA, p.aPoints[i1], v)
	contactA = addScaled(contactA, p.aPoints[i2], w)

	id := p.ids[i0]
	if v > u && v >= w {
		id = p.ids[i1]
	} else if w > u && w > v {
		id = p.ids[i2]
	}

	return EpaResult{
		ContactA:    contactA,
		ContactB:    addScaled(contactA, face.normal, -face.distance),
		Normal:      face.normal,
		Penetration: -face.distance,
		ID:          id,
	}
}

// EpaSolve expands the overlapping GJK simplex of a - b into the penetration
// normal, depth and contact points.
func EpaSolve(simplex *Simplex, a, b Supporter) (EpaResult, bool) {
	var polytope expandingPolytope
	if !polytope.init(simplex) {
		return EpaResult{}, false
	}
	face, ok := polytope.expand(a, b)
	if !ok {
		return EpaResult{}, false
	}
	return polytope.result(face), true
}

// ShapeSupport places a shape in world space for GJK and EPA
type ShapeSupport struct {
	Shape    Shape
	Rotation rl.Quaternion
	Position rl.Vector3
}

func (s *ShapeSupport) MinkowskiSupport(direction rl.Vector3) (rl.Vector3, int) {
	point, id := s.Shape.Support(s.Rotation, direction)
	return add(point, s.Position), id
}

// SweptSupport covers every pose of a shape translated from Start to End
type SweptSupport struct {
	Shape    Shape
	Rotation rl.Quaternion
	Start    rl.Vector3
	End      rl.Vector3
}

func (s *SweptSupport) MinkowskiSupport(direction rl.Vector3) (rl.Vector3, int) {
	point, id := s.Shape.Support(s.Rotation, direction)
	if dot(s.End, direction) > dot(s.Start, direction) {
		return add(point, s.End), id
	}
	return add(point, s.Start), id
}

// EpaSolveSwept searches the motion of b from start to end for the earliest
// overlap with a and solves the penetration at that pose. It returns the motion
// fraction of the contact pose. ok is false when b already overlaps at start or
// never overlaps, in which case callers fall back to the static test.
func EpaSolveSwept(a Supporter, b ShapeSupport, start, end rl.Vector3) (EpaResult, float32, bool) {
	var simplex Simplex

	probe := b
	probe.Position = start
	if CheckForOverlap(&simplex, a, &probe, sub(start, end)) {
		return EpaResult{}, 0, false
	}

	motion := sub(end, start)
	distance := length(motion)
	if distance < 1e-6 {
		return EpaResult{}, 0, false
	}

	stepLength := maxf(b.Shape.BoundingBox(NewTransform(rl.Vector3{}, b.Rotation)).MinHalfExtent(), 0.01)
	steps := int(math.Ceil(float64(distance / stepLength)))
	if steps < 1 {
		steps = 1
	}
	if steps > maxSweptSteps {
		steps = maxSweptSteps
	}

	overlapsAt := func(fraction float32) bool {
		probe.Position = addScaled(start, motion, fraction)
		return CheckForOverlap(&simplex, a, &probe, sub(probe.Position, start))
	}

	lo := float32(0)
	hi := float32(-1)
	for i := 1; i <= steps; i++ {
		fraction := float32(i) / float32(steps)
		if overlapsAt(fraction) {
			hi = fraction
			break
		}
		lo = fraction
	}
	if hi < 0 {
		return EpaResult{}, 0, false
	}

	for i := 0; i < sweptBisectSteps; i++ {
		mid := (lo + hi) * 0.5
		if overlapsAt(mid) {
			hi = mid
		} else {
			lo = mid
		}
	}

	if !overlapsAt(hi) {
		return EpaResult{}, 0, false
	}
	result, ok := EpaSolve(&simplex, a, &probe)
	if !ok {
		return EpaResult{}, 0, false
	}
	return result, hi, true
}
