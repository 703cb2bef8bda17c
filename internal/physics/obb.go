package physics

import rl "github.com/gen2brain/raylib-go/raylib"

const (
	// faces less aligned with the contact normal than this fall back to the EPA point
	minFaceAlignment = 0.7
	maxClipPoints    = 16

	clipFeatureFlag = 0x8000
)

// contactFace is one planar face of an oriented box or a quad in world space,
// wound consistently, with a feature id per vertex.
type contactFace struct {
	verts  [4]rl.Vector3
	ids    [4]int
	normal rl.Vector3
	count  int
}

// faceSource is implemented by shapes whose contacts are built by clipping
// faces instead of taking the single EPA point.
type faceSource interface {
	contactFace(rotation rl.Quaternion, position, direction rl.Vector3) contactFace
}

// contactFace returns the box face whose outward normal is closest to direction
func (b *Box) contactFace(rotation rl.Quaternion, position, direction rl.Vector3) contactFace {
	local := unrotate(rotation, direction)

	axis := 0
	best := absf(local.X)
	if absf(local.Y) > best {
		axis, best = 1, absf(local.Y)
	}
	if absf(local.Z) > best {
		axis = 2
	}
	side := float32(1)
	if axisValue(local, axis) < 0 {
		side = -1
	}

	u := (axis + 1) % 3
	v := (axis + 2) % 3
	signs := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	var face contactFace
	for i, s := range signs {
		var corner rl.Vector3
		setAxisValue(&corner, axis, side*axisValue(b.HalfExtents, axis))
		setAxisValue(&corner, u, s[0]*axisValue(b.HalfExtents, u))
		setAxisValue(&corner, v, s[1]*axisValue(b.HalfExtents, v))

		id := 0
		if corner.X > 0 {
			id |= 1 << 0
		}
		if corner.Y > 0 {
			id |= 1 << 1
		}
		if corner.Z > 0 {
			id |= 1 << 2
		}

		face.verts[i] = add(position, rotate(rotation, corner))
		face.ids[i] = id
	}

	var normal rl.Vector3
	setAxisValue(&normal, axis, side)
	face.normal = rotate(rotation, normal)
	face.count = 4
	return face
}

// contactFace returns the front or back face of the quad, whichever faces direction
func (q *Quad) contactFace(rotation rl.Quaternion, position, direction rl.Vector3) contactFace {
	world := q.transformed(NewTransform(position, rotation))

	var face contactFace
	face.normal = world.Plane.Normal
	offset := rl.Vector3{}
	if dot(direction, face.normal) < 0 {
		face.normal = negate(face.normal)
		offset = scale(face.normal, world.Thickness)
	}

	for i, corner := range world.Corners() {
		face.verts[i] = add(corner, offset)
		face.ids[i] = i
	}
	face.count = 4
	return face
}

type clipVertex struct {
	point rl.Vector3
	id    int
}

// clipEdgeID names a point created by cutting the edge between two features
// against side plane i of the reference face.
func clipEdgeID(a, b, plane int) int {
	lo, hi := a&0x3F, b&0x3F
	if lo > hi {
		lo, hi = hi, lo
	}
	return clipFeatureFlag | (plane+1)<<12 | lo<<6 | hi
}

// clipPolygon keeps the part of polygon on the inner side of the plane through
// point with outward normal.
func clipPolygon(polygon []clipVertex, point, outward rl.Vector3, plane int, out []clipVertex) []clipVertex {
	out = out[:0]
	if len(polygon) == 0 {
		return out
	}

	prev := polygon[len(polygon)-1]
	prevDistance := dot(sub(prev.point, point), outward)
	for _, curr := range polygon {
		distance := dot(sub(curr.point, point), outward)

		if (prevDistance <= 0) != (distance <= 0) {
			t := prevDistance / (prevDistance - distance)
			crossing := add(prev.point, scale(sub(curr.point, prev.point), t))
			if len(out) < maxClipPoints {
				out = append(out, clipVertex{point: crossing, id: clipEdgeID(prev.id, curr.id, plane)})
			}
		}
		if distance <= 0 && len(out) < maxClipPoints {
			out = append(out, curr)
		}

		prev, prevDistance = curr, distance
	}
	return out
}

// clipContacts builds up to four contacts for a pair of placed shapes that both
// expose faces. result supplies the EPA normal pointing from a toward b; the
// returned points are in world space. Zero means the caller should insert the
// EPA point instead.
func clipContacts(a, b *ShapeSupport, result *EpaResult, contacts *[MaxContactsPerManifold]EpaResult) int {
	sourceA, ok := a.Shape.(faceSource)
	if !ok {
		return 0
	}
	sourceB, ok := b.Shape.(faceSource)
	if !ok {
		return 0
	}

	n := result.Normal
	faceA := sourceA.contactFace(a.Rotation, a.Position, n)
	faceB := sourceB.contactFace(b.Rotation, b.Position, negate(n))

	alignA := dot(faceA.normal, n)
	alignB := -dot(faceB.normal, n)
	if alignA < minFaceAlignment && alignB < minFaceAlignment {
		return 0
	}

	reference, incident := &faceA, &faceB
	referenceIsA := alignA >= alignB
	if !referenceIsA {
		reference, incident = &faceB, &faceA
	}

	var bufferA, bufferB [maxClipPoints]clipVertex
	polygon := bufferA[:0]
	for i := 0; i < incident.count; i++ {
		polygon = append(polygon, clipVertex{point: incident.verts[i], id: clipFeatureFlag | (incident.ids[i] + 1)})
	}

	var center rl.Vector3
	for i := 0; i < reference.count; i++ {
		center = add(center, reference.verts[i])
	}
	center = scale(center, 1/float32(reference.count))

	scratch := bufferB[:0]
	for i := 0; i < reference.count && len(polygon) > 0; i++ {
		start := reference.verts[i]
		end := reference.verts[(i+1)%reference.count]
		outward := normalize(cross(sub(end, start), reference.normal))
		if dot(outward, sub(center, start)) > 0 {
			outward = negate(outward)
		}
		scratch = clipPolygon(polygon, start, outward, i, scratch)
		polygon, scratch = scratch, polygon
	}

	var candidates [maxClipPoints]EpaResult
	count := 0
	for _, vertex := range polygon {
		separation := dot(sub(vertex.point, reference.verts[0]), reference.normal)
		if separation > 0 {
			continue
		}
		projected := addScaled(vertex.point, reference.normal, -separation)

		c := &candidates[count]
		if referenceIsA {
			c.ContactA, c.ContactB = projected, vertex.point
		} else {
			c.ContactA, c.ContactB = vertex.point, projected
		}
		c.Normal = n
		c.Penetration = dot(sub(c.ContactB, c.ContactA), n)
		c.ID = vertex.id
		count++
	}

	if count == 0 {
		return 0
	}
	return reduceContacts(candidates[:count], n, contacts)
}

// reduceContacts keeps the deepest point and the extremes along both tangents
func reduceContacts(candidates []EpaResult, normal rl.Vector3, contacts *[MaxContactsPerManifold]EpaResult) int {
	if len(candidates) <= MaxContactsPerManifold {
		copy(contacts[:], candidates)
		return len(candidates)
	}

	t0, t1 := tangentBasis(normal)
	deepest := 0
	for i := range candidates {
		if candidates[i].Penetration < candidates[deepest].Penetration {
			deepest = i
		}
	}

	picked := [MaxContactsPerManifold]int{deepest, -1, -1, -1}
	count := 1
	for _, direction := range [3]rl.Vector3{t0, negate(t0), t1} {
		best := -1
		var bestDot float32
		for i := range candidates {
			duplicate := false
			for j := 0; j < count; j++ {
				if picked[j] == i {
					duplicate = true
					break
				}
			}
			if duplicate {
				continue
			}
			d := dot(candidates[i].ContactB, direction)
			if best < 0 || d > bestDot {
				best, bestDot = i, d
			}
		}
		if best >= 0 {
			picked[count] = best
			count++
		}
	}

	for i := 0; i < count; i++ {
		contacts[i] = candidates[picked[i]]
	}
	return count
}
