package physics

import rl "github.com/gen2brain/raylib-go/raylib"

const (
	MaxContactsPerManifold = 4

	// points separated by more than this are dropped at cleanup
	NegativePenetrationBias = 0.00001
)

// ContactPoint is one persistent point of contact. Local anchors are relative
// to each body's position and rotation; for bodyless objects they are world
// positions.
type ContactPoint struct {
	ID            int
	ContactALocal rl.Vector3
	ContactBLocal rl.Vector3
	// offsets from each body's center in world orientation
	ContactAWorld rl.Vector3
	ContactBWorld rl.Vector3
	// negative while overlapping
	Penetration    float32
	NormalImpulse  float32
	TangentImpulse [2]float32
	Bias           float32
	NormalMass     float32
	TangentMass    [2]float32
}

func (c *ContactPoint) resetImpulses() {
	c.NormalImpulse = 0
	c.TangentImpulse = [2]float32{}
	c.Bias = 0
	c.NormalMass = 0
	c.TangentMass = [2]float32{}
}

// ContactManifold is the persistent set of contacts between two objects.
// Normal points from ShapeA toward ShapeB.
type ContactManifold struct {
	Contacts       [MaxContactsPerManifold]ContactPoint
	ContactCount   int
	Normal         rl.Vector3
	TangentVectors [2]rl.Vector3
	Restitution    float32
	Friction       float32
	ShapeA         ObjectHandle
	ShapeB         ObjectHandle

	index int
	// borrowed for the duration of one solve
	bodyA *RigidBody
	bodyB *RigidBody
}

// Index is the manifold's slot in the solver pool
func (m *ContactManifold) Index() int {
	return m.index
}

func (m *ContactManifold) bit() uint64 {
	return 1 << uint(m.index)
}

// Points returns the live contact points
func (m *ContactManifold) Points() []ContactPoint {
	return m.Contacts[:m.ContactCount]
}

// NormalFor returns the manifold normal pointing toward the given object
func (m *ContactManifold) NormalFor(object ObjectHandle) rl.Vector3 {
	if m.ShapeB == object {
		return m.Normal
	}
	return negate(m.Normal)
}

// Other returns the handle of the object paired with the given one
func (m *ContactManifold) Other(object ObjectHandle) ObjectHandle {
	if m.ShapeA == object {
		return m.ShapeB
	}
	return m.ShapeA
}

// worldOffset converts a local anchor into a world orientation offset
func worldOffset(object *CollisionObject, local rl.Vector3) rl.Vector3 {
	if object.Body == nil {
		return local
	}
	return rotate(object.Body.Transform.Rotation, local)
}

// worldPoint converts a local anchor into a world position
func worldPoint(object *CollisionObject, local rl.Vector3) rl.Vector3 {
	if object.Body == nil {
		return local
	}
	return add(object.Body.Transform.Position, rotate(object.Body.Transform.Rotation, local))
}

// insert adds or refreshes a contact point. result holds anchors already in
// each object's local space and must be oriented with a as shape A.
func (m *ContactManifold) insert(a, b *CollisionObject, result *EpaResult) {
	shouldReplace := true
	replacementIndex := 0
	smallestOverlap := float32(-10000)

	insertIndex := 0
	for ; insertIndex < m.ContactCount; insertIndex++ {
		point := &m.Contacts[insertIndex]

		if point.ID == result.ID {
			break
		}

		if point.Penetration > smallestOverlap {
			replacementIndex = insertIndex
			smallestOverlap = point.Penetration
		}

		// an existing point touching a superset of the new point's features is a better choice
		if point.ID&result.ID == result.ID && point.ID > result.ID {
			shouldReplace = false
		}
	}

	m.Normal = result.Normal
	m.TangentVectors[0], m.TangentVectors[1] = tangentBasis(m.Normal)

	a.manifoldIDs |= m.bit()
	b.manifoldIDs |= m.bit()

	reset := false
	if insertIndex == MaxContactsPerManifold {
		if !shouldReplace {
			return
		}
		insertIndex = replacementIndex
		reset = true
	} else if insertIndex == m.ContactCount {
		reset = true
	}

	point := &m.Contacts[insertIndex]
	point.ID = result.ID
	point.ContactALocal = result.ContactA
	point.ContactBLocal = result.ContactB
	point.Penetration = result.Penetration
	point.ContactAWorld = worldOffset(a, point.ContactALocal)
	point.ContactBWorld = worldOffset(b, point.ContactBLocal)

	if insertIndex == m.ContactCount {
		m.ContactCount++
	}

	if reset {
		point.resetImpulses()
	}
}

// refresh recomputes every point against the bodies' current poses and drops
// points that separated or slid apart. It returns the remaining count.
func (m *ContactManifold) refresh(a, b *CollisionObject, slideTolerance float32) int {
	writeIndex := 0
	for readIndex := 0; readIndex < m.ContactCount; readIndex++ {
		point := m.Contacts[readIndex]

		point.ContactAWorld = worldOffset(a, point.ContactALocal)
		point.ContactBWorld = worldOffset(b, point.ContactBLocal)

		offset := sub(worldPoint(b, point.ContactBLocal), worldPoint(a, point.ContactALocal))
		point.Penetration = dot(offset, m.Normal)

		if point.Penetration > NegativePenetrationBias {
			continue
		}

		lateral := addScaled(offset, m.Normal, -point.Penetration)
		if magSq(lateral) > slideTolerance*slideTolerance {
			continue
		}

		m.Contacts[writeIndex] = point
		writeIndex++
	}
	m.ContactCount = writeIndex
	return writeIndex
}
