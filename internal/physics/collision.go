package physics

import rl "github.com/gen2brain/raylib-go/raylib"

const (
	// a player resting on a surface whose normal is steeper than this is standing on it
	standingNormalY = 0.7
	// swept hits leave the body this far inside the contact so the static test keeps it
	sweptContactNudge = 0.01
)

// collisionPart is one convex piece of an object placed in world space.
// Compound children and mesh quads are separate parts.
type collisionPart struct {
	support ShapeSupport
	// world space quad for the one sided check, nil for solid parts
	quad *Quad
	// child or mesh quad index, -1 for a whole shape
	index int
}

// narrowPhase holds scratch storage for pairing so a step does not allocate
type narrowPhase struct {
	scene  *CollisionScene
	solver *ContactSolver
	cfg    *Config

	partsA    []collisionPart
	partsB    []collisionPart
	meshQuads []Quad
	contacts  [MaxContactsPerManifold]EpaResult
}

func newNarrowPhase(scene *CollisionScene, solver *ContactSolver, cfg *Config) *narrowPhase {
	return &narrowPhase{
		scene:     scene,
		solver:    solver,
		cfg:       cfg,
		partsA:    make([]collisionPart, 0, maxCompoundChildren),
		partsB:    make([]collisionPart, 0, maxCompoundChildren),
		meshQuads: make([]Quad, 0, maxMeshQuads),
	}
}

// foldPartID mixes the part indices into a feature id so points from
// different children or mesh quads never match each other
func foldPartID(id, partA, partB int) int {
	if partA >= 0 {
		id ^= (partA + 1) << 20
	}
	if partB >= 0 {
		id ^= (partB + 1) << 26
	}
	return id
}

func localAnchor(object *CollisionObject, world rl.Vector3) rl.Vector3 {
	if object.Body == nil {
		return world
	}
	return object.Body.Transform.InversePointNoScale(world)
}

func staticQuadPart(quadObject *CollisionObject) collisionPart {
	quad, _ := quadObject.quadShape()
	return collisionPart{
		support: ShapeSupport{Shape: quad, Rotation: quatIdentity()},
		quad:    quad,
		index:   -1,
	}
}

// partsOf splits object into world space convex parts near query
func (np *narrowPhase) partsOf(object *CollisionObject, query Box3D, out []collisionPart) []collisionPart {
	out = out[:0]

	if quad, ok := object.quadShape(); ok {
		return append(out, collisionPart{support: ShapeSupport{Shape: quad, Rotation: quatIdentity()}, quad: quad, index: -1})
	}

	t := object.transform()
	switch shape := object.Collider.Shape.(type) {
	case *Compound:
		for i := range shape.Children {
			offset, rotation := shape.childPose(t.Rotation, i)
			position := add(t.Position, offset)
			child := shape.Children[i].Shape
			if !child.BoundingBox(NewTransform(position, rotation)).Overlaps(query) {
				continue
			}
			out = append(out, collisionPart{
				support: ShapeSupport{Shape: child, Rotation: rotation, Position: position},
				index:   i,
			})
		}
	case *Mesh:
		inverse := quatConjugate(t.Rotation)
		localQuery := NewBox3DFromCenter(t.InversePointNoScale(query.Center()), rotatedExtents(inverse, query.HalfExtents()))
		np.meshQuads = np.meshQuads[:0]
		shape.forEachQuad(localQuery, func(index int, quad *Quad) {
			if len(np.meshQuads) == cap(np.meshQuads) {
				return
			}
			np.meshQuads = append(np.meshQuads, quad.transformed(t))
			world := &np.meshQuads[len(np.meshQuads)-1]
			out = append(out, collisionPart{
				support: ShapeSupport{Shape: world, Rotation: quatIdentity()},
				quad:    world,
				index:   index,
			})
		})
	default:
		out = append(out, collisionPart{support: object.support(), index: -1})
	}
	return out
}

// touchingPortal applies the portal veto to a contact between a and b. The
// moving object on the portal side gets the touching flag.
func (np *narrowPhase) touchingPortal(a, b *CollisionObject, solidA bool, contactA, contactB, normal rl.Vector3) bool {
	if flags := np.scene.Portals.IsTouchingPortal(contactA, normal); flags != 0 {
		if b.Body != nil {
			b.Body.Flags |= flags
		}
		return true
	}
	if !solidA || a.Body == nil {
		return false
	}
	if flags := np.scene.Portals.IsTouchingPortal(contactB, negate(normal)); flags != 0 {
		a.Body.Flags |= flags
		return true
	}
	return false
}

// oneSidedMiss reports a contact pushing an object out the back of a zero
// thickness quad
func oneSidedMiss(part *collisionPart, normal rl.Vector3) bool {
	return part.quad != nil && part.quad.Thickness == 0 && dot(normal, part.quad.Normal()) < 0
}

// collideParts runs the narrow phase for one pair of parts and inserts the
// resulting contacts. a is the quad or mesh side when there is one.
func (np *narrowPhase) collideParts(a, b *CollisionObject, partA, partB *collisionPart, direction rl.Vector3) *ContactManifold {
	var simplex Simplex
	if !CheckForOverlap(&simplex, &partA.support, &partB.support, direction) {
		return nil
	}

	if a.Trigger != nil {
		handleTrigger(a, b)
		return nil
	}
	if b.Trigger != nil {
		handleTrigger(b, a)
		return nil
	}

	result, ok := EpaSolve(&simplex, &partA.support, &partB.support)
	if !ok {
		return nil
	}

	if oneSidedMiss(partA, result.Normal) {
		return nil
	}

	solidA := partA.quad == nil
	if np.touchingPortal(a, b, solidA, result.ContactA, result.ContactB, result.Normal) {
		return nil
	}

	m := np.solver.GetContactManifold(a.handle, b.handle)
	if m == nil {
		return nil
	}
	m.Friction = maxf(a.Collider.Friction, b.Collider.Friction)
	m.Restitution = minf(a.Collider.Bounce, b.Collider.Bounce)

	count := clipContacts(&partA.support, &partB.support, &result, &np.contacts)
	if count == 0 {
		np.contacts[0] = result
		count = 1
	}

	for i := 0; i < count; i++ {
		c := np.contacts[i]
		if count > 1 && np.touchingPortal(a, b, solidA, c.ContactA, c.ContactB, c.Normal) {
			continue
		}
		c.ID = foldPartID(c.ID, partA.index, partB.index)
		np.insert(m, a, b, &c)
	}

	np.afterContact(m, a, b)
	return m
}

// insert converts a world space result into local anchors and stores it with
// the manifold's own orientation
func (np *narrowPhase) insert(m *ContactManifold, a, b *CollisionObject, result *EpaResult) {
	result.ContactA = localAnchor(a, result.ContactA)
	result.ContactB = localAnchor(b, result.ContactB)
	if m.ShapeA == b.handle {
		result.Swap()
		m.insert(b, a, result)
		return
	}
	m.insert(a, b, result)
}

// afterContact wakes a sleeping body hit by an active one and records what
// a player stands on
func (np *narrowPhase) afterContact(m *ContactManifold, a, b *CollisionObject) {
	if m.ContactCount == 0 {
		return
	}

	sleepFrames := np.cfg.SleepFrames()
	if a.Body != nil && a.Body.IsSleeping() && b.IsActive() {
		a.Body.Wake(sleepFrames)
	}
	if b.Body != nil && b.Body.IsSleeping() && a.IsActive() {
		b.Body.Wake(sleepFrames)
	}

	if a.Body != nil && a.Body.Flags&Player != 0 && b.Body != nil && m.NormalFor(a.handle).Y > standingNormalY {
		b.Body.Flags |= PlayerStandingOn
	}
	if b.Body != nil && b.Body.Flags&Player != 0 && a.Body != nil && m.NormalFor(b.handle).Y > standingNormalY {
		a.Body.Flags |= PlayerStandingOn
	}
}

// collideWithQuad tests a dynamic object against one static quad
func (np *narrowPhase) collideWithQuad(object, quadObject *CollisionObject) *ContactManifold {
	if object.Layers&quadObject.Layers == 0 {
		return nil
	}
	if !object.BoundingBox.Overlaps(quadObject.BoundingBox) {
		return nil
	}
	if object.Trigger != nil && quadObject.Trigger != nil {
		return nil
	}

	quadPart := staticQuadPart(quadObject)
	np.partsB = np.partsOf(object, quadObject.BoundingBox, np.partsB)

	var last *ContactManifold
	for i := range np.partsB {
		if m := np.collideParts(quadObject, object, &quadPart, &np.partsB[i], quadPart.quad.Normal()); m != nil {
			last = m
		}
	}
	return last
}

// sweepsAsOne reports whether the object's shape can be swept as a single support
func sweepsAsOne(object *CollisionObject) bool {
	switch object.Collider.Shape.(type) {
	case *Compound, *Mesh:
		return false
	}
	return true
}

// handleSweptCollision reflects the velocity closing along normal, which
// points toward the object
func handleSweptCollision(object *CollisionObject, normal rl.Vector3, restitution float32) {
	body := object.Body
	if body == nil || body.IsKinematic() {
		return
	}
	velocityDot := dot(normal, body.Velocity)
	if velocityDot < 0 {
		body.Velocity = addScaled(body.Velocity, normal, (1+restitution)*-velocityDot)
		body.Transform.Position = addScaled(body.Transform.Position, normal, -sweptContactNudge)
	}
}

// collideWithQuadSwept tests the motion since the previous tick against a
// quad. On a hit the object is moved back to the first touching pose.
func (np *narrowPhase) collideWithQuadSwept(object, quadObject *CollisionObject) *ContactManifold {
	if !sweepsAsOne(object) {
		return np.collideWithQuad(object, quadObject)
	}
	if object.Layers&quadObject.Layers == 0 {
		return nil
	}
	if !object.sweptBoundingBox().Overlaps(quadObject.BoundingBox) {
		return nil
	}
	if object.Trigger != nil && quadObject.Trigger != nil {
		return nil
	}

	quadPart := staticQuadPart(quadObject)
	end := object.support()
	start := object.prevPosition
	swept := SweptSupport{Shape: end.Shape, Rotation: end.Rotation, Start: start, End: end.Position}

	var simplex Simplex
	if !CheckForOverlap(&simplex, &quadPart.support, &swept, quadPart.quad.Normal()) {
		return nil
	}

	if object.Trigger != nil {
		handleTrigger(object, quadObject)
		return nil
	}
	if quadObject.Trigger != nil {
		handleTrigger(quadObject, object)
		return nil
	}

	result, fraction, ok := EpaSolveSwept(&quadPart.support, end, start, end.Position)
	if !ok {
		return np.collideWithQuad(object, quadObject)
	}

	if oneSidedMiss(&quadPart, result.Normal) {
		return nil
	}
	if np.touchingPortal(quadObject, object, false, result.ContactA, result.ContactB, result.Normal) {
		return nil
	}

	m := np.solver.GetContactManifold(quadObject.handle, object.handle)
	if m == nil {
		return nil
	}

	object.Body.Transform.Position = rl.Vector3Lerp(start, end.Position, fraction)
	object.UpdateBoundingBox()

	m.Friction = maxf(object.Collider.Friction, quadObject.Collider.Friction)
	m.Restitution = minf(object.Collider.Bounce, quadObject.Collider.Bounce)

	np.insert(m, quadObject, object, &result)
	handleSweptCollision(object, m.NormalFor(object.handle), m.Restitution)
	np.afterContact(m, quadObject, object)
	return m
}

// collideTwoObjects tests two dynamic objects at their current poses
func (np *narrowPhase) collideTwoObjects(a, b *CollisionObject) {
	if !np.shouldPair(a, b, a.BoundingBox, b.BoundingBox) {
		return
	}

	// meshes are always the A side
	if _, ok := b.Collider.Shape.(*Mesh); ok {
		if _, both := a.Collider.Shape.(*Mesh); both {
			return
		}
		a, b = b, a
	}

	np.partsA = np.partsOf(a, b.BoundingBox, np.partsA)
	np.partsB = np.partsOf(b, a.BoundingBox, np.partsB)

	for i := range np.partsA {
		partA := &np.partsA[i]
		for j := range np.partsB {
			partB := &np.partsB[j]
			direction := sub(partB.support.Position, partA.support.Position)
			if partA.quad != nil {
				direction = partA.quad.Normal()
			}
			np.collideParts(a, b, partA, partB, direction)
		}
	}
}

func (np *narrowPhase) shouldPair(a, b *CollisionObject, boundsA, boundsB Box3D) bool {
	if a.Layers&b.Layers == 0 {
		return false
	}
	if !boundsA.Overlaps(boundsB) {
		return false
	}
	if a.Trigger != nil && b.Trigger != nil {
		return false
	}
	return !np.solver.IsConstrainedPair(a.handle, b.handle)
}

// collideTwoObjectsSwept sweeps b's motion relative to a. Both bodies are
// moved back to the fraction of the tick where they first touch.
func (np *narrowPhase) collideTwoObjectsSwept(a, b *CollisionObject) {
	if !sweepsAsOne(a) || !sweepsAsOne(b) {
		np.collideTwoObjects(a, b)
		return
	}
	if !np.shouldPair(a, b, a.sweptBoundingBox(), b.sweptBoundingBox()) {
		return
	}

	supportA := a.support()
	endB := b.support()
	posA := supportA.Position
	relativePrev := add(sub(b.prevPosition, a.prevPosition), posA)
	swept := SweptSupport{Shape: endB.Shape, Rotation: endB.Rotation, Start: relativePrev, End: endB.Position}

	var simplex Simplex
	if !CheckForOverlap(&simplex, &supportA, &swept, sub(relativePrev, posA)) {
		return
	}

	if a.Trigger != nil {
		handleTrigger(a, b)
		return
	}
	if b.Trigger != nil {
		handleTrigger(b, a)
		return
	}

	result, fraction, ok := EpaSolveSwept(&supportA, endB, relativePrev, endB.Position)
	if !ok {
		np.collideTwoObjects(a, b)
		return
	}

	if np.touchingPortal(a, b, true, result.ContactA, result.ContactB, result.Normal) {
		return
	}

	m := np.solver.GetContactManifold(a.handle, b.handle)
	if m == nil {
		return
	}

	if !a.Body.IsKinematic() {
		a.Body.Transform.Position = rl.Vector3Lerp(a.prevPosition, posA, fraction)
		a.UpdateBoundingBox()
	}
	if !b.Body.IsKinematic() {
		b.Body.Transform.Position = rl.Vector3Lerp(b.prevPosition, endB.Position, fraction)
		b.UpdateBoundingBox()
	}

	// the contact was found with a at its end pose
	shift := sub(a.Body.Transform.Position, posA)
	result.ContactA = add(result.ContactA, shift)
	result.ContactB = add(result.ContactB, shift)

	m.Friction = maxf(a.Collider.Friction, b.Collider.Friction)
	m.Restitution = minf(a.Collider.Bounce, b.Collider.Bounce)

	np.insert(m, a, b, &result)
	handleSweptCollision(a, m.NormalFor(a.handle), m.Restitution)
	handleSweptCollision(b, m.NormalFor(b.handle), m.Restitution)
	np.afterContact(m, a, b)
}
