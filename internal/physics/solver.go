package physics

import (
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// SolverStats is a snapshot of the pools after a step
type SolverStats struct {
	ActiveManifolds   int
	Contacts          int
	DroppedManifolds  int
	ActiveConstraints int
}

// ContactSolver owns the manifold pool and the point constraints. All storage
// is allocated up front; a full pool drops new pairs.
type ContactSolver struct {
	cfg *Config

	manifolds []ContactManifold
	free      []int // stack of unused manifold slots
	active    []int

	constraints       []PointConstraint
	constraintGen     []uint16
	constraintFree    []int
	constraintsActive []int

	dropped    int
	loggedFull bool
}

func NewContactSolver(cfg *Config) *ContactSolver {
	s := &ContactSolver{
		cfg:               cfg,
		manifolds:         make([]ContactManifold, cfg.ManifoldCapacity),
		free:              make([]int, 0, cfg.ManifoldCapacity),
		active:            make([]int, 0, cfg.ManifoldCapacity),
		constraints:       make([]PointConstraint, cfg.ConstraintCapacity),
		constraintGen:     make([]uint16, cfg.ConstraintCapacity),
		constraintFree:    make([]int, 0, cfg.ConstraintCapacity),
		constraintsActive: make([]int, 0, cfg.ConstraintCapacity),
	}
	s.Reset()
	return s
}

// Reset returns every manifold and constraint to the free pools
func (s *ContactSolver) Reset() {
	s.free = s.free[:0]
	for i := len(s.manifolds) - 1; i >= 0; i-- {
		s.manifolds[i] = ContactManifold{index: i}
		s.free = append(s.free, i)
	}
	s.active = s.active[:0]

	s.constraintFree = s.constraintFree[:0]
	for i := len(s.constraints) - 1; i >= 0; i-- {
		s.constraints[i] = PointConstraint{}
		s.constraintFree = append(s.constraintFree, i)
	}
	s.constraintsActive = s.constraintsActive[:0]
	s.dropped = 0
}

func (s *ContactSolver) Stats() SolverStats {
	stats := SolverStats{
		ActiveManifolds:   len(s.active),
		DroppedManifolds:  s.dropped,
		ActiveConstraints: len(s.constraintsActive),
	}
	for _, idx := range s.active {
		stats.Contacts += s.manifolds[idx].ContactCount
	}
	return stats
}

// FreeManifolds is the number of unused manifold slots
func (s *ContactSolver) FreeManifolds() int {
	return len(s.free)
}

// GetContactManifold finds the manifold for an unordered pair or takes one
// from the pool. It returns nil when the pool is exhausted.
func (s *ContactSolver) GetContactManifold(a, b ObjectHandle) *ContactManifold {
	for _, idx := range s.active {
		m := &s.manifolds[idx]
		if (m.ShapeA == a && m.ShapeB == b) || (m.ShapeA == b && m.ShapeB == a) {
			return m
		}
	}

	if len(s.free) == 0 {
		s.dropped++
		if !s.loggedFull {
			log.Printf("Physics: contact manifold pool exhausted (%d), dropping new pairs", len(s.manifolds))
			s.loggedFull = true
		}
		return nil
	}

	idx := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]
	s.active = append(s.active, idx)

	m := &s.manifolds[idx]
	*m = ContactManifold{index: idx, ShapeA: a, ShapeB: b}
	return m
}

// FindManifold returns the active manifold of a pair without allocating one
func (s *ContactSolver) FindManifold(a, b ObjectHandle) *ContactManifold {
	for _, idx := range s.active {
		m := &s.manifolds[idx]
		if (m.ShapeA == a && m.ShapeB == b) || (m.ShapeA == b && m.ShapeB == a) {
			return m
		}
	}
	return nil
}

// releaseAt clears the membership bits of the manifold at position i of the
// active list and returns it to the free stack.
func (s *ContactSolver) releaseAt(scene *CollisionScene, i int) {
	idx := s.active[i]
	m := &s.manifolds[idx]
	bit := m.bit()
	if a := scene.Object(m.ShapeA); a != nil {
		a.manifoldIDs &^= bit
	}
	if b := scene.Object(m.ShapeB); b != nil {
		b.manifoldIDs &^= bit
	}
	*m = ContactManifold{index: idx}

	copy(s.active[i:], s.active[i+1:])
	s.active = s.active[:len(s.active)-1]
	s.free = append(s.free, idx)
	s.loggedFull = false
}

// RemoveUnusedContacts refreshes every active manifold against the current
// poses and returns empty ones to the pool.
func (s *ContactSolver) RemoveUnusedContacts(scene *CollisionScene) {
	for i := 0; i < len(s.active); {
		m := &s.manifolds[s.active[i]]
		a := scene.Object(m.ShapeA)
		b := scene.Object(m.ShapeB)

		if a == nil || b == nil || m.refresh(a, b, s.cfg.SlideTolerance) == 0 {
			s.releaseAt(scene, i)
			continue
		}
		i++
	}
}

// CheckPortalContacts empties every manifold holding a point that now lies on
// an open portal and wakes the bodies involved. Run whenever a portal moves.
func (s *ContactSolver) CheckPortalContacts(scene *CollisionScene) {
	if !scene.Portals.IsOpen() {
		return
	}
	sleepFrames := s.cfg.SleepFrames()

	for _, idx := range s.active {
		m := &s.manifolds[idx]
		a := scene.Object(m.ShapeA)
		b := scene.Object(m.ShapeB)
		if a == nil || b == nil {
			continue
		}

		for j := 0; j < m.ContactCount; j++ {
			point := &m.Contacts[j]
			pointA := worldPoint(a, point.ContactALocal)
			pointB := worldPoint(b, point.ContactBLocal)
			if scene.Portals.IsTouchingPortal(pointA, m.Normal) == 0 &&
				scene.Portals.IsTouchingPortal(pointB, negate(m.Normal)) == 0 {
				continue
			}

			m.ContactCount = 0
			if a.Body != nil {
				a.Body.Wake(sleepFrames)
			}
			if b.Body != nil {
				b.Body.Wake(sleepFrames)
			}
			break
		}
	}
}

// NextManifold iterates the manifolds touching object. Pass nil to start.
func (s *ContactSolver) NextManifold(object *CollisionObject, current *ContactManifold) *ContactManifold {
	start := 0
	if current != nil {
		start = current.index + 1
	}
	for i := start; i < len(s.manifolds); i++ {
		if object.manifoldIDs&(1<<uint(i)) != 0 {
			return &s.manifolds[i]
		}
	}
	return nil
}

// ForEachManifold visits the active manifolds in pool order of activation
func (s *ContactSolver) ForEachManifold(fn func(m *ContactManifold)) {
	for _, idx := range s.active {
		fn(&s.manifolds[idx])
	}
}

// RemoveObject releases every manifold and constraint that references handle
func (s *ContactSolver) RemoveObject(scene *CollisionScene, handle ObjectHandle) {
	for i := 0; i < len(s.active); {
		m := &s.manifolds[s.active[i]]
		if m.ShapeA == handle || m.ShapeB == handle {
			s.releaseAt(scene, i)
			continue
		}
		i++
	}

	for i := 0; i < len(s.constraintsActive); {
		idx := s.constraintsActive[i]
		c := &s.constraints[idx]
		if c.Object == handle || c.Holder == handle {
			s.releaseConstraint(idx)
			continue
		}
		i++
	}
}

// Solve runs the point constraints, the pre-solve pass and the velocity iterations
func (s *ContactSolver) Solve(scene *CollisionScene, dt float32) {
	s.solveConstraints(scene, dt)
	s.preSolve(scene, dt)
	for i := 0; i < s.cfg.SolverIterations; i++ {
		s.iterate()
	}
	for _, idx := range s.active {
		m := &s.manifolds[idx]
		m.bodyA = nil
		m.bodyB = nil
	}
}

// immovable bodies never take impulses
func receivesImpulses(body *RigidBody) bool {
	return body != nil && body.Flags&Kinematic == 0 && (body.MassInv != 0 || body.MomentOfInertiaInv != 0)
}

func applyContactImpulse(body *RigidBody, offset, impulse rl.Vector3, sign float32) {
	if !receivesImpulses(body) {
		return
	}
	body.Velocity = addScaled(body.Velocity, impulse, sign*body.MassInv)
	body.AngularVelocity = addScaled(body.AngularVelocity, cross(offset, impulse), sign*body.MomentOfInertiaInv)
}

func (m *ContactManifold) relativeVelocity(c *ContactPoint) rl.Vector3 {
	var velocity rl.Vector3
	if m.bodyB != nil {
		velocity = add(cross(m.bodyB.AngularVelocity, c.ContactBWorld), m.bodyB.Velocity)
	}
	if m.bodyA != nil {
		velocity = sub(velocity, cross(m.bodyA.AngularVelocity, c.ContactAWorld))
		velocity = sub(velocity, m.bodyA.Velocity)
	}
	return velocity
}

func inverseMasses(body *RigidBody) (float32, float32) {
	if !receivesImpulses(body) {
		return 0, 0
	}
	return body.MassInv, body.MomentOfInertiaInv
}

func (s *ContactSolver) preSolve(scene *CollisionScene, dt float32) {
	invDt := safeInvert(dt)

	for _, idx := range s.active {
		m := &s.manifolds[idx]
		m.bodyA = nil
		m.bodyB = nil

		a := scene.Object(m.ShapeA)
		b := scene.Object(m.ShapeB)
		if a == nil || b == nil || (!a.IsActive() && !b.IsActive()) {
			continue
		}
		m.bodyA = a.Body
		m.bodyB = b.Body

		massA, inertiaA := inverseMasses(m.bodyA)
		massB, inertiaB := inverseMasses(m.bodyB)

		for j := 0; j < m.ContactCount; j++ {
			c := &m.Contacts[j]

			nm := massA + massB
			tm := [2]float32{nm, nm}

			nm += inertiaA * magSq(cross(c.ContactAWorld, m.Normal))
			nm += inertiaB * magSq(cross(c.ContactBWorld, m.Normal))
			c.NormalMass = safeInvert(nm)

			for i := 0; i < 2; i++ {
				tm[i] += inertiaA * magSq(cross(m.TangentVectors[i], c.ContactAWorld))
				tm[i] += inertiaB * magSq(cross(m.TangentVectors[i], c.ContactBWorld))
				c.TangentMass[i] = safeInvert(tm[i])
			}

			c.Bias = -s.cfg.Baumgarte * invDt * minf(0, c.Penetration+s.cfg.PenetrationSlop)

			// warm start
			impulse := scale(m.Normal, c.NormalImpulse)
			impulse = addScaled(impulse, m.TangentVectors[0], c.TangentImpulse[0])
			impulse = addScaled(impulse, m.TangentVectors[1], c.TangentImpulse[1])
			applyContactImpulse(m.bodyA, c.ContactAWorld, impulse, -1)
			applyContactImpulse(m.bodyB, c.ContactBWorld, impulse, 1)

			dv := dot(m.relativeVelocity(c), m.Normal)
			if dv < -s.cfg.RestitutionThreshold {
				c.Bias += -m.Restitution * dv
			}
		}
	}
}

func (s *ContactSolver) iterate() {
	for _, idx := range s.active {
		m := &s.manifolds[idx]
		if m.bodyA == nil && m.bodyB == nil {
			continue
		}

		for j := 0; j < m.ContactCount; j++ {
			c := &m.Contacts[j]

			// friction first, clamped to a box around the current normal impulse
			dv := m.relativeVelocity(c)
			for i := 0; i < 2; i++ {
				lambda := -dot(dv, m.TangentVectors[i]) * c.TangentMass[i]
				maxLambda := m.Friction * c.NormalImpulse

				old := c.TangentImpulse[i]
				c.TangentImpulse[i] = clamp(old+lambda, -maxLambda, maxLambda)
				lambda = c.TangentImpulse[i] - old

				impulse := scale(m.TangentVectors[i], lambda)
				applyContactImpulse(m.bodyA, c.ContactAWorld, impulse, -1)
				applyContactImpulse(m.bodyB, c.ContactBWorld, impulse, 1)
			}

			vn := dot(m.relativeVelocity(c), m.Normal)
			lambda := c.NormalMass * (-vn + c.Bias)

			old := c.NormalImpulse
			c.NormalImpulse = maxf(old+lambda, 0)
			lambda = c.NormalImpulse - old

			impulse := scale(m.Normal, lambda)
			applyContactImpulse(m.bodyA, c.ContactAWorld, impulse, -1)
			applyContactImpulse(m.bodyB, c.ContactBWorld, impulse, 1)
		}
	}
}
