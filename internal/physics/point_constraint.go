package physics

import (
	"fmt"
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	// a held object further than this from its target is dropped
	breakDistance = 1.25
	// share of the approach speed removed along a contact normal
	contactVelocityRemoval = 0.85
)

// ConstraintHandle refers to a PointConstraint. Layout matches ObjectHandle.
type ConstraintHandle uint32

func (h ConstraintHandle) index() int {
	return int(h&0xFFFF) - 1
}

func (h ConstraintHandle) generation() uint16 {
	return uint16(h >> 16)
}

// PointConstraint drives an object toward a target pose by velocity, the way
// the player holds a cube.
type PointConstraint struct {
	Object         ObjectHandle
	Holder         ObjectHandle
	TargetPosition rl.Vector3
	TargetRotation rl.Quaternion
	HasTarget      bool
	// velocity change caps per tick
	MaxPosImpulse float32
	MaxRotImpulse float32
	// scales the linear target velocity when within the cap
	MovementScaling float32
}

// AddPointConstraint constrains object and reports holder so the pair never
// collides. The target defaults to the object's current pose.
func (s *ContactSolver) AddPointConstraint(scene *CollisionScene, object, holder ObjectHandle, maxPosImpulse, maxRotImpulse, movementScaling float32) (ConstraintHandle, error) {
	target := scene.Object(object)
	if target == nil || target.Body == nil {
		return 0, fmt.Errorf("constrain object %#x: %w", uint32(object), ErrInvalidHandle)
	}
	if len(s.constraintFree) == 0 {
		return 0, fmt.Errorf("point constraint pool full (%d): %w", len(s.constraints), ErrCapacity)
	}

	idx := s.constraintFree[len(s.constraintFree)-1]
	s.constraintFree = s.constraintFree[:len(s.constraintFree)-1]
	s.constraintsActive = append(s.constraintsActive, idx)

	s.constraints[idx] = PointConstraint{
		Object:          object,
		Holder:          holder,
		TargetPosition:  target.Body.Transform.Position,
		TargetRotation:  target.Body.Transform.Rotation,
		HasTarget:       true,
		MaxPosImpulse:   maxPosImpulse,
		MaxRotImpulse:   maxRotImpulse,
		MovementScaling: movementScaling,
	}
	target.Body.Wake(s.cfg.SleepFrames())

	return ConstraintHandle(uint32(s.constraintGen[idx])<<16 | uint32(idx+1)), nil
}

// Constraint returns the live constraint for h or nil
func (s *ContactSolver) Constraint(h ConstraintHandle) *PointConstraint {
	idx := h.index()
	if idx < 0 || idx >= len(s.constraints) || s.constraintGen[idx] != h.generation() {
		return nil
	}
	for _, active := range s.constraintsActive {
		if active == idx {
			return &s.constraints[idx]
		}
	}
	return nil
}

// UpdatePointConstraintTarget sets a new pose to drive toward
func (s *ContactSolver) UpdatePointConstraintTarget(h ConstraintHandle, position rl.Vector3, rotation rl.Quaternion) error {
	c := s.Constraint(h)
	if c == nil {
		return fmt.Errorf("update constraint %#x: %w", uint32(h), ErrInvalidHandle)
	}
	c.TargetPosition = position
	c.TargetRotation = quatNormalize(rotation)
	c.HasTarget = true
	return nil
}

// ClearPointConstraintTarget leaves the constraint in place without driving the object
func (s *ContactSolver) ClearPointConstraintTarget(h ConstraintHandle) error {
	c := s.Constraint(h)
	if c == nil {
		return fmt.Errorf("clear constraint %#x: %w", uint32(h), ErrInvalidHandle)
	}
	c.HasTarget = false
	return nil
}

// RemovePointConstraint releases the constraint. Stale handles are an error.
func (s *ContactSolver) RemovePointConstraint(h ConstraintHandle) error {
	idx := h.index()
	if s.Constraint(h) == nil {
		return fmt.Errorf("remove constraint %#x: %w", uint32(h), ErrInvalidHandle)
	}
	s.releaseConstraint(idx)
	return nil
}

func (s *ContactSolver) releaseConstraint(idx int) {
	for i, active := range s.constraintsActive {
		if active == idx {
			copy(s.constraintsActive[i:], s.constraintsActive[i+1:])
			s.constraintsActive = s.constraintsActive[:len(s.constraintsActive)-1]
			break
		}
	}
	s.constraints[idx] = PointConstraint{}
	s.constraintGen[idx]++
	s.constraintFree = append(s.constraintFree, idx)
}

// IsConstrainedPair reports whether a and b are a held object and its holder
func (s *ContactSolver) IsConstrainedPair(a, b ObjectHandle) bool {
	for _, idx := range s.constraintsActive {
		c := &s.constraints[idx]
		if (c.Object == a && c.Holder == b) || (c.Object == b && c.Holder == a) {
			return true
		}
	}
	return false
}

// IsHeld reports whether any constraint drives object
func (s *ContactSolver) IsHeld(object ObjectHandle) bool {
	for _, idx := range s.constraintsActive {
		if s.constraints[idx].Object == object {
			return true
		}
	}
	return false
}

func (s *ContactSolver) solveConstraints(scene *CollisionScene, dt float32) {
	for i := 0; i < len(s.constraintsActive); {
		idx := s.constraintsActive[i]
		c := &s.constraints[idx]

		object := scene.Object(c.Object)
		if object == nil || object.Body == nil {
			s.releaseConstraint(idx)
			continue
		}

		if c.HasTarget && !object.Body.IsKinematic() {
			if !s.solvePointConstraint(object, c, dt) {
				log.Printf("Physics: held object %#x broke away from its target", uint32(c.Object))
				s.releaseConstraint(idx)
				continue
			}
		}
		i++
	}
}

// solvePointConstraint writes the velocities for one tick. It returns false
// when the object strayed past breakDistance.
func (s *ContactSolver) solvePointConstraint(object *CollisionObject, c *PointConstraint, dt float32) bool {
	body := object.Body
	invDt := safeInvert(dt)

	offset := sub(c.TargetPosition, body.Transform.Position)
	if magSq(offset) > breakDistance*breakDistance {
		return false
	}

	body.Wake(s.cfg.SleepFrames())

	targetVelocity := scale(offset, invDt)

	// do not push into whatever the object already rests against
	for m := s.NextManifold(object, nil); m != nil; m = s.NextManifold(object, m) {
		if m.ContactCount == 0 {
			continue
		}
		contactNormal := m.NormalFor(object.handle)
		overlap := dot(contactNormal, targetVelocity)
		if overlap < 0 {
			targetVelocity = addScaled(targetVelocity, contactNormal, -overlap*contactVelocityRemoval)
		}
	}

	delta := sub(targetVelocity, body.Velocity)
	deltaLength := length(delta)
	if deltaLength < c.MaxPosImpulse {
		body.Velocity = scale(targetVelocity, c.MovementScaling)
	} else {
		body.Velocity = addScaled(body.Velocity, delta, c.MaxPosImpulse/deltaLength)
	}

	rotationDelta := quatMultiply(c.TargetRotation, quatConjugate(body.Transform.Rotation))
	if rotationDelta.W < 0 {
		rotationDelta = rl.Quaternion{X: -rotationDelta.X, Y: -rotationDelta.Y, Z: -rotationDelta.Z, W: -rotationDelta.W}
	}
	axis, angle := quatDecompose(rotationDelta)
	targetAngular := scale(axis, angle*invDt)

	angularDelta := sub(targetAngular, body.AngularVelocity)
	angularLength := length(angularDelta)
	if angularLength < c.MaxRotImpulse {
		body.AngularVelocity = targetAngular
	} else {
		body.AngularVelocity = addScaled(body.AngularVelocity, angularDelta, c.MaxRotImpulse/angularLength)
	}

	return true
}
