package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// RigidBodyFlags are state bits polled by gameplay code each tick
type RigidBodyFlags uint32

const (
	InFrontPortal0 RigidBodyFlags = 1 << iota
	InFrontPortal1
	PortalsInactive
	CrossedPortal0
	CrossedPortal1
	Grabbable
	TouchingPortalA
	TouchingPortalB
	WasTouchingPortalA
	WasTouchingPortalB
	Kinematic
	Sleeping
	// Player bodies generate contacts even while kinematic
	Player
	Fizzled
	DisableGravity
	// ForceVelocity bodies keep the velocity gameplay wrote, undamped
	ForceVelocity
	// PlayerStandingOn is set on bodies a player rested on this tick
	PlayerStandingOn
)

const (
	NoRoom = 0xFFFF

	// stand-in for infinite mass while kinematic
	kinematicMass = 1e15
)

// RigidBody is the dynamic state of one simulated object
type RigidBody struct {
	Transform       Transform
	Velocity        rl.Vector3
	AngularVelocity rl.Vector3

	Mass               float32
	MassInv            float32
	MomentOfInertia    float32
	MomentOfInertiaInv float32

	Flags       RigidBodyFlags
	CurrentRoom int
	sleepFrames int
}

// Init resets the body to rest at the origin with the given mass properties
func (b *RigidBody) Init(mass, momentOfInertia float32, sleepFrames int) {
	b.Transform = IdentityTransform()
	b.Velocity = rl.Vector3{}
	b.AngularVelocity = rl.Vector3{}
	b.Mass = mass
	b.MassInv = safeInvert(mass)
	b.MomentOfInertia = momentOfInertia
	b.MomentOfInertiaInv = safeInvert(momentOfInertia)
	b.Flags = 0
	b.CurrentRoom = NoRoom
	b.sleepFrames = sleepFrames
}

func (b *RigidBody) Has(flags RigidBodyFlags) bool {
	return b.Flags&flags != 0
}

func (b *RigidBody) IsKinematic() bool {
	return b.Flags&Kinematic != 0
}

func (b *RigidBody) IsSleeping() bool {
	return b.Flags&Sleeping != 0
}

// MarkKinematic gives the body infinite mass. Only direct writes move it afterwards.
func (b *RigidBody) MarkKinematic() {
	b.Flags |= Kinematic
	b.Mass = kinematicMass
	b.MassInv = 0
	b.MomentOfInertia = kinematicMass
	b.MomentOfInertiaInv = 0
}

// UnmarkKinematic restores finite mass properties
func (b *RigidBody) UnmarkKinematic(mass, momentOfInertia float32) {
	b.Flags &^= Kinematic
	b.Mass = mass
	b.MassInv = safeInvert(mass)
	b.MomentOfInertia = momentOfInertia
	b.MomentOfInertiaInv = safeInvert(momentOfInertia)
}

// Wake clears the sleeping flag and restarts the idle countdown
func (b *RigidBody) Wake(sleepFrames int) {
	b.Flags &^= Sleeping
	b.sleepFrames = sleepFrames
}

// ApplyImpulse applies an impulse at a world space point
func (b *RigidBody) ApplyImpulse(worldPoint, impulse rl.Vector3) {
	offset := sub(worldPoint, b.Transform.Position)
	torque := cross(offset, impulse)
	b.AngularVelocity = addScaled(b.AngularVelocity, torque, b.MomentOfInertiaInv)
	b.Velocity = addScaled(b.Velocity, impulse, b.MassInv)
}

// ApplyGravity accelerates the body along y unless gravity is disabled
func (b *RigidBody) ApplyGravity(gravity, dt float32) {
	if b.Flags&DisableGravity != 0 {
		return
	}
	b.Velocity.Y += gravity * dt
}

// Integrate advances position and rotation by the current velocities, damps
// them and handles sleep and the kill plane. It returns false when the body
// fell asleep this tick and did not move.
func (b *RigidBody) Integrate(dt, damping float32, cfg *Config) bool {
	if absf(b.Velocity.X) < cfg.SleepVelocity && absf(b.Velocity.Y) < cfg.SleepVelocity && absf(b.Velocity.Z) < cfg.SleepVelocity &&
		absf(b.AngularVelocity.X) < cfg.SleepVelocity && absf(b.AngularVelocity.Y) < cfg.SleepVelocity && absf(b.AngularVelocity.Z) < cfg.SleepVelocity {
		b.sleepFrames--
		if b.sleepFrames <= 0 {
			b.Flags |= Sleeping
			b.Velocity = rl.Vector3{}
			b.AngularVelocity = rl.Vector3{}
			return false
		}
	} else {
		b.sleepFrames = cfg.SleepFrames()
	}

	b.Transform.Position = addScaled(b.Transform.Position, b.Velocity, dt)
	b.Transform.Rotation = quatApplyAngularVelocity(b.Transform.Rotation, b.AngularVelocity, dt)

	if b.Flags&ForceVelocity == 0 {
		b.Velocity = scale(b.Velocity, damping)
		b.AngularVelocity = scale(b.AngularVelocity, damping)
	}

	if b.Transform.Position.Y < cfg.KillPlaneY {
		b.Transform.Position.Y = cfg.KillPlaneY
		b.Velocity.Y = 0
		b.Flags |= Fizzled
	}

	return true
}

// Update applies gravity then integrates, for bodies stepped outside a world
func (b *RigidBody) Update(cfg *Config) bool {
	b.ApplyGravity(cfg.Gravity, cfg.FixedDeltaTime)
	return b.Integrate(cfg.FixedDeltaTime, cfg.Damping, cfg)
}

func (b *RigidBody) VelocityAtLocalPoint(localPoint rl.Vector3) rl.Vector3 {
	return add(cross(b.AngularVelocity, localPoint), b.Velocity)
}

func (b *RigidBody) VelocityAtWorldPoint(worldPoint rl.Vector3) rl.Vector3 {
	return b.VelocityAtLocalPoint(sub(worldPoint, b.Transform.Position))
}

// MassInverseAtLocalPoint is the effective inverse mass along normal at an offset from the center
func (b *RigidBody) MassInverseAtLocalPoint(localPoint, normal rl.Vector3) float32 {
	return b.MassInv + b.MomentOfInertiaInv*magSq(cross(localPoint, normal))
}

// Teleport maps the body through the from portal onto the to portal.
// Velocities are carried relative to the portals' own motion.
func (b *RigidBody) Teleport(from, to Transform, fromVelocity, toVelocity rl.Vector3, toRoom int) {
	mapping := portalMapping(from, to)

	b.Transform.Position = mapping.PointNoScale(b.Transform.Position)

	relativeVelocity := sub(b.Velocity, fromVelocity)
	b.Velocity = add(rotate(mapping.Rotation, relativeVelocity), toVelocity)
	b.AngularVelocity = rotate(mapping.Rotation, b.AngularVelocity)
	b.Transform.Rotation = quatNormalize(quatMultiply(mapping.Rotation, b.Transform.Rotation))

	b.CurrentRoom = toRoom
}

// clampToPortal pulls a point in portal local space inside a smaller oval on
// the portal surface and moves the body there.
func (b *RigidBody) clampToPortal(portal Transform, localPoint rl.Vector3) {
	clamped := rl.Vector3{X: localPoint.X, Y: localPoint.Y * 0.5}
	for magSq(clamped) > portalExitClampDistance*portalExitClampDistance {
		clamped = scale(clamped, 0.9)
	}
	localPoint.X = clamped.X
	localPoint.Y = clamped.Y * 2
	b.Transform.Position = portal.PointNoScale(localPoint)
}

// CheckPortals updates the in front flags and teleports the body when it
// crossed an open portal it was touching. It returns 1 + the index of the
// portal entered, or 0.
func (b *RigidBody) CheckPortals(portals *PortalPair) int {
	if !portals.IsOpen() {
		b.Flags &^= InFrontPortal0 | InFrontPortal1
		b.Flags |= PortalsInactive
		return 0
	}

	var newFlags RigidBodyFlags
	newFlags |= b.Flags & (TouchingPortalA | TouchingPortalB)

	result := 0

	for i := 0; i < 2; i++ {
		portal := &portals.Portals[i]
		localPoint := portal.Transform.InversePointNoScale(b.Transform.Position)

		inFront := InFrontPortal0 << i
		if localPoint.Z > 0 {
			newFlags |= inFront
		}

		touching := TouchingPortalA << i
		wasTouching := WasTouchingPortalA << i
		if b.Flags&(touching|wasTouching) == 0 {
			continue
		}

		// first frame after opening, just teleported, or crossed this tick already
		if b.Flags&(PortalsInactive|CrossedPortal0<<(1-i)) != 0 || newFlags&(CrossedPortal0|CrossedPortal1) != 0 {
			continue
		}

		localVelocity := unrotate(portal.Transform.Rotation, b.Velocity)
		if dot(localVelocity, localPoint) < 0 && b.Flags&(TouchingPortalA<<(1-i)) == 0 {
			b.clampToPortal(portal.Transform, localPoint)
		}

		// crossing means going from the front to behind the portal surface
		if b.Flags&inFront == 0 || newFlags&inFront != 0 {
			continue
		}

		other := &portals.Portals[1-i]
		b.Teleport(portal.Transform, other.Transform, portal.Velocity, other.Velocity, other.Room)
		b.clampExitSpeed(other.Transform)

		newFlags |= CrossedPortal0 << i
		newFlags |= InFrontPortal0 << (1 - i)
		newFlags |= TouchingPortalA << (1 - i)
		newFlags &^= touching
		result = i + 1
	}

	b.Flags &^= InFrontPortal0 | InFrontPortal1 | PortalsInactive | CrossedPortal0 | CrossedPortal1 |
		TouchingPortalA | TouchingPortalB
	b.Flags |= newFlags

	return result
}

// clampExitSpeed caps the exit speed and gives a minimum launch out of floor portals
func (b *RigidBody) clampExitSpeed(exit Transform) {
	speedSq := magSq(b.Velocity)

	if speedSq > maxPortalSpeed*maxPortalSpeed {
		b.Velocity = scale(normalize(b.Velocity), maxPortalSpeed)
	}

	if speedSq < minPortalSpeed*minPortalSpeed {
		exitNormal := rotate(exit.Rotation, gForward)
		if exitNormal.Y > 0.9 {
			if speedSq < 0.000001 {
				b.Velocity = scale(exitNormal, minPortalSpeed)
			} else {
				b.Velocity = scale(normalize(b.Velocity), minPortalSpeed)
			}
		}
	}
}
