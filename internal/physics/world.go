package physics

import (
	"fmt"
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// CollisionPair is an unordered pair of objects in contact
type CollisionPair struct {
	A, B ObjectHandle
}

// makePair orders the handles so a pair has one key
func makePair(a, b ObjectHandle) CollisionPair {
	if a > b {
		return CollisionPair{A: b, B: a}
	}
	return CollisionPair{A: a, B: b}
}

// CollisionListener is told when two objects start or stop touching
type CollisionListener interface {
	OnCollisionEnter(a, b ObjectHandle)
	OnCollisionExit(a, b ObjectHandle)
}

// StepStats describes the last completed step
type StepStats struct {
	Tick uint64
	SolverStats
	Awake      int
	Sleeping   int
	SweptTests int
	Teleports  int
}

// ContactInfo is one contact point seen from a given object
type ContactInfo struct {
	Other ObjectHandle
	// points away from the other object toward this one
	Normal      rl.Vector3
	Point       rl.Vector3
	Penetration float32
}

// PhysicsWorld owns everything one simulation needs: tuning, the scene, the
// solver pools and per step scratch. Worlds share nothing.
type PhysicsWorld struct {
	Config Config
	Scene  *CollisionScene
	Solver *ContactSolver

	narrow      *narrowPhase
	quadScratch []int
	tick        uint64
	stats       StepStats

	listener          CollisionListener
	activeCollisions  map[CollisionPair]bool // pairs touching after the last step
	currentCollisions map[CollisionPair]bool
}

// NewPhysicsWorld validates cfg and builds a world around the static level
func NewPhysicsWorld(cfg Config, quads []StaticQuad, topology *Topology) (*PhysicsWorld, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scene, err := NewCollisionScene(quads, topology, cfg.DynamicCapacity)
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}

	w := &PhysicsWorld{
		Config:            cfg,
		Scene:             scene,
		quadScratch:       make([]int, 0, len(quads)),
		activeCollisions:  make(map[CollisionPair]bool),
		currentCollisions: make(map[CollisionPair]bool),
	}
	w.Solver = NewContactSolver(&w.Config)
	w.narrow = newNarrowPhase(scene, w.Solver, &w.Config)
	scene.solver = w.Solver

	rooms := 0
	if topology != nil {
		rooms = len(topology.Rooms)
	}
	log.Printf("Physics: world ready (%d quads, %d rooms, %d dynamic slots, %d manifolds)",
		len(quads), rooms, cfg.DynamicCapacity, cfg.ManifoldCapacity)

	return w, nil
}

func (w *PhysicsWorld) Tick() uint64 {
	return w.tick
}

func (w *PhysicsWorld) Stats() StepStats {
	return w.stats
}

func (w *PhysicsWorld) SetCollisionListener(listener CollisionListener) {
	w.listener = listener
}

// NewBodyObject creates an object with a rigid body whose inertia comes from the shape
func (w *PhysicsWorld) NewBodyObject(collider *Collider, mass float32, transform Transform, layers CollisionLayers) *CollisionObject {
	body := &RigidBody{}
	body.Init(mass, collider.Shape.MomentOfInertia(mass), w.Config.SleepFrames())
	body.Transform = transform
	if body.Transform.Rotation == (rl.Quaternion{}) {
		body.Transform.Rotation = quatIdentity()
	}
	if body.Transform.Scale == (rl.Vector3{}) {
		body.Transform.Scale = rl.Vector3{X: 1, Y: 1, Z: 1}
	}
	return &CollisionObject{Collider: collider, Body: body, Layers: layers}
}

// AddObject registers a dynamic object and wakes it
func (w *PhysicsWorld) AddObject(object *CollisionObject) (ObjectHandle, error) {
	h, err := w.Scene.AddDynamicObject(object)
	if err != nil {
		return 0, err
	}
	object.Body.Wake(w.Config.SleepFrames())
	return h, nil
}

// AddBody is NewBodyObject followed by AddObject
func (w *PhysicsWorld) AddBody(collider *Collider, mass float32, transform Transform, layers CollisionLayers) (ObjectHandle, error) {
	return w.AddObject(w.NewBodyObject(collider, mass, transform, layers))
}

func (w *PhysicsWorld) RemoveObject(h ObjectHandle) error {
	if err := w.Scene.RemoveDynamicObject(h); err != nil {
		return err
	}
	for pair := range w.activeCollisions {
		if pair.A == h || pair.B == h {
			delete(w.activeCollisions, pair)
		}
	}
	return nil
}

func (w *PhysicsWorld) Object(h ObjectHandle) *CollisionObject {
	return w.Scene.Object(h)
}

// Body returns the rigid body of a dynamic object, or nil
func (w *PhysicsWorld) Body(h ObjectHandle) *RigidBody {
	if object := w.Scene.Object(h); object != nil {
		return object.Body
	}
	return nil
}

// ForEachContact visits every contact point of the object's manifolds
func (w *PhysicsWorld) ForEachContact(h ObjectHandle, fn func(ContactInfo)) {
	object := w.Scene.Object(h)
	if object == nil {
		return
	}
	for m := w.Solver.NextManifold(object, nil); m != nil; m = w.Solver.NextManifold(object, m) {
		normal := m.NormalFor(h)
		for _, point := range m.Points() {
			local := point.ContactBLocal
			if m.ShapeA == h {
				local = point.ContactALocal
			}
			fn(ContactInfo{
				Other:       m.Other(h),
				Normal:      normal,
				Point:       worldPoint(object, local),
				Penetration: point.Penetration,
			})
		}
	}
}

func (w *PhysicsWorld) Raycast(ray rl.Ray, layers CollisionLayers, maxDistance float32, passThroughPortals bool) (RaycastHit, bool) {
	return w.Scene.Raycast(ray, layers, maxDistance, passThroughPortals)
}

func (w *PhysicsWorld) AddPointConstraint(object, holder ObjectHandle, maxPosImpulse, maxRotImpulse, movementScaling float32) (ConstraintHandle, error) {
	return w.Solver.AddPointConstraint(w.Scene, object, holder, maxPosImpulse, maxRotImpulse, movementScaling)
}

func (w *PhysicsWorld) UpdatePointConstraintTarget(h ConstraintHandle, position rl.Vector3, rotation rl.Quaternion) error {
	return w.Solver.UpdatePointConstraintTarget(h, position, rotation)
}

func (w *PhysicsWorld) ClearPointConstraintTarget(h ConstraintHandle) error {
	return w.Solver.ClearPointConstraintTarget(h)
}

func (w *PhysicsWorld) RemovePointConstraint(h ConstraintHandle) error {
	return w.Solver.RemovePointConstraint(h)
}

func (w *PhysicsWorld) SetPortal(index int, transform Transform, room int, velocity rl.Vector3) {
	w.Scene.SetPortal(index, transform, room, velocity)
}

func (w *PhysicsWorld) ClosePortal(index int) {
	w.Scene.ClosePortal(index)
}

// Step advances the simulation by one fixed tick
func (w *PhysicsWorld) Step() {
	cfg := &w.Config
	dt := cfg.FixedDeltaTime
	w.tick++
	w.stats = StepStats{Tick: w.tick}

	// 1. cleanup
	w.Solver.RemoveUnusedContacts(w.Scene)
	for _, h := range w.Scene.dynamic {
		body := w.Scene.Object(h).Body
		body.Flags &^= PlayerStandingOn
		if body.IsSleeping() {
			continue
		}
		wasTouching := body.Flags & (TouchingPortalA | TouchingPortalB)
		body.Flags &^= WasTouchingPortalA | WasTouchingPortalB | TouchingPortalA | TouchingPortalB
		body.Flags |= wasTouching << 2
	}

	// 2. gravity
	for _, h := range w.Scene.dynamic {
		object := w.Scene.Object(h)
		if object.IsActive() {
			object.Body.ApplyGravity(cfg.Gravity, dt)
		}
	}

	// 3. collide
	w.Solver.dropped = 0
	w.collide()

	// 4. solve
	w.Solver.Solve(w.Scene, dt)

	// 5. integrate
	w.integrate(dt)

	// 6. notify
	w.dispatchTriggers()
	w.dispatchCollisionCallbacks()

	w.stats.SolverStats = w.Solver.Stats()
}

// isFast reports an object that moved far enough last tick to tunnel
func (w *PhysicsWorld) isFast(object *CollisionObject) bool {
	if !object.IsActive() || !sweepsAsOne(object) {
		return false
	}
	limit := w.Config.SweptFraction * object.BoundingBox.MinHalfExtent()
	return magSq(sub(object.Body.Transform.Position, object.prevPosition)) > limit*limit
}

func (w *PhysicsWorld) collide() {
	scene := w.Scene
	np := w.narrow

	for _, h := range scene.dynamic {
		object := scene.Object(h)
		if object.Trigger != nil {
			continue
		}
		generates := object.ShouldGenerateContacts()
		swept := w.isFast(object)
		if swept {
			w.stats.SweptTests++
		}

		w.quadScratch = scene.candidateQuads(object, w.quadScratch)
		for _, qi := range w.quadScratch {
			quadObject := scene.Quad(qi)
			if !generates && quadObject.Trigger == nil {
				continue
			}
			if swept {
				np.collideWithQuadSwept(object, quadObject)
			} else {
				np.collideWithQuad(object, quadObject)
			}
		}
	}

	for i, ha := range scene.dynamic {
		a := scene.Object(ha)
		for _, hb := range scene.dynamic[i+1:] {
			b := scene.Object(hb)
			if !a.ShouldGenerateContacts() && !b.ShouldGenerateContacts() && a.Trigger == nil && b.Trigger == nil {
				continue
			}

			fastA, fastB := w.isFast(a), w.isFast(b)
			switch {
			case fastB:
				np.collideTwoObjectsSwept(a, b)
			case fastA:
				np.collideTwoObjectsSwept(b, a)
			default:
				np.collideTwoObjects(a, b)
			}
		}
	}
}

func (w *PhysicsWorld) integrate(dt float32) {
	cfg := &w.Config
	scene := w.Scene

	for _, h := range scene.dynamic {
		object := scene.Object(h)
		body := object.Body

		if body.IsSleeping() {
			w.stats.Sleeping++
			object.prevPosition = body.Transform.Position
			continue
		}

		sides := scene.Topology.DoorwaySides(body.Transform.Position, body.CurrentRoom)
		prev := body.Transform.Position

		if !body.IsKinematic() && !body.Integrate(dt, cfg.Damping, cfg) {
			w.stats.Sleeping++
			object.prevPosition = body.Transform.Position
			continue
		}
		w.stats.Awake++

		if scene.Topology != nil && body.CurrentRoom != NoRoom {
			body.CurrentRoom = scene.Topology.CheckDoorwayCrossings(body.Transform.Position, body.CurrentRoom, sides)
		}

		object.prevPosition = prev
		if entered := body.CheckPortals(&scene.Portals); entered != 0 {
			object.prevPosition = body.Transform.Position
			w.stats.Teleports++
			log.Printf("Physics: object %#x entered portal %d", uint32(h), entered-1)
		}
		if body.IsKinematic() {
			object.prevPosition = body.Transform.Position
		}

		object.UpdateBoundingBox()
	}
}

func (w *PhysicsWorld) dispatchTriggers() {
	scene := w.Scene
	for i := 0; i < scene.quadCount; i++ {
		object := scene.slots[i].object
		if trigger, ok := object.Trigger.(*VolumeTrigger); ok {
			trigger.dispatch(object.handle)
		}
	}
	for _, h := range scene.dynamic {
		object := scene.Object(h)
		if trigger, ok := object.Trigger.(*VolumeTrigger); ok {
			trigger.dispatch(h)
		}
	}
}

// dispatchCollisionCallbacks compares the pairs in contact with the last step
func (w *PhysicsWorld) dispatchCollisionCallbacks() {
	clear(w.currentCollisions)
	w.Solver.ForEachManifold(func(m *ContactManifold) {
		if m.ContactCount > 0 {
			w.currentCollisions[makePair(m.ShapeA, m.ShapeB)] = true
		}
	})

	if w.listener != nil {
		for pair := range w.currentCollisions {
			if !w.activeCollisions[pair] {
				w.listener.OnCollisionEnter(pair.A, pair.B)
			}
		}
		for pair := range w.activeCollisions {
			if !w.currentCollisions[pair] {
				w.listener.OnCollisionExit(pair.A, pair.B)
			}
		}
	}

	w.activeCollisions, w.currentCollisions = w.currentCollisions, w.activeCollisions
}
