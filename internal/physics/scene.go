package physics

import (
	"fmt"
	"log"
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// StaticQuad describes one immutable level surface
type StaticQuad struct {
	Quad     Quad
	Friction float32
	Bounce   float32
	// zero collides with every layer
	Layers  CollisionLayers
	Trigger Trigger
}

type objectSlot struct {
	object     *CollisionObject
	generation uint16
}

// CollisionScene owns the static level quads, the registry of dynamic objects,
// the room topology and the portal pair. Static quads occupy the first slots
// of the object arena and never move.
type CollisionScene struct {
	Topology *Topology
	Portals  PortalPair

	slots     []objectSlot
	quadCount int
	dynamic   []ObjectHandle // registry order
	free      []int          // released dynamic slots
	capacity  int

	// set by the owning world so removals and portal moves reach the pools
	solver *ContactSolver

	roomScratch []int
}

// NewCollisionScene builds the static part of a level. topology may be nil.
func NewCollisionScene(quads []StaticQuad, topology *Topology, dynamicCapacity int) (*CollisionScene, error) {
	if dynamicCapacity < 1 || len(quads)+dynamicCapacity > maxHandleIndex {
		return nil, fmt.Errorf("dynamic capacity %d with %d quads: %w", dynamicCapacity, len(quads), ErrInvalidConfig)
	}
	if topology != nil {
		if err := topology.Validate(len(quads)); err != nil {
			return nil, fmt.Errorf("load topology: %w", err)
		}
	}

	s := &CollisionScene{
		Topology:  topology,
		slots:     make([]objectSlot, len(quads), len(quads)+dynamicCapacity),
		quadCount: len(quads),
		dynamic:   make([]ObjectHandle, 0, dynamicCapacity),
		capacity:  dynamicCapacity,
	}

	for i := range quads {
		def := &quads[i]
		if def.Quad.EdgeALength <= 0 || def.Quad.EdgeBLength <= 0 {
			return nil, fmt.Errorf("quad %d has a zero length edge: %w", i, ErrInvalidShape)
		}
		quad := def.Quad

		layers := def.Layers
		if layers == 0 {
			layers = LayerAll
		}

		object := &CollisionObject{
			Collider: NewCollider(&quad, def.Friction, def.Bounce),
			Layers:   layers,
			Trigger:  def.Trigger,
			handle:   makeObjectHandle(i, 0),
		}
		object.BoundingBox = quad.BoundingBox(IdentityTransform())
		s.slots[i] = objectSlot{object: object}
	}

	return s, nil
}

// Object resolves a handle, returning nil when it is stale or invalid
func (s *CollisionScene) Object(h ObjectHandle) *CollisionObject {
	idx := h.index()
	if idx < 0 || idx >= len(s.slots) {
		return nil
	}
	slot := &s.slots[idx]
	if slot.object == nil || slot.generation != h.generation() {
		return nil
	}
	return slot.object
}

// QuadCount is the number of static quads
func (s *CollisionScene) QuadCount() int {
	return s.quadCount
}

// Quad returns static quad object i
func (s *CollisionScene) Quad(i int) *CollisionObject {
	return s.slots[i].object
}

// Quads returns the handles of the static quads in load order
func (s *CollisionScene) Quads() []ObjectHandle {
	handles := make([]ObjectHandle, s.quadCount)
	for i := range handles {
		handles[i] = s.slots[i].object.handle
	}
	return handles
}

// DynamicObjects returns the registered dynamic handles in registry order
func (s *CollisionScene) DynamicObjects() []ObjectHandle {
	return slices.Clone(s.dynamic)
}

func (s *CollisionScene) DynamicCount() int {
	return len(s.dynamic)
}

// AddDynamicObject registers an object with a body. A full registry returns
// ErrCapacity and the zero handle.
func (s *CollisionScene) AddDynamicObject(object *CollisionObject) (ObjectHandle, error) {
	if object == nil || object.Body == nil || object.Collider == nil || object.Collider.Shape == nil {
		return 0, fmt.Errorf("dynamic object needs a collider and a body: %w", ErrInvalidShape)
	}
	if object.handle.IsValid() && s.Object(object.handle) == object {
		return object.handle, nil
	}
	if len(s.dynamic) >= s.capacity {
		return 0, fmt.Errorf("dynamic registry full (%d): %w", s.capacity, ErrCapacity)
	}

	var idx int
	if len(s.free) > 0 {
		idx = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		idx = len(s.slots)
		s.slots = append(s.slots, objectSlot{})
	}

	slot := &s.slots[idx]
	slot.object = object
	object.handle = makeObjectHandle(idx, slot.generation)
	object.manifoldIDs = 0
	if object.Layers == 0 {
		object.Layers = LayerAll
	}
	object.prevPosition = object.Body.Transform.Position
	if object.Body.CurrentRoom == NoRoom {
		object.Body.CurrentRoom = s.Topology.RoomAt(object.Body.Transform.Position)
	}
	object.UpdateBoundingBox()

	s.dynamic = append(s.dynamic, object.handle)
	return object.handle, nil
}

// RemoveDynamicObject unregisters an object, releasing every manifold and
// constraint that references it. Trigger memberships are dropped silently.
func (s *CollisionScene) RemoveDynamicObject(h ObjectHandle) error {
	object := s.Object(h)
	if object == nil || h.index() < s.quadCount {
		return fmt.Errorf("remove object %#x: %w", uint32(h), ErrInvalidHandle)
	}

	if s.solver != nil {
		s.solver.RemoveObject(s, h)
	}
	for _, other := range s.dynamic {
		if trigger, ok := s.Object(other).Trigger.(*VolumeTrigger); ok {
			trigger.forget(h)
		}
	}
	for i := 0; i < s.quadCount; i++ {
		if trigger, ok := s.slots[i].object.Trigger.(*VolumeTrigger); ok {
			trigger.forget(h)
		}
	}

	if i := slices.Index(s.dynamic, h); i >= 0 {
		s.dynamic = slices.Delete(s.dynamic, i, i+1)
	}

	idx := h.index()
	s.slots[idx].object = nil
	s.slots[idx].generation++
	s.free = append(s.free, idx)

	object.handle = 0
	object.manifoldIDs = 0
	return nil
}

// SetPortal places portal index, opening it. Contacts now lying on an open
// portal are purged.
func (s *CollisionScene) SetPortal(index int, transform Transform, room int, velocity rl.Vector3) {
	portal := &s.Portals.Portals[index]
	wasOpen := s.Portals.IsOpen()

	portal.Transform = NewTransform(transform.Position, quatNormalize(transform.Rotation))
	portal.Room = room
	portal.Velocity = velocity
	portal.Open = true

	if !wasOpen && s.Portals.IsOpen() {
		log.Printf("Physics: portals linked (rooms %d and %d)", s.Portals.Portals[0].Room, s.Portals.Portals[1].Room)
	}
	if s.solver != nil {
		s.solver.CheckPortalContacts(s)
	}
}

// ClosePortal removes portal index; the pair stops working until it is placed again
func (s *CollisionScene) ClosePortal(index int) {
	s.Portals.Portals[index].Open = false
	s.Portals.Portals[index].Velocity = rl.Vector3{}
}

// IsPortalOpen reports whether both portals are placed
func (s *CollisionScene) IsPortalOpen() bool {
	return s.Portals.IsOpen()
}

// candidateQuads appends the static quads an object should be tested against
func (s *CollisionScene) candidateQuads(object *CollisionObject, out []int) []int {
	out = out[:0]
	if s.Topology != nil {
		var restricted bool
		out, restricted = s.Topology.roomQuads(object.Body.CurrentRoom, object.BoundingBox, out)
		if restricted {
			return out
		}
		out = out[:0]
	}
	for i := 0; i < s.quadCount; i++ {
		out = append(out, i)
	}
	return out
}
