package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// CollisionLayers is a bit mask; objects only collide when their masks intersect
type CollisionLayers uint32

const (
	LayerStatic CollisionLayers = 1 << iota
	LayerTangible
	LayerPlayer
	LayerGrabbable
	LayerFizzler
	LayerBlockBall

	LayerAll CollisionLayers = 0xFFFFFFFF
)

// ObjectHandle refers to a CollisionObject in a scene. The low 16 bits hold the
// slot index plus one, the high 16 bits the slot generation. Zero is never valid.
type ObjectHandle uint32

const maxHandleIndex = 0xFFFE

func makeObjectHandle(index int, generation uint16) ObjectHandle {
	return ObjectHandle(uint32(generation)<<16 | uint32(index+1))
}

func (h ObjectHandle) index() int {
	return int(h&0xFFFF) - 1
}

func (h ObjectHandle) generation() uint16 {
	return uint16(h >> 16)
}

func (h ObjectHandle) IsValid() bool {
	return h&0xFFFF != 0
}

// CollisionObject pairs a collider with an optional rigid body. Static quads
// have no body.
type CollisionObject struct {
	Collider    *Collider
	Body        *RigidBody
	BoundingBox Box3D
	Layers      CollisionLayers
	Trigger     Trigger
	// UserData is left untouched by the simulation
	UserData any

	handle      ObjectHandle
	manifoldIDs uint64
	// position before this tick's integration, for swept tests
	prevPosition rl.Vector3
}

func (o *CollisionObject) Handle() ObjectHandle {
	return o.handle
}

// ManifoldMask has one bit per manifold slot this object is part of
func (o *CollisionObject) ManifoldMask() uint64 {
	return o.manifoldIDs
}

// IsActive reports a dynamic, awake, non kinematic object
func (o *CollisionObject) IsActive() bool {
	return o.Body != nil && o.Body.Flags&(Kinematic|Sleeping) == 0
}

func (o *CollisionObject) IsGrabbable() bool {
	return o.Body != nil && o.Body.Flags&Grabbable != 0
}

// ShouldGenerateContacts is true for active objects and for the player
func (o *CollisionObject) ShouldGenerateContacts() bool {
	return o.IsActive() || (o.Body != nil && o.Body.Flags&Player != 0)
}

func (o *CollisionObject) transform() Transform {
	if o.Body == nil {
		return IdentityTransform()
	}
	return o.Body.Transform
}

// UpdateBoundingBox refreshes the cached world bounds from the body pose
func (o *CollisionObject) UpdateBoundingBox() {
	o.BoundingBox = o.Collider.Shape.BoundingBox(o.transform())
}

// support places the object's shape in world space
func (o *CollisionObject) support() ShapeSupport {
	t := o.transform()
	return ShapeSupport{Shape: o.Collider.Shape, Rotation: t.Rotation, Position: t.Position}
}

// sweptBoundingBox covers the motion since the previous tick
func (o *CollisionObject) sweptBoundingBox() Box3D {
	if o.Body == nil {
		return o.BoundingBox
	}
	return o.BoundingBox.Extend(sub(o.prevPosition, o.Body.Transform.Position))
}

// localRay maps a world ray into the object's local frame
func (o *CollisionObject) localRay(ray rl.Ray) (rl.Vector3, rl.Vector3) {
	t := o.transform()
	return t.InversePointNoScale(ray.Position), unrotate(t.Rotation, ray.Direction)
}

// quadShape returns the object's shape as a world space quad for static quads
func (o *CollisionObject) quadShape() (*Quad, bool) {
	if o.Body != nil {
		return nil, false
	}
	q, ok := o.Collider.Shape.(*Quad)
	return q, ok
}
