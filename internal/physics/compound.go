package physics

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// CompoundChild is one convex piece of a compound shape, posed relative to the body
type CompoundChild struct {
	Shape Shape
	Local Transform
}

// Compound groups convex shapes that move as one body
type Compound struct {
	Children []CompoundChild
}

func NewCompound(children []CompoundChild) (*Compound, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("compound with no children: %w", ErrInvalidShape)
	}
	if len(children) > maxCompoundChildren {
		return nil, fmt.Errorf("compound with %d children, limit %d: %w", len(children), maxCompoundChildren, ErrInvalidShape)
	}
	for i, child := range children {
		switch child.Shape.(type) {
		case *Box, *Sphere, *Cylinder, *Capsule:
		default:
			return nil, fmt.Errorf("compound child %d is a %v: %w", i, child.Shape.Kind(), ErrInvalidShape)
		}
		if child.Local.Rotation == (rl.Quaternion{}) {
			children[i].Local.Rotation = quatIdentity()
		}
	}
	return &Compound{Children: children}, nil
}

func (c *Compound) Kind() ShapeKind { return ShapeCompound }
func (c *Compound) isShape()        {}

// childPose returns the pose of child i relative to the body position, rotated with the body
func (c *Compound) childPose(rotation rl.Quaternion, i int) (rl.Vector3, rl.Quaternion) {
	child := &c.Children[i]
	return rotate(rotation, child.Local.Position), quatMultiply(rotation, child.Local.Rotation)
}

func (c *Compound) Support(rotation rl.Quaternion, direction rl.Vector3) (rl.Vector3, int) {
	var best rl.Vector3
	bestDot := float32(0)
	bestID := 0
	for i := range c.Children {
		offset, childRotation := c.childPose(rotation, i)
		point, id := c.Children[i].Shape.Support(childRotation, direction)
		point = add(point, offset)
		if d := dot(point, direction); i == 0 || d > bestDot {
			best, bestDot, bestID = point, d, compoundChildID(i, id)
		}
	}
	return best, bestID
}

func (c *Compound) BoundingBox(t Transform) Box3D {
	box := EmptyBox3D()
	for i := range c.Children {
		box = box.Union(c.Children[i].Shape.BoundingBox(Concat(t, c.Children[i].Local)))
	}
	return box
}

// MomentOfInertia splits the mass evenly and sums each child's inertia about its
// own center plus the parallel axis term.
func (c *Compound) MomentOfInertia(mass float32) float32 {
	childMass := mass / float32(len(c.Children))
	result := float32(0)
	for i := range c.Children {
		result += c.Children[i].Shape.MomentOfInertia(childMass)
		result += childMass * magSq(c.Children[i].Local.Position)
	}
	return result
}

func (c *Compound) RaycastLocal(origin, direction rl.Vector3, maxDistance float32) (localHit, bool) {
	best := localHit{Distance: maxDistance}
	found := false
	for i := range c.Children {
		local := c.Children[i].Local
		childOrigin := local.InversePointNoScale(origin)
		childDir := unrotate(local.Rotation, direction)
		hit, ok := c.Children[i].Shape.RaycastLocal(childOrigin, childDir, best.Distance)
		if !ok {
			continue
		}
		best = localHit{Distance: hit.Distance, Normal: rotate(local.Rotation, hit.Normal)}
		found = true
	}
	return best, found
}

// compoundChildID folds the child index into a contact feature id
func compoundChildID(child, id int) int {
	return (child+1)<<12 | id&0xFFF
}
