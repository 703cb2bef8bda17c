package physics

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	bvhLeafSize = 4
	bvhMaxDepth = 20
)

// bvhNode is a node in the bounding volume hierarchy over mesh quads
type bvhNode struct {
	Bounds Box3D
	Left   *bvhNode
	Right  *bvhNode
	Quads  []int // indices into the mesh's quads, leaves only
}

// Mesh is a set of quads in the owning body's local space. Meshes are meant to
// be static or kinematic.
type Mesh struct {
	Quads       []Quad
	root        *bvhNode
	localBounds Box3D
}

func NewMesh(quads []Quad) (*Mesh, error) {
	if len(quads) == 0 {
		return nil, fmt.Errorf("mesh with no quads: %w", ErrInvalidShape)
	}
	if len(quads) > maxMeshQuads {
		return nil, fmt.Errorf("mesh with %d quads, limit %d: %w", len(quads), maxMeshQuads, ErrInvalidShape)
	}

	m := &Mesh{Quads: quads}
	indices := make([]int, len(quads))
	for i := range indices {
		indices[i] = i
	}
	m.root = m.buildBVHNode(indices, 0)
	m.localBounds = m.root.Bounds
	return m, nil
}

func (m *Mesh) Kind() ShapeKind { return ShapeMesh }
func (m *Mesh) isShape()        {}

func (m *Mesh) buildBVHNode(indices []int, depth int) *bvhNode {
	node := &bvhNode{Bounds: m.computeBounds(indices)}

	if len(indices) <= bvhLeafSize || depth > bvhMaxDepth {
		node.Quads = indices
		return node
	}

	size := sub(node.Bounds.Max, node.Bounds.Min)
	axis := 0
	if size.Y > size.X {
		axis = 1
	}
	if size.Z > axisValue(size, axis) {
		axis = 2
	}

	mid := m.partitionQuads(indices, axis)
	if mid == 0 || mid == len(indices) {
		node.Quads = indices
		return node
	}

	node.Left = m.buildBVHNode(indices[:mid], depth+1)
	node.Right = m.buildBVHNode(indices[mid:], depth+1)
	return node
}

func (m *Mesh) computeBounds(indices []int) Box3D {
	bounds := EmptyBox3D()
	identity := IdentityTransform()
	for _, idx := range indices {
		bounds = bounds.Union(m.Quads[idx].BoundingBox(identity))
	}
	return bounds
}

// partitionQuads splits indices around the mean quad center on axis
func (m *Mesh) partitionQuads(indices []int, axis int) int {
	center := float32(0)
	for _, idx := range indices {
		center += axisValue(m.Quads[idx].Center(), axis)
	}
	center /= float32(len(indices))

	left := 0
	right := len(indices) - 1
	for left <= right {
		if axisValue(m.Quads[indices[left]].Center(), axis) < center {
			left++
		} else {
			indices[left], indices[right] = indices[right], indices[left]
			right--
		}
	}
	return left
}

// forEachQuad visits every quad whose BVH leaf overlaps query, in local space
func (m *Mesh) forEachQuad(query Box3D, fn func(index int, quad *Quad)) {
	m.visit(m.root, query, fn)
}

func (m *Mesh) visit(node *bvhNode, query Box3D, fn func(int, *Quad)) {
	if node == nil || !node.Bounds.Overlaps(query) {
		return
	}
	if node.Quads != nil {
		for _, idx := range node.Quads {
			fn(idx, &m.Quads[idx])
		}
		return
	}
	m.visit(node.Left, query, fn)
	m.visit(node.Right, query, fn)
}

func (m *Mesh) Support(rotation rl.Quaternion, direction rl.Vector3) (rl.Vector3, int) {
	localDir := unrotate(rotation, direction)
	best := m.localBounds.Support(localDir)
	bestDot := dot(best, localDir)
	id := 0
	for i := range m.Quads {
		point, _ := m.Quads[i].MinkowskiSupport(localDir)
		if d := dot(point, localDir); d > bestDot || i == 0 {
			best, bestDot, id = point, d, i
		}
	}
	return rotate(rotation, best), id
}

func (m *Mesh) BoundingBox(t Transform) Box3D {
	center := t.PointNoScale(m.localBounds.Center())
	return NewBox3DFromCenter(center, rotatedExtents(t.Rotation, m.localBounds.HalfExtents()))
}

// MomentOfInertia is fixed, mesh bodies are expected to be kinematic
func (m *Mesh) MomentOfInertia(mass float32) float32 {
	return 1
}

func (m *Mesh) RaycastLocal(origin, direction rl.Vector3, maxDistance float32) (localHit, bool) {
	if _, _, ok := m.localBounds.Raycast(origin, direction, maxDistance); !ok && !m.localBounds.Contains(origin) {
		return localHit{}, false
	}

	best := localHit{Distance: maxDistance}
	found := false
	for i := range m.Quads {
		if hit, ok := m.Quads[i].RaycastLocal(origin, direction, best.Distance); ok {
			best = hit
			found = true
		}
	}
	return best, found
}
