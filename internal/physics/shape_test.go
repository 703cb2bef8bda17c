package physics

import (
	"errors"
	"math"
	"slices"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestBoxSupportPicksCorner(t *testing.T) {
	box := NewBox(rl.Vector3{X: 1, Y: 2, Z: 3})
	point, id := box.Support(quatIdentity(), rl.Vector3{X: 1, Y: -1, Z: 1})

	if point != (rl.Vector3{X: 1, Y: -2, Z: 3}) {
		t.Errorf("Expected corner (1, -2, 3), got %v", point)
	}
	if id != 0b101 {
		t.Errorf("Expected id 0b101, got %#b", id)
	}
}

func TestBoxSupportRotated(t *testing.T) {
	box := NewBox(rl.Vector3{X: 2, Y: 0.5, Z: 0.5})
	quarter := rl.QuaternionFromAxisAngle(gUp, math.Pi/2)

	// the long axis now lies along world Z
	point, _ := box.Support(quarter, gForward)
	if !approxEqual(point.Z, 2, 1e-4) {
		t.Errorf("Expected support 2 along Z after rotation, got %v", point)
	}
}

func TestBoxBoundingBoxRotated(t *testing.T) {
	box := NewBox(rl.Vector3{X: 1, Y: 1, Z: 1})
	eighth := rl.QuaternionFromAxisAngle(gUp, math.Pi/4)
	bounds := box.BoundingBox(NewTransform(rl.Vector3{X: 5}, eighth))

	expected := float32(math.Sqrt2)
	if !approxEqual(bounds.HalfExtents().X, expected, 1e-4) || !approxEqual(bounds.HalfExtents().Y, 1, 1e-4) {
		t.Errorf("Expected half extents (%f, 1, %f), got %v", expected, expected, bounds.HalfExtents())
	}
	if !approxEqual(bounds.Center().X, 5, 1e-4) {
		t.Errorf("Expected center at x=5, got %v", bounds.Center())
	}
}

func TestSphereSupportAndInertia(t *testing.T) {
	sphere := NewSphere(0.5)
	point, _ := sphere.Support(quatIdentity(), rl.Vector3{Y: 10})
	if !vectorApproxEqual(point, rl.Vector3{Y: 0.5}, 1e-6) {
		t.Errorf("Expected (0, 0.5, 0), got %v", point)
	}
	if i := sphere.MomentOfInertia(2); !approxEqual(i, 0.2, 1e-6) {
		t.Errorf("Expected inertia 0.2, got %f", i)
	}
}

func TestCapsuleSupport(t *testing.T) {
	capsule := NewCapsule(0.25, 0.5)
	point, _ := capsule.Support(quatIdentity(), gUp)
	if !approxEqual(point.Y, 0.75, 1e-5) {
		t.Errorf("Expected top of capsule at 0.75, got %v", point)
	}
	point, _ = capsule.Support(quatIdentity(), gRight)
	if !approxEqual(point.X, 0.25, 1e-5) {
		t.Errorf("Expected side of capsule at 0.25, got %v", point)
	}
}

func TestCylinderSupport(t *testing.T) {
	cylinder := NewCylinder(0.5, 1)
	point, _ := cylinder.Support(quatIdentity(), rl.Vector3{X: 1, Y: 1})
	if !approxEqual(point.X, 0.5, 1e-5) || !approxEqual(point.Y, 1, 1e-5) {
		t.Errorf("Expected rim point (0.5, 1, 0), got %v", point)
	}
}

func TestRaycastLocalShapes(t *testing.T) {
	tests := []struct {
		name     string
		shape    Shape
		distance float32
	}{
		{"box", NewBox(rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}), 4.5},
		{"sphere", NewSphere(1), 4},
		{"capsule", NewCapsule(0.5, 1), 4.5},
		{"cylinder", NewCylinder(0.5, 1), 4.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := tt.shape.RaycastLocal(rl.Vector3{X: -5}, gRight, 100)
			if !ok {
				t.Fatal("Expected the ray to hit")
			}
			if !approxEqual(hit.Distance, tt.distance, 1e-4) {
				t.Errorf("Expected distance %f, got %f", tt.distance, hit.Distance)
			}
			if !vectorApproxEqual(hit.Normal, negate(gRight), 1e-4) {
				t.Errorf("Expected normal facing the ray, got %v", hit.Normal)
			}
		})
	}
}

func TestCompoundRejectsNonConvexChildren(t *testing.T) {
	quad := NewQuadFacing(rl.Vector3{}, gUp, gRight, 1, 1, 0)
	_, err := NewCompound([]CompoundChild{{Shape: quad, Local: IdentityTransform()}})
	if !errors.Is(err, ErrInvalidShape) {
		t.Errorf("Expected ErrInvalidShape for a quad child, got %v", err)
	}

	_, err = NewCompound(nil)
	if !errors.Is(err, ErrInvalidShape) {
		t.Errorf("Expected ErrInvalidShape for no children, got %v", err)
	}
}

func TestCompoundSupportUsesFurthestChild(t *testing.T) {
	compound, err := NewCompound([]CompoundChild{
		{Shape: NewSphere(0.5), Local: NewTransform(rl.Vector3{X: -1}, quatIdentity())},
		{Shape: NewSphere(0.5), Local: NewTransform(rl.Vector3{X: 1}, quatIdentity())},
	})
	if err != nil {
		t.Fatalf("NewCompound failed: %v", err)
	}

	point, id := compound.Support(quatIdentity(), gRight)
	if !approxEqual(point.X, 1.5, 1e-5) {
		t.Errorf("Expected support at x=1.5, got %v", point)
	}
	if id>>12 != 2 {
		t.Errorf("Expected the id to name the second child, got %#x", id)
	}

	bounds := compound.BoundingBox(IdentityTransform())
	if !approxEqual(bounds.Min.X, -1.5, 1e-5) || !approxEqual(bounds.Max.X, 1.5, 1e-5) {
		t.Errorf("Expected bounds spanning x in [-1.5, 1.5], got %v", bounds)
	}
}

func TestMeshValidation(t *testing.T) {
	if _, err := NewMesh(nil); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("Expected ErrInvalidShape for an empty mesh, got %v", err)
	}
}

func TestMeshRaycastAndQuery(t *testing.T) {
	quads := make([]Quad, 0, 10)
	for i := 0; i < 10; i++ {
		quads = append(quads, *NewQuadFacing(rl.Vector3{X: float32(i) * 2}, gUp, gRight, 1, 1, 0))
	}
	mesh, err := NewMesh(quads)
	if err != nil {
		t.Fatalf("NewMesh failed: %v", err)
	}

	hit, ok := mesh.RaycastLocal(rl.Vector3{X: 6, Y: 3}, negate(gUp), 10)
	if !ok || !approxEqual(hit.Distance, 3, 1e-4) {
		t.Errorf("Expected a hit at distance 3, got %v %v", hit, ok)
	}

	var visited []int
	query := NewBox3DFromCenter(rl.Vector3{X: 6}, rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
	mesh.forEachQuad(query, func(index int, quad *Quad) {
		visited = append(visited, index)
	})
	if !slices.Contains(visited, 3) {
		t.Errorf("Expected quad 3 to be visited, got %v", visited)
	}
	if slices.Contains(visited, 9) {
		t.Errorf("Expected the far quad to be culled, got %v", visited)
	}
}

func TestShapeKindString(t *testing.T) {
	if ShapeCapsule.String() != "capsule" {
		t.Errorf("Expected capsule, got %s", ShapeCapsule.String())
	}
	if ShapeKind(42).String() != "shape(42)" {
		t.Errorf("Expected shape(42), got %s", ShapeKind(42).String())
	}
}
