package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func boxSupport(half float32, position rl.Vector3) ShapeSupport {
	return ShapeSupport{
		Shape:    NewBox(rl.Vector3{X: half, Y: half, Z: half}),
		Rotation: quatIdentity(),
		Position: position,
	}
}

func TestGJKOverlappingBoxes(t *testing.T) {
	a := boxSupport(0.5, rl.Vector3{})
	b := boxSupport(0.5, rl.Vector3{X: 0.3, Y: 0.9, Z: -0.2})

	var simplex Simplex
	if !CheckForOverlap(&simplex, &a, &b, sub(b.Position, a.Position)) {
		t.Error("Expected overlapping boxes to be reported as overlapping")
	}
}

func TestGJKSeparatedBoxes(t *testing.T) {
	a := boxSupport(0.5, rl.Vector3{})
	b := boxSupport(0.5, rl.Vector3{X: 1.2})

	var simplex Simplex
	if CheckForOverlap(&simplex, &a, &b, sub(b.Position, a.Position)) {
		t.Error("Expected separated boxes not to overlap")
	}
}

func TestGJKZeroDirectionFallsBack(t *testing.T) {
	a := boxSupport(0.5, rl.Vector3{})
	b := boxSupport(0.25, rl.Vector3{})

	var simplex Simplex
	if !CheckForOverlap(&simplex, &a, &b, rl.Vector3{}) {
		t.Error("Expected concentric boxes to overlap with a zero first direction")
	}
}

func TestGJKSphereAgainstQuad(t *testing.T) {
	quad := NewQuadFacing(rl.Vector3{}, rl.Vector3{Y: 1}, rl.Vector3{X: 1}, 2, 2, 0)

	tests := []struct {
		name     string
		position rl.Vector3
		overlaps bool
	}{
		{"resting into the surface", rl.Vector3{Y: 0.4}, true},
		{"above the surface", rl.Vector3{Y: 0.6}, false},
		{"past the edge", rl.Vector3{X: 2.7, Y: 0.2}, false},
		{"over the edge", rl.Vector3{X: 2.3, Y: 0.2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sphere := ShapeSupport{Shape: NewSphere(0.5), Rotation: quatIdentity(), Position: tt.position}
			var simplex Simplex
			got := CheckForOverlap(&simplex, quad, &sphere, quad.Normal())
			if got != tt.overlaps {
				t.Errorf("Expected overlap %v, got %v", tt.overlaps, got)
			}
		})
	}
}

func TestCombineContactIDs(t *testing.T) {
	id := CombineContactIDs(0x3, 0x5)
	if id>>16 != 0x3 || id&0xFFFF != 0x5 {
		t.Errorf("Expected ids packed as high a and low b, got %#x", id)
	}
}
