package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestEpaBoxPenetration(t *testing.T) {
	a := boxSupport(0.5, rl.Vector3{})
	b := boxSupport(0.5, rl.Vector3{Y: 0.9})

	var simplex Simplex
	if !CheckForOverlap(&simplex, &a, &b, sub(b.Position, a.Position)) {
		t.Fatal("Expected boxes to overlap")
	}

	result, ok := EpaSolve(&simplex, &a, &b)
	if !ok {
		t.Fatal("Expected EPA to converge")
	}

	if !vectorApproxEqual(result.Normal, gUp, 0.05) {
		t.Errorf("Expected normal pointing from A to B along +Y, got %v", result.Normal)
	}
	if !approxEqual(result.Depth(), 0.1, 0.01) {
		t.Errorf("Expected depth 0.1, got %f", result.Depth())
	}
	if result.Penetration >= 0 {
		t.Errorf("Expected negative penetration while overlapping, got %f", result.Penetration)
	}

	reconstructed := addScaled(result.ContactA, result.Normal, result.Penetration)
	if !vectorApproxEqual(reconstructed, result.ContactB, 1e-4) {
		t.Errorf("Expected ContactA + Penetration*Normal == ContactB, got %v and %v", reconstructed, result.ContactB)
	}
}

func TestEpaResultSwap(t *testing.T) {
	result := EpaResult{
		ContactA:    rl.Vector3{X: 1},
		ContactB:    rl.Vector3{X: 2},
		Normal:      gRight,
		Penetration: -0.1,
		ID:          CombineContactIDs(0x12, 0x34),
	}
	result.Swap()

	if result.ContactA.X != 2 || result.ContactB.X != 1 {
		t.Errorf("Expected contacts exchanged, got %v and %v", result.ContactA, result.ContactB)
	}
	if result.Normal != negate(gRight) {
		t.Errorf("Expected normal flipped, got %v", result.Normal)
	}
	if result.Penetration != -0.1 {
		t.Errorf("Expected penetration unchanged, got %f", result.Penetration)
	}
	if result.ID != CombineContactIDs(0x34, 0x12) {
		t.Errorf("Expected id halves exchanged, got %#x", result.ID)
	}

	result.Swap()
	if result.ID != CombineContactIDs(0x12, 0x34) || result.Normal != gRight {
		t.Error("Expected a double swap to restore the result")
	}
}

func TestEpaSweptFindsFirstContact(t *testing.T) {
	floor := NewQuadFacing(rl.Vector3{}, gUp, gRight, 5, 5, 0)
	sphere := ShapeSupport{Shape: NewSphere(0.5), Rotation: quatIdentity()}

	start := rl.Vector3{Y: 5}
	end := rl.Vector3{Y: -5}
	result, fraction, ok := EpaSolveSwept(floor, sphere, start, end)
	if !ok {
		t.Fatal("Expected the swept sphere to hit the floor")
	}

	// the sphere first touches when its center is one radius above the floor
	if fraction < 0.44 || fraction > 0.47 {
		t.Errorf("Expected hit fraction near 0.45, got %f", fraction)
	}
	if result.Normal.Y < 0.9 {
		t.Errorf("Expected the contact normal to face up, got %v", result.Normal)
	}
	if result.Depth() > 0.1 {
		t.Errorf("Expected a shallow contact at the hit pose, got depth %f", result.Depth())
	}
}

func TestEpaSweptRejectsStartOverlap(t *testing.T) {
	floor := NewQuadFacing(rl.Vector3{}, gUp, gRight, 5, 5, 0)
	sphere := ShapeSupport{Shape: NewSphere(0.5), Rotation: quatIdentity()}

	_, _, ok := EpaSolveSwept(floor, sphere, rl.Vector3{Y: 0.2}, rl.Vector3{Y: -3})
	if ok {
		t.Error("Expected a motion starting in overlap to fall back to the static test")
	}
}

func TestEpaSweptMiss(t *testing.T) {
	floor := NewQuadFacing(rl.Vector3{}, gUp, gRight, 1, 1, 0)
	sphere := ShapeSupport{Shape: NewSphere(0.5), Rotation: quatIdentity()}

	_, _, ok := EpaSolveSwept(floor, sphere, rl.Vector3{X: 5, Y: 5}, rl.Vector3{X: 5, Y: -5})
	if ok {
		t.Error("Expected a motion beside the quad to miss")
	}
}
