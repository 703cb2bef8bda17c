package physics

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func floorSupport() ShapeSupport {
	return ShapeSupport{
		Shape:    NewQuadFacing(rl.Vector3{}, gUp, gRight, 5, 5, 0),
		Rotation: quatIdentity(),
	}
}

func TestClipBoxRestingFlat(t *testing.T) {
	floor := floorSupport()
	box := ShapeSupport{
		Shape:    NewBox(rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}),
		Rotation: quatIdentity(),
		Position: rl.Vector3{Y: 0.49},
	}
	result := EpaResult{Normal: gUp, Penetration: -0.01}

	var contacts [MaxContactsPerManifold]EpaResult
	count := clipContacts(&floor, &box, &result, &contacts)
	if count != 4 {
		t.Fatalf("Expected 4 contacts for a box face on a quad, got %d", count)
	}

	seen := make(map[int]bool)
	for i := 0; i < count; i++ {
		c := contacts[i]
		if !approxEqual(c.Penetration, -0.01, 1e-4) {
			t.Errorf("Expected penetration -0.01, got %f", c.Penetration)
		}
		if !approxEqual(c.ContactA.Y, 0, 1e-5) {
			t.Errorf("Expected contact A on the floor, got %v", c.ContactA)
		}
		reconstructed := addScaled(c.ContactA, c.Normal, c.Penetration)
		if !vectorApproxEqual(reconstructed, c.ContactB, 1e-4) {
			t.Errorf("Expected ContactA + Penetration*Normal == ContactB, got %v and %v", reconstructed, c.ContactB)
		}
		if c.ID&clipFeatureFlag == 0 {
			t.Errorf("Expected a clip feature id, got %#x", c.ID)
		}
		if seen[c.ID] {
			t.Errorf("Expected distinct ids, got %#x twice", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestClipBoxOnEdge(t *testing.T) {
	floor := floorSupport()
	tilt := rl.QuaternionFromAxisAngle(gForward, math.Pi/4)
	box := ShapeSupport{
		Shape:    NewBox(rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}),
		Rotation: tilt,
		Position: rl.Vector3{Y: 0.5*math.Sqrt2 - 0.01},
	}
	result := EpaResult{Normal: gUp, Penetration: -0.01}

	var contacts [MaxContactsPerManifold]EpaResult
	count := clipContacts(&floor, &box, &result, &contacts)
	if count != 2 {
		t.Fatalf("Expected 2 contacts along the resting edge, got %d", count)
	}
	for i := 0; i < count; i++ {
		if !approxEqual(contacts[i].Penetration, -0.01, 1e-3) {
			t.Errorf("Expected penetration near -0.01, got %f", contacts[i].Penetration)
		}
	}
}

func TestClipFallsBackForRoundShapes(t *testing.T) {
	floor := floorSupport()
	sphere := ShapeSupport{Shape: NewSphere(0.5), Rotation: quatIdentity(), Position: rl.Vector3{Y: 0.45}}
	result := EpaResult{Normal: gUp, Penetration: -0.05}

	var contacts [MaxContactsPerManifold]EpaResult
	if count := clipContacts(&floor, &sphere, &result, &contacts); count != 0 {
		t.Errorf("Expected a sphere to use the EPA point, got %d clipped contacts", count)
	}
}

func TestClipEdgeIDIsSymmetric(t *testing.T) {
	if clipEdgeID(3, 5, 1) != clipEdgeID(5, 3, 1) {
		t.Error("Expected the edge id not to depend on the vertex order")
	}
	if clipEdgeID(3, 5, 1) == clipEdgeID(3, 5, 2) {
		t.Error("Expected different clip planes to give different ids")
	}
}

func TestReduceContactsKeepsDeepest(t *testing.T) {
	candidates := make([]EpaResult, 0, 8)
	for i := 0; i < 8; i++ {
		angle := float64(i) * math.Pi / 4
		point := rl.Vector3{X: float32(math.Cos(angle)), Z: float32(math.Sin(angle))}
		candidates = append(candidates, EpaResult{
			ContactA:    point,
			ContactB:    point,
			Normal:      gUp,
			Penetration: -0.01,
			ID:          i,
		})
	}
	candidates[5].Penetration = -0.2

	var contacts [MaxContactsPerManifold]EpaResult
	count := reduceContacts(candidates, gUp, &contacts)
	if count != MaxContactsPerManifold {
		t.Fatalf("Expected %d contacts, got %d", MaxContactsPerManifold, count)
	}

	found := false
	for i := 0; i < count; i++ {
		if contacts[i].ID == 5 {
			found = true
		}
	}
	if !found {
		t.Error("Expected the deepest candidate to survive reduction")
	}
}
