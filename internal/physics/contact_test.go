package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func newTestManifold(t *testing.T) (*ContactManifold, *CollisionObject, *CollisionObject) {
	t.Helper()
	cfg := DefaultConfig()
	solver := NewContactSolver(&cfg)

	a := &CollisionObject{handle: makeObjectHandle(0, 0)}
	b := &CollisionObject{handle: makeObjectHandle(1, 0)}
	m := solver.GetContactManifold(a.handle, b.handle)
	if m == nil {
		t.Fatal("Expected a manifold from an empty pool")
	}
	return m, a, b
}

func contactResult(id int, penetration float32) EpaResult {
	return EpaResult{
		ContactA:    rl.Vector3{X: float32(id)},
		ContactB:    rl.Vector3{X: float32(id), Y: penetration},
		Normal:      gUp,
		Penetration: penetration,
		ID:          id,
	}
}

func TestManifoldInsertMatchesID(t *testing.T) {
	m, a, b := newTestManifold(t)

	result := contactResult(7, -0.02)
	m.insert(a, b, &result)
	m.Contacts[0].NormalImpulse = 3

	result = contactResult(7, -0.03)
	m.insert(a, b, &result)

	if m.ContactCount != 1 {
		t.Fatalf("Expected 1 contact after reinserting the same id, got %d", m.ContactCount)
	}
	if m.Contacts[0].Penetration != -0.03 {
		t.Errorf("Expected the penetration to be updated, got %f", m.Contacts[0].Penetration)
	}
	if m.Contacts[0].NormalImpulse != 3 {
		t.Errorf("Expected the accumulated impulse kept for warm starting, got %f", m.Contacts[0].NormalImpulse)
	}
	if a.ManifoldMask()&m.bit() == 0 || b.ManifoldMask()&m.bit() == 0 {
		t.Error("Expected both objects to record the manifold")
	}
}

func TestManifoldReplacesShallowestPoint(t *testing.T) {
	m, a, b := newTestManifold(t)

	penetrations := []float32{-0.01, -0.05, -0.02, -0.03}
	for i, p := range penetrations {
		result := contactResult(i+1, p)
		m.insert(a, b, &result)
		m.Contacts[i].NormalImpulse = 1
	}
	if m.ContactCount != MaxContactsPerManifold {
		t.Fatalf("Expected a full manifold, got %d", m.ContactCount)
	}

	result := contactResult(8, -0.04)
	m.insert(a, b, &result)

	if m.ContactCount != MaxContactsPerManifold {
		t.Errorf("Expected the count to stay at %d, got %d", MaxContactsPerManifold, m.ContactCount)
	}
	if m.Contacts[0].ID != 8 {
		t.Errorf("Expected the shallowest point to be replaced, got id %d in slot 0", m.Contacts[0].ID)
	}
	if m.Contacts[0].NormalImpulse != 0 {
		t.Errorf("Expected a replaced point to start without impulse, got %f", m.Contacts[0].NormalImpulse)
	}
}

func TestManifoldKeepsDominatingPoint(t *testing.T) {
	m, a, b := newTestManifold(t)

	for _, id := range []int{0x3, 0x4, 0x5, 0x6} {
		result := contactResult(id, -0.01)
		m.insert(a, b, &result)
	}

	// 0x3 already covers the features of 0x1
	result := contactResult(0x1, -0.5)
	m.insert(a, b, &result)

	for i := 0; i < m.ContactCount; i++ {
		if m.Contacts[i].ID == 0x1 {
			t.Error("Expected a point dominated by an existing one not to be inserted")
		}
	}
}

func TestManifoldRefreshDropsSeparatedPoints(t *testing.T) {
	m, quad, _ := newTestManifold(t)

	body := &RigidBody{}
	body.Init(1, 1, 30)
	body.Transform.Position = rl.Vector3{Y: 0.49}
	box := &CollisionObject{Body: body, handle: makeObjectHandle(1, 0)}

	result := EpaResult{
		ContactA:    rl.Vector3{},
		ContactB:    rl.Vector3{Y: -0.5},
		Normal:      gUp,
		Penetration: -0.01,
		ID:          1,
	}
	m.insert(quad, box, &result)

	if count := m.refresh(quad, box, DefaultSlideTolerance); count != 1 {
		t.Fatalf("Expected the resting point to survive, got %d", count)
	}
	if !approxEqual(m.Contacts[0].Penetration, -0.01, 1e-5) {
		t.Errorf("Expected penetration -0.01, got %f", m.Contacts[0].Penetration)
	}

	body.Transform.Position = rl.Vector3{X: 0.3, Y: 0.49}
	if count := m.refresh(quad, box, DefaultSlideTolerance); count != 0 {
		t.Errorf("Expected a point that slid too far to be dropped, got %d", count)
	}

	m.insert(quad, box, &result)
	body.Transform.Position = rl.Vector3{Y: 0.7}
	if count := m.refresh(quad, box, DefaultSlideTolerance); count != 0 {
		t.Errorf("Expected a separated point to be dropped, got %d", count)
	}
}

func TestManifoldNormalFor(t *testing.T) {
	m, a, b := newTestManifold(t)
	m.Normal = gUp

	if m.NormalFor(b.handle) != gUp {
		t.Errorf("Expected the normal toward B to be %v, got %v", gUp, m.NormalFor(b.handle))
	}
	if m.NormalFor(a.handle) != negate(gUp) {
		t.Errorf("Expected the normal toward A to be flipped, got %v", m.NormalFor(a.handle))
	}
	if m.Other(a.handle) != b.handle || m.Other(b.handle) != a.handle {
		t.Error("Expected Other to return the paired object")
	}
}
