package audio

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"portalphys/internal/physics"
)

func TestSpatializePan(t *testing.T) {
	l := NewListener(rl.Vector3{}, rl.Vector3{Z: -1}, rl.Vector3{Y: 1})

	volume, pan := l.Spatialize(l.Position, 1, 10)
	if volume != 1 || pan != 0.5 {
		t.Errorf("Expected full centered volume at the listener, got %f %f", volume, pan)
	}

	_, right := l.Spatialize(rl.Vector3Scale(l.Right, 2), 1, 10)
	_, left := l.Spatialize(rl.Vector3Scale(l.Right, -2), 1, 10)
	if right <= 0.5 || left >= 0.5 {
		t.Errorf("Expected right pan above and left pan below center, got %f %f", right, left)
	}

	if volume, _ := l.Spatialize(rl.Vector3{Z: -20}, 1, 10); volume != 0 {
		t.Errorf("Expected silence past the max distance, got %f", volume)
	}

	front, _ := l.Spatialize(rl.Vector3{Z: -5}, 1, 10)
	behind, _ := l.Spatialize(rl.Vector3{Z: 5}, 1, 10)
	if behind >= front {
		t.Errorf("Expected sounds behind to be quieter, got %f behind %f in front", behind, front)
	}
}

func TestImpactsQueueFastCollisions(t *testing.T) {
	quad := physics.StaticQuad{Quad: *physics.NewQuadFacing(rl.Vector3{}, rl.Vector3{Y: 1}, rl.Vector3{X: 1}, 5, 5, 0)}
	w, err := physics.NewPhysicsWorld(physics.DefaultConfig(), []physics.StaticQuad{quad}, nil)
	if err != nil {
		t.Fatalf("NewPhysicsWorld failed: %v", err)
	}
	impacts := NewImpacts()
	impacts.Attach(w)

	collider := physics.NewCollider(physics.NewSphere(0.25), 0.5, 0)
	h, err := w.AddBody(collider, 1, physics.NewTransform(rl.Vector3{Y: 0.3}, rl.QuaternionIdentity()), physics.LayerTangible)
	if err != nil {
		t.Fatalf("AddBody failed: %v", err)
	}
	w.Body(h).Velocity = rl.Vector3{Y: -3}

	for i := 0; i < 5; i++ {
		w.Step()
	}

	got := impacts.Drain()
	if len(got) != 1 {
		t.Fatalf("Expected 1 impact, got %d", len(got))
	}
	if got[0].Strength <= 0 || got[0].Strength > 1 {
		t.Errorf("Expected strength in (0, 1], got %f", got[0].Strength)
	}
	if len(impacts.Drain()) != 0 {
		t.Error("Expected Drain to clear the queue")
	}

	// resting contact produces nothing new
	for i := 0; i < 30; i++ {
		w.Step()
	}
	if n := len(impacts.Drain()); n != 0 {
		t.Errorf("Expected no impacts while resting, got %d", n)
	}
}
