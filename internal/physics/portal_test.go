package physics

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// openTestPortals places portal A at the origin facing +Z and portal B at
// (10, 0, 0) facing +X
func openTestPortals(pair *PortalPair) {
	pair.Portals[0] = Portal{Transform: NewTransform(rl.Vector3{}, quatIdentity()), Open: true}
	pair.Portals[1] = Portal{
		Transform: NewTransform(rl.Vector3{X: 10}, rl.QuaternionFromAxisAngle(gUp, math.Pi/2)),
		Room:      1,
		Open:      true,
	}
}

func TestPortalTransformMapsThroughFronts(t *testing.T) {
	var pair PortalPair
	openTestPortals(&pair)

	mapping := pair.PortalTransform(0)

	// just behind portal A comes out just in front of portal B
	point := mapping.PointNoScale(rl.Vector3{Z: -0.5})
	if !vectorApproxEqual(point, rl.Vector3{X: 10.5}, 1e-4) {
		t.Errorf("Expected (10.5, 0, 0), got %v", point)
	}

	direction := rotate(mapping.Rotation, rl.Vector3{Z: -1})
	if !vectorApproxEqual(direction, gRight, 1e-4) {
		t.Errorf("Expected to exit along %v, got %v", gRight, direction)
	}

	back := pair.PortalTransform(1).PointNoScale(point)
	if !vectorApproxEqual(back, rl.Vector3{Z: -0.5}, 1e-4) {
		t.Errorf("Expected the reverse mapping to return (0, 0, -0.5), got %v", back)
	}
}

func TestIsTouchingPortal(t *testing.T) {
	var pair PortalPair
	if flags := pair.IsTouchingPortal(rl.Vector3{}, gForward); flags != 0 {
		t.Errorf("Expected closed portals never to be touched, got %#x", flags)
	}

	openTestPortals(&pair)

	tests := []struct {
		name   string
		point  rl.Vector3
		normal rl.Vector3
		flags  RigidBodyFlags
	}{
		{"inside the oval", rl.Vector3{X: 0.1, Y: 0.5, Z: 0.05}, gForward, TouchingPortalA},
		{"normal facing the back", rl.Vector3{X: 0.1, Y: 0.5}, negate(gForward), 0},
		{"outside the oval", rl.Vector3{X: 0.45, Y: 0.9}, gForward, 0},
		{"too far off the surface", rl.Vector3{Z: 0.5}, gForward, 0},
		{"on portal B", rl.Vector3{X: 10, Y: 0.2, Z: 0.1}, gRight, TouchingPortalB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pair.IsTouchingPortal(tt.point, tt.normal); got != tt.flags {
				t.Errorf("Expected flags %#x, got %#x", tt.flags, got)
			}
		})
	}
}

func TestTeleportPreservesSpeed(t *testing.T) {
	var pair PortalPair
	openTestPortals(&pair)

	body := &RigidBody{}
	body.Init(1, 1, 30)
	body.Transform.Position = rl.Vector3{Y: 0.3, Z: -0.1}
	body.Velocity = rl.Vector3{Y: -3, Z: -4}
	body.AngularVelocity = rl.Vector3{Y: 2}

	body.Teleport(pair.Portals[0].Transform, pair.Portals[1].Transform, rl.Vector3{}, rl.Vector3{}, pair.Portals[1].Room)

	if !approxEqual(length(body.Velocity), 5, 1e-4) {
		t.Errorf("Expected speed 5 after teleport, got %f", length(body.Velocity))
	}
	if !approxEqual(length(body.AngularVelocity), 2, 1e-4) {
		t.Errorf("Expected angular speed 2 after teleport, got %f", length(body.AngularVelocity))
	}
	if body.CurrentRoom != 1 {
		t.Errorf("Expected room 1 after teleport, got %d", body.CurrentRoom)
	}
	if !approxEqual(body.Transform.Position.Y, 0.3, 1e-4) {
		t.Errorf("Expected height kept through vertical portals, got %v", body.Transform.Position)
	}
}

func TestCheckPortalsCrossing(t *testing.T) {
	var pair PortalPair
	openTestPortals(&pair)

	body := &RigidBody{}
	body.Init(1, 1, 30)
	body.Transform.Position = rl.Vector3{Z: -0.05}
	body.Velocity = rl.Vector3{Z: -1}
	body.Flags = InFrontPortal0 | TouchingPortalA

	if entered := body.CheckPortals(&pair); entered != 1 {
		t.Fatalf("Expected to enter portal A, got %d", entered)
	}
	if !vectorApproxEqual(body.Transform.Position, rl.Vector3{X: 10.05}, 1e-4) {
		t.Errorf("Expected to exit just in front of portal B, got %v", body.Transform.Position)
	}
	if !vectorApproxEqual(body.Velocity, gRight, 1e-4) {
		t.Errorf("Expected to leave portal B along its front, got %v", body.Velocity)
	}
	if !body.Has(CrossedPortal0) || !body.Has(InFrontPortal1) || !body.Has(TouchingPortalB) {
		t.Errorf("Expected crossed, in front and touching flags for portal B, got %#x", body.Flags)
	}
	if body.Has(TouchingPortalA) {
		t.Errorf("Expected the touching flag for portal A cleared, got %#x", body.Flags)
	}
}

func TestCheckPortalsWithoutTouchingDoesNotTeleport(t *testing.T) {
	var pair PortalPair
	openTestPortals(&pair)

	body := &RigidBody{}
	body.Init(1, 1, 30)
	body.Transform.Position = rl.Vector3{Z: -0.05}
	body.Flags = InFrontPortal0

	if entered := body.CheckPortals(&pair); entered != 0 {
		t.Errorf("Expected no teleport without touching the portal, got %d", entered)
	}
	if body.Has(InFrontPortal0) {
		t.Error("Expected the in front flag to follow the new position")
	}
}

func TestCheckPortalsClosed(t *testing.T) {
	var pair PortalPair
	body := &RigidBody{}
	body.Init(1, 1, 30)
	body.Flags = InFrontPortal0 | TouchingPortalA

	if entered := body.CheckPortals(&pair); entered != 0 {
		t.Errorf("Expected no teleport through closed portals, got %d", entered)
	}
	if !body.Has(PortalsInactive) || body.Has(InFrontPortal0) {
		t.Errorf("Expected inactive portals to clear the in front flags, got %#x", body.Flags)
	}
}

func TestFloorPortalLaunchSpeed(t *testing.T) {
	var pair PortalPair
	openTestPortals(&pair)
	pair.Portals[1].Transform = NewTransform(rl.Vector3{X: 10}, rl.QuaternionFromAxisAngle(gRight, -math.Pi/2))

	body := &RigidBody{}
	body.Init(1, 1, 30)
	body.Transform.Position = rl.Vector3{Z: -0.05}
	body.Velocity = rl.Vector3{Z: -1}
	body.Flags = InFrontPortal0 | TouchingPortalA

	if entered := body.CheckPortals(&pair); entered != 1 {
		t.Fatalf("Expected to enter portal A, got %d", entered)
	}
	if !approxEqual(length(body.Velocity), minPortalSpeed, 1e-3) {
		t.Errorf("Expected launch speed %f out of a floor portal, got %f", float32(minPortalSpeed), length(body.Velocity))
	}
	if body.Velocity.Y <= 0 {
		t.Errorf("Expected to leave the floor portal upward, got %v", body.Velocity)
	}
}

func TestObjectFallsThroughFloorPortal(t *testing.T) {
	w := newTestWorld(t, floorQuad(5))
	w.SetPortal(0, NewTransform(rl.Vector3{}, rl.QuaternionFromAxisAngle(gRight, -math.Pi/2)), 0, rl.Vector3{})
	w.SetPortal(1, NewTransform(rl.Vector3{X: 20, Y: 2}, rl.QuaternionFromAxisAngle(gUp, math.Pi/2)), 0, rl.Vector3{})

	h, err := w.AddBody(NewCollider(NewSphere(0.2), 0.5, 0), 1, NewTransform(rl.Vector3{Y: 0.19}, quatIdentity()), LayerTangible)
	if err != nil {
		t.Fatalf("AddBody failed: %v", err)
	}

	w.Step()
	if w.Solver.FindManifold(w.Scene.Quads()[0], h) != nil {
		t.Error("Expected the floor contact on the portal to be vetoed")
	}
	if !w.Body(h).Has(TouchingPortalA) {
		t.Errorf("Expected the body flagged as touching portal A, got %#x", w.Body(h).Flags)
	}

	teleports := 0
	for i := 0; i < 60 && teleports == 0; i++ {
		w.Step()
		teleports += w.Stats().Teleports
	}
	if teleports != 1 {
		t.Fatalf("Expected the sphere to pass through the portal, got %d teleports", teleports)
	}
	if x := w.Body(h).Transform.Position.X; x < 19.5 {
		t.Errorf("Expected the sphere beside portal B, got %v", w.Body(h).Transform.Position)
	}
}
