package render

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"portalphys/internal/physics"
)

func TestLookupColor(t *testing.T) {
	if c := LookupColor("SkyBlue", rl.White); c != rl.SkyBlue {
		t.Errorf("Expected SkyBlue, got %v", c)
	}
	if c := LookupColor("Chartreuse", rl.White); c != rl.White {
		t.Errorf("Expected the fallback for an unknown name, got %v", c)
	}
}

// unitFrustum is the axis aligned box [-1, 1]^3 expressed as six inward planes
func unitFrustum() Frustum {
	var f Frustum
	axes := []rl.Vector3{{X: 1}, {Y: 1}, {Z: 1}}
	for i, axis := range axes {
		f.planes[2*i] = physics.Plane{Normal: axis, D: 1}
		f.planes[2*i+1] = physics.Plane{Normal: rl.Vector3Negate(axis), D: 1}
	}
	return f
}

func TestFrustumContainsBox(t *testing.T) {
	f := unitFrustum()
	tests := []struct {
		name string
		box  physics.Box3D
		want bool
	}{
		{"inside", physics.NewBox3DFromCenter(rl.Vector3{}, rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}), true},
		{"straddling", physics.NewBox3DFromCenter(rl.Vector3{X: 1}, rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}), true},
		{"outside", physics.NewBox3DFromCenter(rl.Vector3{X: 3}, rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}), false},
		{"behind", physics.NewBox3DFromCenter(rl.Vector3{Z: -4}, rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.ContainsBox(tt.box); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFlyCameraLookAt(t *testing.T) {
	c := NewFlyCamera(rl.Vector3{Z: -10}, rl.Vector3{})
	cam := c.GetRaylibCamera()
	dir := rl.Vector3Normalize(rl.Vector3Subtract(cam.Target, cam.Position))
	if dir.Z < 0.99 {
		t.Errorf("Expected the camera to face +Z, got %v", dir)
	}
}
