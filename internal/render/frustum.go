package render

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"portalphys/internal/physics"
)

// Frustum holds the six view planes, normals pointing inward
type Frustum struct {
	planes [6]physics.Plane
}

// ExtractFrustum pulls the planes out of the camera's view-projection matrix
// (Gribb/Hartmann)
func ExtractFrustum(camera rl.Camera3D, aspect float32) Frustum {
	view := rl.GetCameraMatrix(camera)
	var proj rl.Matrix
	if camera.Projection == rl.CameraPerspective {
		proj = rl.MatrixPerspective(camera.Fovy*rl.Deg2rad, aspect, 0.1, 1000.0)
	} else {
		halfH := camera.Fovy / 2.0
		halfW := halfH * aspect
		proj = rl.MatrixOrtho(-halfW, halfW, -halfH, halfH, 0.1, 1000.0)
	}
	vp := rl.MatrixMultiply(view, proj)

	rows := [4][4]float32{
		{vp.M0, vp.M4, vp.M8, vp.M12},
		{vp.M1, vp.M5, vp.M9, vp.M13},
		{vp.M2, vp.M6, vp.M10, vp.M14},
		{vp.M3, vp.M7, vp.M11, vp.M15},
	}

	var f Frustum
	for i := 0; i < 3; i++ {
		f.planes[2*i] = framePlane(rows[3], rows[i], 1)
		f.planes[2*i+1] = framePlane(rows[3], rows[i], -1)
	}
	return f
}

func framePlane(w, row [4]float32, sign float32) physics.Plane {
	p := physics.Plane{
		Normal: rl.Vector3{X: w[0] + sign*row[0], Y: w[1] + sign*row[1], Z: w[2] + sign*row[2]},
		D:      w[3] + sign*row[3],
	}
	length := rl.Vector3Length(p.Normal)
	if length == 0 {
		return p
	}
	return physics.Plane{Normal: rl.Vector3Scale(p.Normal, 1/length), D: p.D / length}
}

// ContainsBox reports whether any part of the box may be visible
func (f *Frustum) ContainsBox(box physics.Box3D) bool {
	for _, p := range f.planes {
		// the corner furthest along the plane normal
		corner := box.Min
		if p.Normal.X >= 0 {
			corner.X = box.Max.X
		}
		if p.Normal.Y >= 0 {
			corner.Y = box.Max.Y
		}
		if p.Normal.Z >= 0 {
			corner.Z = box.Max.Z
		}
		if p.Distance(corner) < 0 {
			return false
		}
	}
	return true
}
