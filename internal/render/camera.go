package render

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	minFlySpeed = 1.0
	maxFlySpeed = 40.0
	boostFactor = 3.0
)

// FlyCamera is a free camera: WASD to move, Q/E down and up, right mouse
// button to look around, wheel to change speed, shift to boost
type FlyCamera struct {
	Position rl.Vector3
	// degrees; yaw 0 looks down +X, pitch is clamped to ±89
	Yaw, Pitch float32
	Speed      float32
	// degrees per pixel of mouse motion
	Sensitivity float32
}

func NewFlyCamera(pos rl.Vector3, target rl.Vector3) *FlyCamera {
	c := &FlyCamera{Position: pos, Speed: 8, Sensitivity: 0.1}
	c.LookAt(target)
	return c
}

// LookAt points the camera at target
func (c *FlyCamera) LookAt(target rl.Vector3) {
	dir := rl.Vector3Normalize(rl.Vector3Subtract(target, c.Position))
	c.Yaw = rl.Rad2deg * float32(math.Atan2(float64(dir.Z), float64(dir.X)))
	c.Pitch = rl.Rad2deg * float32(math.Asin(float64(dir.Y)))
}

// Forward is the unit view direction
func (c *FlyCamera) Forward() rl.Vector3 {
	yaw := float64(c.Yaw * rl.Deg2rad)
	pitch := float64(c.Pitch * rl.Deg2rad)
	return rl.Vector3{
		X: float32(math.Cos(yaw) * math.Cos(pitch)),
		Y: float32(math.Sin(pitch)),
		Z: float32(math.Sin(yaw) * math.Cos(pitch)),
	}
}

func (c *FlyCamera) Update(dt float32) {
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		c.Yaw += delta.X * c.Sensitivity
		c.Pitch = max(min(c.Pitch-delta.Y*c.Sensitivity, 89), -89)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		c.Speed = max(min(c.Speed*float32(math.Pow(1.2, float64(wheel))), maxFlySpeed), minFlySpeed)
	}

	// horizontal axes so W/S keep the height
	yaw := float64(c.Yaw * rl.Deg2rad)
	flat := rl.Vector3{X: float32(math.Cos(yaw)), Z: float32(math.Sin(yaw))}
	side := rl.Vector3{X: -flat.Z, Z: flat.X}

	var move rl.Vector3
	if rl.IsKeyDown(rl.KeyW) {
		move = rl.Vector3Add(move, flat)
	}
	if rl.IsKeyDown(rl.KeyS) {
		move = rl.Vector3Subtract(move, flat)
	}
	if rl.IsKeyDown(rl.KeyD) {
		move = rl.Vector3Add(move, side)
	}
	if rl.IsKeyDown(rl.KeyA) {
		move = rl.Vector3Subtract(move, side)
	}
	if rl.IsKeyDown(rl.KeyE) {
		move.Y++
	}
	if rl.IsKeyDown(rl.KeyQ) {
		move.Y--
	}
	if rl.Vector3Length(move) == 0 {
		return
	}

	speed := c.Speed
	if rl.IsKeyDown(rl.KeyLeftShift) {
		speed *= boostFactor
	}
	c.Position = rl.Vector3Add(c.Position, rl.Vector3Scale(rl.Vector3Normalize(move), speed*dt))
}

func (c *FlyCamera) GetRaylibCamera() rl.Camera3D {
	return rl.Camera3D{
		Position:   c.Position,
		Target:     rl.Vector3Add(c.Position, c.Forward()),
		Up:         rl.Vector3{Y: 1},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}
