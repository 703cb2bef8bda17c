package physics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	gRight   = rl.Vector3{X: 1}
	gUp      = rl.Vector3{Y: 1}
	gForward = rl.Vector3{Z: 1}
)

// cross computes the cross product of two vectors
func cross(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3CrossProduct(a, b)
}

func dot(a, b rl.Vector3) float32 {
	return rl.Vector3DotProduct(a, b)
}

func add(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3Add(a, b)
}

func sub(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3Subtract(a, b)
}

func scale(v rl.Vector3, s float32) rl.Vector3 {
	return rl.Vector3Scale(v, s)
}

// addScaled returns a + b*s
func addScaled(a, b rl.Vector3, s float32) rl.Vector3 {
	return rl.Vector3Add(a, rl.Vector3Scale(b, s))
}

func negate(v rl.Vector3) rl.Vector3 {
	return rl.Vector3Negate(v)
}

func magSq(v rl.Vector3) float32 {
	return rl.Vector3LengthSqr(v)
}

func length(v rl.Vector3) float32 {
	return rl.Vector3Length(v)
}

// normalize returns the unit vector or zero when v is degenerate
func normalize(v rl.Vector3) rl.Vector3 {
	l := magSq(v)
	if l < 1e-12 {
		return rl.Vector3{}
	}
	return scale(v, 1/sqrtf(l))
}

func sqrtf(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range
func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// safeInvert returns 1/v, or 0 when v is zero
func safeInvert(v float32) float32 {
	if v == 0 {
		return 0
	}
	return 1 / v
}

func axisValue(v rl.Vector3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func setAxisValue(v *rl.Vector3, axis int, value float32) {
	switch axis {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
}

func vector3Min(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3{X: minf(a.X, b.X), Y: minf(a.Y, b.Y), Z: minf(a.Z, b.Z)}
}

func vector3Max(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3{X: maxf(a.X, b.X), Y: maxf(a.Y, b.Y), Z: maxf(a.Z, b.Z)}
}

// perp returns a vector perpendicular to v, built from its smallest component
func perp(v rl.Vector3) rl.Vector3 {
	ax, ay, az := absf(v.X), absf(v.Y), absf(v.Z)
	if ax <= ay && ax <= az {
		return rl.Vector3{X: 0, Y: -v.Z, Z: v.Y}
	}
	if ay <= az {
		return rl.Vector3{X: -v.Z, Y: 0, Z: v.X}
	}
	return rl.Vector3{X: -v.Y, Y: v.X, Z: 0}
}

// tangentBasis builds two unit tangents orthogonal to a unit normal
func tangentBasis(normal rl.Vector3) (rl.Vector3, rl.Vector3) {
	t0 := normalize(perp(normal))
	t1 := cross(normal, t0)
	return t0, t1
}

func quatIdentity() rl.Quaternion {
	return rl.QuaternionIdentity()
}

func quatConjugate(q rl.Quaternion) rl.Quaternion {
	return rl.Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

func quatMultiply(a, b rl.Quaternion) rl.Quaternion {
	return rl.QuaternionMultiply(a, b)
}

func rotate(q rl.Quaternion, v rl.Vector3) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(v, q)
}

func unrotate(q rl.Quaternion, v rl.Vector3) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(v, quatConjugate(q))
}

// quatApplyAngularVelocity advances q by angular velocity w over dt
func quatApplyAngularVelocity(q rl.Quaternion, w rl.Vector3, dt float32) rl.Quaternion {
	spin := rl.Quaternion{X: w.X * dt * 0.5, Y: w.Y * dt * 0.5, Z: w.Z * dt * 0.5, W: 0}
	delta := quatMultiply(spin, q)
	result := rl.Quaternion{
		X: q.X + delta.X,
		Y: q.Y + delta.Y,
		Z: q.Z + delta.Z,
		W: q.W + delta.W,
	}
	return quatNormalize(result)
}

func quatNormalize(q rl.Quaternion) rl.Quaternion {
	l := q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W
	if l < 1e-12 {
		return quatIdentity()
	}
	inv := 1 / sqrtf(l)
	return rl.Quaternion{X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv, W: q.W * inv}
}

// quatDecompose splits a unit quaternion into a rotation axis and angle in radians
func quatDecompose(q rl.Quaternion) (rl.Vector3, float32) {
	axis := rl.Vector3{X: q.X, Y: q.Y, Z: q.Z}
	sinHalf := length(axis)
	if sinHalf < 1e-6 {
		return gRight, 0
	}
	angle := 2 * float32(math.Atan2(float64(sinHalf), float64(q.W)))
	return scale(axis, 1/sinHalf), angle
}

func vectorApproxEqual(a, b rl.Vector3, epsilon float32) bool {
	return absf(a.X-b.X) <= epsilon && absf(a.Y-b.Y) <= epsilon && absf(a.Z-b.Z) <= epsilon
}
