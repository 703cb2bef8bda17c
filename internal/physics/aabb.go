package physics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Box3D is an axis aligned bounding box
type Box3D struct {
	Min rl.Vector3
	Max rl.Vector3
}

// EmptyBox3D returns an inverted box that any Union will overwrite
func EmptyBox3D() Box3D {
	return Box3D{
		Min: rl.Vector3{X: math.MaxFloat32, Y: math.MaxFloat32, Z: math.MaxFloat32},
		Max: rl.Vector3{X: -math.MaxFloat32, Y: -math.MaxFloat32, Z: -math.MaxFloat32},
	}
}

// NewBox3DFromCenter creates a box from a center point and half extents.
func NewBox3DFromCenter(center, halfExtents rl.Vector3) Box3D {
	return Box3D{
		Min: rl.Vector3Subtract(center, halfExtents),
		Max: rl.Vector3Add(center, halfExtents),
	}
}

func (a Box3D) Overlaps(b Box3D) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

func (a Box3D) Contains(point rl.Vector3) bool {
	return point.X >= a.Min.X && point.X <= a.Max.X &&
		point.Y >= a.Min.Y && point.Y <= a.Max.Y &&
		point.Z >= a.Min.Z && point.Z <= a.Max.Z
}

func (a Box3D) Union(b Box3D) Box3D {
	return Box3D{Min: vector3Min(a.Min, b.Min), Max: vector3Max(a.Max, b.Max)}
}

func (a Box3D) UnionPoint(p rl.Vector3) Box3D {
	return Box3D{Min: vector3Min(a.Min, p), Max: vector3Max(a.Max, p)}
}

// Translate offsets the box
func (a Box3D) Translate(offset rl.Vector3) Box3D {
	return Box3D{Min: add(a.Min, offset), Max: add(a.Max, offset)}
}

// Extend grows the box along a motion vector, producing the swept volume bounds
func (a Box3D) Extend(motion rl.Vector3) Box3D {
	return a.Union(a.Translate(motion))
}

func (a Box3D) Center() rl.Vector3 {
	return scale(add(a.Min, a.Max), 0.5)
}

func (a Box3D) HalfExtents() rl.Vector3 {
	return scale(sub(a.Max, a.Min), 0.5)
}

// MinHalfExtent returns the smallest half extent of the box
func (a Box3D) MinHalfExtent() float32 {
	h := a.HalfExtents()
	return minf(h.X, minf(h.Y, h.Z))
}

// Support returns the corner furthest along direction
func (a Box3D) Support(direction rl.Vector3) rl.Vector3 {
	result := a.Min
	if direction.X > 0 {
		result.X = a.Max.X
	}
	if direction.Y > 0 {
		result.Y = a.Max.Y
	}
	if direction.Z > 0 {
		result.Z = a.Max.Z
	}
	return result
}

// Raycast runs the slab test and returns the entry distance and the face normal hit
func (a Box3D) Raycast(origin, direction rl.Vector3, maxDistance float32) (float32, rl.Vector3, bool) {
	tmin := float32(-math.MaxFloat32)
	tmax := float32(math.MaxFloat32)
	var normal rl.Vector3

	for axis := 0; axis < 3; axis++ {
		o := axisValue(origin, axis)
		d := axisValue(direction, axis)
		lo := axisValue(a.Min, axis)
		hi := axisValue(a.Max, axis)

		if d == 0 {
			if o < lo || o > hi {
				return 0, rl.Vector3{}, false
			}
			continue
		}

		t1 := (lo - o) / d
		t2 := (hi - o) / d
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tmin {
			tmin = t1
			normal = rl.Vector3{}
			setAxisValue(&normal, axis, sign)
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, rl.Vector3{}, false
		}
	}

	if tmax < 0 || tmin > maxDistance || tmin < 0 {
		return 0, rl.Vector3{}, false
	}

	return tmin, normal, true
}
