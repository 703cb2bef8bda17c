package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// NoPortal marks a hit that did not pass through a portal
const NoPortal = -1

type RaycastHit struct {
	Object   ObjectHandle
	At       rl.Vector3
	Normal   rl.Vector3
	Distance float32
	// index of the portal the ray entered, or NoPortal
	ThroughPortal int
}

// Raycast returns the closest quad or dynamic object hit along ray whose
// layers intersect layers. Trigger objects are ignored. With
// passThroughPortals a hit on an open portal continues once from the other
// portal with the remaining distance.
func (s *CollisionScene) Raycast(ray rl.Ray, layers CollisionLayers, maxDistance float32, passThroughPortals bool) (RaycastHit, bool) {
	ray.Direction = normalize(ray.Direction)

	closest := RaycastHit{Distance: maxDistance, ThroughPortal: NoPortal}
	hit := false

	for i := 0; i < s.quadCount; i++ {
		object := s.slots[i].object
		if object.Layers&layers == 0 || object.Trigger != nil {
			continue
		}
		if result, ok := object.raycast(ray, closest.Distance); ok {
			closest = result
			hit = true
		}
	}

	for _, h := range s.dynamic {
		object := s.Object(h)
		if object.Layers&layers == 0 || object.Trigger != nil {
			continue
		}
		if result, ok := object.raycast(ray, closest.Distance); ok {
			closest = result
			hit = true
		}
	}

	if !hit || !passThroughPortals || !s.Portals.IsOpen() {
		return closest, hit
	}

	for i := 0; i < 2; i++ {
		if !s.Portals.touchingSingle(i, closest.At, closest.Normal) {
			continue
		}

		mapping := s.Portals.PortalTransform(i)
		next := rl.Ray{
			Position:  mapping.PointNoScale(closest.At),
			Direction: rotate(mapping.Rotation, ray.Direction),
		}

		result, ok := s.Raycast(next, layers, maxDistance-closest.Distance, false)
		if !ok {
			return RaycastHit{Distance: maxDistance, ThroughPortal: NoPortal}, false
		}
		result.Distance += closest.Distance
		result.ThroughPortal = i
		return result, true
	}

	return closest, hit
}

// raycast intersects the object's shape, returning a hit closer than maxDistance
func (o *CollisionObject) raycast(ray rl.Ray, maxDistance float32) (RaycastHit, bool) {
	if o.Body == nil {
		if !rayMayHit(o.BoundingBox, ray, maxDistance) {
			return RaycastHit{}, false
		}
		local, ok := o.Collider.Shape.RaycastLocal(ray.Position, ray.Direction, maxDistance)
		if !ok || local.Distance >= maxDistance {
			return RaycastHit{}, false
		}
		return RaycastHit{
			Object:        o.handle,
			At:            addScaled(ray.Position, ray.Direction, local.Distance),
			Normal:        local.Normal,
			Distance:      local.Distance,
			ThroughPortal: NoPortal,
		}, true
	}

	if !rayMayHit(o.BoundingBox, ray, maxDistance) {
		return RaycastHit{}, false
	}

	origin, direction := o.localRay(ray)
	local, ok := o.Collider.Shape.RaycastLocal(origin, direction, maxDistance)
	if !ok || local.Distance >= maxDistance {
		return RaycastHit{}, false
	}
	return RaycastHit{
		Object:        o.handle,
		At:            addScaled(ray.Position, ray.Direction, local.Distance),
		Normal:        rotate(o.Body.Transform.Rotation, local.Normal),
		Distance:      local.Distance,
		ThroughPortal: NoPortal,
	}, true
}

// rayMayHit is the bounding box rejection test
func rayMayHit(bounds Box3D, ray rl.Ray, maxDistance float32) bool {
	if bounds.Contains(ray.Position) {
		return true
	}
	_, _, ok := bounds.Raycast(ray.Position, ray.Direction, maxDistance)
	return ok
}
