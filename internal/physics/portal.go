package physics

import rl "github.com/gen2brain/raylib-go/raylib"

const (
	PortalThickness = 0.11
	PortalXRadius   = 0.5
	PortalYRadius   = 1.0

	maxPortalSpeed          = 1000.0 / 64.0
	minPortalSpeed          = 300.0 / 64.0
	portalExitClampDistance = 0.15
)

// Portal is one end of the portal pair. Its front faces local +Z.
type Portal struct {
	Transform Transform
	Room      int
	Velocity  rl.Vector3
	Open      bool
}

// PortalPair holds portal A (index 0) and portal B (index 1)
type PortalPair struct {
	Portals [2]Portal
}

// IsOpen reports whether both portals are placed
func (p *PortalPair) IsOpen() bool {
	return p.Portals[0].Open && p.Portals[1].Open
}

// touchingSingle tests a contact point against one portal's oval. The contact
// normal must face out of the portal front.
func (p *PortalPair) touchingSingle(index int, point, normal rl.Vector3) bool {
	portal := &p.Portals[index]
	local := portal.Transform.InversePointNoScale(point)

	if absf(local.Z) > PortalThickness {
		return false
	}

	x := local.X / PortalXRadius
	y := local.Y / PortalYRadius
	if x*x+y*y >= 1 {
		return false
	}

	return dot(unrotate(portal.Transform.Rotation, normal), gForward) > 0
}

// IsTouchingPortal returns TouchingPortalA and/or TouchingPortalB for a contact
// that lies on an open portal's surface, or 0.
func (p *PortalPair) IsTouchingPortal(point, normal rl.Vector3) RigidBodyFlags {
	if !p.IsOpen() {
		return 0
	}
	var result RigidBodyFlags
	for i := 0; i < 2; i++ {
		if p.touchingSingle(i, point, normal) {
			result |= TouchingPortalA << i
		}
	}
	return result
}

// flipY is a half turn about Y so that entering one front exits the other front
var flipY = rl.Quaternion{X: 0, Y: 1, Z: 0, W: 0}

// portalMapping returns the transform taking world space at the from portal to
// world space at the to portal.
func portalMapping(from, to Transform) Transform {
	inverseRotation := quatConjugate(from.Rotation)
	fromInverse := NewTransform(rotate(inverseRotation, negate(from.Position)), inverseRotation)
	flip := NewTransform(rl.Vector3{}, flipY)
	return Concat(NewTransform(to.Position, to.Rotation), Concat(flip, fromInverse))
}

// PortalTransform returns the mapping from portal index from to the other portal
func (p *PortalPair) PortalTransform(from int) Transform {
	return portalMapping(p.Portals[from].Transform, p.Portals[1-from].Transform)
}
