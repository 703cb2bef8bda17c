package physics

import rl "github.com/gen2brain/raylib-go/raylib"

const (
	maxSimplexSize      = 4
	maxGJKIterations    = 20
	gjkDirectionEpsilon = 0.0000001
)

// Supporter provides the Minkowski support function of a convex shape placed in
// world space. The returned int identifies the feature that produced the point.
type Supporter interface {
	MinkowskiSupport(direction rl.Vector3) (rl.Vector3, int)
}

// CombineContactIDs packs the feature ids of both shapes into one contact id
func CombineContactIDs(a, b int) int {
	return (a&0xFFFF)<<16 | b&0xFFFF
}

// Simplex is the GJK working set. Points holds Minkowski difference points,
// ObjectAPoint the matching points on shape A.
type Simplex struct {
	Points       [maxSimplexSize]rl.Vector3
	ObjectAPoint [maxSimplexSize]rl.Vector3
	IDs          [maxSimplexSize]int
	Count        int
}

func (s *Simplex) reset() {
	s.Count = 0
}

func (s *Simplex) addPoint(aPoint, bPoint rl.Vector3, id int) (rl.Vector3, bool) {
	if s.Count == maxSimplexSize {
		return rl.Vector3{}, false
	}
	index := s.Count
	s.ObjectAPoint[index] = aPoint
	s.Points[index] = sub(aPoint, bPoint)
	s.IDs[index] = id
	s.Count++
	return s.Points[index], true
}

func (s *Simplex) movePoint(to, from int) {
	s.Points[to] = s.Points[from]
	s.ObjectAPoint[to] = s.ObjectAPoint[from]
	s.IDs[to] = s.IDs[from]
}

// tripleProduct returns (a x b) x c
func tripleProduct(a, b, c rl.Vector3) rl.Vector3 {
	return cross(cross(a, b), c)
}

// check reduces the simplex toward the origin and picks the next direction.
// It returns true once a tetrahedron encloses the origin.
func (s *Simplex) check(nextDirection *rl.Vector3) bool {
	lastAdded := s.Points[s.Count-1]
	aToOrigin := negate(lastAdded)

	switch s.Count {
	case 2:
		lastAddedToOther := sub(s.Points[0], lastAdded)
		*nextDirection = tripleProduct(lastAddedToOther, aToOrigin, lastAddedToOther)
		if magSq(*nextDirection) <= gjkDirectionEpsilon {
			*nextDirection = perp(lastAddedToOther)
		}
		return false

	case 3:
		ab := sub(s.Points[1], lastAdded)
		ac := sub(s.Points[0], lastAdded)
		normal := cross(ab, ac)

		if dot(cross(ab, normal), aToOrigin) > 0 {
			*nextDirection = tripleProduct(ab, aToOrigin, ab)
			if magSq(*nextDirection) <= gjkDirectionEpsilon {
				*nextDirection = normal
			}
			// drop the first point
			s.movePoint(0, 1)
			s.movePoint(1, 2)
			s.Count = 2
			return false
		}

		if dot(cross(normal, ac), aToOrigin) > 0 {
			*nextDirection = tripleProduct(ac, aToOrigin, ac)
			if magSq(*nextDirection) <= gjkDirectionEpsilon {
				*nextDirection = normal
			}
			// drop the second point
			s.movePoint(1, 2)
			s.Count = 2
			return false
		}

		if dot(normal, aToOrigin) > 0 {
			*nextDirection = normal
			return false
		}

		// flip the winding using the unused fourth slot
		s.movePoint(3, 0)
		s.movePoint(0, 1)
		s.movePoint(1, 3)
		*nextDirection = negate(normal)
		return false

	case 4:
		lastBehindIndex := -1
		lastInFrontIndex := -1
		frontCount := 0
		var normals [3]rl.Vector3

		for i := 0; i < 3; i++ {
			next := s.Points[0]
			if i < 2 {
				next = s.Points[i+1]
			}
			firstEdge := sub(lastAdded, s.Points[i])
			secondEdge := sub(next, s.Points[i])
			normals[i] = cross(firstEdge, secondEdge)

			if dot(aToOrigin, normals[i]) > 0 {
				frontCount++
				lastInFrontIndex = i
			} else {
				lastBehindIndex = i
			}
		}

		switch frontCount {
		case 0:
			return true
		case 1:
			*nextDirection = normals[lastInFrontIndex]
			if lastInFrontIndex == 1 {
				s.movePoint(0, 1)
				s.movePoint(1, 2)
			} else if lastInFrontIndex == 2 {
				s.movePoint(1, 0)
				s.movePoint(0, 2)
			}
			s.movePoint(2, 3)
			s.Count = 3
		case 2:
			if lastBehindIndex == 0 {
				s.movePoint(0, 2)
			} else if lastBehindIndex == 2 {
				s.movePoint(0, 1)
			}
			s.movePoint(1, 3)
			s.Count = 2

			ab := sub(s.Points[0], s.Points[1])
			*nextDirection = tripleProduct(ab, aToOrigin, ab)
			if magSq(*nextDirection) <= gjkDirectionEpsilon {
				*nextDirection = perp(ab)
			}
		default:
			s.movePoint(0, 3)
			s.Count = 1
			*nextDirection = aToOrigin
		}
	}

	return false
}

// CheckForOverlap runs GJK on the Minkowski difference a - b. On success the
// simplex holds a tetrahedron around the origin, ready to seed EPA.
func CheckForOverlap(simplex *Simplex, a, b Supporter, firstDirection rl.Vector3) bool {
	simplex.reset()

	if magSq(firstDirection) < 1e-12 {
		firstDirection = gRight
	}

	aPoint, aID := a.MinkowskiSupport(firstDirection)
	nextDirection := negate(firstDirection)
	bPoint, bID := b.MinkowskiSupport(nextDirection)
	simplex.addPoint(aPoint, bPoint, CombineContactIDs(aID, bID))

	for iteration := 0; iteration < maxGJKIterations; iteration++ {
		if magSq(nextDirection) < 1e-12 {
			return false
		}

		aPoint, aID = a.MinkowskiSupport(nextDirection)
		bPoint, bID = b.MinkowskiSupport(negate(nextDirection))

		added, ok := simplex.addPoint(aPoint, bPoint, CombineContactIDs(aID, bID))
		if !ok {
			return false
		}

		if dot(added, nextDirection) <= 0 {
			return false
		}

		if simplex.check(&nextDirection) {
			return true
		}
	}

	return false
}
