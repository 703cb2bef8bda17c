package physics

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// DoorwayFlags describe a doorway's state
type DoorwayFlags uint8

const (
	DoorwayOpen DoorwayFlags = 1 << iota
)

// Doorway joins two rooms through a quad. Bodies change room when they cross
// the quad's plane inside its edges.
type Doorway struct {
	Quad  Quad
	RoomA int
	RoomB int
	Flags DoorwayFlags
}

// Room is one convex-ish region of a level
type Room struct {
	Name        string
	BoundingBox Box3D
	// static quad indices belonging to this room; empty means every quad
	QuadIndices []int
	// indices into Topology.Doorways, at most 32 per room
	DoorwayIndices []int
}

// Topology is the room and doorway graph of a level
type Topology struct {
	Rooms    []Room
	Doorways []Doorway
}

const maxRoomDoorways = 32

// Validate checks indices against the room, doorway and quad counts
func (t *Topology) Validate(quadCount int) error {
	if len(t.Rooms) > 64 {
		return fmt.Errorf("%d rooms, limit 64: %w", len(t.Rooms), ErrInvalidTopology)
	}
	for i, room := range t.Rooms {
		if len(room.DoorwayIndices) > maxRoomDoorways {
			return fmt.Errorf("room %d has %d doorways, limit %d: %w", i, len(room.DoorwayIndices), maxRoomDoorways, ErrInvalidTopology)
		}
		for _, d := range room.DoorwayIndices {
			if d < 0 || d >= len(t.Doorways) {
				return fmt.Errorf("room %d references doorway %d: %w", i, d, ErrInvalidTopology)
			}
		}
		for _, q := range room.QuadIndices {
			if q < 0 || q >= quadCount {
				return fmt.Errorf("room %d references quad %d: %w", i, q, ErrInvalidTopology)
			}
		}
	}
	for i, doorway := range t.Doorways {
		if doorway.RoomA < 0 || doorway.RoomA >= len(t.Rooms) || doorway.RoomB < 0 || doorway.RoomB >= len(t.Rooms) {
			return fmt.Errorf("doorway %d joins rooms %d and %d: %w", i, doorway.RoomA, doorway.RoomB, ErrInvalidTopology)
		}
	}
	return nil
}

func (t *Topology) room(index int) *Room {
	if t == nil || index < 0 || index >= len(t.Rooms) {
		return nil
	}
	return &t.Rooms[index]
}

// RoomAt returns the first room whose bounds contain position, or NoRoom
func (t *Topology) RoomAt(position rl.Vector3) int {
	if t == nil {
		return NoRoom
	}
	for i := range t.Rooms {
		if t.Rooms[i].BoundingBox.Contains(position) {
			return i
		}
	}
	return NoRoom
}

// DoorwaySides returns one bit per doorway of the room, set when position is
// on the front side of that doorway's plane.
func (t *Topology) DoorwaySides(position rl.Vector3, currentRoom int) uint32 {
	room := t.room(currentRoom)
	if room == nil {
		return 0
	}

	var sides uint32
	for i, d := range room.DoorwayIndices {
		if t.Doorways[d].Quad.Plane.Distance(position) > 0 {
			sides |= 1 << uint(i)
		}
	}
	return sides
}

// CheckDoorwayCrossings compares position against the sides recorded by
// DoorwaySides and returns the room on the far side of a doorway crossed
// inside its edges, or currentRoom.
func (t *Topology) CheckDoorwayCrossings(position rl.Vector3, currentRoom int, sides uint32) int {
	room := t.room(currentRoom)
	if room == nil {
		return currentRoom
	}

	for i, d := range room.DoorwayIndices {
		doorway := &t.Doorways[d]

		prevSide := sides&(1<<uint(i)) != 0
		currSide := doorway.Quad.Plane.Distance(position) > 0
		if prevSide == currSide {
			continue
		}

		if doorway.Quad.DetermineEdges(doorway.Quad.Plane.Project(position)) != 0 {
			continue
		}

		if doorway.RoomA == currentRoom {
			return doorway.RoomB
		}
		return doorway.RoomA
	}
	return currentRoom
}

// MaxDistanceInDirection is the furthest distance along ray reached by any
// room in roomMask
func (t *Topology) MaxDistanceInDirection(ray rl.Ray, roomMask uint64) float32 {
	furthest := ray.Position
	for i := range t.Rooms {
		if roomMask&(1<<uint(i)) == 0 {
			continue
		}
		current := t.Rooms[i].BoundingBox.Support(ray.Direction)
		if dot(current, ray.Direction) > dot(furthest, ray.Direction) {
			furthest = current
		}
	}
	return dot(sub(furthest, ray.Position), ray.Direction)
}

// roomQuads returns the quad indices to test for a body in currentRoom and
// whether the room restricts them at all. Rooms reachable through a doorway
// whose bounds overlap bounds are included.
func (t *Topology) roomQuads(currentRoom int, bounds Box3D, out []int) ([]int, bool) {
	room := t.room(currentRoom)
	if room == nil || len(room.QuadIndices) == 0 {
		return out, false
	}

	out = append(out, room.QuadIndices...)
	for _, d := range room.DoorwayIndices {
		doorway := &t.Doorways[d]
		other := doorway.RoomA
		if other == currentRoom {
			other = doorway.RoomB
		}
		neighbor := t.room(other)
		if neighbor == nil || other == currentRoom || !neighbor.BoundingBox.Overlaps(bounds) {
			continue
		}
		if len(neighbor.QuadIndices) == 0 {
			return out[:0], false
		}
		out = append(out, neighbor.QuadIndices...)
	}
	return out, true
}
