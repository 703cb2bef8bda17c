package scenario

import (
	"errors"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"portalphys/internal/physics"
)

var ErrUnknownScenario = errors.New("scenario: unknown scenario")

// --- YAML types ---

type File struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Ticks       int             `yaml:"ticks,omitempty"`
	Quads       []QuadDef       `yaml:"quads,omitempty"`
	Rooms       []RoomDef       `yaml:"rooms,omitempty"`
	Doorways    []DoorwayDef    `yaml:"doorways,omitempty"`
	Portals     []PortalDef     `yaml:"portals,omitempty"`
	Bodies      []BodyDef       `yaml:"bodies,omitempty"`
	Constraints []ConstraintDef `yaml:"constraints,omitempty"`
	Expect      []Expectation   `yaml:"expect,omitempty"`
}

// QuadDef is a static rectangle given by its center, facing and half sizes
type QuadDef struct {
	Name      string     `yaml:"name,omitempty"`
	Center    [3]float32 `yaml:"center"`
	Normal    [3]float32 `yaml:"normal"`
	Tangent   [3]float32 `yaml:"tangent,omitempty"`
	Size      [2]float32 `yaml:"size"`
	Thickness float32    `yaml:"thickness,omitempty"`
	Friction  float32    `yaml:"friction,omitempty"`
	Bounce    float32    `yaml:"bounce,omitempty"`
	Trigger   string     `yaml:"trigger,omitempty"`
	Color     string     `yaml:"color,omitempty"`
}

type RoomDef struct {
	Name     string     `yaml:"name"`
	Min      [3]float32 `yaml:"min"`
	Max      [3]float32 `yaml:"max"`
	Quads    []int      `yaml:"quads,omitempty"`
	Doorways []int      `yaml:"doorways,omitempty"`
}

type DoorwayDef struct {
	Center  [3]float32 `yaml:"center"`
	Normal  [3]float32 `yaml:"normal"`
	Tangent [3]float32 `yaml:"tangent,omitempty"`
	Size    [2]float32 `yaml:"size"`
	RoomA   int        `yaml:"room_a"`
	RoomB   int        `yaml:"room_b"`
	Closed  bool       `yaml:"closed,omitempty"`
}

// PortalDef places one portal. Rotation is in degrees; the portal faces its local +Z.
type PortalDef struct {
	Position [3]float32 `yaml:"position"`
	Rotation [3]float32 `yaml:"rotation,omitempty"`
	Room     int        `yaml:"room,omitempty"`
}

type ShapeDef struct {
	Type       string     `yaml:"type"`
	Size       [3]float32 `yaml:"size,omitempty"`
	Radius     float32    `yaml:"radius,omitempty"`
	HalfHeight float32    `yaml:"half_height,omitempty"`
	Offset     [3]float32 `yaml:"offset,omitempty"`
	Children   []ShapeDef `yaml:"children,omitempty"`
}

type BodyDef struct {
	Name            string     `yaml:"name"`
	Shape           ShapeDef   `yaml:"shape"`
	Position        [3]float32 `yaml:"position"`
	Rotation        [3]float32 `yaml:"rotation,omitempty"`
	Velocity        [3]float32 `yaml:"velocity,omitempty"`
	AngularVelocity [3]float32 `yaml:"angular_velocity,omitempty"`
	Mass            float32    `yaml:"mass,omitempty"`
	Friction        float32    `yaml:"friction,omitempty"`
	Bounce          float32    `yaml:"bounce,omitempty"`
	Kinematic       bool       `yaml:"kinematic,omitempty"`
	Player          bool       `yaml:"player,omitempty"`
	Grabbable       bool       `yaml:"grabbable,omitempty"`
	UseGravity      *bool      `yaml:"use_gravity,omitempty"`
	Trigger         string     `yaml:"trigger,omitempty"`
	Color           string     `yaml:"color,omitempty"`
	// Count > 1 repeats the body, offsetting each copy by Spacing
	Count   int        `yaml:"count,omitempty"`
	Spacing [3]float32 `yaml:"spacing,omitempty"`
}

type ConstraintDef struct {
	Body          string     `yaml:"body"`
	Holder        string     `yaml:"holder,omitempty"`
	Target        [3]float32 `yaml:"target"`
	MaxPosImpulse float32    `yaml:"max_pos_impulse,omitempty"`
	MaxRotImpulse float32    `yaml:"max_rot_impulse,omitempty"`
	Scaling       float32    `yaml:"scaling,omitempty"`
}

// --- Loading ---

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if f.Name == "" {
		return nil, errors.New("parse scenario: missing name")
	}
	return &f, nil
}

func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

func (f *File) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// --- Building ---

// Instance is a scenario built into a live world
type Instance struct {
	File  *File
	World *physics.PhysicsWorld

	// body names in definition order, repeated bodies suffixed with their index
	Names       []string
	Bodies      map[string]physics.ObjectHandle
	Colors      map[physics.ObjectHandle]string
	QuadColors  []string
	Volumes     map[string]*physics.VolumeTrigger
	Fizzlers    map[string]*physics.FizzlerTrigger
	Constraints []physics.ConstraintHandle
}

func vec(v [3]float32) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

func rotation(degrees [3]float32) rl.Quaternion {
	if degrees == [3]float32{} {
		return rl.QuaternionIdentity()
	}
	return rl.QuaternionFromEuler(degrees[0]*rl.Deg2rad, degrees[1]*rl.Deg2rad, degrees[2]*rl.Deg2rad)
}

func quadFacing(center, normal, tangent [3]float32, size [2]float32, thickness float32) (physics.Quad, error) {
	if size[0] <= 0 || size[1] <= 0 {
		return physics.Quad{}, fmt.Errorf("quad size %v: %w", size, physics.ErrInvalidShape)
	}
	if tangent == [3]float32{} {
		tangent = [3]float32{1, 0, 0}
	}
	return *physics.NewQuadFacing(vec(center), vec(normal), vec(tangent), size[0], size[1], thickness), nil
}

func newTrigger(kind string) (physics.Trigger, error) {
	switch kind {
	case "":
		return nil, nil
	case "volume":
		return physics.NewVolumeTrigger(nil), nil
	case "fizzler":
		return &physics.FizzlerTrigger{}, nil
	}
	return nil, fmt.Errorf("unknown trigger %q", kind)
}

func buildShape(def ShapeDef) (physics.Shape, error) {
	switch def.Type {
	case "box":
		return physics.NewBox(vec(def.Size)), nil
	case "sphere":
		return physics.NewSphere(def.Radius), nil
	case "capsule":
		return physics.NewCapsule(def.Radius, def.HalfHeight), nil
	case "cylinder":
		return physics.NewCylinder(def.Radius, def.HalfHeight), nil
	case "compound":
		children := make([]physics.CompoundChild, 0, len(def.Children))
		for _, childDef := range def.Children {
			child, err := buildShape(childDef)
			if err != nil {
				return nil, err
			}
			children = append(children, physics.CompoundChild{
				Shape: child,
				Local: physics.NewTransform(vec(childDef.Offset), rl.QuaternionIdentity()),
			})
		}
		return physics.NewCompound(children)
	}
	return nil, fmt.Errorf("unknown shape %q: %w", def.Type, physics.ErrInvalidShape)
}

func (f *File) topology() (*physics.Topology, error) {
	if len(f.Rooms) == 0 {
		return nil, nil
	}
	topology := &physics.Topology{}
	for _, r := range f.Rooms {
		topology.Rooms = append(topology.Rooms, physics.Room{
			Name:           r.Name,
			BoundingBox:    physics.Box3D{Min: vec(r.Min), Max: vec(r.Max)},
			QuadIndices:    r.Quads,
			DoorwayIndices: r.Doorways,
		})
	}
	for i, d := range f.Doorways {
		quad, err := quadFacing(d.Center, d.Normal, d.Tangent, d.Size, 0)
		if err != nil {
			return nil, fmt.Errorf("doorway %d: %w", i, err)
		}
		var flags physics.DoorwayFlags
		if !d.Closed {
			flags |= physics.DoorwayOpen
		}
		topology.Doorways = append(topology.Doorways, physics.Doorway{Quad: quad, RoomA: d.RoomA, RoomB: d.RoomB, Flags: flags})
	}
	return topology, nil
}

// Build creates a world for the scenario with the given tuning
func (f *File) Build(cfg physics.Config) (*Instance, error) {
	inst := &Instance{
		File:     f,
		Bodies:   make(map[string]physics.ObjectHandle),
		Colors:   make(map[physics.ObjectHandle]string),
		Volumes:  make(map[string]*physics.VolumeTrigger),
		Fizzlers: make(map[string]*physics.FizzlerTrigger),
	}

	quads := make([]physics.StaticQuad, 0, len(f.Quads))
	for i, def := range f.Quads {
		quad, err := quadFacing(def.Center, def.Normal, def.Tangent, def.Size, def.Thickness)
		if err != nil {
			return nil, fmt.Errorf("%s: quad %d: %w", f.Name, i, err)
		}
		trigger, err := newTrigger(def.Trigger)
		if err != nil {
			return nil, fmt.Errorf("%s: quad %d: %w", f.Name, i, err)
		}
		quads = append(quads, physics.StaticQuad{Quad: quad, Friction: def.Friction, Bounce: def.Bounce, Trigger: trigger})
		inst.QuadColors = append(inst.QuadColors, def.Color)
		inst.registerTrigger(def.Name, trigger)
	}

	topology, err := f.topology()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}

	world, err := physics.NewPhysicsWorld(cfg, quads, topology)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	inst.World = world

	for i, def := range f.Portals {
		if i > 1 {
			return nil, fmt.Errorf("%s: %d portals, at most 2", f.Name, len(f.Portals))
		}
		world.SetPortal(i, physics.NewTransform(vec(def.Position), rotation(def.Rotation)), def.Room, rl.Vector3{})
	}

	for _, def := range f.Bodies {
		if err := inst.addBodies(def); err != nil {
			return nil, fmt.Errorf("%s: body %s: %w", f.Name, def.Name, err)
		}
	}

	for _, def := range f.Constraints {
		body, ok := inst.Bodies[def.Body]
		if !ok {
			return nil, fmt.Errorf("%s: constraint on unknown body %s: %w", f.Name, def.Body, physics.ErrInvalidHandle)
		}
		var holder physics.ObjectHandle
		if def.Holder != "" {
			if holder, ok = inst.Bodies[def.Holder]; !ok {
				return nil, fmt.Errorf("%s: unknown holder %s: %w", f.Name, def.Holder, physics.ErrInvalidHandle)
			}
		}
		maxPos, maxRot, scaling := def.MaxPosImpulse, def.MaxRotImpulse, def.Scaling
		if maxPos == 0 {
			maxPos = 100
		}
		if maxRot == 0 {
			maxRot = 100
		}
		if scaling == 0 {
			scaling = 1
		}
		h, err := world.AddPointConstraint(body, holder, maxPos, maxRot, scaling)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		if err := world.UpdatePointConstraintTarget(h, vec(def.Target), world.Body(body).Transform.Rotation); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		inst.Constraints = append(inst.Constraints, h)
	}

	return inst, nil
}

func (inst *Instance) registerTrigger(name string, trigger physics.Trigger) {
	switch t := trigger.(type) {
	case *physics.VolumeTrigger:
		inst.Volumes[name] = t
	case *physics.FizzlerTrigger:
		inst.Fizzlers[name] = t
	}
}

func (inst *Instance) addBodies(def BodyDef) error {
	count := max(def.Count, 1)
	for i := 0; i < count; i++ {
		name := def.Name
		if count > 1 {
			name = fmt.Sprintf("%s_%d", def.Name, i)
		}
		if _, exists := inst.Bodies[name]; exists {
			return fmt.Errorf("duplicate body name %s", name)
		}

		shape, err := buildShape(def.Shape)
		if err != nil {
			return err
		}
		mass := def.Mass
		if mass == 0 {
			mass = 1
		}

		position := rl.Vector3Add(vec(def.Position), rl.Vector3Scale(vec(def.Spacing), float32(i)))
		layers := physics.LayerTangible
		if def.Player {
			layers |= physics.LayerPlayer
		}
		if def.Grabbable {
			layers |= physics.LayerGrabbable
		}

		world := inst.World
		object := world.NewBodyObject(physics.NewCollider(shape, def.Friction, def.Bounce), mass, physics.NewTransform(position, rotation(def.Rotation)), layers)
		body := object.Body
		body.Velocity = vec(def.Velocity)
		body.AngularVelocity = vec(def.AngularVelocity)
		if def.UseGravity != nil && !*def.UseGravity {
			body.Flags |= physics.DisableGravity
		}
		if def.Player {
			body.Flags |= physics.Player
		}
		if def.Grabbable {
			body.Flags |= physics.Grabbable
		}
		if def.Kinematic {
			body.MarkKinematic()
		}

		trigger, err := newTrigger(def.Trigger)
		if err != nil {
			return err
		}
		object.Trigger = trigger

		h, err := world.AddObject(object)
		if err != nil {
			return err
		}
		inst.registerTrigger(name, trigger)
		inst.Bodies[name] = h
		inst.Names = append(inst.Names, name)
		inst.Colors[h] = def.Color
	}
	return nil
}

// Body resolves a named body, or nil when it was removed
func (inst *Instance) Body(name string) *physics.RigidBody {
	h, ok := inst.Bodies[name]
	if !ok {
		return nil
	}
	return inst.World.Body(h)
}
