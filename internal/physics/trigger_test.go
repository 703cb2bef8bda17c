package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type triggerRecorder struct {
	enters []ObjectHandle
	exits  []ObjectHandle
}

func (r *triggerRecorder) OnTriggerEnter(trigger, other ObjectHandle) {
	r.enters = append(r.enters, other)
}

func (r *triggerRecorder) OnTriggerExit(trigger, other ObjectHandle) {
	r.exits = append(r.exits, other)
}

func addTriggerBox(t *testing.T, w *PhysicsWorld, trigger Trigger, half float32) ObjectHandle {
	t.Helper()
	object := w.NewBodyObject(NewCollider(NewBox(rl.Vector3{X: half, Y: half, Z: half}), 0, 0), 1, IdentityTransform(), LayerTangible)
	object.Body.MarkKinematic()
	object.Trigger = trigger
	h, err := w.AddObject(object)
	if err != nil {
		t.Fatalf("AddObject failed: %v", err)
	}
	return h
}

func addFloatingSphere(t *testing.T, w *PhysicsWorld, position, velocity rl.Vector3) ObjectHandle {
	t.Helper()
	object := w.NewBodyObject(NewCollider(NewSphere(0.25), 0, 0), 1, NewTransform(position, quatIdentity()), LayerTangible)
	object.Body.Flags |= DisableGravity
	object.Body.Velocity = velocity
	h, err := w.AddObject(object)
	if err != nil {
		t.Fatalf("AddObject failed: %v", err)
	}
	return h
}

func TestVolumeTriggerEnterAndExit(t *testing.T) {
	w := newTestWorld(t)
	recorder := &triggerRecorder{}
	volume := NewVolumeTrigger(recorder)
	trigger := addTriggerBox(t, w, volume, 1)
	sphere := addFloatingSphere(t, w, rl.Vector3{X: -3}, rl.Vector3{X: 5})

	inside := false
	for i := 0; i < 120; i++ {
		w.Step()
		if volume.Contains(sphere) {
			inside = true
		}
	}

	if !inside {
		t.Error("Expected the sphere to be reported inside the volume at some point")
	}
	if len(recorder.enters) != 1 || len(recorder.exits) != 1 {
		t.Fatalf("Expected 1 enter and 1 exit, got %d and %d", len(recorder.enters), len(recorder.exits))
	}
	if recorder.enters[0] != sphere || recorder.exits[0] != sphere {
		t.Errorf("Expected notifications about the sphere, got %v %v", recorder.enters, recorder.exits)
	}
	if volume.Count() != 0 {
		t.Errorf("Expected an empty volume, got %d", volume.Count())
	}
	if w.Solver.FindManifold(trigger, sphere) != nil {
		t.Error("Expected no contact manifold for a trigger")
	}
	damping := float32(1)
	for i := 0; i < 120; i++ {
		damping *= DefaultDamping
	}
	if v := w.Body(sphere).Velocity.X; !approxEqual(v, 5*damping, 0.05) {
		t.Errorf("Expected the sphere to pass through without a response, got vx %f", v)
	}
}

func TestVolumeTriggerForgetsRemovedObject(t *testing.T) {
	w := newTestWorld(t)
	recorder := &triggerRecorder{}
	volume := NewVolumeTrigger(recorder)
	addTriggerBox(t, w, volume, 1)
	sphere := addFloatingSphere(t, w, rl.Vector3{}, rl.Vector3{})

	w.Step()
	if !volume.Contains(sphere) || volume.Count() != 1 {
		t.Fatalf("Expected the sphere inside the volume, got %d", volume.Count())
	}

	if err := w.RemoveObject(sphere); err != nil {
		t.Fatalf("RemoveObject failed: %v", err)
	}
	w.Step()

	if volume.Count() != 0 {
		t.Errorf("Expected the removed sphere dropped from the volume, got %d", volume.Count())
	}
	if len(recorder.exits) != 0 {
		t.Errorf("Expected no exit for a removed object, got %d", len(recorder.exits))
	}
}

func TestStaticQuadTrigger(t *testing.T) {
	recorder := &triggerRecorder{}
	volume := NewVolumeTrigger(recorder)
	sensor := StaticQuad{Quad: *NewQuadFacing(rl.Vector3{Y: 1}, gUp, gRight, 2, 2, 0), Trigger: volume}
	w := newTestWorld(t, floorQuad(5), sensor)

	h := addBox(t, w, rl.Vector3{X: 0.25, Y: 0.25, Z: 0.25}, 1, rl.Vector3{Y: 1.1})
	w.Step()

	if len(recorder.enters) != 1 || recorder.enters[0] != h {
		t.Errorf("Expected the box to enter the sensor quad, got %v", recorder.enters)
	}
	if w.Solver.FindManifold(w.Scene.Quads()[1], h) != nil {
		t.Error("Expected no contact against a sensor quad")
	}
}

func TestFizzlerFlagsDynamicObjects(t *testing.T) {
	w := newTestWorld(t)
	fizzler := &FizzlerTrigger{}
	addTriggerBox(t, w, fizzler, 1)

	cube := addFloatingSphere(t, w, rl.Vector3{X: 0.5}, rl.Vector3{})
	holder := addHolder(t, w, rl.Vector3{X: -0.5})

	stepN(w, 3)

	if !w.Body(cube).Has(Fizzled) {
		t.Error("Expected the dynamic object to be fizzled")
	}
	if w.Body(holder).Has(Fizzled) {
		t.Error("Expected the player to pass through the fizzler")
	}
	if fizzler.Fizzled != 1 {
		t.Errorf("Expected 1 fizzled object, got %d", fizzler.Fizzled)
	}
}
