package physics

// Trigger is the closed set of trigger behaviors an object can carry in place
// of a physical response. Two trigger objects never interact.
type Trigger interface {
	isTrigger()
}

// TriggerListener receives overlap changes of a VolumeTrigger after each step
type TriggerListener interface {
	OnTriggerEnter(trigger, other ObjectHandle)
	OnTriggerExit(trigger, other ObjectHandle)
}

// VolumeTrigger tracks which objects overlap it and reports enter and exit
type VolumeTrigger struct {
	Listener TriggerListener

	active  map[ObjectHandle]bool // overlaps from the last dispatch
	current map[ObjectHandle]bool // overlaps found this tick
}

func NewVolumeTrigger(listener TriggerListener) *VolumeTrigger {
	return &VolumeTrigger{
		Listener: listener,
		active:   make(map[ObjectHandle]bool),
		current:  make(map[ObjectHandle]bool),
	}
}

func (t *VolumeTrigger) isTrigger() {}

// Contains reports whether other overlapped the trigger at the last dispatch
func (t *VolumeTrigger) Contains(other ObjectHandle) bool {
	return t.active[other]
}

// Count is the number of objects inside after the last dispatch
func (t *VolumeTrigger) Count() int {
	return len(t.active)
}

func (t *VolumeTrigger) touch(other ObjectHandle) {
	t.current[other] = true
}

// dispatch sends enter and exit notifications and swaps the overlap sets
func (t *VolumeTrigger) dispatch(self ObjectHandle) {
	for other := range t.current {
		if !t.active[other] && t.Listener != nil {
			t.Listener.OnTriggerEnter(self, other)
		}
	}
	for other := range t.active {
		if !t.current[other] && t.Listener != nil {
			t.Listener.OnTriggerExit(self, other)
		}
	}
	t.active, t.current = t.current, t.active
	clear(t.current)
}

// forget drops a removed object without an exit notification
func (t *VolumeTrigger) forget(other ObjectHandle) {
	delete(t.active, other)
	delete(t.current, other)
}

// FizzlerTrigger destroys grabbable objects passing through it by flagging
// them Fizzled. Gameplay code polls the flag.
type FizzlerTrigger struct {
	Fizzled int
}

func (t *FizzlerTrigger) isTrigger() {}

// handleTrigger runs the trigger behavior of triggerObject against other
func handleTrigger(triggerObject, other *CollisionObject) {
	switch trigger := triggerObject.Trigger.(type) {
	case *VolumeTrigger:
		trigger.touch(other.handle)
	case *FizzlerTrigger:
		if other.Body == nil || other.Body.Flags&(Kinematic|Player) != 0 {
			return
		}
		if other.Body.Flags&Fizzled == 0 {
			other.Body.Flags |= Fizzled
			trigger.Fizzled++
		}
	}
}
