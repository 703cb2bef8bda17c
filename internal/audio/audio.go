package audio

import (
	"encoding/binary"
	"math"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"

	"portalphys/internal/physics"
)

const (
	sampleRate   = 22050
	clickSeconds = 0.08
	voices       = 8
	// normal impulse range mapped onto volume; softer contacts stay silent
	minImpactImpulse = 0.5
	maxImpactImpulse = 8.0
)

// Listener represents the audio listener position and orientation
type Listener struct {
	Position rl.Vector3
	Forward  rl.Vector3
	Right    rl.Vector3
}

// NewListener builds a listener, normalizing forward and deriving right
func NewListener(pos, forward, up rl.Vector3) Listener {
	l := Listener{Position: pos}

	// Normalize forward, default to -Z if zero
	if fwdLen := rl.Vector3Length(forward); fwdLen > 0.001 {
		l.Forward = rl.Vector3Scale(forward, 1.0/fwdLen)
	} else {
		l.Forward = rl.Vector3{Z: -1}
	}

	// up × forward
	right := rl.Vector3CrossProduct(up, l.Forward)
	if rightLen := rl.Vector3Length(right); rightLen > 0.001 {
		l.Right = rl.Vector3Scale(right, 1.0/rightLen)
	} else {
		l.Right = rl.Vector3{X: 1}
	}
	return l
}

// Spatialize returns volume and pan (0 left, 0.5 center, 1 right) for a sound
// at pos
func (l Listener) Spatialize(pos rl.Vector3, volume, maxDistance float32) (float32, float32) {
	toSource := rl.Vector3Subtract(pos, l.Position)
	distance := rl.Vector3Length(toSource)
	if distance >= maxDistance {
		return 0, 0.5
	}
	// Linear falloff
	volume *= 1 - distance/maxDistance

	pan := float32(0.5)
	if distance > 0.001 {
		direction := rl.Vector3Scale(toSource, 1.0/distance)
		pan = 0.5 + rl.Vector3DotProduct(direction, l.Right)*0.5
		pan = max(min(pan, 1), 0)

		// sounds behind are slightly quieter
		if frontDot := rl.Vector3DotProduct(direction, l.Forward); frontDot < 0 {
			volume *= 1 + 0.3*frontDot
		}
	}
	return volume, pan
}

// Impact is a queued collision sound
type Impact struct {
	Position rl.Vector3
	Strength float32
}

// Impacts collects collision starts from a world and plays them as clicks
type Impacts struct {
	MaxDistance float32

	mu      sync.Mutex
	world   *physics.PhysicsWorld
	pending []Impact
	sounds  []rl.Sound
	next    int
}

// NewImpacts returns a player with no world attached. Playback needs Load.
func NewImpacts() *Impacts {
	return &Impacts{MaxDistance: 40}
}

// Attach listens to world for new contacts, dropping anything queued from the
// previous world
func (im *Impacts) Attach(world *physics.PhysicsWorld) {
	im.mu.Lock()
	im.world = world
	im.pending = nil
	im.mu.Unlock()
	world.SetCollisionListener(im)
}

func (im *Impacts) OnCollisionEnter(a, b physics.ObjectHandle) {
	m := im.world.Solver.FindManifold(a, b)
	if m == nil {
		return
	}
	var impulse float32
	for _, c := range m.Points() {
		impulse += c.NormalImpulse
	}
	if impulse < minImpactImpulse {
		return
	}

	var position rl.Vector3
	if body := im.world.Body(b); body != nil {
		position = body.Transform.Position
	} else if body := im.world.Body(a); body != nil {
		position = body.Transform.Position
	}

	im.mu.Lock()
	defer im.mu.Unlock()
	im.pending = append(im.pending, Impact{
		Position: position,
		Strength: min(impulse/maxImpactImpulse, 1),
	})
}

func (im *Impacts) OnCollisionExit(a, b physics.ObjectHandle) {}

// Drain returns and clears the queued impacts
func (im *Impacts) Drain() []Impact {
	im.mu.Lock()
	defer im.mu.Unlock()
	out := im.pending
	im.pending = nil
	return out
}

// clickSamples is a decaying 16-bit mono tone
func clickSamples() []byte {
	n := int(sampleRate * clickSeconds)
	data := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		v := math.Sin(2*math.Pi*180*t) * math.Exp(-t*60)
		binary.LittleEndian.PutUint16(data[2*i:], uint16(int16(v*math.MaxInt16*0.8)))
	}
	return data
}

// Load opens the audio device and builds the click voices
func (im *Impacts) Load() {
	rl.InitAudioDevice()
	samples := clickSamples()
	wave := rl.NewWave(uint32(len(samples)/2), sampleRate, 16, 1, samples)
	for i := 0; i < voices; i++ {
		im.sounds = append(im.sounds, rl.LoadSoundFromWave(wave))
	}
}

// Play sounds every queued impact relative to the listener
func (im *Impacts) Play(listener Listener) {
	impacts := im.Drain()
	if len(im.sounds) == 0 {
		return
	}
	for _, impact := range impacts {
		volume, pan := listener.Spatialize(impact.Position, impact.Strength, im.MaxDistance)
		if volume <= 0.01 {
			continue
		}
		sound := im.sounds[im.next]
		im.next = (im.next + 1) % len(im.sounds)
		rl.SetSoundVolume(sound, volume)
		rl.SetSoundPan(sound, pan)
		rl.PlaySound(sound)
	}
}

// Close shuts down the audio device
func (im *Impacts) Close() {
	if len(im.sounds) == 0 {
		return
	}
	for _, sound := range im.sounds {
		rl.UnloadSound(sound)
	}
	im.sounds = nil
	rl.CloseAudioDevice()
}
