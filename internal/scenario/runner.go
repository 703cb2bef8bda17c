package scenario

import (
	"context"
	"fmt"
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"

	"portalphys/internal/physics"
)

// Sample is the state of one body at one tick
type Sample struct {
	Tick     uint64
	Position rl.Vector3
	Velocity rl.Vector3
	Speed    float32
	Room     int
	Sleeping bool
}

// Observer sees the world after every step
type Observer interface {
	OnStep(inst *Instance, stats physics.StepStats)
}

type Result struct {
	Name  string
	Ticks int
	// per body samples, every Runner.SampleEvery ticks plus the last tick
	Samples map[string][]Sample
	Last    physics.StepStats

	Teleports     int
	SweptTests    int
	MaxDropped    int
	MaxManifolds  int
	ContactPeak   int
	SleepingAtEnd int

	Failures []error
}

func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

type Runner struct {
	SampleEvery int
	observers   []Observer
}

func NewRunner(sampleEvery int) *Runner {
	return &Runner{SampleEvery: max(sampleEvery, 1)}
}

func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Run steps inst for ticks fixed steps, or the scenario's own tick count when
// ticks is zero, then checks the scenario's expectations.
func (r *Runner) Run(ctx context.Context, inst *Instance, ticks int) (*Result, error) {
	if ticks <= 0 {
		ticks = inst.File.Ticks
	}
	if ticks <= 0 {
		return nil, fmt.Errorf("%s: no tick count: %w", inst.File.Name, physics.ErrInvalidConfig)
	}

	result := &Result{
		Name:    inst.File.Name,
		Samples: make(map[string][]Sample, len(inst.Names)),
	}

	world := inst.World
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		world.Step()
		stats := world.Stats()
		result.Ticks++
		result.Teleports += stats.Teleports
		result.SweptTests += stats.SweptTests
		result.MaxDropped = max(result.MaxDropped, stats.DroppedManifolds)
		result.MaxManifolds = max(result.MaxManifolds, stats.ActiveManifolds)
		result.ContactPeak = max(result.ContactPeak, stats.Contacts)
		result.Last = stats

		if i%r.SampleEvery == 0 || i == ticks-1 {
			r.sample(inst, result)
		}
		for _, o := range r.observers {
			o.OnStep(inst, stats)
		}
	}

	result.SleepingAtEnd = result.Last.Sleeping
	result.Failures = inst.Check()
	if result.MaxDropped > 0 {
		log.Printf("Scenario: %s dropped up to %d manifolds per tick", result.Name, result.MaxDropped)
	}
	return result, nil
}

func (r *Runner) sample(inst *Instance, result *Result) {
	tick := inst.World.Tick()
	for _, name := range inst.Names {
		body := inst.Body(name)
		if body == nil {
			continue
		}
		result.Samples[name] = append(result.Samples[name], Sample{
			Tick:     tick,
			Position: body.Transform.Position,
			Velocity: body.Velocity,
			Speed:    rl.Vector3Length(body.Velocity),
			Room:     body.CurrentRoom,
			Sleeping: body.IsSleeping(),
		})
	}
}

// Series extracts one value per sample of a body, for plotting
func (r *Result) Series(name string, value func(Sample) float32) []float64 {
	samples := r.Samples[name]
	series := make([]float64, len(samples))
	for i, s := range samples {
		series[i] = float64(value(s))
	}
	return series
}
