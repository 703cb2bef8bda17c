package scenario

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"portalphys/internal/physics"
)

// Expectation is a condition on one body checked after a run. Unset bounds
// are not checked.
type Expectation struct {
	Body     string   `yaml:"body"`
	MinX     *float32 `yaml:"min_x,omitempty"`
	MaxX     *float32 `yaml:"max_x,omitempty"`
	MinY     *float32 `yaml:"min_y,omitempty"`
	MaxY     *float32 `yaml:"max_y,omitempty"`
	MinVX    *float32 `yaml:"min_vx,omitempty"`
	MaxVX    *float32 `yaml:"max_vx,omitempty"`
	MaxSpeed *float32 `yaml:"max_speed,omitempty"`
	Room     *int     `yaml:"room,omitempty"`
	Fizzled  *bool    `yaml:"fizzled,omitempty"`
	Sleeping *bool    `yaml:"sleeping,omitempty"`
	// no contact manifold between Body and this body
	NoContactWith string `yaml:"no_contact_with,omitempty"`
}

func checkMin(failures []error, body, what string, value float32, bound *float32) []error {
	if bound != nil && value < *bound {
		failures = append(failures, fmt.Errorf("%s: %s %.4f below %.4f", body, what, value, *bound))
	}
	return failures
}

func checkMax(failures []error, body, what string, value float32, bound *float32) []error {
	if bound != nil && value > *bound {
		failures = append(failures, fmt.Errorf("%s: %s %.4f above %.4f", body, what, value, *bound))
	}
	return failures
}

// Check evaluates the scenario's expectations against the current world
func (inst *Instance) Check() []error {
	var failures []error
	for _, e := range inst.File.Expect {
		body := inst.Body(e.Body)
		if body == nil {
			failures = append(failures, fmt.Errorf("%s: %w", e.Body, physics.ErrInvalidHandle))
			continue
		}

		p, v := body.Transform.Position, body.Velocity
		failures = checkMin(failures, e.Body, "x", p.X, e.MinX)
		failures = checkMax(failures, e.Body, "x", p.X, e.MaxX)
		failures = checkMin(failures, e.Body, "y", p.Y, e.MinY)
		failures = checkMax(failures, e.Body, "y", p.Y, e.MaxY)
		failures = checkMin(failures, e.Body, "vx", v.X, e.MinVX)
		failures = checkMax(failures, e.Body, "vx", v.X, e.MaxVX)
		failures = checkMax(failures, e.Body, "speed", rl.Vector3Length(v), e.MaxSpeed)

		if e.Room != nil && body.CurrentRoom != *e.Room {
			failures = append(failures, fmt.Errorf("%s: room %d, want %d", e.Body, body.CurrentRoom, *e.Room))
		}
		if e.Fizzled != nil && body.Has(physics.Fizzled) != *e.Fizzled {
			failures = append(failures, fmt.Errorf("%s: fizzled %t, want %t", e.Body, !*e.Fizzled, *e.Fizzled))
		}
		if e.Sleeping != nil && body.IsSleeping() != *e.Sleeping {
			failures = append(failures, fmt.Errorf("%s: sleeping %t, want %t", e.Body, !*e.Sleeping, *e.Sleeping))
		}
		if e.NoContactWith != "" {
			other, ok := inst.Bodies[e.NoContactWith]
			if !ok {
				failures = append(failures, fmt.Errorf("%s: %w", e.NoContactWith, physics.ErrInvalidHandle))
			} else if m := inst.World.Solver.FindManifold(inst.Bodies[e.Body], other); m != nil && m.ContactCount > 0 {
				failures = append(failures, fmt.Errorf("%s: %d contacts with %s", e.Body, m.ContactCount, e.NoContactWith))
			}
		}
	}
	return failures
}
