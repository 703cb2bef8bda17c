package physics

import "fmt"

const (
	DefaultFixedDeltaTime       = 1.0 / 60.0
	DefaultGravity              = -9.8
	DefaultDamping              = 0.99
	DefaultSolverIterations     = 8
	DefaultBaumgarte            = 0.2
	DefaultPenetrationSlop      = 0.01
	DefaultRestitutionThreshold = 1.0
	DefaultManifoldCapacity     = 20
	DefaultDynamicCapacity      = 32
	DefaultConstraintCapacity   = 4
	DefaultSleepVelocity        = 0.001
	DefaultSleepTime            = 0.5
	DefaultKillPlaneY           = -10.0
	DefaultSlideTolerance       = 0.1
	DefaultSweptFraction        = 0.5

	maxManifoldCapacity = 64
	maxMeshQuads        = 1000
	maxCompoundChildren = 8
)

// Config holds the tuning of a PhysicsWorld
type Config struct {
	FixedDeltaTime       float32 `yaml:"fixed_delta_time"`
	Gravity              float32 `yaml:"gravity"`
	Damping              float32 `yaml:"damping"`
	SolverIterations     int     `yaml:"solver_iterations"`
	Baumgarte            float32 `yaml:"baumgarte"`
	PenetrationSlop      float32 `yaml:"penetration_slop"`
	RestitutionThreshold float32 `yaml:"restitution_threshold"`
	ManifoldCapacity     int     `yaml:"manifold_capacity"`
	DynamicCapacity      int     `yaml:"dynamic_capacity"`
	ConstraintCapacity   int     `yaml:"constraint_capacity"`
	SleepVelocity        float32 `yaml:"sleep_velocity"`
	SleepTime            float32 `yaml:"sleep_time"`
	KillPlaneY           float32 `yaml:"kill_plane_y"`
	SlideTolerance       float32 `yaml:"slide_tolerance"`
	// SweptFraction is the share of a body's smallest half extent it may move
	// in one tick before the swept path is used.
	SweptFraction float32 `yaml:"swept_fraction"`
}

func DefaultConfig() Config {
	return Config{
		FixedDeltaTime:       DefaultFixedDeltaTime,
		Gravity:              DefaultGravity,
		Damping:              DefaultDamping,
		SolverIterations:     DefaultSolverIterations,
		Baumgarte:            DefaultBaumgarte,
		PenetrationSlop:      DefaultPenetrationSlop,
		RestitutionThreshold: DefaultRestitutionThreshold,
		ManifoldCapacity:     DefaultManifoldCapacity,
		DynamicCapacity:      DefaultDynamicCapacity,
		ConstraintCapacity:   DefaultConstraintCapacity,
		SleepVelocity:        DefaultSleepVelocity,
		SleepTime:            DefaultSleepTime,
		KillPlaneY:           DefaultKillPlaneY,
		SlideTolerance:       DefaultSlideTolerance,
		SweptFraction:        DefaultSweptFraction,
	}
}

// Validate checks the config for values the step cannot run with
func (c Config) Validate() error {
	switch {
	case c.FixedDeltaTime <= 0:
		return fmt.Errorf("fixed_delta_time %v must be positive: %w", c.FixedDeltaTime, ErrInvalidConfig)
	case c.Damping <= 0 || c.Damping > 1:
		return fmt.Errorf("damping %v must be in (0, 1]: %w", c.Damping, ErrInvalidConfig)
	case c.SolverIterations < 1:
		return fmt.Errorf("solver_iterations %d must be at least 1: %w", c.SolverIterations, ErrInvalidConfig)
	case c.Baumgarte < 0 || c.Baumgarte > 1:
		return fmt.Errorf("baumgarte %v must be in [0, 1]: %w", c.Baumgarte, ErrInvalidConfig)
	case c.PenetrationSlop < 0:
		return fmt.Errorf("penetration_slop %v must not be negative: %w", c.PenetrationSlop, ErrInvalidConfig)
	case c.ManifoldCapacity < 1 || c.ManifoldCapacity > maxManifoldCapacity:
		return fmt.Errorf("manifold_capacity %d must be in [1, %d]: %w", c.ManifoldCapacity, maxManifoldCapacity, ErrInvalidConfig)
	case c.DynamicCapacity < 1 || c.DynamicCapacity > maxHandleIndex:
		return fmt.Errorf("dynamic_capacity %d must be in [1, %d]: %w", c.DynamicCapacity, maxHandleIndex, ErrInvalidConfig)
	case c.ConstraintCapacity < 0:
		return fmt.Errorf("constraint_capacity %d must not be negative: %w", c.ConstraintCapacity, ErrInvalidConfig)
	case c.SweptFraction <= 0:
		return fmt.Errorf("swept_fraction %v must be positive: %w", c.SweptFraction, ErrInvalidConfig)
	}
	return nil
}

// SleepFrames is the number of quiet ticks before a body sleeps
func (c Config) SleepFrames() int {
	frames := int(c.SleepTime/c.FixedDeltaTime + 0.5)
	if frames < 1 {
		return 1
	}
	return frames
}
