package impulse

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the world settings. It is read from TOML, missing keys keep the values of
// DefaultConfig.
type Config struct {
	// Gravity acceleration (m/s², or N/kg)
	Gravity  [3]float64 `toml:"gravity"`
	Substeps int        `toml:"substeps"`
	Workers  int        `toml:"workers"`

	// MaxContacts is the capacity of the contact buffer filled every substep
	MaxContacts int `toml:"max_contacts"`
	// ContactTolerance generates contacts for vertices this far above a plane
	ContactTolerance float64 `toml:"contact_tolerance"`

	Grid     GridConfig     `toml:"grid"`
	Resolver ResolverConfig `toml:"resolver"`
	Sleep    SleepConfig    `toml:"sleep"`
}

type GridConfig struct {
	CellSize float64 `toml:"cell_size"`
	// Cells is rounded up to a power of two
	Cells int `toml:"cells"`
}

type ResolverConfig struct {
	VelocityIterations int     `toml:"velocity_iterations"`
	PositionIterations int     `toml:"position_iterations"`
	VelocityEpsilon    float64 `toml:"velocity_epsilon"`
	PositionEpsilon    float64 `toml:"position_epsilon"`
}

// SleepConfig sends a body to sleep once its linear and angular speeds stay below
// Velocity for Time seconds
type SleepConfig struct {
	Time     float64 `toml:"time"`
	Velocity float64 `toml:"velocity"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:          [3]float64{0, -9.81, 0},
		Substeps:         1,
		Workers:          DEFAULT_WORKERS,
		MaxContacts:      256,
		ContactTolerance: 0,
		Grid: GridConfig{
			CellSize: 2,
			Cells:    1024,
		},
		Resolver: ResolverConfig{
			VelocityIterations: 64,
			PositionIterations: 64,
			VelocityEpsilon:    0.01,
			PositionEpsilon:    0.01,
		},
		Sleep: SleepConfig{
			Time:     0.5,
			Velocity: 0.05,
		},
	}
}

// LoadConfig reads a TOML file over DefaultConfig and validates the result. Unknown keys
// are rejected.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return config, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	decoder := toml.NewDecoder(f).DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("decoding config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("config %s: %w", path, err)
	}

	return config, nil
}

func (c Config) Validate() error {
	switch {
	case c.Substeps < 1:
		return fmt.Errorf("%w: substeps must be at least 1, got %d", ErrInvalidConfig, c.Substeps)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	case c.MaxContacts < 1:
		return fmt.Errorf("%w: max_contacts must be at least 1, got %d", ErrInvalidConfig, c.MaxContacts)
	case c.ContactTolerance < 0:
		return fmt.Errorf("%w: contact_tolerance must not be negative, got %g", ErrInvalidConfig, c.ContactTolerance)
	case c.Grid.CellSize <= 0:
		return fmt.Errorf("%w: grid.cell_size must be positive, got %g", ErrInvalidConfig, c.Grid.CellSize)
	case c.Grid.Cells < 1:
		return fmt.Errorf("%w: grid.cells must be at least 1, got %d", ErrInvalidConfig, c.Grid.Cells)
	case c.Resolver.VelocityIterations < 1 || c.Resolver.PositionIterations < 1:
		return fmt.Errorf("%w: resolver iterations must be at least 1, got %d and %d",
			ErrInvalidConfig, c.Resolver.VelocityIterations, c.Resolver.PositionIterations)
	case c.Resolver.VelocityEpsilon < 0 || c.Resolver.PositionEpsilon < 0:
		return fmt.Errorf("%w: resolver epsilons must not be negative", ErrInvalidConfig)
	case c.Sleep.Time <= 0:
		return fmt.Errorf("%w: sleep.time must be positive, got %g", ErrInvalidConfig, c.Sleep.Time)
	case c.Sleep.Velocity < 0:
		return fmt.Errorf("%w: sleep.velocity must not be negative, got %g", ErrInvalidConfig, c.Sleep.Velocity)
	}
	return nil
}

func (c Config) GravityVec() mgl64.Vec3 {
	return mgl64.Vec3(c.Gravity)
}
