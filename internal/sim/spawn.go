package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/accretion/internal/orbit"
)

// ErrInvalidConfig wraps every rejection made while constructing a Simulation.
var ErrInvalidConfig = errors.New("invalid simulation config")

// DefaultCollisionMargin pads every broad-phase box beyond the body radius.
const DefaultCollisionMargin = 1e-3

// Range is a closed interval [Min, Max] sampled uniformly.
type Range struct {
	Min float64
	Max float64
}

func (r Range) sample(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

func (r Range) valid() bool {
	return !math.IsNaN(r.Min) && !math.IsNaN(r.Max) && r.Min <= r.Max
}

// Distribution controls how initial bodies are drawn.
type Distribution struct {
	Eccentricity  Range
	SemiMajorAxis Range
	Radius        Range
	// MaxInclination is the largest tilt (radians) of an orbit normal away
	// from the reference axis. Normals are uniform over that spherical cap.
	MaxInclination float64
}

// Config is everything needed to create a randomized simulation.
type Config struct {
	BodyCount       int
	Mu              float64 // gravitational parameter of the central mass
	Seed            uint64  // 0 picks a time-based seed
	Distribution    Distribution
	CollisionMargin float64 // 0 uses DefaultCollisionMargin
}

// DefaultConfig returns a small, visually busy system.
func DefaultConfig() Config {
	return Config{
		BodyCount: 60,
		Mu:        0.01,
		Distribution: Distribution{
			Eccentricity:   Range{Min: 0, Max: 0.3},
			SemiMajorAxis:  Range{Min: 0.15, Max: 0.6},
			Radius:         Range{Min: 0.006, Max: 0.015},
			MaxInclination: 0.35,
		},
		CollisionMargin: DefaultCollisionMargin,
	}
}

// Validate rejects configurations that could produce out-of-contract bodies.
func (c Config) Validate() error {
	if c.BodyCount < 0 {
		return fmt.Errorf("%w: body count %d", ErrInvalidConfig, c.BodyCount)
	}
	if err := orbit.ValidateMu(c.Mu); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.CollisionMargin < 0 || math.IsNaN(c.CollisionMargin) {
		return fmt.Errorf("%w: collision margin %v", ErrInvalidConfig, c.CollisionMargin)
	}

	d := c.Distribution
	if !d.Eccentricity.valid() || d.Eccentricity.Min < 0 || d.Eccentricity.Max >= 1 {
		return fmt.Errorf("%w: eccentricity range [%v, %v]: %w",
			ErrInvalidConfig, d.Eccentricity.Min, d.Eccentricity.Max, orbit.ErrInvalidEccentricity)
	}
	if !d.SemiMajorAxis.valid() || d.SemiMajorAxis.Min <= 0 {
		return fmt.Errorf("%w: semi-major axis range [%v, %v]: %w",
			ErrInvalidConfig, d.SemiMajorAxis.Min, d.SemiMajorAxis.Max, orbit.ErrInvalidSemiMajorAxis)
	}
	if !d.Radius.valid() || d.Radius.Min <= 0 {
		return fmt.Errorf("%w: radius range [%v, %v]: %w",
			ErrInvalidConfig, d.Radius.Min, d.Radius.Max, ErrInvalidRadius)
	}
	if math.IsNaN(d.MaxInclination) || d.MaxInclination < 0 || d.MaxInclination > math.Pi {
		return fmt.Errorf("%w: max inclination %v not in [0, π]", ErrInvalidConfig, d.MaxInclination)
	}
	return nil
}

// Spawner draws bodies from a Distribution.
type Spawner struct {
	dist Distribution
	rng  *rand.Rand
}

// NewSpawner creates a spawner with a deterministic stream for the seed.
func NewSpawner(dist Distribution, seed uint64) *Spawner {
	return &Spawner{
		dist: dist,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Next draws one body.
func (s *Spawner) Next() BodySpec {
	return BodySpec{
		Radius: s.dist.Radius.sample(s.rng),
		Orbit: orbit.Elements{
			Eccentricity:  s.dist.Eccentricity.sample(s.rng),
			SemiMajorAxis: s.dist.SemiMajorAxis.sample(s.rng),
			PhaseAtEpoch:  s.rng.Float64() * 2 * math.Pi,
			Normal:        s.normal(),
			Heading:       s.rng.Float64() * 2 * math.Pi,
		},
	}
}

// normal draws a unit vector uniformly over the cap around the reference axis.
func (s *Spawner) normal() r3.Vec {
	cosTilt := 1 - s.rng.Float64()*(1-math.Cos(s.dist.MaxInclination))
	sinTilt := math.Sqrt(math.Max(0, 1-cosTilt*cosTilt))
	sinAz, cosAz := math.Sincos(s.rng.Float64() * 2 * math.Pi)

	// Reference axis is +Y.
	return r3.Unit(r3.Vec{X: sinTilt * cosAz, Y: cosTilt, Z: sinTilt * sinAz})
}
