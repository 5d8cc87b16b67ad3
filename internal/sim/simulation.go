package sim

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/accretion/internal/orbit"
	"github.com/tomz197/accretion/internal/physics"
)

// Simulation is the authoritative timeline of the system. It is not safe for
// concurrent use: one goroutine owns it, calls Advance, then polls the readers.
type Simulation struct {
	mu     float64
	time   float64
	bodies *registry

	margin float64
	pruner Pruner
	logger zerolog.Logger
	meters metric.MeterProvider
	stats  *metrics

	// Reused between ticks to avoid allocations.
	spheres  []physics.Sphere
	consumed []bool
}

// Merge records one merge committed by Advance.
type Merge struct {
	Winner  ID      // keeps its ID with the merged elements
	Retired ID      // removed for good
	Radius  float64 // radius of the merged body
	Pruned  bool    // the merged body was removed too by the prune policy
	Reason  string  // why it was pruned
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Simulation) {
		s.logger = l
	}
}

// WithPruner installs a prune policy applied to every merged body.
func WithPruner(p Pruner) Option {
	return func(s *Simulation) {
		s.pruner = p
	}
}

// WithMeterProvider sets where the merge counters are recorded. Defaults to
// the global OTel provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Simulation) {
		s.meters = mp
	}
}

// WithCollisionMargin overrides the broad-phase margin.
func WithCollisionMargin(margin float64) Option {
	return func(s *Simulation) {
		if margin >= 0 {
			s.margin = margin
		}
	}
}

// New creates a simulation of cfg.BodyCount bodies drawn from cfg.Distribution.
// Invalid configurations are rejected before anything runs.
func New(cfg Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	spawner := NewSpawner(cfg.Distribution, seed)
	specs := make([]BodySpec, cfg.BodyCount)
	for i := range specs {
		specs[i] = spawner.Next()
	}

	if cfg.CollisionMargin > 0 {
		opts = append([]Option{WithCollisionMargin(cfg.CollisionMargin)}, opts...)
	}

	s, err := NewFromBodies(cfg.Mu, specs, opts...)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int("bodies", cfg.BodyCount).
		Float64("mu", cfg.Mu).
		Uint64("seed", seed).
		Msg("Simulation created")
	return s, nil
}

// NewFromBodies creates a simulation from explicit bodies. IDs are assigned in
// slice order starting at 0.
func NewFromBodies(mu float64, specs []BodySpec, opts ...Option) (*Simulation, error) {
	if err := orbit.ValidateMu(mu); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for i, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("%w: body %d: %w", ErrInvalidConfig, i, err)
		}
	}

	s := &Simulation{
		mu:     mu,
		bodies: newRegistry(len(specs)),
		margin: DefaultCollisionMargin,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	stats, err := newMetrics(s.meters)
	if err != nil {
		return nil, err
	}
	s.stats = stats
	for _, spec := range specs {
		s.bodies.add(spec)
	}
	return s, nil
}

// Advance moves simulation time forward by elapsed and resolves every
// collision present at the new time. Pairs are handled in ascending (A, B)
// order; a body takes part in at most one merge per call, so a merged body
// that still overlaps something is picked up on the next call. Negative
// durations are treated as zero.
func (s *Simulation) Advance(elapsed time.Duration) []Merge {
	if elapsed > 0 {
		s.time += elapsed.Seconds()
	}

	pairs := physics.Detect(s.collectSpheres(), s.margin)
	if len(pairs) == 0 {
		return nil
	}

	s.resetConsumed()

	var merges []Merge
	for _, p := range pairs {
		a, b := ID(p.A), ID(p.B)
		if s.consumed[a] || s.consumed[b] {
			continue
		}
		if m, ok := s.merge(a, b); ok {
			merges = append(merges, m)
		}
	}
	return merges
}

// merge resolves one confirmed pair and commits the result.
func (s *Simulation) merge(aID, bID ID) (Merge, bool) {
	a, okA := s.bodies.get(aID)
	b, okB := s.bodies.get(bID)
	if !okA || !okB {
		return Merge{}, false
	}

	merged, err := Resolve(a, b, s.mu, s.time)
	if err != nil {
		// Both stay active; positions will have moved by the next tick.
		s.stats.addSkipped()
		s.logger.Debug().Err(err).
			Int("a", int(aID)).
			Int("b", int(bID)).
			Float64("time", s.time).
			Msg("Merge skipped")
		return Merge{}, false
	}

	s.bodies.replace(merged)
	s.bodies.retire(bID)
	s.consumed[aID] = true
	s.consumed[bID] = true
	s.stats.addMerge()

	m := Merge{Winner: aID, Retired: bID, Radius: merged.Radius}
	s.logger.Debug().
		Int("winner", int(aID)).
		Int("retired", int(bID)).
		Float64("radius", merged.Radius).
		Float64("e", merged.Orbit.Eccentricity).
		Float64("a", merged.Orbit.SemiMajorAxis).
		Msg("Bodies merged")

	if s.pruner != nil {
		if reason, prune := s.pruner.Prune(merged); prune {
			s.bodies.retire(aID)
			s.stats.addPruned()
			m.Pruned = true
			m.Reason = reason
			s.logger.Info().
				Int("id", int(aID)).
				Str("reason", reason).
				Msg("Merged body pruned")
		}
	}
	return m, true
}

// collectSpheres fills the reusable sphere buffer with every active body at
// the current time.
func (s *Simulation) collectSpheres() []physics.Sphere {
	s.spheres = s.spheres[:0]
	s.bodies.each(func(b Body) {
		s.spheres = append(s.spheres, physics.Sphere{
			ID:     int(b.ID),
			Center: b.Orbit.Position(s.mu, s.time),
			Radius: b.Radius,
		})
	})
	return s.spheres
}

func (s *Simulation) resetConsumed() {
	n := s.bodies.size()
	if cap(s.consumed) < n {
		s.consumed = make([]bool, n)
	}
	s.consumed = s.consumed[:n]
	clear(s.consumed)
}

// Time returns the current simulation time.
func (s *Simulation) Time() float64 {
	return s.time
}

// Mu returns the gravitational parameter of the central mass.
func (s *Simulation) Mu() float64 {
	return s.mu
}

// ActiveCount returns the number of bodies still in play.
func (s *Simulation) ActiveCount() int {
	return s.bodies.active
}

// IsActive reports whether id refers to a body still in play.
func (s *Simulation) IsActive(id ID) bool {
	return s.bodies.isActive(id)
}

// Position returns the world-frame position of id at the current time.
func (s *Simulation) Position(id ID) (r3.Vec, bool) {
	b, ok := s.bodies.get(id)
	if !ok {
		return r3.Vec{}, false
	}
	return b.Orbit.Position(s.mu, s.time), true
}

// Velocity returns the world-frame velocity of id at the current time.
func (s *Simulation) Velocity(id ID) (r3.Vec, bool) {
	b, ok := s.bodies.get(id)
	if !ok {
		return r3.Vec{}, false
	}
	return b.Orbit.State(s.mu, s.time).Velocity, true
}

// Radius returns the radius of id.
func (s *Simulation) Radius(id ID) (float64, bool) {
	b, ok := s.bodies.get(id)
	if !ok {
		return 0, false
	}
	return b.Radius, true
}

// Body returns a copy of the body with the given id.
func (s *Simulation) Body(id ID) (Body, bool) {
	return s.bodies.get(id)
}

// Bodies returns copies of all active bodies in ascending ID order.
func (s *Simulation) Bodies() []Body {
	out := make([]Body, 0, s.bodies.active)
	s.bodies.each(func(b Body) {
		out = append(out, b)
	})
	return out
}
