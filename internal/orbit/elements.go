package orbit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Construction-time validation errors returned by Validate and ValidateMu.
var (
	// ErrInvalidEccentricity rejects e outside [0, 1): only bound ellipses are propagated.
	ErrInvalidEccentricity = errors.New("eccentricity must be in [0, 1)")
	// ErrInvalidSemiMajorAxis rejects a non-positive or non-finite a.
	ErrInvalidSemiMajorAxis = errors.New("semi-major axis must be positive")
	// ErrInvalidOrbitNormal rejects a normal that is not a unit vector.
	ErrInvalidOrbitNormal = errors.New("orbit normal must be a finite non-zero vector")
	// ErrInvalidGravitationalParameter rejects a non-positive μ.
	ErrInvalidGravitationalParameter = errors.New("gravitational parameter must be positive")
)

// normalTolerance is how far |Normal| may drift from 1 before Validate rejects it.
const normalTolerance = 1e-9

// Elements describes a bound Keplerian orbit about the central mass.
type Elements struct {
	Eccentricity  float64 // e, in [0, 1)
	SemiMajorAxis float64 // a, > 0
	PhaseAtEpoch  float64 // φ0, mean anomaly at simulation time 0
	Normal        r3.Vec  // unit normal of the orbital plane
	Heading       float64 // θ, rotation of periapsis about Normal
}

// State is a position/velocity pair in the world frame.
type State struct {
	Position r3.Vec
	Velocity r3.Vec
}

// Validate reports whether the elements describe a bound, well-formed orbit.
func (e Elements) Validate() error {
	if math.IsNaN(e.Eccentricity) || e.Eccentricity < 0 || e.Eccentricity >= 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidEccentricity, e.Eccentricity)
	}
	if math.IsNaN(e.SemiMajorAxis) || math.IsInf(e.SemiMajorAxis, 0) || e.SemiMajorAxis <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidSemiMajorAxis, e.SemiMajorAxis)
	}
	n := r3.Norm(e.Normal)
	if math.IsNaN(n) || math.Abs(n-1) > normalTolerance {
		return fmt.Errorf("%w: |n| = %v", ErrInvalidOrbitNormal, n)
	}
	return nil
}

// ValidateMu checks the gravitational parameter shared by all orbits.
func ValidateMu(mu float64) error {
	if math.IsNaN(mu) || math.IsInf(mu, 0) || mu <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidGravitationalParameter, mu)
	}
	return nil
}

// MeanMotion returns n = sqrt(μ/a³).
func (e Elements) MeanMotion(mu float64) float64 {
	a := e.SemiMajorAxis
	return math.Sqrt(mu / (a * a * a))
}

// Period returns the orbital period 2π/n.
func (e Elements) Period(mu float64) float64 {
	return twoPi / e.MeanMotion(mu)
}

// Periapsis returns the closest approach distance a(1-e).
func (e Elements) Periapsis() float64 {
	return e.SemiMajorAxis * (1 - e.Eccentricity)
}

// Apoapsis returns the farthest distance a(1+e).
func (e Elements) Apoapsis() float64 {
	return e.SemiMajorAxis * (1 + e.Eccentricity)
}

// MeanAnomaly returns M at time t, normalized to [0, 2π).
func (e Elements) MeanAnomaly(mu, t float64) float64 {
	return NormalizeAngle(e.PhaseAtEpoch + e.MeanMotion(mu)*t)
}

// Frame returns the local-to-world transform of this orbit.
func (e Elements) Frame() PlaneFrame {
	return NewPlaneFrame(e.Normal, e.Heading)
}

// State propagates the orbit to time t and returns the world-frame state.
func (e Elements) State(mu, t float64) State {
	ecc := e.Eccentricity
	a := e.SemiMajorAxis
	n := e.MeanMotion(mu)

	E := SolveKepler(e.MeanAnomaly(mu, t), ecc)
	nu := EccentricToTrue(E, ecc)

	sinNu, cosNu := math.Sincos(nu)
	sqrtOneMinusE2 := math.Sqrt(1 - ecc*ecc)
	r := a * (1 - ecc*ecc) / (1 + ecc*cosNu)

	// Local plane is XZ with periapsis along -X.
	radial := r3.Vec{X: -cosNu, Z: sinNu}
	tangential := r3.Vec{X: sinNu, Z: cosNu}

	vr := n * a * ecc * sinNu / sqrtOneMinusE2
	vt := n * a * (1 + ecc*cosNu) / sqrtOneMinusE2

	frame := e.Frame()
	return State{
		Position: frame.ToWorld(r3.Scale(r, radial)),
		Velocity: frame.ToWorld(r3.Add(r3.Scale(vr, radial), r3.Scale(vt, tangential))),
	}
}

// Position is a convenience for State(mu, t).Position.
func (e Elements) Position(mu, t float64) r3.Vec {
	return e.State(mu, t).Position
}
