package orbit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrDegenerateOrbit means the state vector does not define an orbital plane:
	// the body sits at the force center or moves purely radially.
	ErrDegenerateOrbit = errors.New("degenerate orbit")
	// ErrUnboundOrbit means the state vector lies on a parabolic or hyperbolic path.
	ErrUnboundOrbit = errors.New("unbound orbit")
)

const (
	// minRadius is the distance from the center below which no orbit is defined.
	minRadius = 1e-12
	// minAngularMomentum is |h| relative to the circular-orbit value sqrt(μ|P|)
	// below which the plane is considered undefined.
	minAngularMomentum = 1e-9
	// circularEccentricity is the eccentricity below which periapsis is
	// undefined and the orbit is treated as circular.
	circularEccentricity = 1e-11
)

// Determine recovers orbital elements from a world-frame state at time t such
// that propagating the result to t reproduces the state.
func Determine(s State, mu, t float64) (Elements, error) {
	P, V := s.Position, s.Velocity

	rMag := r3.Norm(P)
	if !(rMag >= minRadius) {
		return Elements{}, fmt.Errorf("%w: |P| = %v", ErrDegenerateOrbit, rMag)
	}

	h := r3.Cross(P, V)
	hMag := r3.Norm(h)
	if !(hMag >= minAngularMomentum*math.Sqrt(mu*rMag)) {
		return Elements{}, fmt.Errorf("%w: |h| = %v", ErrDegenerateOrbit, hMag)
	}
	normal := r3.Scale(1/hMag, h)

	eVec := r3.Sub(r3.Scale(1/mu, r3.Cross(V, h)), r3.Scale(1/rMag, P))
	ecc := r3.Norm(eVec)
	if ecc >= 1 {
		return Elements{}, fmt.Errorf("%w: e = %v", ErrUnboundOrbit, ecc)
	}

	// True anomaly. Equivalent to acos(ê·P̂) mirrored to 2π-ν when P·V < 0,
	// but reading the sine from the cross product keeps precision near 0 and π.
	nu := 0.0
	if ecc >= circularEccentricity {
		cosNu := r3.Dot(eVec, P) / (ecc * rMag)
		sinNu := r3.Dot(r3.Cross(eVec, P), normal) / (ecc * rMag)
		nu = NormalizeAngle(math.Atan2(sinNu, cosNu))
	} else {
		ecc = 0
	}

	a := rMag * (1 + ecc*math.Cos(nu)) / (1 - ecc*ecc)
	if !(a > 0) || math.IsInf(a, 0) {
		return Elements{}, fmt.Errorf("%w: a = %v", ErrUnboundOrbit, a)
	}

	el := Elements{
		Eccentricity:  ecc,
		SemiMajorAxis: a,
		Normal:        normal,
	}

	M := MeanFromEccentric(TrueToEccentric(nu, ecc), ecc)
	el.PhaseAtEpoch = NormalizeAngle(M - el.MeanMotion(mu)*t)

	// The in-plane angle of P is heading + ν.
	unaligned := NewPlaneFrame(normal, 0).Unaligned(P)
	el.Heading = NormalizeAngle(planeAngle(unaligned) - nu)

	return el, nil
}
