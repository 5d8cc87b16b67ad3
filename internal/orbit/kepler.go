// Package orbit implements two-body Keplerian orbits about a fixed central mass:
// propagation from orbital elements and recovery of elements from a state vector.
package orbit

import "math"

const (
	twoPi = 2 * math.Pi

	// keplerTolerance is the step size below which Newton iteration stops.
	keplerTolerance = 1e-10
	// keplerMaxIterations caps the solver so it always terminates.
	keplerMaxIterations = 50
	// highEccentricity switches the initial guess to π, where convergence
	// near apoapsis is otherwise slow.
	highEccentricity = 0.8
)

// SolveKepler returns the eccentric anomaly E satisfying E - e·sin(E) = m.
// Uses Newton-Raphson and returns the best estimate if the iteration cap is
// reached before the step falls below tolerance.
func SolveKepler(m, e float64) float64 {
	E := m
	if e >= highEccentricity {
		E = math.Pi
	}

	for i := 0; i < keplerMaxIterations; i++ {
		f := E - e*math.Sin(E) - m
		fp := 1 - e*math.Cos(E)
		next := E - f/fp
		if math.Abs(next-E) < keplerTolerance {
			return next
		}
		E = next
	}

	return E
}

// EccentricToTrue converts an eccentric anomaly to the true anomaly.
func EccentricToTrue(E, e float64) float64 {
	beta := e / (1 + math.Sqrt(1-e*e))
	return E + 2*math.Atan(beta*math.Sin(E)/(1-beta*math.Cos(E)))
}

// TrueToEccentric converts a true anomaly to the eccentric anomaly.
// Closed form; the atan2 variant stays finite at ν = π.
func TrueToEccentric(nu, e float64) float64 {
	half := nu / 2
	return 2 * math.Atan2(math.Sqrt(1-e)*math.Sin(half), math.Sqrt(1+e)*math.Cos(half))
}

// MeanFromEccentric evaluates Kepler's equation in the forward direction.
func MeanFromEccentric(E, e float64) float64 {
	return E - e*math.Sin(E)
}

// NormalizeAngle wraps an angle into [0, 2π).
func NormalizeAngle(angle float64) float64 {
	wrapped := math.Mod(angle, twoPi)
	if wrapped < 0 {
		wrapped += twoPi
	}
	// math.Mod of a tiny negative value can round up to exactly 2π
	if wrapped >= twoPi {
		wrapped = 0
	}
	return wrapped
}
