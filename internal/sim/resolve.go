package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/accretion/internal/orbit"
)

// Combine computes the perfectly inelastic merge of a and b at time t: the
// mass-weighted position and velocity, and the radius holding the summed mass.
func Combine(a, b Body, mu, t float64) (orbit.State, float64) {
	ma, mb := a.Mass(), b.Mass()
	total := ma + mb

	sa := a.Orbit.State(mu, t)
	sb := b.Orbit.State(mu, t)

	return orbit.State{
		Position: r3.Scale(1/total, r3.Add(r3.Scale(ma, sa.Position), r3.Scale(mb, sb.Position))),
		Velocity: r3.Scale(1/total, r3.Add(r3.Scale(ma, sa.Velocity), r3.Scale(mb, sb.Velocity))),
	}, math.Cbrt(total)
}

// Resolve merges b into a at time t. The result keeps a's ID; b is the one to
// retire. Returns orbit.ErrDegenerateOrbit or orbit.ErrUnboundOrbit when the
// merged state has no bound orbit, in which case nothing should be committed.
func Resolve(a, b Body, mu, t float64) (Body, error) {
	state, radius := Combine(a, b, mu, t)

	el, err := orbit.Determine(state, mu, t)
	if err != nil {
		return Body{}, err
	}

	return Body{ID: a.ID, Radius: radius, Orbit: el}, nil
}
