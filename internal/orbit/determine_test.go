package orbit

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestDetermine_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	for i := 0; i < 500; i++ {
		el := randomElements(rng)
		at := rng.Float64() * 100
		s := el.State(testMu, at)

		got, err := Determine(s, testMu, at)
		require.NoError(t, err)
		require.NoError(t, got.Validate())

		back := got.State(testMu, at)
		assertVecNear(t, s.Position, back.Position, 1e-9, "elements=%+v t=%v", el, at)
		assertVecNear(t, s.Velocity, back.Velocity, 1e-9, "elements=%+v t=%v", el, at)

		assert.InDelta(t, el.Eccentricity, got.Eccentricity, 1e-9)
		assert.InDelta(t, el.SemiMajorAxis, got.SemiMajorAxis, 1e-9)
		assertVecNear(t, el.Normal, got.Normal, 1e-9)
	}
}

func TestDetermine_RecoversEllipseNotJustPoint(t *testing.T) {
	el := Elements{
		Eccentricity:  0.4,
		SemiMajorAxis: 0.8,
		PhaseAtEpoch:  1.3,
		Normal:        r3.Unit(r3.Vec{X: 1, Y: 1}),
		Heading:       0.6,
	}
	got, err := Determine(el.State(testMu, 7), testMu, 7)
	require.NoError(t, err)

	// Same trajectory at other times.
	for _, at := range []float64{0, 3, 25} {
		assertVecNear(t, el.Position(testMu, at), got.Position(testMu, at), 1e-8)
	}
}

func TestDetermine_CircularOrbit(t *testing.T) {
	el := Elements{SemiMajorAxis: 0.25, Normal: r3.Vec{Y: -1}, Heading: 2}
	s := el.State(testMu, 4)

	got, err := Determine(s, testMu, 4)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Eccentricity)
	assert.InDelta(t, 0.25, got.SemiMajorAxis, 1e-12)
	assertVecNear(t, s.Position, got.Position(testMu, 4), 1e-12)
}

func TestDetermine_DegenerateStates(t *testing.T) {
	tests := []struct {
		name string
		s    State
	}{
		{"at center", State{Velocity: r3.Vec{X: 1}}},
		{"at rest", State{Position: r3.Vec{X: 0.3}}},
		{"radial motion", State{Position: r3.Vec{X: 0.3}, Velocity: r3.Vec{X: -0.2}}},
		{"rounding noise velocity", State{Position: r3.Vec{X: 0.3, Z: 0.1}, Velocity: r3.Vec{Y: 1e-17}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Determine(tt.s, testMu, 0)
			assert.ErrorIs(t, err, ErrDegenerateOrbit)
		})
	}
}

func TestDetermine_UnboundState(t *testing.T) {
	// Escape speed at r is sqrt(2μ/r); go faster than that.
	r := 0.5
	v := 1.5 * math.Sqrt(2*testMu/r)
	_, err := Determine(State{Position: r3.Vec{X: r}, Velocity: r3.Vec{Z: v}}, testMu, 0)
	assert.ErrorIs(t, err, ErrUnboundOrbit)
}
