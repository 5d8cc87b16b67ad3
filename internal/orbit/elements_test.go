package orbit

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const testMu = 0.01

// randomElements draws a valid orbit; the seed keeps failures reproducible.
func randomElements(rng *rand.Rand) Elements {
	normal := r3.Unit(r3.Vec{
		X: rng.Float64()*2 - 1,
		Y: rng.Float64()*2 - 1,
		Z: rng.Float64()*2 - 1,
	})
	return Elements{
		Eccentricity:  rng.Float64() * 0.9,
		SemiMajorAxis: 0.1 + rng.Float64(),
		PhaseAtEpoch:  rng.Float64() * twoPi,
		Normal:        normal,
		Heading:       rng.Float64() * twoPi,
	}
}

func TestElements_Validate(t *testing.T) {
	valid := Elements{Eccentricity: 0.3, SemiMajorAxis: 1, Normal: ReferenceAxis}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(*Elements)
		want   error
	}{
		{"hyperbolic", func(e *Elements) { e.Eccentricity = 1.2 }, ErrInvalidEccentricity},
		{"parabolic", func(e *Elements) { e.Eccentricity = 1 }, ErrInvalidEccentricity},
		{"negative eccentricity", func(e *Elements) { e.Eccentricity = -0.1 }, ErrInvalidEccentricity},
		{"nan eccentricity", func(e *Elements) { e.Eccentricity = math.NaN() }, ErrInvalidEccentricity},
		{"zero axis", func(e *Elements) { e.SemiMajorAxis = 0 }, ErrInvalidSemiMajorAxis},
		{"negative axis", func(e *Elements) { e.SemiMajorAxis = -2 }, ErrInvalidSemiMajorAxis},
		{"zero normal", func(e *Elements) { e.Normal = r3.Vec{} }, ErrInvalidOrbitNormal},
		{"long normal", func(e *Elements) { e.Normal = r3.Vec{Y: 2} }, ErrInvalidOrbitNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := valid
			tt.modify(&el)
			err := el.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestValidateMu(t *testing.T) {
	assert.NoError(t, ValidateMu(0.01))
	assert.ErrorIs(t, ValidateMu(0), ErrInvalidGravitationalParameter)
	assert.ErrorIs(t, ValidateMu(-1), ErrInvalidGravitationalParameter)
	assert.ErrorIs(t, ValidateMu(math.Inf(1)), ErrInvalidGravitationalParameter)
}

func TestElements_CircularOrbitTracesCircle(t *testing.T) {
	el := Elements{SemiMajorAxis: 0.25, Normal: ReferenceAxis}
	n := el.MeanMotion(testMu)
	assert.InDelta(t, math.Sqrt(testMu/math.Pow(0.25, 3)), n, 1e-15)

	period := el.Period(testMu)
	start := el.Position(testMu, 0)
	for i := 0; i < 100; i++ {
		p := el.Position(testMu, period*float64(i)/100)
		assert.InDelta(t, 0.25, r3.Norm(p), 1e-12)
		assert.InDelta(t, 0, p.Y, 1e-12)
	}
	assertVecNear(t, start, el.Position(testMu, period), 1e-9)
}

func TestElements_Periodicity(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		el := randomElements(rng)
		tt := rng.Float64() * 50
		p0 := el.Position(testMu, tt)
		p1 := el.Position(testMu, tt+el.Period(testMu))
		assertVecNear(t, p0, p1, 1e-9, "elements=%+v t=%v", el, tt)
	}
}

func TestElements_ApsidalBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 50; i++ {
		el := randomElements(rng)
		period := el.Period(testMu)
		for k := 0; k < 64; k++ {
			d := r3.Norm(el.Position(testMu, period*float64(k)/64))
			assert.GreaterOrEqual(t, d, el.Periapsis()-1e-12)
			assert.LessOrEqual(t, d, el.Apoapsis()+1e-12)
		}
	}
}

func TestElements_StateLiesInOrbitalPlane(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for i := 0; i < 100; i++ {
		el := randomElements(rng)
		s := el.State(testMu, rng.Float64()*10)
		assert.InDelta(t, 0, r3.Dot(s.Position, el.Normal), 1e-12)
		assert.InDelta(t, 0, r3.Dot(s.Velocity, el.Normal), 1e-12)

		// Angular momentum points along the normal.
		h := r3.Cross(s.Position, s.Velocity)
		assert.Greater(t, r3.Dot(h, el.Normal), 0.0)
	}
}

func TestElements_VisViva(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	for i := 0; i < 100; i++ {
		el := randomElements(rng)
		s := el.State(testMu, rng.Float64()*10)
		r := r3.Norm(s.Position)
		v2 := r3.Norm2(s.Velocity)
		want := testMu * (2/r - 1/el.SemiMajorAxis)
		assert.InDelta(t, want, v2, 1e-10*math.Max(1, want))
	}
}

func TestElements_PeriapsisAtZeroPhase(t *testing.T) {
	el := Elements{Eccentricity: 0.5, SemiMajorAxis: 1, Normal: ReferenceAxis}
	p := el.Position(testMu, 0)
	assertVecNear(t, r3.Vec{X: -0.5}, p, 1e-12)
}
