package sim

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/accretion/internal/orbit"
)

func crossingPair(t *testing.T) (Body, Body) {
	t.Helper()
	a := circularThrough(t, meetPoint, normalPlus, 0.01, 0)
	b := circularThrough(t, meetPoint, normalMinus, 0.02, 0)
	return Body{ID: 3, Radius: a.Radius, Orbit: a.Orbit}, Body{ID: 8, Radius: b.Radius, Orbit: b.Orbit}
}

func TestCombine_ConservesMassAndMomentum(t *testing.T) {
	a, b := crossingPair(t)
	state, radius := Combine(a, b, testMu, 0)

	total := a.Mass() + b.Mass()
	assert.InDelta(t, total, radius*radius*radius, 1e-18)

	sa := a.Orbit.State(testMu, 0)
	sb := b.Orbit.State(testMu, 0)
	momentum := r3.Add(r3.Scale(a.Mass(), sa.Velocity), r3.Scale(b.Mass(), sb.Velocity))
	got := r3.Scale(total, state.Velocity)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(momentum, got)), 1e-15)

	// The heavier body pulls the merged velocity towards its own.
	assert.Less(t, r3.Norm(r3.Sub(state.Velocity, sb.Velocity)), r3.Norm(r3.Sub(state.Velocity, sa.Velocity)))
}

func TestCombine_IsSymmetric(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	spawner := NewSpawner(DefaultConfig().Distribution, 11)
	for i := 0; i < 50; i++ {
		sa, sb := spawner.Next(), spawner.Next()
		a := Body{ID: 0, Radius: sa.Radius, Orbit: sa.Orbit}
		b := Body{ID: 1, Radius: sb.Radius, Orbit: sb.Orbit}
		at := rng.Float64() * 100

		s1, r1 := Combine(a, b, testMu, at)
		s2, r2 := Combine(b, a, testMu, at)
		assert.Equal(t, s1, s2)
		assert.Equal(t, r1, r2)
	}
}

func TestResolve_KeepsFirstIDAndMergedState(t *testing.T) {
	a, b := crossingPair(t)
	merged, err := Resolve(a, b, testMu, 0)
	require.NoError(t, err)

	assert.Equal(t, a.ID, merged.ID)
	require.NoError(t, merged.Orbit.Validate())

	want, radius := Combine(a, b, testMu, 0)
	assert.Equal(t, radius, merged.Radius)

	got := merged.Orbit.State(testMu, 0)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(want.Position, got.Position)), 1e-12)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(want.Velocity, got.Velocity)), 1e-12)
}

func TestResolve_OrderOnlyChangesID(t *testing.T) {
	a, b := crossingPair(t)
	ab, err := Resolve(a, b, testMu, 0)
	require.NoError(t, err)
	ba, err := Resolve(b, a, testMu, 0)
	require.NoError(t, err)

	assert.Equal(t, a.ID, ab.ID)
	assert.Equal(t, b.ID, ba.ID)
	assert.Equal(t, ab.Radius, ba.Radius)
	assert.Equal(t, ab.Orbit, ba.Orbit)
}

func TestResolve_HeadOnCollisionHasNoOrbit(t *testing.T) {
	a := circularThrough(t, meetPoint, normalPlus, testRadius, 0)
	b := circularThrough(t, meetPoint, r3.Scale(-1, normalPlus), testRadius, 0)

	_, err := Resolve(Body{ID: 0, Radius: a.Radius, Orbit: a.Orbit}, Body{ID: 1, Radius: b.Radius, Orbit: b.Orbit}, testMu, 0)
	assert.ErrorIs(t, err, orbit.ErrDegenerateOrbit)
}
