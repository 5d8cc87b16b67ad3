package view

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/accretion/internal/input"
	"github.com/tomz197/accretion/internal/orbit"
	"github.com/tomz197/accretion/internal/sim"
)

func fixedSize(w, h int) func() (int, int, error) {
	return func() (int, int, error) { return w, h, nil }
}

func newTestViewer(t *testing.T, out *bytes.Buffer) *Viewer {
	t.Helper()
	s, err := sim.NewFromBodies(0.01, []sim.BodySpec{
		{Radius: 0.02, Orbit: orbit.Elements{SemiMajorAxis: 0.3, Normal: orbit.ReferenceAxis}},
		{Radius: 0.01, Orbit: orbit.Elements{Eccentricity: 0.2, SemiMajorAxis: 0.5, Normal: orbit.ReferenceAxis, Heading: 1}},
	})
	require.NoError(t, err)
	return New(s, nil, out, Options{TermSizeFunc: fixedSize(80, 24), TimeScale: 2})
}

func TestStep_AdvancesScaledTime(t *testing.T) {
	v := newTestViewer(t, &bytes.Buffer{})

	require.True(t, v.Step(input.Input{}, 500*time.Millisecond))
	assert.InDelta(t, 1.0, v.sim.Time(), 1e-12)
}

func TestStep_PauseFreezesTime(t *testing.T) {
	v := newTestViewer(t, &bytes.Buffer{})

	v.Step(input.Input{Pause: true}, time.Second)
	assert.True(t, v.paused)
	assert.Equal(t, 0.0, v.sim.Time())

	v.Step(input.Input{Pause: true}, time.Second)
	assert.False(t, v.paused)
	assert.InDelta(t, 2.0, v.sim.Time(), 1e-12)
}

func TestStep_SpeedAndCamera(t *testing.T) {
	v := newTestViewer(t, &bytes.Buffer{})

	v.Step(input.Input{Faster: 2, Slower: 1, Right: 1, ZoomIn: 1}, 0)
	assert.Equal(t, 4.0, v.timeScale)
	assert.InDelta(t, rotateStep, v.camera.Yaw, 1e-12)
	assert.InDelta(t, zoomStep, v.camera.Zoom, 1e-12)

	v.Step(input.Input{Slower: 100}, 0)
	assert.Equal(t, minScale, v.timeScale)
}

func TestStep_QuitAndClosedStop(t *testing.T) {
	v := newTestViewer(t, &bytes.Buffer{})
	assert.False(t, v.Step(input.Input{Quit: true}, 0))
	assert.False(t, v.Step(input.Input{Closed: true}, 0))
}

func TestFrame_DrawsHUD(t *testing.T) {
	var out bytes.Buffer
	v := newTestViewer(t, &out)
	v.Step(input.Input{}, time.Second)

	require.NoError(t, v.Frame())
	s := out.String()
	assert.Contains(t, s, "t=2.00")
	assert.Contains(t, s, "bodies=2")
	assert.Contains(t, s, helpText)
	assert.Contains(t, s, "█")
}

func TestRun_StopsOnCancel(t *testing.T) {
	var out bytes.Buffer
	v := newTestViewer(t, &out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, v.Run(ctx))
	assert.Contains(t, out.String(), "\033[?25h")
}

func TestClampTermSize(t *testing.T) {
	w, h, col, row := clampTermSize(300, 100)
	assert.Equal(t, []int{maxTermWidth, maxTermHeight, 30, 10}, []int{w, h, col, row})

	w, h, col, row = clampTermSize(80, 24)
	assert.Equal(t, []int{80, 24, 0, 0}, []int{w, h, col, row})
}

func TestFormatMerge(t *testing.T) {
	assert.Equal(t, "#1 absorbed #4 r=0.0200", formatMerge(sim.Merge{Winner: 1, Retired: 4, Radius: 0.02}))
	assert.Contains(t, formatMerge(sim.Merge{Pruned: true, Reason: "apoapsis"}), "pruned: apoapsis")
}

func TestFrame_LabelsRecentWinners(t *testing.T) {
	var out bytes.Buffer
	v := newTestViewer(t, &out)
	v.recent = []sim.Merge{{Winner: 0, Retired: 1}, {Winner: 5, Retired: 6}}

	require.NoError(t, v.Frame())
	s := out.String()
	// Once in the merge list and once next to the body.
	assert.Equal(t, 2, strings.Count(s, "#0"))
	// Unknown winners only show up in the list.
	assert.Equal(t, 1, strings.Count(s, "#5"))
}

func TestUpdateScreen_FollowsOffsetChanges(t *testing.T) {
	var out bytes.Buffer
	width, height := 300, 100
	s, err := sim.NewFromBodies(0.01, nil)
	require.NoError(t, err)
	v := New(s, nil, &out, Options{TermSizeFunc: func() (int, int, error) { return width, height, nil }})

	canvas := v.canvas
	assert.Equal(t, 30, canvas.OffsetCol())
	assert.Equal(t, 10, canvas.OffsetRow())
	assert.Empty(t, out.String())

	// Same clamped size, new offset: the canvas is kept but the screen is wiped.
	width = 320
	v.updateScreen()
	assert.Same(t, canvas, v.canvas)
	assert.Equal(t, 40, v.canvas.OffsetCol())
	assert.Contains(t, out.String(), "\033[2J")

	out.Reset()
	width, height = 100, 30
	v.updateScreen()
	assert.NotSame(t, canvas, v.canvas)
	assert.Equal(t, 100, v.canvas.TerminalWidth())
	assert.Equal(t, 0, v.canvas.OffsetCol())
	assert.Contains(t, out.String(), "\033[2J")
}
