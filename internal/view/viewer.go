// Package view runs the interactive terminal viewer: it owns a Simulation,
// advances it with wall-clock time and draws every body each frame.
package view

import (
	"bufio"
	"context"
	"io"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomz197/accretion/internal/draw"
	"github.com/tomz197/accretion/internal/input"
	"github.com/tomz197/accretion/internal/sim"
)

const (
	maxTermWidth  = 240
	maxTermHeight = 80

	rotateStep = 0.08 // radians per key press
	zoomStep   = 1.25
	minScale   = 1.0 / 64
	maxScale   = 64.0

	recentMerges = 4
)

// Options configures a Viewer.
type Options struct {
	TermSizeFunc draw.TermSizeFunc
	FPS          int
	TimeScale    float64         // simulated seconds per wall-clock second
	Scale        float64         // fraction of the half-canvas covered by one world unit
	Logger       *zerolog.Logger // nil disables logging
}

// Viewer draws one Simulation into a terminal. It is the single owner of the
// Simulation while Run is executing.
type Viewer struct {
	sim    *sim.Simulation
	writer io.Writer
	stream *input.Stream

	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter
	termSizeFunc draw.TermSizeFunc
	camera       draw.Camera

	frameTime time.Duration
	timeScale float64
	scale     float64
	paused    bool

	merges int
	recent []sim.Merge

	logger zerolog.Logger
}

// New creates a viewer reading keys from r and drawing to w.
func New(s *sim.Simulation, r *bufio.Reader, w io.Writer, opts Options) *Viewer {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = 60
	}
	timeScale := opts.TimeScale
	if timeScale <= 0 {
		timeScale = 1
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 0.7
	}

	v := &Viewer{
		sim:          s,
		writer:       w,
		chunkWriter:  draw.NewChunkWriter(w, 0, 0),
		termSizeFunc: termSizeFunc,
		camera:       draw.NewCamera(),
		frameTime:    time.Second / time.Duration(fps),
		timeScale:    timeScale,
		scale:        scale,
		logger:       logger,
	}
	if r != nil {
		v.stream = input.StartStream(r)
	}
	v.updateScreen()
	return v
}

// Run drives the frame loop until the user quits, the input ends or ctx is
// cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	draw.HideCursor(v.writer)
	defer draw.ShowCursor(v.writer)
	draw.ClearScreen(v.writer)

	v.logger.Info().
		Int("bodies", v.sim.ActiveCount()).
		Float64("timeScale", v.timeScale).
		Msg("Viewer started")

	ticker := time.NewTicker(v.frameTime)
	defer ticker.Stop()

	lastTime := time.Now()
	for {
		var in input.Input
		if v.stream != nil {
			in = v.stream.Poll()
		}

		now := time.Now()
		delta := now.Sub(lastTime)
		lastTime = now

		if !v.Step(in, delta) {
			break
		}
		v.updateScreen()
		if err := v.Frame(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			v.logger.Info().Err(ctx.Err()).Msg("Viewer cancelled")
			draw.ClearScreen(v.writer)
			return nil
		case <-ticker.C:
		}
	}

	v.logger.Info().
		Float64("time", v.sim.Time()).
		Int("bodies", v.sim.ActiveCount()).
		Int("merges", v.merges).
		Msg("Viewer stopped")
	draw.ClearScreen(v.writer)
	return nil
}

// Step applies one frame of input and advances the simulation by delta
// scaled by the current time scale. Returns false when the viewer should stop.
func (v *Viewer) Step(in input.Input, delta time.Duration) bool {
	if in.Quit || in.Closed {
		return false
	}
	if in.Pause {
		v.paused = !v.paused
	}
	if steps := in.Faster - in.Slower; steps != 0 {
		v.timeScale = math.Max(minScale, math.Min(maxScale, v.timeScale*math.Pow(2, float64(steps))))
	}
	v.camera.Rotate(rotateStep*float64(in.Right-in.Left), rotateStep*float64(in.Up-in.Down))
	if steps := in.ZoomIn - in.ZoomOut; steps != 0 {
		v.camera.ZoomBy(math.Pow(zoomStep, float64(steps)))
	}

	if v.paused {
		return true
	}

	merges := v.sim.Advance(time.Duration(float64(delta) * v.timeScale))
	v.merges += len(merges)
	v.recent = append(v.recent, merges...)
	if n := len(v.recent); n > recentMerges {
		v.recent = append(v.recent[:0], v.recent[n-recentMerges:]...)
	}
	return true
}

// updateScreen follows terminal resizes, clamping the drawing area and
// centering it in larger terminals.
func (v *Viewer) updateScreen() {
	termWidth, termHeight, err := v.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if v.canvas == nil {
		v.canvas = draw.NewCanvas(renderWidth, renderHeight)
	} else if renderWidth != v.canvas.TerminalWidth() || renderHeight != v.canvas.TerminalHeight() ||
		offsetCol != v.canvas.OffsetCol() || offsetRow != v.canvas.OffsetRow() {
		// Wipe what the old layout left outside the new canvas area.
		draw.ClearScreen(v.writer)
		if renderWidth != v.canvas.TerminalWidth() || renderHeight != v.canvas.TerminalHeight() {
			v.canvas = draw.NewCanvas(renderWidth, renderHeight)
		}
	}
	v.canvas.SetOffset(offsetCol, offsetRow)
	v.chunkWriter.SetOffset(offsetCol, offsetRow)
}

func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = max(0, min(termWidth, maxTermWidth))
	renderHeight = max(0, min(termHeight, maxTermHeight))
	offsetCol = max(0, (termWidth-renderWidth)/2)
	offsetRow = max(0, (termHeight-renderHeight)/2)
	return
}
