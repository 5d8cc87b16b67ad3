package view

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/accretion/internal/draw"
	"github.com/tomz197/accretion/internal/sim"
)

const helpText = "q quit  space pause  +/- speed  arrows/wasd rotate  z/x zoom"

// Frame draws the current state of the simulation.
func (v *Viewer) Frame() error {
	c := v.canvas
	c.Clear()

	width, height := c.LogicalWidth(), c.LogicalHeight()
	unit := v.camera.Unit(width, height, v.scale)

	mu, t := v.sim.Mu(), v.sim.Time()
	for _, b := range v.sim.Bodies() {
		center, _ := v.camera.Project(b.Orbit.Position(mu, t), width, height, v.scale)
		c.DrawDisc(center, b.Radius*unit)
	}
	v.drawCentralMass(width, height)

	if err := c.Render(v.chunkWriter); err != nil {
		return err
	}
	v.drawMergeLabels(width, height)
	v.drawHUD()
	return v.chunkWriter.Flush()
}

// drawCentralMass marks the origin with a small cross.
func (v *Viewer) drawCentralMass(width, height float64) {
	o, _ := v.camera.Project(r3.Vec{}, width, height, v.scale)
	const arm = 2
	v.canvas.DrawLine(draw.Point{X: o.X - arm, Y: o.Y}, draw.Point{X: o.X + arm, Y: o.Y})
	v.canvas.DrawLine(draw.Point{X: o.X, Y: o.Y - arm}, draw.Point{X: o.X, Y: o.Y + arm})
}

// drawMergeLabels tags the bodies that absorbed something recently with their ID.
func (v *Viewer) drawMergeLabels(width, height float64) {
	termWidth := v.canvas.TerminalWidth()
	termHeight := v.canvas.TerminalHeight()
	mu, t := v.sim.Mu(), v.sim.Time()

	for _, m := range v.recent {
		b, ok := v.sim.Body(m.Winner)
		if !ok {
			continue
		}
		p, _ := v.camera.Project(b.Orbit.Position(mu, t), width, height, v.scale)
		col, row := v.canvas.LogicalToTerminal(p.X, p.Y)
		label := fmt.Sprintf("#%d", b.ID)
		col++
		if col < 1 || row < 2 || row >= termHeight || col+len(label) > termWidth {
			continue
		}
		v.chunkWriter.WriteAt(col, row, label)
	}
}

// drawHUD writes the status overlay. Fields are padded so shorter values
// overwrite longer ones from the previous frame.
func (v *Viewer) drawHUD() {
	cw := v.chunkWriter
	termWidth := v.canvas.TerminalWidth()
	termHeight := v.canvas.TerminalHeight()
	if termWidth < 10 || termHeight < 3 {
		return
	}

	state := "running"
	if v.paused {
		state = "paused "
	}
	cw.WriteAt(2, 1, fmt.Sprintf("t=%-10.2f bodies=%-5d merges=%-5d x%-7.3g %s",
		v.sim.Time(), v.sim.ActiveCount(), v.merges, v.timeScale, state))

	for i := len(v.recent) - 1; i >= 0; i-- {
		row := 2 + len(v.recent) - 1 - i
		if row >= termHeight {
			break
		}
		cw.WriteAt(2, row, fmt.Sprintf("%-40s", formatMerge(v.recent[i])))
	}

	if len(helpText)+2 <= termWidth {
		cw.WriteAt(2, termHeight, helpText)
	}
}

func formatMerge(m sim.Merge) string {
	s := fmt.Sprintf("#%d absorbed #%d r=%.4f", m.Winner, m.Retired, m.Radius)
	if m.Pruned {
		s += " (pruned: " + m.Reason + ")"
	}
	return s
}
