package draw

import (
	"io"
	"math"
	"strconv"
	"strings"
)

// Canvas is a monochrome pixel buffer with twice the vertical resolution of
// the terminal: every cell shows two stacked pixels as a half-block.
//
// Callers draw in logical coordinates; the canvas scales them to pixels so the
// picture keeps its size across terminal resizes.
type Canvas struct {
	termWidth      int
	termHeight     int
	subPixelHeight int    // termHeight * 2
	pixels         []bool // [y*termWidth + x]

	logicalWidth  float64
	logicalHeight float64 // in sub-pixels
	scaleX        float64
	scaleY        float64

	// 0-based terminal offsets used to center the canvas.
	offsetCol int
	offsetRow int

	renderBuf strings.Builder
	numBuf    [20]byte
}

// NewCanvas creates an unscaled canvas for the given terminal size.
func NewCanvas(width, height int) *Canvas {
	return NewScaledCanvas(width, height, float64(width), float64(height*2))
}

// NewScaledCanvas creates a canvas mapping a logicalWidth x logicalHeight
// space onto termWidth x termHeight cells.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize adapts the canvas to a new terminal size. The logical size is kept.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth = max(termWidth, 0)
	termHeight = max(termHeight, 0)
	if termWidth != c.termWidth || termHeight != c.termHeight || c.pixels == nil {
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = termHeight * 2
		c.pixels = make([]bool, c.subPixelHeight*termWidth)
	}
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
}

// SetOffset sets the 0-based column and row where the canvas starts.
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the 0-based column offset.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the 0-based row offset.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// Clear resets all pixels.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

func (c *Canvas) setPixel(x, y int) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = true
	}
}

func (c *Canvas) toPixel(p Point) (int, int) {
	return int(math.Round(p.X * c.scaleX)), int(math.Round(p.Y * c.scaleY))
}

// DrawLine draws a line between two logical points (Bresenham).
func (c *Canvas) DrawLine(p1, p2 Point) {
	x1, y1 := c.toPixel(p1)
	x2, y2 := c.toPixel(p2)

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		c.setPixel(x1, y1)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawDisc fills a disc of the given logical radius. Discs smaller than a
// pixel still light the pixel under their center.
func (c *Canvas) DrawDisc(center Point, radius float64) {
	cx := center.X * c.scaleX
	cy := center.Y * c.scaleY
	rx := radius * c.scaleX
	ry := radius * c.scaleY

	c.setPixel(int(math.Round(cx)), int(math.Round(cy)))
	if rx < 0.5 && ry < 0.5 {
		return
	}

	yStart := int(math.Floor(cy - ry))
	yEnd := int(math.Ceil(cy + ry))
	for y := yStart; y <= yEnd; y++ {
		dy := (float64(y) - cy) / ry
		if dy*dy > 1 {
			continue
		}
		half := rx * math.Sqrt(1-dy*dy)
		for x := int(math.Ceil(cx - half)); x <= int(math.Floor(cx+half)); x++ {
			c.setPixel(x, y)
		}
	}
}

// maxChunkSize keeps individual writes below a typical MTU for SSH sessions.
const maxChunkSize = 1400

func (c *Canvas) moveCursor(col, row int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(row+c.offsetRow), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col+c.offsetCol), 10))
	c.renderBuf.WriteByte('H')
}

// Render writes every row of the canvas to w. Empty cells are written as
// spaces so the previous frame is overwritten without a full clear.
func (c *Canvas) Render(w io.Writer) error {
	c.renderBuf.Reset()
	c.renderBuf.Grow(c.termHeight * (c.termWidth*3 + 12))

	for row := 0; row < c.termHeight; row++ {
		c.moveCursor(1, row+1)
		top := row * 2 * c.termWidth
		bottom := top + c.termWidth
		for col := 0; col < c.termWidth; col++ {
			up := c.pixels[top+col]
			down := c.pixels[bottom+col]
			switch {
			case up && down:
				c.renderBuf.WriteRune(BlockFull)
			case up:
				c.renderBuf.WriteRune(BlockUpperHalf)
			case down:
				c.renderBuf.WriteRune(BlockLowerHalf)
			default:
				c.renderBuf.WriteByte(' ')
			}
		}
	}

	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return nil
}

// LogicalWidth returns the logical width.
func (c *Canvas) LogicalWidth() float64 {
	return c.logicalWidth
}

// LogicalHeight returns the logical height in sub-pixels.
func (c *Canvas) LogicalHeight() float64 {
	return c.logicalHeight
}

// TerminalWidth returns the canvas width in columns.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the canvas height in rows.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to a 1-based (col, row)
// inside the canvas, for placing text next to drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px, py := c.toPixel(Point{X: x, Y: y})
	return px + 1, py/2 + 1
}
