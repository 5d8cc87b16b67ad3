// Package draw renders the viewer into a terminal using half-block
// characters and ANSI cursor movement.
package draw

// Point is a 2D position in logical canvas coordinates.
type Point struct {
	X, Y float64
}

// Block characters used by the canvas.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
