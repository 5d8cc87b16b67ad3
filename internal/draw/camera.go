package draw

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera limits.
const (
	// DefaultPitch is the starting tilt in radians above the reference plane.
	DefaultPitch = 1.0
	// MinZoom and MaxZoom bound Camera.Zoom.
	MinZoom = 0.1
	MaxZoom = 20.0
)

var (
	yawAxis   = r3.Vec{Y: 1}
	pitchAxis = r3.Vec{X: 1}
)

// Camera is an orthographic camera orbiting the origin. Yaw turns it around
// the world +Y axis and Pitch tilts it towards looking straight down +Y.
type Camera struct {
	Yaw   float64
	Pitch float64
	Zoom  float64
}

// NewCamera returns a camera looking at the reference plane from above at
// DefaultPitch.
func NewCamera() Camera {
	return Camera{Pitch: DefaultPitch, Zoom: 1}
}

// Rotate turns the camera. Pitch is clamped to [-π/2, π/2].
func (c *Camera) Rotate(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 2*math.Pi)
	c.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.Pitch+dPitch))
}

// ZoomBy multiplies the zoom by f within [MinZoom, MaxZoom].
func (c *Camera) ZoomBy(f float64) {
	if f <= 0 {
		return
	}
	c.Zoom = math.Max(MinZoom, math.Min(MaxZoom, c.Zoom*f))
}

// View maps a world point into camera space: X to the right, Y up and Z
// towards the viewer.
func (c Camera) View(p r3.Vec) r3.Vec {
	p = r3.NewRotation(-c.Yaw, yawAxis).Rotate(p)
	return r3.NewRotation(c.Pitch, pitchAxis).Rotate(p)
}

// Unit returns how many logical canvas units one world unit spans. scale is
// the fraction of the half-extent of the canvas covered by a unit distance.
func (c Camera) Unit(width, height, scale float64) float64 {
	return scale * c.Zoom * math.Min(width, height) / 2
}

// Project maps a world point onto a width x height logical canvas centered on
// the origin. The second result is the depth towards the viewer.
func (c Camera) Project(p r3.Vec, width, height, scale float64) (Point, float64) {
	v := c.View(p)
	unit := c.Unit(width, height, scale)
	return Point{
		X: width/2 + v.X*unit,
		Y: height/2 - v.Y*unit,
	}, v.Z
}
