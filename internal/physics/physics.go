// Package physics provides collision detection and distance utilities for
// spherical bodies in 3D.
package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sphere is a body's collision volume at one instant.
type Sphere struct {
	ID     int
	Center r3.Vec
	Radius float64
}

// DistanceSquared returns the squared distance between two points.
func DistanceSquared(a, b r3.Vec) float64 {
	return r3.Norm2(r3.Sub(b, a))
}

// SpheresOverlap reports whether two spheres intersect. Touching spheres do not.
func SpheresOverlap(a, b Sphere) bool {
	r := a.Radius + b.Radius
	return DistanceSquared(a.Center, b.Center) < r*r
}

// Bounds returns the axis-aligned box around a sphere, grown by margin on every side.
func Bounds(s Sphere, margin float64) r3.Box {
	ext := s.Radius + math.Max(margin, 0)
	half := r3.Vec{X: ext, Y: ext, Z: ext}
	return r3.Box{
		Min: r3.Sub(s.Center, half),
		Max: r3.Add(s.Center, half),
	}
}

// BoxesOverlap reports whether two boxes intersect (shared faces count).
func BoxesOverlap(a, b r3.Box) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y &&
		a.Min.Z <= b.Max.Z && b.Min.Z <= a.Max.Z
}
