package orbit

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ReferenceAxis is the normal of the canonical orbital plane. Orbits are laid
// out in the local XZ plane and then rotated so this axis lands on the orbit normal.
var ReferenceAxis = r3.Vec{Y: 1}

// antiparallelAxis is the fixed rotation axis used when the orbit normal points
// exactly against ReferenceAxis and the minimal rotation is not unique.
var antiparallelAxis = r3.Vec{X: 1}

// parallelTolerance bounds |ReferenceAxis × normal| below which the two are
// treated as (anti)parallel.
const parallelTolerance = 1e-12

// PlaneFrame maps vectors between an orbit's local frame and the world frame.
// World = align · heading · local, where heading spins about the reference axis
// and align is the minimal-angle rotation taking the reference axis to the normal.
type PlaneFrame struct {
	align      r3.Rotation
	alignInv   r3.Rotation
	heading    r3.Rotation
	headingInv r3.Rotation
}

// NewPlaneFrame builds the frame for the given unit orbit normal and heading angle.
func NewPlaneFrame(normal r3.Vec, heading float64) PlaneFrame {
	axis, angle := alignment(normal)
	return PlaneFrame{
		align:      r3.NewRotation(angle, axis),
		alignInv:   r3.NewRotation(-angle, axis),
		heading:    r3.NewRotation(heading, ReferenceAxis),
		headingInv: r3.NewRotation(-heading, ReferenceAxis),
	}
}

// alignment returns the axis and angle of the minimal rotation mapping
// ReferenceAxis onto normal.
func alignment(normal r3.Vec) (axis r3.Vec, angle float64) {
	cross := r3.Cross(ReferenceAxis, normal)
	sin := r3.Norm(cross)
	cos := r3.Dot(ReferenceAxis, normal)

	if sin < parallelTolerance {
		if cos > 0 {
			return ReferenceAxis, 0
		}
		// Infinitely many half-turns exist; always pick the same one.
		return antiparallelAxis, math.Pi
	}
	return r3.Scale(1/sin, cross), math.Atan2(sin, cos)
}

// ToWorld maps a local-frame vector into the world frame.
func (f PlaneFrame) ToWorld(v r3.Vec) r3.Vec {
	return f.align.Rotate(f.heading.Rotate(v))
}

// ToLocal maps a world-frame vector into the local frame (inverse of ToWorld).
func (f PlaneFrame) ToLocal(v r3.Vec) r3.Vec {
	return f.headingInv.Rotate(f.alignInv.Rotate(v))
}

// Unaligned undoes only the plane alignment, leaving the heading applied.
// Used to read the in-plane angle of a world vector.
func (f PlaneFrame) Unaligned(v r3.Vec) r3.Vec {
	return f.alignInv.Rotate(v)
}

// planeAngle returns the angle of a local-plane vector measured from the
// periapsis direction (-X) towards +Z, in [0, 2π).
func planeAngle(v r3.Vec) float64 {
	return NormalizeAngle(math.Atan2(v.Z, -v.X))
}
