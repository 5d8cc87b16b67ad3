// Package sim owns the population of orbiting bodies: it advances simulation
// time, detects intersecting bodies and merges them.
package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomz197/accretion/internal/orbit"
)

// ErrInvalidRadius rejects bodies whose radius is not a positive finite number.
var ErrInvalidRadius = errors.New("radius must be positive")

// ID identifies a body. IDs are dense from 0 at construction and are never
// reused after a body is retired.
type ID int

// Body is an orbiting point mass with a spherical collision volume.
type Body struct {
	ID     ID
	Radius float64
	Orbit  orbit.Elements
}

// BodySpec describes a body before it is registered and given an ID.
type BodySpec struct {
	Radius float64
	Orbit  orbit.Elements
}

// Mass returns radius³ (unit density). Only ratios of masses are meaningful.
func (b Body) Mass() float64 {
	return b.Radius * b.Radius * b.Radius
}

// Validate checks the spec against the construction-time invariants.
func (s BodySpec) Validate() error {
	if math.IsNaN(s.Radius) || math.IsInf(s.Radius, 0) || s.Radius <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidRadius, s.Radius)
	}
	return s.Orbit.Validate()
}
