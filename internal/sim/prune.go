package sim

import "fmt"

// Pruner decides whether a freshly merged body should be removed as well.
// Pruning is opt-in; without a Pruner every successful merge survives.
type Pruner interface {
	Prune(b Body) (reason string, prune bool)
}

// PrunerFunc adapts a function to the Pruner interface.
type PrunerFunc func(b Body) (string, bool)

// Prune calls f(b).
func (f PrunerFunc) Prune(b Body) (string, bool) {
	return f(b)
}

// EscapePolicy prunes merged bodies whose orbit leaves a configured envelope.
// A zero field disables that check.
type EscapePolicy struct {
	MaxEccentricity float64 // prune if e exceeds this
	MinPeriapsis    float64 // prune if a(1-e) drops below this (body grazes the center)
	MaxApoapsis     float64 // prune if a(1+e) exceeds this (body leaves the system)
}

// Prune implements Pruner.
func (p EscapePolicy) Prune(b Body) (string, bool) {
	el := b.Orbit
	if p.MaxEccentricity > 0 && el.Eccentricity > p.MaxEccentricity {
		return fmt.Sprintf("eccentricity %.4f above %.4f", el.Eccentricity, p.MaxEccentricity), true
	}
	if p.MinPeriapsis > 0 && el.Periapsis() < p.MinPeriapsis {
		return fmt.Sprintf("periapsis %.4f below %.4f", el.Periapsis(), p.MinPeriapsis), true
	}
	if p.MaxApoapsis > 0 && el.Apoapsis() > p.MaxApoapsis {
		return fmt.Sprintf("apoapsis %.4f above %.4f", el.Apoapsis(), p.MaxApoapsis), true
	}
	return "", false
}
