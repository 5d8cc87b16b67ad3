package physics

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// Pair is an unordered pair of colliding body ids, stored with A < B.
type Pair struct {
	A, B int
}

// Detect returns every pair of spheres that currently intersect, ordered by
// (A, B) ascending. The broad phase may produce false positives, which the
// exact distance test discards; it never drops a true intersection.
func Detect(spheres []Sphere, margin float64) []Pair {
	if len(spheres) < 2 {
		return nil
	}

	boxes := make([]r3.Box, len(spheres))
	for i, s := range spheres {
		boxes[i] = Bounds(s, margin)
	}

	var pairs []Pair
	BuildBVH(boxes).OverlappingPairs(func(i, j int) {
		a, b := spheres[i], spheres[j]
		if !SpheresOverlap(a, b) {
			return
		}
		pairs = append(pairs, newPair(a.ID, b.ID))
	})

	sortPairs(pairs)
	return pairs
}

func sortPairs(pairs []Pair) {
	slices.SortFunc(pairs, func(p, q Pair) int {
		if c := cmp.Compare(p.A, q.A); c != 0 {
			return c
		}
		return cmp.Compare(p.B, q.B)
	})
}

func newPair(a, b int) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}
