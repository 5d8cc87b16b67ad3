package physics

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// maxLeafItems is the largest number of boxes stored in a single leaf.
const maxLeafItems = 4

// BVH is a bounding-volume hierarchy over axis-aligned boxes for broad-phase
// collision detection. It is rebuilt from scratch every tick; nothing is
// updated incrementally.
type BVH struct {
	boxes []r3.Box
	order []int // box indices, grouped so every leaf owns a contiguous run
	nodes []bvhNode
}

// bvhNode is either an inner node (left/right set) or a leaf owning
// order[start : start+count].
type bvhNode struct {
	box         r3.Box
	left, right int // child node indices, -1 for leaves
	start       int
	count       int
}

func (n *bvhNode) isLeaf() bool {
	return n.left < 0
}

// BuildBVH builds a hierarchy over the given boxes. Box indices reported by
// queries refer to positions in this slice.
func BuildBVH(boxes []r3.Box) *BVH {
	t := &BVH{
		boxes: boxes,
		order: make([]int, len(boxes)),
		nodes: make([]bvhNode, 0, 2*len(boxes)/maxLeafItems+1),
	}
	for i := range t.order {
		t.order[i] = i
	}
	if len(boxes) > 0 {
		t.build(0, len(boxes))
	}
	return t
}

// build creates the subtree for order[start:end] and returns its node index.
// Splits at the median centroid along the axis of greatest spread.
func (t *BVH) build(start, end int) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, bvhNode{left: -1, right: -1, start: start, count: end - start})

	box := t.boxes[t.order[start]]
	centroids := r3.Box{Min: box.Center(), Max: box.Center()}
	for _, i := range t.order[start+1 : end] {
		box = box.Union(t.boxes[i])
		c := t.boxes[i].Center()
		centroids = centroids.Union(r3.Box{Min: c, Max: c})
	}
	t.nodes[idx].box = box

	if end-start <= maxLeafItems {
		return idx
	}

	axis := longestAxis(centroids.Size())
	items := t.order[start:end]
	slices.SortFunc(items, func(a, b int) int {
		ca := component(t.boxes[a].Center(), axis)
		cb := component(t.boxes[b].Center(), axis)
		switch {
		case ca < cb:
			return -1
		case ca > cb:
			return 1
		}
		return a - b // stable layout for equal centroids
	})

	mid := start + (end-start)/2
	left := t.build(start, mid)
	right := t.build(mid, end)

	// Children appended after idx may have grown the slice; write through index.
	t.nodes[idx].left = left
	t.nodes[idx].right = right
	t.nodes[idx].count = 0
	return idx
}

// OverlappingPairs calls fn once for every unordered pair of boxes that
// overlap, with i < j. Never misses an overlapping pair.
func (t *BVH) OverlappingPairs(fn func(i, j int)) {
	if len(t.nodes) == 0 {
		return
	}
	t.selfPairs(0, fn)
}

// selfPairs reports overlapping pairs within a single subtree.
func (t *BVH) selfPairs(n int, fn func(i, j int)) {
	node := &t.nodes[n]
	if node.isLeaf() {
		items := t.order[node.start : node.start+node.count]
		for a := 0; a < len(items); a++ {
			for b := a + 1; b < len(items); b++ {
				t.report(items[a], items[b], fn)
			}
		}
		return
	}
	left, right := node.left, node.right
	t.selfPairs(left, fn)
	t.selfPairs(right, fn)
	t.crossPairs(left, right, fn)
}

// crossPairs reports overlapping pairs with one box in each subtree.
func (t *BVH) crossPairs(a, b int, fn func(i, j int)) {
	na, nb := &t.nodes[a], &t.nodes[b]
	if !BoxesOverlap(na.box, nb.box) {
		return
	}

	switch {
	case na.isLeaf() && nb.isLeaf():
		for _, i := range t.order[na.start : na.start+na.count] {
			for _, j := range t.order[nb.start : nb.start+nb.count] {
				t.report(i, j, fn)
			}
		}
	case na.isLeaf():
		t.crossPairs(a, nb.left, fn)
		t.crossPairs(a, nb.right, fn)
	default:
		t.crossPairs(na.left, b, fn)
		t.crossPairs(na.right, b, fn)
	}
}

func (t *BVH) report(i, j int, fn func(i, j int)) {
	if !BoxesOverlap(t.boxes[i], t.boxes[j]) {
		return
	}
	if i > j {
		i, j = j, i
	}
	fn(i, j)
}

func longestAxis(size r3.Vec) int {
	switch {
	case size.X >= size.Y && size.X >= size.Z:
		return 0
	case size.Y >= size.Z:
		return 1
	}
	return 2
}

func component(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}
