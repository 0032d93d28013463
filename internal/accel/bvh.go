// SPDX-License-Identifier: Unlicense OR MIT

package accel

import (
	"math"

	"golang.org/x/exp/slices"

	"echorenderer/geometry"
	"echorenderer/prim"
	"echorenderer/token"
)

// splitCandidates is the stride divisor of the SAH builder: sahSplit
// tries the splitCandidates-1 interior points n*c/splitCandidates, on
// the largest-extent axis only (spec §4.3 "~7 stride-sampled split
// points").
const splitCandidates = 7

type bvhNode struct {
	box         geometry.AABB
	left, right int32 // child node indices; right == -1 marks a leaf
	leaf        Leaf
}

// bvh is a binary bounding-volume hierarchy built top-down with the
// surface-area heuristic. Leaf nodes hold one primitive token; inner
// nodes hold two child indices and their precomputed AABBs.
type bvh struct {
	nodes []bvhNode
	root  int32
}

func buildBVH(leaves []Leaf) *bvh {
	b := &bvh{}
	if len(leaves) == 0 {
		b.root = -1
		return b
	}
	items := make([]Leaf, len(leaves))
	copy(items, leaves)
	b.root = b.build(items)
	return b
}

func (b *bvh) build(items []Leaf) int32 {
	box := geometry.EmptyAABB()
	for _, it := range items {
		box = box.Union(it.Box)
	}
	if len(items) == 1 {
		b.nodes = append(b.nodes, bvhNode{box: box, left: -1, right: -1, leaf: items[0]})
		return int32(len(b.nodes) - 1)
	}

	axis, splitIndex, ok := sahSplit(items, box)
	if !ok {
		// Degenerate split (spec §7 "degenerate aggregator splits
		// fall back to equal partition"): no candidate improved on
		// testing everything, so bisect the item list evenly.
		axis = box.Extent().MaxAxis()
		splitIndex = len(items) / 2
	}
	slices.SortFunc(items, func(a, b Leaf) bool {
		return a.Box.Center().Component(axis) < b.Box.Center().Component(axis)
	})
	if splitIndex <= 0 {
		splitIndex = 1
	}
	if splitIndex >= len(items) {
		splitIndex = len(items) - 1
	}

	leftIdx := b.build(items[:splitIndex])
	rightIdx := b.build(items[splitIndex:])
	node := bvhNode{box: box, left: leftIdx, right: rightIdx}
	b.nodes = append(b.nodes, node)
	return int32(len(b.nodes) - 1)
}

// sahSplit evaluates the splitCandidates-1 interior stride-sampled
// split points along box's largest-extent axis and returns the split minimizing
// cost = area(left)*n_left + area(right)*n_right, or ok=false if every
// candidate degenerated to an empty side.
func sahSplit(items []Leaf, box geometry.AABB) (axis, splitIndex int, ok bool) {
	axis = box.Extent().MaxAxis()
	sorted := make([]Leaf, len(items))
	copy(sorted, items)
	slices.SortFunc(sorted, func(a, b Leaf) bool {
		return a.Box.Center().Component(axis) < b.Box.Center().Component(axis)
	})

	bestCost := math.Inf(1)
	bestSplit := -1
	n := len(sorted)
	for c := 1; c < splitCandidates; c++ {
		split := n * c / splitCandidates
		if split <= 0 || split >= n {
			continue
		}
		leftBox, rightBox := geometry.EmptyAABB(), geometry.EmptyAABB()
		for _, it := range sorted[:split] {
			leftBox = leftBox.Union(it.Box)
		}
		for _, it := range sorted[split:] {
			rightBox = rightBox.Union(it.Box)
		}
		cost := leftBox.SurfaceArea()*float64(split) + rightBox.SurfaceArea()*float64(n-split)
		if cost < bestCost {
			bestCost = cost
			bestSplit = split
		}
	}
	if bestSplit < 0 {
		return axis, 0, false
	}
	return axis, bestSplit, true
}

func (n bvhNode) isLeaf() bool {
	return n.left < 0 && n.right < 0
}

// Trace walks the hierarchy with an explicit stack; when both children
// are hit it pushes the farther one first and the nearer one on top, so
// the nearer subtree is searched first. The farther child is not
// re-tested when popped; its own children are tested against the (by
// then tighter) q.Distance (spec §4.3 "BVH").
func (b *bvh) Trace(source Source, q *prim.TraceQuery) {
	if b.root < 0 {
		return
	}
	var stack [64]int32
	sp := 0
	stack[sp] = b.root
	sp++
	for sp > 0 {
		sp--
		idx := stack[sp]
		node := b.nodes[idx]
		if node.isLeaf() {
			if q.IsIgnored(node.leaf.Token) {
				continue
			}
			source.IntersectLeaf(node.leaf.Token, q)
			continue
		}
		left, right := b.nodes[node.left], b.nodes[node.right]
		ldist := left.box.Intersect(q.Ray, q.InvDirection, q.Distance)
		rdist := right.box.Intersect(q.Ray, q.InvDirection, q.Distance)
		lhit, rhit := !math.IsInf(ldist, 1), !math.IsInf(rdist, 1)
		switch {
		case lhit && rhit:
			near, far := node.left, node.right
			if rdist < ldist {
				near, far = node.right, node.left
			}
			stack[sp] = far
			sp++
			stack[sp] = near
			sp++
		case lhit:
			stack[sp] = node.left
			sp++
		case rhit:
			stack[sp] = node.right
			sp++
		}
	}
}

func (b *bvh) Occlude(source Source, q *prim.OccludeQuery) bool {
	if b.root < 0 {
		return false
	}
	var stack [64]int32
	sp := 0
	stack[sp] = b.root
	sp++
	for sp > 0 {
		sp--
		idx := stack[sp]
		node := b.nodes[idx]
		if node.isLeaf() {
			if q.IsIgnored(node.leaf.Token) {
				continue
			}
			if source.OccludeLeaf(node.leaf.Token, q) {
				return true
			}
			continue
		}
		left, right := b.nodes[node.left], b.nodes[node.right]
		if !math.IsInf(left.box.Intersect(q.Ray, q.InvDirection, q.Travel), 1) {
			stack[sp] = node.left
			sp++
		}
		if !math.IsInf(right.box.Intersect(q.Ray, q.InvDirection, q.Travel), 1) {
			stack[sp] = node.right
			sp++
		}
	}
	return false
}

func (b *bvh) TraceCost(source Source, ray geometry.Ray, distance *float64) int {
	q := prim.NewTraceQuery(ray, *distance, token.Hierarchy{})
	cost := 0
	if b.root < 0 {
		return 0
	}
	var stack [64]int32
	sp := 0
	stack[sp] = b.root
	sp++
	for sp > 0 {
		sp--
		idx := stack[sp]
		node := b.nodes[idx]
		cost++
		if node.isLeaf() {
			cost += source.LeafCost(node.leaf.Token)
			source.IntersectLeaf(node.leaf.Token, &q)
			continue
		}
		left, right := b.nodes[node.left], b.nodes[node.right]
		if !math.IsInf(left.box.Intersect(q.Ray, q.InvDirection, q.Distance), 1) {
			stack[sp] = node.left
			sp++
		}
		if !math.IsInf(right.box.Intersect(q.Ray, q.InvDirection, q.Distance), 1) {
			stack[sp] = node.right
			sp++
		}
	}
	*distance = q.Distance
	return cost
}

func (b *bvh) GetTransformedAABB(source Source, transform geometry.Affine) geometry.AABB {
	box := geometry.EmptyAABB()
	for _, node := range b.nodes {
		if node.isLeaf() {
			box = box.Union(source.LeafAABB(node.leaf.Token).Transformed(transform))
		}
	}
	return box
}
