// SPDX-License-Identifier: Unlicense OR MIT

package accel

import (
	"math"

	"echorenderer/geometry"
	"echorenderer/prim"
	"echorenderer/token"
)

// qbvhChildKind distinguishes what a qbvh node's lane holds.
type qbvhChildKind uint8

const (
	childEmpty qbvhChildKind = iota
	childLeaf
	childNode
)

type qbvhChild struct {
	kind qbvhChildKind
	box  geometry.AABB
	leaf Leaf
	node int32
}

// qbvhNode groups four BVH children per node (spec §4.3 "QBVH"), so a
// single 4-wide AABB test yields four candidate distances before any
// child is descended into.
type qbvhNode struct {
	children [4]qbvhChild
}

type qbvh struct {
	nodes []qbvhNode
	root  int32
}

func buildQBVH(leaves []Leaf) *qbvh {
	q := &qbvh{}
	if len(leaves) == 0 {
		q.root = -1
		return q
	}
	items := make([]Leaf, len(leaves))
	copy(items, leaves)
	q.root = q.buildNode(items)
	return q
}

// buildNode splits items into at most four partitions (two rounds of
// SAH bisection) and stores each as a lane of one qbvhNode, recursing
// into another node when a partition is still too large to be a
// single leaf.
func (q *qbvh) buildNode(items []Leaf) int32 {
	quadrants := quadrisect(items)
	node := qbvhNode{}
	for i, part := range quadrants {
		if len(part) == 0 {
			node.children[i] = qbvhChild{kind: childEmpty}
			continue
		}
		box := geometry.EmptyAABB()
		for _, it := range part {
			box = box.Union(it.Box)
		}
		if len(part) == 1 {
			node.children[i] = qbvhChild{kind: childLeaf, box: box, leaf: part[0]}
			continue
		}
		childIdx := q.buildNode(part)
		node.children[i] = qbvhChild{kind: childNode, box: box, node: childIdx}
	}
	q.nodes = append(q.nodes, node)
	return int32(len(q.nodes) - 1)
}

// quadrisect partitions items into up to four groups via two levels
// of SAH bisection, falling back to an equal split at either level
// when SAH finds no improving candidate (spec §7).
func quadrisect(items []Leaf) [4][]Leaf {
	box := geometry.EmptyAABB()
	for _, it := range items {
		box = box.Union(it.Box)
	}
	left, right := bisect(items, box)

	lbox, rbox := geometry.EmptyAABB(), geometry.EmptyAABB()
	for _, it := range left {
		lbox = lbox.Union(it.Box)
	}
	for _, it := range right {
		rbox = rbox.Union(it.Box)
	}

	var out [4][]Leaf
	if len(left) > 1 {
		out[0], out[1] = bisect(left, lbox)
	} else {
		out[0] = left
	}
	if len(right) > 1 {
		out[2], out[3] = bisect(right, rbox)
	} else {
		out[2] = right
	}
	return out
}

func bisect(items []Leaf, box geometry.AABB) (left, right []Leaf) {
	if len(items) <= 1 {
		return items, nil
	}
	axis, split, ok := sahSplit(items, box)
	sorted := make([]Leaf, len(items))
	copy(sorted, items)
	sortByAxisCenter(sorted, axis)
	if !ok {
		split = len(sorted) / 2
	}
	if split <= 0 {
		split = 1
	}
	if split >= len(sorted) {
		split = len(sorted) - 1
	}
	return sorted[:split], sorted[split:]
}

func sortByAxisCenter(items []Leaf, axis int) {
	// Simple insertion sort: quadrisect sorts each node's local item
	// list (bounded by the leaf count at that subtree); the root call
	// sorts the whole pack.
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].Box.Center().Component(axis) < items[j-1].Box.Center().Component(axis); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

// testLanes runs the 4-wide AABB test for node against the ray bound
// by distanceBound, returning each lane's distance (+Inf for a miss
// or empty lane) and the lane order sorted ascending by distance, tied
// lanes broken by ascending lane index (spec §4.3).
func testLanes(node qbvhNode, ray geometry.Ray, inv geometry.Float3, distanceBound float64) (dist [4]float64, order [4]int) {
	for i, c := range node.children {
		if c.kind == childEmpty {
			dist[i] = math.Inf(1)
			continue
		}
		dist[i] = c.box.Intersect(ray, inv, distanceBound)
	}
	order = [4]int{0, 1, 2, 3}
	for i := 1; i < 4; i++ {
		for j := i; j > 0 && (dist[order[j]] < dist[order[j-1]]); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return dist, order
}

func (q *qbvh) Trace(source Source, query *prim.TraceQuery) {
	if q.root < 0 {
		return
	}
	var stack [64]int32
	sp := 0
	stack[sp] = q.root
	sp++
	for sp > 0 {
		sp--
		node := q.nodes[stack[sp]]
		dist, order := testLanes(node, query.Ray, query.InvDirection, query.Distance)
		for _, lane := range order {
			if math.IsInf(dist[lane], 1) || dist[lane] >= query.Distance {
				continue
			}
			c := node.children[lane]
			switch c.kind {
			case childLeaf:
				if query.IsIgnored(c.leaf.Token) {
					continue
				}
				source.IntersectLeaf(c.leaf.Token, query)
			case childNode:
				stack[sp] = c.node
				sp++
			}
		}
	}
}

func (q *qbvh) Occlude(source Source, query *prim.OccludeQuery) bool {
	if q.root < 0 {
		return false
	}
	var stack [64]int32
	sp := 0
	stack[sp] = q.root
	sp++
	for sp > 0 {
		sp--
		node := q.nodes[stack[sp]]
		for _, c := range node.children {
			if c.kind == childEmpty {
				continue
			}
			if math.IsInf(c.box.Intersect(query.Ray, query.InvDirection, query.Travel), 1) {
				continue
			}
			switch c.kind {
			case childLeaf:
				if query.IsIgnored(c.leaf.Token) {
					continue
				}
				if source.OccludeLeaf(c.leaf.Token, query) {
					return true
				}
			case childNode:
				stack[sp] = c.node
				sp++
			}
		}
	}
	return false
}

func (q *qbvh) TraceCost(source Source, ray geometry.Ray, distance *float64) int {
	query := prim.NewTraceQuery(ray, *distance, token.Hierarchy{})
	cost := 0
	if q.root < 0 {
		return 0
	}
	var stack [64]int32
	sp := 0
	stack[sp] = q.root
	sp++
	for sp > 0 {
		sp--
		node := q.nodes[stack[sp]]
		cost++
		dist, order := testLanes(node, query.Ray, query.InvDirection, query.Distance)
		for _, lane := range order {
			if math.IsInf(dist[lane], 1) || dist[lane] >= query.Distance {
				continue
			}
			c := node.children[lane]
			switch c.kind {
			case childLeaf:
				cost += source.LeafCost(c.leaf.Token)
				source.IntersectLeaf(c.leaf.Token, &query)
			case childNode:
				stack[sp] = c.node
				sp++
			}
		}
	}
	*distance = query.Distance
	return cost
}

func (q *qbvh) GetTransformedAABB(source Source, transform geometry.Affine) geometry.AABB {
	box := geometry.EmptyAABB()
	for _, node := range q.nodes {
		for _, c := range node.children {
			if c.kind == childLeaf {
				box = box.Union(source.LeafAABB(c.leaf.Token).Transformed(transform))
			}
		}
	}
	return box
}
