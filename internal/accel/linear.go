// SPDX-License-Identifier: Unlicense OR MIT

package accel

import (
	"math"

	"echorenderer/geometry"
	"echorenderer/prim"
	"echorenderer/token"
)

// linear stores leaves packed into groups of 4 — the shape of a 4-wide
// SIMD AABB test — and walks each group lane by lane as a plain Go
// loop, testing a lane's box and, on a hit, its primitive before moving
// to the next lane (spec §4.3 "Linear"). Traversal order
// is not guaranteed; ties are broken by whichever candidate narrows
// q.Distance first, since every candidate is tested against the
// current bound.
type linear struct {
	groups [][4]Leaf
	counts []int // valid lane count of each group; only the last can be partial
}

func buildLinear(leaves []Leaf) *linear {
	l := &linear{}
	for i := 0; i < len(leaves); i += 4 {
		var group [4]Leaf
		n := copy(group[:], leaves[i:min(i+4, len(leaves))])
		l.groups = append(l.groups, group)
		l.counts = append(l.counts, n)
	}
	return l
}

func (l *linear) Trace(source Source, q *prim.TraceQuery) {
	for gi, group := range l.groups {
		n := l.counts[gi]
		for lane := 0; lane < n; lane++ {
			leaf := group[lane]
			if q.IsIgnored(leaf.Token) {
				continue
			}
			boxDist := leaf.Box.Intersect(q.Ray, q.InvDirection, q.Distance)
			if math.IsInf(boxDist, 1) {
				continue
			}
			source.IntersectLeaf(leaf.Token, q)
		}
	}
}

func (l *linear) Occlude(source Source, q *prim.OccludeQuery) bool {
	for gi, group := range l.groups {
		n := l.counts[gi]
		for lane := 0; lane < n; lane++ {
			leaf := group[lane]
			if q.IsIgnored(leaf.Token) {
				continue
			}
			boxDist := leaf.Box.Intersect(q.Ray, q.InvDirection, q.Travel)
			if math.IsInf(boxDist, 1) {
				continue
			}
			if source.OccludeLeaf(leaf.Token, q) {
				return true
			}
		}
	}
	return false
}

func (l *linear) TraceCost(source Source, ray geometry.Ray, distance *float64) int {
	cost := 0
	q := prim.NewTraceQuery(ray, *distance, token.Hierarchy{})
	for gi, group := range l.groups {
		n := l.counts[gi]
		for lane := 0; lane < n; lane++ {
			leaf := group[lane]
			cost++
			boxDist := leaf.Box.Intersect(q.Ray, q.InvDirection, q.Distance)
			if math.IsInf(boxDist, 1) {
				continue
			}
			cost += source.LeafCost(leaf.Token)
			source.IntersectLeaf(leaf.Token, &q)
		}
	}
	*distance = q.Distance
	return cost
}

func (l *linear) GetTransformedAABB(source Source, transform geometry.Affine) geometry.AABB {
	box := geometry.EmptyAABB()
	for gi, group := range l.groups {
		n := l.counts[gi]
		for lane := 0; lane < n; lane++ {
			box = box.Union(source.LeafAABB(group[lane].Token).Transformed(transform))
		}
	}
	return box
}
