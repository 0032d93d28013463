// SPDX-License-Identifier: Unlicense OR MIT

// Package instance implements the prepared-scene layer (spec §4.1,
// §4.4): the immutable, read-only-shared PreparedPack of triangles,
// spheres, and nested PreparedInstances that an Aggregator answers
// queries over, plus the PreparedSwatch material table and the
// PowerDistribution used for light-source importance sampling.
//
// PreparedPack plays the role gio's op.Ops macro-call model plays for
// recorded drawing content: a PreparedInstance is a call site that
// replays a shared PreparedPack under its own transform, the same way
// a gio macro call replays a recorded op.MacroOp at another point in
// the display list (ui/op's TypeCall/TypeMacro nesting).
package instance

import (
	"echorenderer/geometry"
	"echorenderer/internal/accel"
	"echorenderer/prim"
	"echorenderer/token"
)

// GeometryCounts summarizes what a PreparedPack holds, used by
// accel.Profile.Select to pick an aggregator kind (spec §4.3).
type GeometryCounts struct {
	Triangles int
	Spheres   int
	Instances int
}

// Total returns the pack's total leaf count.
func (g GeometryCounts) Total() int {
	return g.Triangles + g.Spheres + g.Instances
}

// PreparedPack is one immutable, shareable unit of prepared geometry:
// flat triangle/sphere arrays, nested instances of other packs, a
// material swatch, and the Aggregator built over all of it. A pack is
// built once (package prepare) and never mutated afterward, so the
// same *PreparedPack can be traced concurrently by every tile worker
// (spec §4.3's reentrancy requirement).
type PreparedPack struct {
	Triangles []prim.Triangle
	Spheres   []prim.Sphere
	Instances []*PreparedInstance
	Swatch    *PreparedSwatch
	Power     *PowerDistribution
	Counts    GeometryCounts
	Bounds    geometry.AABB

	aggregator accel.Aggregator
}

// NewPreparedPack assembles a pack from its constituent leaves and
// builds the Aggregator over them using profile's auto-selection
// policy. bounds is the pack's local-space AABB, precomputed by the
// caller since GetTransformedAABB requires an explicit transform even
// for the identity case.
func NewPreparedPack(triangles []prim.Triangle, spheres []prim.Sphere, instances []*PreparedInstance, swatch *PreparedSwatch, profile accel.Profile, bounds geometry.AABB) *PreparedPack {
	p := &PreparedPack{
		Triangles: triangles,
		Spheres:   spheres,
		Instances: instances,
		Swatch:    swatch,
		Bounds:    bounds,
		Counts: GeometryCounts{
			Triangles: len(triangles),
			Spheres:   len(spheres),
			Instances: len(instances),
		},
	}
	leaves := make([]accel.Leaf, 0, p.Counts.Total())
	for i, t := range triangles {
		leaves = append(leaves, accel.Leaf{Token: token.NewEntityToken(token.KindTriangle, i), Box: t.AABB()})
	}
	for i, s := range spheres {
		leaves = append(leaves, accel.Leaf{Token: token.NewEntityToken(token.KindSphere, i), Box: s.AABB()})
	}
	for i, inst := range instances {
		leaves = append(leaves, accel.Leaf{Token: token.NewEntityToken(token.KindInstance, i), Box: inst.WorldAABB()})
	}
	kind := profile.Select(p.Counts.Total(), len(instances) > 0)
	p.aggregator = accel.Build(kind, leaves)

	// Gate the power table on having any weight at all (spec §4.2: a
	// scene with no lights does no direct-light sampling), rather than
	// carrying an always-empty PowerDistribution through every pack.
	if dist := NewPowerDistribution(p); dist.Total() > 0 {
		p.Power = dist
	}
	return p
}

// PowerTotal returns this pack's total emitted power (0 if it has no
// PowerDistribution), the value a parent instance needs to precompute
// its own Power contribution.
func (p *PreparedPack) PowerTotal() float64 {
	if p.Power == nil {
		return 0
	}
	return p.Power.Total()
}

// Trace narrows q to the nearest hit in this pack, in the pack's own
// (local) coordinate frame.
func (p *PreparedPack) Trace(q *prim.TraceQuery) {
	p.aggregator.Trace(p, q)
}

// Occlude reports whether anything in this pack blocks q before
// q.Travel.
func (p *PreparedPack) Occlude(q *prim.OccludeQuery) bool {
	return p.aggregator.Occlude(p, q)
}

// TraceCost mirrors Trace but also returns the aggregator's reported
// traversal cost (spec §4.7's debug quality worker).
func (p *PreparedPack) TraceCost(ray geometry.Ray, distance *float64) int {
	return p.aggregator.TraceCost(p, ray, distance)
}

// IntersectLeaf implements accel.Source, dispatching on tok's kind:
// triangles and spheres are tested directly; instances delegate into
// the child PreparedInstance's own Trace, which transforms the query
// into the child's local frame before recursing into its pack.
func (p *PreparedPack) IntersectLeaf(tok token.EntityToken, q *prim.TraceQuery) bool {
	q.Current.Push(tok)
	defer q.Current.Pop()

	switch tok.Kind() {
	case token.KindTriangle:
		tri := p.Triangles[tok.Index()]
		dist, uv, hit := tri.Intersect(q.Ray, q.Distance)
		if !hit {
			return false
		}
		q.RecordHit(dist, uv)
		return true
	case token.KindSphere:
		sph := p.Spheres[tok.Index()]
		dist, hit := sph.Intersect(q.Ray, q.Distance, false)
		if !hit {
			return false
		}
		q.RecordHit(dist, geometry.Sample2D{})
		return true
	case token.KindInstance:
		return p.Instances[tok.Index()].Trace(q)
	default:
		return false
	}
}

// OccludeLeaf mirrors IntersectLeaf for occlusion queries.
func (p *PreparedPack) OccludeLeaf(tok token.EntityToken, q *prim.OccludeQuery) bool {
	q.Current.Push(tok)
	defer q.Current.Pop()

	switch tok.Kind() {
	case token.KindTriangle:
		return p.Triangles[tok.Index()].Occlude(q.Ray, q.Travel)
	case token.KindSphere:
		return p.Spheres[tok.Index()].Occlude(q.Ray, q.Travel)
	case token.KindInstance:
		return p.Instances[tok.Index()].Occlude(q)
	default:
		return false
	}
}

// LeafAABB implements accel.Source.
func (p *PreparedPack) LeafAABB(tok token.EntityToken) geometry.AABB {
	switch tok.Kind() {
	case token.KindTriangle:
		return p.Triangles[tok.Index()].AABB()
	case token.KindSphere:
		return p.Spheres[tok.Index()].AABB()
	case token.KindInstance:
		return p.Instances[tok.Index()].WorldAABB()
	default:
		return geometry.EmptyAABB()
	}
}

// LeafCost implements accel.Source: a primitive costs 1, a nested
// instance costs 1 plus its child pack's total geometry count (a conservative
// stand-in for "recursing into another aggregator is more expensive
// than testing one primitive", spec §4.7).
func (p *PreparedPack) LeafCost(tok token.EntityToken) int {
	if tok.Kind() == token.KindInstance {
		inst := p.Instances[tok.Index()]
		return 1 + inst.Pack.Counts.Total()
	}
	return 1
}

// GetTransformedAABB returns this pack's bounds under transform,
// derived from the already-aggregated Aggregator rather than walking
// Triangles/Spheres/Instances again.
func (p *PreparedPack) GetTransformedAABB(transform geometry.Affine) geometry.AABB {
	return p.aggregator.GetTransformedAABB(p, transform)
}

var _ accel.Source = (*PreparedPack)(nil)
